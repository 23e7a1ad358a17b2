package service

import (
	"context"
	"encoding/json"

	"manual-assistant-be/internal/pkg/logger"
	"manual-assistant-be/pkg/cache"
	"manual-assistant-be/pkg/events"
	"manual-assistant-be/pkg/extractor"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IWarmCacheService interface {
	Consume(ctx context.Context) error
}

// warmCacheService listens for ingested manuals and pre-computes their
// structural summaries so the first ambiguous query never pays extraction
// latency. Every failure is Ack'd: the router recomputes summaries on demand,
// so a cold cache is slow, not broken.
type warmCacheService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	docExtractor extractor.Extractor
	contentCache *cache.ContentCache
	logger       logger.ILogger
}

func NewWarmCacheService(
	pubSub *gochannel.GoChannel,
	topicName string,
	docExtractor extractor.Extractor,
	contentCache *cache.ContentCache,
	log logger.ILogger,
) IWarmCacheService {
	return &warmCacheService{
		pubSub:       pubSub,
		topicName:    topicName,
		docExtractor: docExtractor,
		contentCache: contentCache,
		logger:       log,
	}
}

func (s *warmCacheService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(msg)
		}
	}()

	return nil
}

func (s *warmCacheService) processMessage(msg *message.Message) {
	defer msg.Ack()

	var event events.ManualIngested
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		s.logger.Warn("WARM_CACHE", "Unparseable ingest event dropped", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if _, hit := s.contentCache.GetByHash(event.DocumentID); hit {
		s.logger.Debug("WARM_CACHE", "Summary already cached", map[string]interface{}{
			"document_id": event.DocumentID,
		})
		return
	}

	summary, err := s.docExtractor.Extract(event.SourcePath)
	if err != nil {
		s.logger.Warn("WARM_CACHE", "Structural extraction failed", map[string]interface{}{
			"document": event.DisplayName,
			"error":    err.Error(),
		})
		return
	}

	s.contentCache.PutByHash(event.DocumentID, summary)
	s.logger.Info("WARM_CACHE", "Structural summary cached", map[string]interface{}{
		"document": event.DisplayName,
		"outline":  len(summary.Outline),
		"headings": len(summary.KeyHeadings),
		"pages":    summary.PageCount,
	})
}
