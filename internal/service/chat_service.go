package service

import (
	"context"

	"manual-assistant-be/internal/dto"
	"manual-assistant-be/internal/pkg/logger"
	"manual-assistant-be/pkg/rag/engine"

	"github.com/google/uuid"
)

type IChatService interface {
	HandleQuery(ctx context.Context, req *dto.ChatQueryRequest) (*dto.ChatQueryResponse, error)
}

// chatService is the transport-facing wrapper around the engine: it owns
// session id allocation and DTO mapping, nothing else.
type chatService struct {
	engine *engine.Engine
	logger logger.ILogger
}

func NewChatService(eng *engine.Engine, log logger.ILogger) IChatService {
	return &chatService{engine: eng, logger: log}
}

func (s *chatService) HandleQuery(ctx context.Context, req *dto.ChatQueryRequest) (*dto.ChatQueryResponse, error) {
	sessionID := req.SessionId
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	result, err := s.engine.HandleQuery(ctx, sessionID, req.Query, req.ImageRef)
	if err != nil {
		return nil, err
	}

	return &dto.ChatQueryResponse{
		SessionId:       sessionID,
		Text:            result.Text,
		SourceDocuments: result.SourceDocuments,
	}, nil
}
