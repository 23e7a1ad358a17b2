package bootstrap

import (
	"log"
	"time"

	"manual-assistant-be/internal/config"
	"manual-assistant-be/internal/controller"
	"manual-assistant-be/internal/pkg/logger"
	"manual-assistant-be/internal/repository/implementation"
	"manual-assistant-be/internal/service"
	"manual-assistant-be/pkg/cache"
	"manual-assistant-be/pkg/embedding"
	"manual-assistant-be/pkg/events"
	"manual-assistant-be/pkg/extractor"
	"manual-assistant-be/pkg/llm"
	"manual-assistant-be/pkg/llm/factory"
	"manual-assistant-be/pkg/rag/classifier"
	"manual-assistant-be/pkg/rag/engine"
	"manual-assistant-be/pkg/rag/response"
	"manual-assistant-be/pkg/rag/retriever"
	"manual-assistant-be/pkg/rag/router"
	"manual-assistant-be/pkg/rag/search"
	"manual-assistant-be/pkg/rag/session"
	"manual-assistant-be/pkg/rerank"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	WarmCacheService service.IWarmCacheService

	// Event bus, shared with the ingest path when run in-process
	PubSub *gochannel.GoChannel
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	calibrationLogger := logger.NewCalibrationLogger(cfg.App.CalibrationLogPath)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// 3. AI collaborators
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Vision is optional; only some providers can describe screenshots.
	visionProvider, _ := llmProvider.(llm.VisionDescriber)

	reranker := rerank.NewJinaReranker(cfg.Keys.Jina, cfg.Ai.RerankModel)

	// 4. Storage
	libraryRepo := implementation.NewLibraryRepository(db)
	contentRepo := implementation.NewContentRepository(db)
	historyRepo := implementation.NewChatHistoryRepository(db)

	contentCache, err := cache.NewContentCache(cfg.Rag.CacheDir, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize content cache: %v", err)
	}

	pdfExtractor := extractor.NewPDFExtractor()

	// 5. Routing engine
	searchService := search.NewService(embeddingProvider, reranker, libraryRepo, contentRepo, sysLogger)

	relevanceClassifier := classifier.NewClassifier(llmProvider, sysLogger)
	summaryProvider := service.NewSummaryProvider(contentCache, pdfExtractor, sysLogger)

	candidateRouter := router.NewRouter(
		searchService,
		relevanceClassifier,
		summaryProvider,
		router.Thresholds{
			HighConfidence:   cfg.Rag.HighConfidence,
			MediumConfidence: cfg.Rag.MediumConfidence,
			MinRelevance:     cfg.Rag.MinRelevance,
		},
		cfg.Rag.LibraryTopK,
		sysLogger,
		calibrationLogger,
	)

	deepRetriever := retriever.NewRetriever(
		searchService,
		cfg.Rag.MinRelevance,
		cfg.Rag.ContentTopK,
		cfg.Rag.EvidenceLimit,
		sysLogger,
	)

	answerGenerator := response.NewGenerator(llmProvider, sysLogger)

	sessionManager := session.NewManager(session.NewStore(), sysLogger)

	chatEngine := engine.NewEngine(
		engine.Config{
			Affirmations:      cfg.Rag.Affirmations,
			ExitCommands:      cfg.Rag.ExitCommands,
			MaxFailedAttempts: cfg.Rag.MaxFailedAttempts,
			CollaboratorWait:  time.Duration(cfg.Rag.CollaboratorWait) * time.Second,
		},
		sessionManager,
		candidateRouter,
		deepRetriever,
		answerGenerator,
		service.NewChatHistory(historyRepo),
		visionProvider,
		sysLogger,
	)

	// 6. Services
	chatService := service.NewChatService(chatEngine, sysLogger)
	warmCacheService := service.NewWarmCacheService(
		pubSub,
		events.TopicManualIngested,
		pdfExtractor,
		contentCache,
		sysLogger,
	)

	return &Container{
		ChatController:   controller.NewChatController(chatService),
		WarmCacheService: warmCacheService,
		PubSub:           pubSub,
	}
}
