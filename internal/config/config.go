package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RAGConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CalibrationLogPath string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	Jina         string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "gemini" or "ollama"
	LLMModel          string
	RerankModel       string
}

type RAGConfig struct {
	HighConfidence    float64 // signed logit, auto-select above this
	MediumConfidence  float64 // ask-to-confirm above this
	MinRelevance      float64 // evidence floor
	LibraryTopK       int
	ContentTopK       int
	EvidenceLimit     int
	MaxFailedAttempts int
	CollaboratorWait  int // seconds, bounded wait on slow collaborators
	CacheDir          string
	ManualsDir        string
	Affirmations      []string
	ExitCommands      []string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CalibrationLogPath: getEnv("CALIBRATION_LOG_PATH", "logs/rag_scores.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-2.0-flash"),
			RerankModel:       getEnv("RERANK_MODEL", "jina-reranker-v2-base-multilingual"),
		},
		Rag: RAGConfig{
			HighConfidence:    getEnvAsFloat("RAG_HIGH_CONFIDENCE", 2.5),
			MediumConfidence:  getEnvAsFloat("RAG_MEDIUM_CONFIDENCE", -1.0),
			MinRelevance:      getEnvAsFloat("RAG_MIN_RELEVANCE", -4.0),
			LibraryTopK:       getEnvAsInt("RAG_LIBRARY_TOP_K", 10),
			ContentTopK:       getEnvAsInt("RAG_CONTENT_TOP_K", 20),
			EvidenceLimit:     getEnvAsInt("RAG_EVIDENCE_LIMIT", 8),
			MaxFailedAttempts: getEnvAsInt("RAG_MAX_FAILED_ATTEMPTS", 3),
			CollaboratorWait:  getEnvAsInt("RAG_COLLABORATOR_WAIT_SECONDS", 60),
			CacheDir:          getEnv("ANALYSIS_CACHE_DIR", "data/cache_docs"),
			ManualsDir:        getEnv("MANUALS_DIR", "data/manuals"),
			Affirmations:      getEnvAsList("CONFIRM_AFFIRMATIONS", "si,sí,claro,ok,dale,correcto"),
			ExitCommands:      getEnvAsList("SESSION_EXIT_COMMANDS", "salir,cancelar,/limpiar,basta"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
