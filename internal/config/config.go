package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Ai        AIConfig
	Retrieval RetrievalConfig
	Engine    EngineConfig
	Auth      AuthConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ScenarioDir        string
	KnowledgeDir       string
	IndexSnapshotPath  string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host            string
	Port            int
	Email           string
	Password        string
	SenderName      string
	EscalationInbox string
}

type AIConfig struct {
	EmbeddingProvider  string // "gemini" or "ollama"
	OllamaBaseURL      string
	OllamaModel        string
	GeminiAPIKey       string
	LLMProvider        string // "ollama" or "huggingface"
	LLMModel           string
	LLMBaseURL         string
	LLMAPIKey          string
	EmbeddingCacheSize int
}

type RetrievalConfig struct {
	TopK          int
	Threshold     float64
	KeywordWeight float64
}

type EngineConfig struct {
	MaxTurns    int
	MaxFailures int
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTLHours int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ScenarioDir:        getEnv("SCENARIO_DIR", "scenarios"),
			KnowledgeDir:       getEnv("KNOWLEDGE_DIR", "knowledge"),
			IndexSnapshotPath:  getEnv("INDEX_SNAPSHOT_PATH", "data/knowledge.idx"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:            getEnv("SMTP_HOST", ""),
			Port:            getEnvAsInt("SMTP_PORT", 587),
			Email:           getEnv("SMTP_EMAIL", ""),
			Password:        getEnv("SMTP_PASSWORD", ""),
			SenderName:      getEnv("SMTP_SENDER_NAME", "Helpdesk"),
			EscalationInbox: getEnv("SMTP_ESCALATION_INBOX", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:        getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GeminiAPIKey:       getEnv("GOOGLE_GEMINI_API_KEY", ""),
			LLMProvider:        getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:           getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:         getEnv("LLM_BASE_URL", ""),
			LLMAPIKey:          getEnv("LLM_API_KEY", ""),
			EmbeddingCacheSize: getEnvAsInt("EMBEDDING_CACHE_SIZE", 1000),
		},
		Retrieval: RetrievalConfig{
			TopK:          getEnvAsInt("RETRIEVAL_TOP_K", 5),
			Threshold:     getEnvAsFloat("RETRIEVAL_THRESHOLD", 0.5),
			KeywordWeight: getEnvAsFloat("RETRIEVAL_KEYWORD_WEIGHT", 0.3),
		},
		Engine: EngineConfig{
			MaxTurns:    getEnvAsInt("ENGINE_MAX_TURNS", 0),
			MaxFailures: getEnvAsInt("ENGINE_MAX_FAILURES", 3),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TokenTTLHours: getEnvAsInt("JWT_TTL_HOURS", 24),
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
