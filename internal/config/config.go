package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Keys        APIKeys
	Ai          AIConfig
	TopicAssist TopicAssistConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	DiagnosticLogPath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	JwtSecret string
	LLM       string
}

type AIConfig struct {
	LLMProvider    string // "ollama", "openai", "huggingface" or "none"
	LLMModel       string // e.g. "llama3", "gpt-4o-mini"
	LLMBaseURL     string
	RequestsPerMin int
	RequestBurst   int
	RequestTimeout time.Duration
}

// TopicAssistConfig holds the assistant tunables. Zero values fall back to the
// package defaults in pkg/topicassist.
type TopicAssistConfig struct {
	BatchThreshold      int
	CooldownWindow      time.Duration
	MaxIdsSent          int
	MinWordLen          int
	PrecheckSimilarity  float64
	PostcheckSimilarity float64
	Stopwords           []string
	ServerSessions      bool
	SessionTTL          time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			DiagnosticLogPath:  getEnv("DIAGNOSTIC_LOG_PATH", "logs/topic_assist.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			JwtSecret: getEnv("JWT_SECRET", ""),
			LLM:       getEnv("LLM_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:       getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:     getEnv("LLM_BASE_URL", ""),
			RequestsPerMin: getEnvAsInt("LLM_REQUESTS_PER_MIN", 60),
			RequestBurst:   getEnvAsInt("LLM_REQUEST_BURST", 5),
			RequestTimeout: getEnvAsDuration("LLM_REQUEST_TIMEOUT", 20*time.Second),
		},
		TopicAssist: TopicAssistConfig{
			BatchThreshold:      getEnvAsInt("ASSIST_BATCH_THRESHOLD", 3),
			CooldownWindow:      getEnvAsDuration("ASSIST_COOLDOWN", 10*time.Second),
			MaxIdsSent:          getEnvAsInt("ASSIST_MAX_IDS", 50),
			MinWordLen:          getEnvAsInt("ASSIST_MIN_WORD_LEN", 3),
			PrecheckSimilarity:  getEnvAsFloat("ASSIST_PRECHECK_SIMILARITY", 0.8),
			PostcheckSimilarity: getEnvAsFloat("ASSIST_POSTCHECK_SIMILARITY", 0.7),
			Stopwords:           getEnvAsList("ASSIST_STOPWORDS", nil),
			ServerSessions:      getEnvAsBool("ASSIST_SERVER_SESSIONS", true),
			SessionTTL:          getEnvAsDuration("ASSIST_SESSION_TTL", time.Hour),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("10s") or a bare number of seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
