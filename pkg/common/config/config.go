package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers   []string
	KafkaGroupID   string
	PlanEventTopic string

	// Knowledge base & guideline corpus
	KnowledgeBaseDir string
	GuidelineDir     string
	IndexDir         string

	// Generation
	LLMAPIKey        string
	LLMBaseURL       string
	LLMModelName     string
	LLMMaxTokens     int
	LLMTimeout       time.Duration
	MinGeneratedLen  int
	EmbeddingBaseURL string
	EmbeddingAPIKey  string
	EmbeddingModel   string
	EmbeddingTimeout time.Duration

	// Retrieval
	PubMedSearchURL  string
	PubMedFetchURL   string
	PubMedTimeout    time.Duration
	LocalRetrievalK  int
	OnlineRetrievalK int
	EvidenceCacheTTL time.Duration

	// Redaction
	RedactionRulesPath string

	// Outcome risk model
	RiskArtifactDir string
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 60*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "oncoplan"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "oncoplan123"),
		PostgresDB:       getEnv("POSTGRES_DB", "oncoplan"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:   getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:   getEnv("KAFKA_GROUP_ID", "oncoplan-platform"),
		PlanEventTopic: getEnv("PLAN_EVENT_TOPIC", "oncoplan.plans"),

		KnowledgeBaseDir: getEnv("KNOWLEDGE_BASE_DIR", ""),
		GuidelineDir:     getEnv("GUIDELINE_DIR", "guidelines"),
		IndexDir:         getEnv("INDEX_DIR", "index_store"),

		LLMAPIKey:        getEnv("LLM_API_KEY", ""),
		LLMBaseURL:       getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMModelName:     getEnv("LLM_MODEL_NAME", "gpt-4"),
		LLMMaxTokens:     getIntEnv("LLM_MAX_TOKENS", 240),
		LLMTimeout:       getDuration("LLM_TIMEOUT", 30*time.Second),
		MinGeneratedLen:  getIntEnv("MIN_GENERATED_LEN", 70),
		EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
		EmbeddingAPIKey:  getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingTimeout: getDuration("EMBEDDING_TIMEOUT", 20*time.Second),

		PubMedSearchURL:  getEnv("PUBMED_SEARCH_URL", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"),
		PubMedFetchURL:   getEnv("PUBMED_FETCH_URL", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"),
		PubMedTimeout:    getDuration("PUBMED_TIMEOUT", 15*time.Second),
		LocalRetrievalK:  getIntEnv("LOCAL_RETRIEVAL_K", 5),
		OnlineRetrievalK: getIntEnv("ONLINE_RETRIEVAL_K", 3),
		EvidenceCacheTTL: getDuration("EVIDENCE_CACHE_TTL", 6*time.Hour),

		RedactionRulesPath: getEnv("REDACTION_RULES_PATH", ""),

		RiskArtifactDir: getEnv("RISK_ARTIFACT_DIR", "artifacts"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
