package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// SourceConfig represents one configured news provider. Params are sent
// verbatim as query parameters on every fetch.
type SourceConfig struct {
	Name    string
	BaseURL string
	Params  map[string]string
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	EnableRateLimit       bool
	RateLimitPerSecond    float64
	RateLimitBurst        int
	EnableCORS            bool
	AllowedOrigins        []string
	EnableSecurityHeaders bool
	MaxRequestSize        int64
	EnableRequestID       bool
}

type Config struct {
	Port             int
	DataDir          string
	LogLevel         string
	FetchTimeout     time.Duration
	PollInterval     time.Duration
	EnablePoller     bool
	EnableSwagger    bool
	ArticleRetention time.Duration

	// Cache TTLs per key class
	ArticleListTTL time.Duration
	ArticleTTL     time.Duration
	PreferencesTTL time.Duration
	FeedTTL        time.Duration

	Sources  []SourceConfig
	Security SecurityConfig
}

func Load() *Config {
	port := getEnvAsInt("PORT", 8080)
	dataDir := getEnv("DATA_DIR", "./data")
	logLevel := getEnv("LOG_LEVEL", "info")
	fetchTimeout := getEnvAsDuration("FETCH_TIMEOUT", 15*time.Second)
	pollInterval := getEnvAsDuration("POLL_INTERVAL", 30*time.Minute)
	enablePoller := getEnvAsBool("ENABLE_POLLER", true)
	enableSwagger := getEnvAsBool("ENABLE_SWAGGER", true)
	articleRetention := getEnvAsDuration("ARTICLE_RETENTION", 90*24*time.Hour)

	return &Config{
		Port:             port,
		DataDir:          dataDir,
		LogLevel:         logLevel,
		FetchTimeout:     fetchTimeout,
		PollInterval:     pollInterval,
		EnablePoller:     enablePoller,
		EnableSwagger:    enableSwagger,
		ArticleRetention: articleRetention,
		ArticleListTTL:   getEnvAsDuration("ARTICLE_LIST_TTL", 600*time.Second),
		ArticleTTL:       getEnvAsDuration("ARTICLE_TTL", 600*time.Second),
		PreferencesTTL:   getEnvAsDuration("PREFERENCES_TTL", 60*time.Second),
		FeedTTL:          getEnvAsDuration("FEED_TTL", 3600*time.Second),
		Sources:          loadSources(),
		Security:         loadSecurityConfig(),
	}
}

func loadSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableRateLimit:       getEnvAsBool("ENABLE_RATE_LIMIT", true),
		RateLimitPerSecond:    getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10.0),
		RateLimitBurst:        getEnvAsInt("RATE_LIMIT_BURST", 20),
		EnableCORS:            getEnvAsBool("ENABLE_CORS", true),
		AllowedOrigins:        getEnvAsStringSlice("ALLOWED_ORIGINS", []string{"*"}),
		EnableSecurityHeaders: getEnvAsBool("ENABLE_SECURITY_HEADERS", true),
		MaxRequestSize:        getEnvAsInt64("MAX_REQUEST_SIZE", 10<<20), // 10MB
		EnableRequestID:       getEnvAsBool("ENABLE_REQUEST_ID", true),
	}
}

// Provider names. The set is closed: each name has a matching adapter in
// the normalize package.
const (
	SourceNewsAPI  = "newsapi"
	SourceNYTimes  = "newyorktimes"
	SourceGuardian = "theguardian"
)

func loadSources() []SourceConfig {
	return []SourceConfig{
		{
			Name:    SourceNewsAPI,
			BaseURL: getEnv("NEWSAPI_URL", "https://newsapi.org/v2/top-headlines"),
			Params: map[string]string{
				"country":  getEnv("NEWSAPI_COUNTRY", "us"),
				"pageSize": getEnv("NEWSAPI_PAGE_SIZE", "10"),
				"apiKey":   os.Getenv("NEWSAPI_KEY"),
			},
		},
		{
			Name:    SourceNYTimes,
			BaseURL: getEnv("NYTIMES_URL", "https://api.nytimes.com/svc/topstories/v2/home.json"),
			Params: map[string]string{
				"api-key": os.Getenv("NYTIMES_KEY"),
			},
		},
		{
			Name:    SourceGuardian,
			BaseURL: getEnv("GUARDIAN_URL", "https://content.guardianapis.com/search"),
			Params: map[string]string{
				"api-key": os.Getenv("GUARDIAN_KEY"),
			},
		},
	}
}

func getEnv(key string, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.ParseInt(val, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsStringSlice(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		origins := strings.Split(val, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		return origins
	}
	return defaultVal
}
