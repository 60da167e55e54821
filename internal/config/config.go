package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the API, CLI and scheduler read at startup.
type Config struct {
	Port string
	Log  LogConfig

	Database DatabaseConfig
	Search   SearchConfig
	LLM      LLMConfig
	Browser  BrowserConfig
	Redis    RedisConfig
	NATS     NATSConfig

	AutoSnipe AutoSnipeConfig
}

type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxLife  time.Duration
}

// SearchConfig configures the Serper (Google search) provider.
type SearchConfig struct {
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type LLMConfig struct {
	APIKey       string
	Model        string
	MaxRetries   int
	InitialDelay time.Duration
}

// BrowserConfig configures the Browserless screenshot provider used for apply attempts.
type BrowserConfig struct {
	Token             string
	BaseURL           string
	NavigationTimeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type NATSConfig struct {
	URL         string
	ConnTimeout time.Duration
}

type AutoSnipeConfig struct {
	Schedule string
	Roles    []string
	Limit    int
}

// Load reads the .env file when present, then environment variables.
func Load(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// a missing .env is fine, the process env may carry everything
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Database: DatabaseConfig{
			DSN:          getEnv("DATABASE_URL", ""),
			MaxOpenConns: getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLife:  getEnvAsDuration("DATABASE_CONN_MAX_LIFE", time.Hour),
		},
		Search: SearchConfig{
			APIKey:   getEnv("SERPER_API_KEY", ""),
			BaseURL:  getEnv("SERPER_BASE_URL", "https://google.serper.dev"),
			Timeout:  getEnvAsDuration("SERPER_TIMEOUT", 30*time.Second),
			CacheTTL: getEnvAsDuration("SEARCH_CACHE_TTL", 5*time.Minute),
		},
		LLM: LLMConfig{
			APIKey:       getEnv("GOOGLE_AI_API_KEY", ""),
			Model:        getEnv("GOOGLE_AI_MODEL", "gemini-2.0-flash"),
			MaxRetries:   getEnvAsInt("LLM_MAX_RETRIES", 3),
			InitialDelay: getEnvAsDuration("LLM_RETRY_INITIAL_DELAY", time.Second),
		},
		Browser: BrowserConfig{
			Token:             getEnv("BROWSERLESS_TOKEN", ""),
			BaseURL:           getEnv("BROWSERLESS_BASE_URL", "https://chrome.browserless.io"),
			NavigationTimeout: getEnvAsDuration("BROWSERLESS_NAVIGATION_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:         getEnv("NATS_URL", ""),
			ConnTimeout: getEnvAsDuration("NATS_CONN_TIMEOUT", 10*time.Second),
		},
		AutoSnipe: AutoSnipeConfig{
			Schedule: getEnv("AUTO_SNIPE_SCHEDULE", ""),
			Roles:    getEnvAsList("AUTO_SNIPE_ROLES"),
			Limit:    getEnvAsInt("AUTO_SNIPE_LIMIT", 20),
		},
	}

	return cfg, nil
}

func (c *Config) SearchConfigured() bool { return c.Search.APIKey != "" }

func (c *Config) StoreConfigured() bool { return c.Database.DSN != "" }

func (c *Config) GenerationConfigured() bool { return c.LLM.APIKey != "" }

// AutomationConfigured reports whether apply attempts can drive a remote browser.
// Without it the apply route answers with a manual fallback.
func (c *Config) AutomationConfigured() bool { return c.Browser.Token != "" }

func (c *Config) CacheConfigured() bool { return c.Redis.Addr != "" }

func (c *Config) EventsConfigured() bool { return c.NATS.URL != "" }

func (c *Config) AutoSnipeEnabled() bool {
	return c.AutoSnipe.Schedule != "" && len(c.AutoSnipe.Roles) > 0
}

// Missing lists the settings whose absence disables a feature.
func (c *Config) Missing() []string {
	var missing []string
	if !c.SearchConfigured() {
		missing = append(missing, "SERPER_API_KEY")
	}
	if !c.StoreConfigured() {
		missing = append(missing, "DATABASE_URL")
	}
	if !c.GenerationConfigured() {
		missing = append(missing, "GOOGLE_AI_API_KEY")
	}
	if !c.AutomationConfigured() {
		missing = append(missing, "BROWSERLESS_TOKEN")
	}
	return missing
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
