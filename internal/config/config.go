package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/jdevra/websage/internal/capability/openai"
)

// Config represents the agent configuration.
type Config struct {
	Server     ServerConfig
	CORS       CORSConfig
	OpenAI     openai.Config
	Redis      RedisConfig
	Cache      CacheConfig
	Similarity SimilarityConfig
	Scrape     ScrapeConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"30"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// RedisConfig contains connection settings shared by the result cache and
// the query fingerprint index.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"       envDefault:"0"`
}

// CacheConfig contains result cache settings.
type CacheConfig struct {
	TTLHours int `env:"CACHE_TTL_HOURS" envDefault:"24"`
}

// TTL returns the cache entry lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// SimilarityConfig contains query similarity search settings.
type SimilarityConfig struct {
	Threshold float64 `env:"SIMILARITY_THRESHOLD"  envDefault:"0.8"`
	TopK      int     `env:"SIMILARITY_TOP_K"      envDefault:"5"`
	IndexName string  `env:"SIMILARITY_INDEX_NAME" envDefault:"query_embeddings"`
}

// ScrapeConfig contains web search and scraping settings.
type ScrapeConfig struct {
	MaxPages          int           `env:"MAX_SCRAPE_PAGES"   envDefault:"5"`
	NavigationTimeout int           `env:"SCRAPE_TIMEOUT"     envDefault:"30"`
	FetchTimeout      int           `env:"FETCH_TIMEOUT"      envDefault:"10"`
	RequestDelay      time.Duration `env:"REQUEST_DELAY"      envDefault:"1s"`
	MaxContentLength  int           `env:"MAX_CONTENT_LENGTH" envDefault:"5000"`
	UserAgent         string        `env:"SCRAPE_USER_AGENT"  envDefault:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*openai.Config
	*RedisConfig
	*CacheConfig
	*SimilarityConfig
	*ScrapeConfig
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.OpenAI,
		&cfg.Redis,
		&cfg.Cache,
		&cfg.Similarity,
		&cfg.Scrape,
	}
}
