package main

import (
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	rediscache "github.com/jdevra/websage/internal/cache/redis"
	"github.com/jdevra/websage/internal/capability/openai"
	"github.com/jdevra/websage/internal/config"
	"github.com/jdevra/websage/internal/domain"
	"github.com/jdevra/websage/internal/http"
	"github.com/jdevra/websage/internal/http/middleware"
	redisindex "github.com/jdevra/websage/internal/index/redis"
	"github.com/jdevra/websage/internal/observability"
	"github.com/jdevra/websage/internal/retrieval"
	"github.com/jdevra/websage/internal/summarize"
)

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *http.Server) {
		if err := server.Start(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}

	// Redis client shared by the result cache and the similarity index
	if err := container.Provide(func(cfg *config.RedisConfig) *redis.Client {
		return redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}); err != nil {
		log.Fatalf("Failed to provide redis client: %v", err)
	}

	// OpenAI capabilities
	if err := container.Provide(func(cfg *openai.Config) (domain.TextGenerator, error) {
		return openai.NewTextGenerator(*cfg)
	}); err != nil {
		log.Fatalf("Failed to provide text generator: %v", err)
	}
	if err := container.Provide(func(cfg *openai.Config) (domain.EmbeddingGenerator, error) {
		return openai.NewEmbeddingGenerator(*cfg)
	}); err != nil {
		log.Fatalf("Failed to provide embedding generator: %v", err)
	}

	// Storage
	if err := container.Provide(func(
		client *redis.Client,
		embedder domain.EmbeddingGenerator,
		cfg *config.SimilarityConfig,
	) (domain.SimilarityIndex, error) {
		return redisindex.NewIndex(client, embedder, cfg.IndexName)
	}); err != nil {
		log.Fatalf("Failed to provide similarity index: %v", err)
	}
	if err := container.Provide(func(client *redis.Client, cfg *config.CacheConfig) domain.ResultCache {
		return rediscache.NewStore(client, cfg.TTL())
	}); err != nil {
		log.Fatalf("Failed to provide result cache: %v", err)
	}

	// Retrieval: browser strategies first, static HTML as last resort
	if err := container.Provide(func(cfg *config.ScrapeConfig) domain.Scraper {
		navTimeout := time.Duration(cfg.NavigationTimeout) * time.Second
		fetchTimeout := time.Duration(cfg.FetchTimeout) * time.Second

		resolver := retrieval.NewResolver(
			retrieval.NewGoogleStrategy(navTimeout, cfg.UserAgent),
			retrieval.NewDuckDuckGoStrategy(navTimeout, cfg.UserAgent),
			retrieval.NewStaticHTMLStrategy(fetchTimeout, cfg.UserAgent),
		)
		fetcher := retrieval.NewFetcher(fetchTimeout, cfg.UserAgent, cfg.MaxContentLength)

		return retrieval.NewService(resolver, fetcher, cfg.MaxPages, cfg.RequestDelay)
	}); err != nil {
		log.Fatalf("Failed to provide scraper: %v", err)
	}

	// Domain Services
	if err := container.Provide(func(textGen domain.TextGenerator) domain.Summarizer {
		return summarize.NewService(textGen)
	}); err != nil {
		log.Fatalf("Failed to provide summarizer: %v", err)
	}
	if err := container.Provide(domain.NewClassifierService); err != nil {
		log.Fatalf("Failed to provide classifier: %v", err)
	}
	if err := container.Provide(func(
		simCfg *config.SimilarityConfig,
		cacheCfg *config.CacheConfig,
		scrapeCfg *config.ScrapeConfig,
	) domain.AgentParams {
		return domain.AgentParams{
			TopK:           simCfg.TopK,
			Threshold:      simCfg.Threshold,
			CacheTTL:       cacheCfg.TTL(),
			MaxScrapePages: scrapeCfg.MaxPages,
		}
	}); err != nil {
		log.Fatalf("Failed to provide agent params: %v", err)
	}
	if err := container.Provide(domain.NewAgentService); err != nil {
		log.Fatalf("Failed to provide agent service: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(func(agent *domain.AgentService) http.QueryAgent {
		return agent
	}); err != nil {
		log.Fatalf("Failed to provide query agent: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}
