package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"sjsage522/discountcrawler/config"
	"sjsage522/discountcrawler/internal/browser"
	"sjsage522/discountcrawler/internal/crawler"
	"sjsage522/discountcrawler/logger"
	"sjsage522/discountcrawler/services/cache"
	"sjsage522/discountcrawler/services/publisher"
	"sjsage522/discountcrawler/services/storage"
	"sjsage522/discountcrawler/services/worker"

	"github.com/joho/godotenv"
)

// defaultLocation is scraped when no location argument is given
const defaultLocation = "london"

// shutdownGrace bounds how long a cancelled run may take to release its browser
const shutdownGrace = 30 * time.Second

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	location := locationFromArgs(os.Args[1:])

	log.Info().
		Str("environment", cfg.Environment).
		Str("driver", cfg.BrowserDriver).
		Str("location", location).
		Dur("scrape_interval", cfg.ScrapeInterval).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	w := newWorker(ctx, cfg, services, location, nil)

	workerDone := make(chan error, 1)
	go func() {
		workerDone <- w.Start()
	}()

	// Wait for shutdown signal or worker completion
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		select {
		case <-workerDone:
		case <-time.After(shutdownGrace):
			log.Warn().Msg("Worker did not stop in time")
		}
	case err := <-workerDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Worker exited with error")
			services.Cleanup()
			os.Exit(1)
		}
		log.Info().Msg("Worker exited normally")
	}

	log.Info().Msg("Shutting down gracefully...")
}

// locationFromArgs joins the positional arguments so that an unquoted
// cape town names one location
func locationFromArgs(args []string) string {
	location := strings.TrimSpace(strings.Join(args, " "))
	if location == "" {
		return defaultLocation
	}
	return location
}

// Services holds all the initialized services
type Services struct {
	Cache      cache.CacheService
	Publisher  publisher.Publisher
	Sinks      []storage.Sink
	Launcher   browser.Launcher
	Classifier *crawler.Classifier
}

// Cleanup closes every service; it is safe to call more than once
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			logger.LogError("publisher", err, "Failed to close publisher")
		}
		s.Publisher = nil
	}
	for _, sink := range s.Sinks {
		if err := sink.Close(); err != nil {
			logger.LogError("storage", err, "Failed to close sink")
		}
	}
	s.Sinks = nil
}

// initializeServices initializes all required services. Optional backends
// are only connected when configured.
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	classifier, err := crawler.LoadClassifier(cfg.CategoryRulesFile)
	if err != nil {
		return nil, err
	}
	services.Classifier = classifier

	launcher, err := browser.NewLauncher(cfg.BrowserDriver, browser.Options{
		Headless:    cfg.BrowserHeadless,
		ProxyServer: cfg.BrowserProxy,
	})
	if err != nil {
		return nil, err
	}
	services.Launcher = launcher

	services.Cache = initializeCache(cfg)

	services.Sinks = append(services.Sinks, storage.NewFileSink(cfg.OutputPath))
	logger.Info("Writing records to %s", cfg.OutputPath)

	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgresSink(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		services.Sinks = append(services.Sinks, pg)
		logger.Info("Connected to Postgres")
	}

	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)
		if err := redisPublisher.Ping(); err != nil {
			redisPublisher.Close()
			services.Cleanup()
			return nil, err
		}
		services.Publisher = redisPublisher

		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return services, nil
}

// initializeCache prefers memcached and falls back to a process-local cache
func initializeCache(cfg *config.Config) cache.CacheService {
	if cfg.MemcacheAddr == "" {
		return cache.NewMemoryService()
	}

	mc := cache.NewMemcacheService(cfg.MemcacheAddr, time.Second)
	if err := mc.Ping(); err != nil {
		logger.ForComponent("cache").Warn().Err(err).Msg("Memcache unavailable, cooldowns are process-local")
		return cache.NewMemoryService()
	}

	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	return mc
}

// newWorker wires the crawlers of every storefront into a worker for location.
// A nil wait keeps the scrapers' jittered delays.
func newWorker(ctx context.Context, cfg *config.Config, services *Services, location string, wait crawler.WaitPolicy) *worker.Worker {
	crawlers := crawler.CreateCrawlers(cfg, services.Launcher, services.Classifier, services.Cache)
	if wait != nil {
		for _, c := range crawlers {
			if s, ok := c.(*crawler.SiteScraper); ok {
				s.Wait = wait
			}
		}
	}
	registry := crawler.NewRegistry(crawlers...)

	logger.Default.Info().
		Int("crawler_count", len(crawlers)).
		Strs("locations", registry.Locations()).
		Msg("Created crawlers")

	return worker.NewWorker(ctx, registry, location, services.Sinks, services.Publisher, cfg.ScrapeInterval)
}
