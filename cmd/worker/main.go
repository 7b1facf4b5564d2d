package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"samvaad.app/intake/common/id"
	"samvaad.app/intake/common/llm"
	"samvaad.app/intake/common/logger"
	"samvaad.app/intake/common/otel"
	"samvaad.app/intake/core/config"
	"samvaad.app/intake/core/db"
	"samvaad.app/intake/internal/adapter"
	"samvaad.app/intake/internal/queue"
	"samvaad.app/intake/internal/service"
	"samvaad.app/intake/internal/store"
	"samvaad.app/intake/internal/worker"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "intake worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Queue.Group,
		"consumer_name", cfg.Queue.Consumer)

	// Different node ID than the server so snowflakes never collide.
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Queue.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Queue.Stream)

	adapters, err := buildAdapters(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build adapters", "error", err)
		os.Exit(1)
	}

	stores := store.NewStores(database.Pool())

	services := service.NewServices(service.ServicesConfig{
		Stores:   stores,
		Adapters: adapters,
		Workflow: cfg.Workflow,
	})

	consumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:       cfg.Queue.Stream,
		Group:        cfg.Queue.Group,
		Consumer:     cfg.Queue.Consumer,
		DLQStream:    cfg.Queue.DLQStream,
		BatchSize:    1, // One message at a time; senders are serialized anyway
		Block:        5 * time.Second,
		MaxAttempts:  3,
		RequeueDelay: time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	userLock := queue.NewRedisUserLock(redisClient, cfg.Workflow.UserLockTTL)
	sender := worker.NewHTTPReplySender(cfg.Channel)

	w := worker.New(consumer, stores.InboundMessages(), userLock, services.Dispatcher(), sender, worker.Config{
		MaxAttempts: 3,
	})

	reclaimer := worker.NewRedisReclaimer(redisClient, worker.RedisReclaimerConfig{
		Stream:    cfg.Queue.Stream,
		Group:     cfg.Queue.Group,
		Consumer:  cfg.Queue.Consumer + "-reclaimer",
		MinIdle:   5 * time.Minute,
		Interval:  1 * time.Minute,
		BatchSize: 10,
	}, consumer, w.ProcessMessage)

	errCh := make(chan error, 2)
	go func() {
		errCh <- w.Run(ctx)
	}()
	go func() {
		reclaimer.Run(ctx)
		errCh <- nil
	}()

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop reclaimer first (quick), then the worker (may be mid-message).
	reclaimer.Stop()
	w.Stop()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

func buildAdapters(ctx context.Context, cfg config.Config) (service.Adapters, error) {
	extractionClient, err := llm.New(llm.Config{
		APIKey:  cfg.ExtractionLLM.APIKey,
		BaseURL: cfg.ExtractionLLM.BaseURL,
		Model:   cfg.ExtractionLLM.Model,
	})
	if err != nil {
		return service.Adapters{}, fmt.Errorf("extraction llm: %w", err)
	}

	visionClient, err := llm.New(llm.Config{
		APIKey:  cfg.VisionLLM.APIKey,
		BaseURL: cfg.VisionLLM.BaseURL,
		Model:   cfg.VisionLLM.Model,
	})
	if err != nil {
		return service.Adapters{}, fmt.Errorf("vision llm: %w", err)
	}

	scoringClient, err := llm.New(llm.Config{
		APIKey:  cfg.ScoringLLM.APIKey,
		BaseURL: cfg.ScoringLLM.BaseURL,
		Model:   cfg.ScoringLLM.Model,
	})
	if err != nil {
		return service.Adapters{}, fmt.Errorf("scoring llm: %w", err)
	}

	var objectStore adapter.ObjectStore
	switch cfg.ObjectStore.Driver {
	case "s3":
		objectStore, err = adapter.NewS3Store(ctx, cfg.ObjectStore)
		if err != nil {
			return service.Adapters{}, fmt.Errorf("s3 object store: %w", err)
		}
	default:
		objectStore, err = adapter.NewLocalObjectStore(cfg.ObjectStore)
		if err != nil {
			return service.Adapters{}, fmt.Errorf("local object store: %w", err)
		}
	}

	vision := adapter.NewVisionAnalyzer(visionClient)

	return service.Adapters{
		Extractor:        adapter.NewLLMExtractor(extractionClient),
		ProofValidator:   vision,
		DocumentAnalyzer: vision,
		Scorer:           adapter.NewLLMScorer(scoringClient),
		ObjectStore:      objectStore,
	}, nil
}

const banner = `
███████╗ █████╗ ███╗   ███╗██╗   ██╗ █████╗  █████╗ ██████╗
██╔════╝██╔══██╗████╗ ████║██║   ██║██╔══██╗██╔══██╗██╔══██╗
███████╗███████║██╔████╔██║██║   ██║███████║███████║██║  ██║
╚════██║██╔══██║██║╚██╔╝██║╚██╗ ██╔╝██╔══██║██╔══██║██║  ██║
███████║██║  ██║██║ ╚═╝ ██║ ╚████╔╝ ██║  ██║██║  ██║██████╔╝
╚══════╝╚═╝  ╚═╝╚═╝     ╚═╝  ╚═══╝  ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝
`
