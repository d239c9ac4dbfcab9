package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrcgomez/safetyagent/internal/api/handlers"
	"github.com/mrcgomez/safetyagent/internal/config"
	"github.com/mrcgomez/safetyagent/internal/corpus"
	"github.com/mrcgomez/safetyagent/internal/jobs"
	"github.com/mrcgomez/safetyagent/internal/kb"
	"github.com/mrcgomez/safetyagent/internal/openai"
	"github.com/mrcgomez/safetyagent/internal/server"
	"github.com/mrcgomez/safetyagent/internal/service"
	"github.com/mrcgomez/safetyagent/internal/storage"
	"github.com/mrcgomez/safetyagent/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the safetyagent API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8000", "Port to listen on")

	return cmd
}

// applyPortFlag overrides the configured port only when the flag was set on
// the command line, so an explicit -p wins over SAFETYAGENT_PORT even when it
// matches the flag default.
func applyPortFlag(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetString("port")
		cfg.Port = port
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: cfg.SentrySampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	applyPortFlag(cmd, cfg)

	var archiver handlers.Archiver
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err := storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		archiver = s3Client
	}

	var synth service.Synthesizer = service.NewExtractiveSynthesizer()
	if cfg.HasOpenAI() {
		generator := openai.NewClientWithConfig(openai.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		})
		synth = service.NewGenerativeSynthesizer(generator, synth, cfg.GeneratorTimeout)
		log.Println("generative answers enabled")
	}

	store := kb.NewStore()
	chunkCfg := service.ChunkConfig{
		WindowSize: cfg.ChunkSize,
		Overlap:    cfg.ChunkOverlap,
	}
	knowledgeSvc := service.NewKnowledgeService(store, chunkCfg, synth, cfg.SearchLimit)

	if err := loadBundledManual(ctx, cfg, knowledgeSvc); err != nil {
		return err
	}

	var watchWorker *jobs.Worker
	var watcher *jobs.DirWatcher
	if cfg.HasWatchDir() {
		processor := jobs.NewWatchProcessor(cfg.WatchDir, knowledgeSvc)
		watchWorker = jobs.NewWorker(processor, cfg.WatchInterval)
		go watchWorker.Start(ctx)

		watcher, err = jobs.NewDirWatcher(cfg.WatchDir, processor)
		if err != nil {
			return fmt.Errorf("failed to watch directory: %w", err)
		}
		go watcher.Start(ctx)
		log.Printf("watching directory '%s'", cfg.WatchDir)
	}

	routerCfg := server.RouterConfig{
		ChatHandler:     handlers.NewChatHandler(knowledgeSvc),
		DocumentHandler: handlers.NewDocumentHandlerWithUploadDir(knowledgeSvc, archiver, cfg.UploadDir),
		SearchHandler:   handlers.NewSearchHandler(knowledgeSvc),
		StatsHandler:    handlers.NewStatsHandler(knowledgeSvc),
		MaxBodyBytes:    cfg.MaxUploadBytes,
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if watcher != nil {
		watcher.Stop()
	}
	if watchWorker != nil {
		watchWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// loadBundledManual seeds the knowledge base from a prechunked archive when
// one is configured. A missing archive file is not fatal; the server starts
// with an empty index.
func loadBundledManual(ctx context.Context, cfg *config.Config, svc *service.KnowledgeService) error {
	manual, err := corpus.Load(corpus.Options{
		Compressed: cfg.ManualCompressed,
		JSON:       cfg.ManualJSON,
		Path:       cfg.ManualPath,
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("no bundled manual at '%s', starting with empty index", cfg.ManualPath)
			return nil
		}
		return fmt.Errorf("failed to load bundled manual: %w", err)
	}
	if manual == nil {
		return nil
	}

	if err := svc.IngestPrechunked(ctx, manual.Document, manual.Chunks, manual.FullText); err != nil {
		return fmt.Errorf("failed to index bundled manual: %w", err)
	}
	log.Printf("loaded bundled manual from %s (%d chunks)", manual.Source, len(manual.Chunks))
	return nil
}
