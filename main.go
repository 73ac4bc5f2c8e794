package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/Levilaell/snapcast/config"
	"github.com/Levilaell/snapcast/handlers"
	"github.com/Levilaell/snapcast/internal/db"
	"github.com/Levilaell/snapcast/internal/ffmpeg"
	"github.com/Levilaell/snapcast/internal/gemini"
	"github.com/Levilaell/snapcast/internal/pipeline"
	"github.com/Levilaell/snapcast/internal/worker"
	"github.com/Levilaell/snapcast/internal/youtube"
	"github.com/Levilaell/snapcast/internal/ytdlp"
	"github.com/Levilaell/snapcast/middleware"
)

// Adapters from the exec wrappers to the pipeline's tool interfaces.
type segmentDownloader struct{}

func (segmentDownloader) DownloadSegment(ctx context.Context, sourceURL string, startTime, endTime float64, outputPath string) error {
	return ytdlp.DownloadSegment(ctx, sourceURL, startTime, endTime, outputPath)
}

type verticalTranscoder struct{}

func (verticalTranscoder) CreateVerticalClip(ctx context.Context, inputPath, outputPath, srtPath string) error {
	return ffmpeg.CreateVerticalClip(ctx, inputPath, outputPath, srtPath)
}

type mediaProber struct{}

func (mediaProber) GetVideoDuration(ctx context.Context, path string) (time.Duration, error) {
	return ffmpeg.GetVideoDuration(ctx, path)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}
	logger := config.NewLogger(cfg.LogLevel)

	if err := os.MkdirAll(cfg.ClipsDir, 0o755); err != nil {
		logger.WithError(err).Fatal("creating clips directory")
	}

	dbClient, err := cfg.NewPostgrestClient()
	if err != nil {
		logger.WithError(err).Fatal("initializing database client")
	}
	videoStore := db.NewVideoStore(dbClient)
	clipStore := db.NewClipStore(dbClient)

	ytClient := youtube.NewClient(nil)
	geminiClient, err := gemini.NewClient(gemini.Options{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
	})
	if err != nil {
		logger.WithError(err).Fatal("initializing gemini client")
	}

	processor := pipeline.NewProcessor(
		clipStore,
		segmentDownloader{},
		verticalTranscoder{},
		mediaProber{},
		logger,
		pipeline.Options{
			ClipsDir:         cfg.ClipsDir,
			DownloadTimeout:  cfg.DownloadTimeout,
			TranscodeTimeout: cfg.TranscodeTimeout,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := worker.NewDispatcher(cfg.Workers, cfg.JobQueueSize, logger)
	dispatcher.Run(ctx)

	h := handlers.NewApplicationHandler(videoStore, clipStore, dispatcher, processor, ytClient, geminiClient, logger)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fiberErr, ok := err.(*fiber.Error); ok {
				code = fiberErr.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger(logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	apiV1 := app.Group("/api/v1")
	apiV1.Post("/videos", h.CreateVideo)
	apiV1.Get("/videos", h.ListVideos)
	apiV1.Get("/videos/:videoId", h.GetVideo)
	apiV1.Get("/videos/:videoId/moments", h.GetVideoMoments)

	clipRoutes := apiV1.Group("/videos/:videoId/clips")
	clipRoutes.Post("", h.CreateClip)
	clipRoutes.Get("", h.ListClips)
	clipRoutes.Get("/:clipId", h.GetClip)
	clipRoutes.Patch("/:clipId", h.UpdateClip)
	clipRoutes.Delete("/:clipId", h.DeleteClip)
	clipRoutes.Get("/:clipId/download", h.DownloadClip)

	go func() {
		logger.WithField("addr", cfg.ListenAddr).Info("server starting")
		if err := app.Listen(cfg.ListenAddr); err != nil {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.WithError(err).Error("shutting down http server")
	}
	dispatcher.Stop()
	logger.Info("shutdown complete")
}
