package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"crazzzytube/config"
	"crazzzytube/constant"
	"crazzzytube/handler"
	"crazzzytube/middleware"
	"crazzzytube/pkg/rabbitmq"
	"crazzzytube/pkg/storage"
	"crazzzytube/pkg/tracing"
	"crazzzytube/pkg/transcoder"
	"crazzzytube/repository"
	"crazzzytube/service"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	logger := zerolog.Ctx(ctx)

	logger.Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.IsProduction()).Send()
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tp, err := tracing.InitTracer(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		logger.Error().Err(err).Msg("InitTracer")
	} else {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("failed to flush traces")
			}
		}()
	}

	// The ledger is optional; publishing continues without it.
	var jobs repository.JobRepository
	if repo, err := repository.NewRepo(cfg.DB); err != nil {
		logger.Warn().Err(err).Msg("publish job ledger unavailable")
	} else {
		jobs = repo
	}

	var events rabbitmq.EventPublisher = rabbitmq.NopPublisher{}
	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		logger.Error().Err(err).Msg("NewRabbitMQConn, media events disabled")
	} else {
		publisher, err := rabbitmq.NewPublisher(conn, cfg.Queue.ExchangeName, cfg.Queue.Kind)
		if err != nil {
			logger.Error().Err(err).Msg("NewPublisher, media events disabled")
		} else {
			defer publisher.Close()
			events = publisher
		}
	}

	prober := transcoder.NewProber(cfg.Media.FFprobePath, cfg.Media.PlaceholderDuration)
	if _, ok := prober.(transcoder.StaticProber); ok {
		logger.Warn().Float64("seconds", cfg.Media.PlaceholderDuration).Msg("placeholder duration configured, ffprobe disabled")
	}
	ffmpeg, err := transcoder.NewFFmpeg(cfg.Media.FFmpegPath, cfg.Media.SegmentSeconds, cfg.Media.Renditions, prober)
	if err != nil {
		logger.Fatal().Err(err).Msg("NewFFmpeg")
	}

	blobs := storage.NewMinIOStore(cfg.Storage, cfg.MinIOBucket, cfg.Media.PublicURL)

	videos := repository.NewVideoRepository(cfg.Mongo)
	users := repository.NewUserRepository(cfg.Mongo)
	comments := repository.NewCommentRepository(cfg.Mongo)
	likes := repository.NewLikeRepository(cfg.Mongo)
	subscriptions := repository.NewSubscriptionRepository(cfg.Mongo)
	playlists := repository.NewPlaylistRepository(cfg.Mongo)
	tweets := repository.NewTweetRepository(cfg.Mongo)

	services := handler.Services{
		Publish:       service.NewPublishService(videos, jobs, blobs, ffmpeg, events, cfg.Media),
		Videos:        service.NewVideoService(videos, users, comments, likes, playlists, blobs, events),
		Comments:      service.NewCommentService(comments, videos, likes),
		Likes:         service.NewLikeService(likes, videos, comments, tweets),
		Subscriptions: service.NewSubscriptionService(subscriptions, users),
		Playlists:     service.NewPlaylistService(playlists, videos),
		Tweets:        service.NewTweetService(tweets, likes),
		Dashboard:     service.NewDashboardService(repository.NewDashboardRepository(cfg.Mongo), videos),
		Users:         service.NewUserService(users, jobs, blobs),
	}

	if conn != nil {
		cleanupConsumer := rabbitmq.NewConsumer[handler.EventDependencies](conn, cfg.Queue, rabbitmq.Binding{
			Exchange:      cfg.Queue.ExchangeName,
			Queue:         constant.CleanupQueue,
			RoutingKey:    constant.RoutingVideoDeleted,
			DLX:           constant.MediaExchangeDLX,
			DLQ:           constant.CleanupQueueDLQ,
			DLQRoutingKey: constant.RoutingCleanupDLQKey,
		}, cfg.Server.Workers, handler.VideoDeletedHandler)
		deps := handler.EventDependencies{Cleanup: service.NewCleanupService(blobs)}
		go func() {
			if err := cleanupConsumer.Consume(ctx, deps); err != nil {
				logger.Error().Err(err).Msg("cleanup consumer error")
			}
		}()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(*logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	addHealth(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1", middleware.Auth(cfg.Auth.AccessTokenSecret))
	handler.Register(api, services, cfg.Media)

	srv := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("env", cfg.App.Environment).Str("addr", srv.Addr).Msg("start http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	logger.Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.IsDevelop() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Log to standard output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
