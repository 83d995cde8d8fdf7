package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"coursework_service/internal/blob"
	"coursework_service/internal/cache"
	"coursework_service/internal/config"
	"coursework_service/internal/data"
	"coursework_service/internal/handler"
	"coursework_service/internal/middleware"
	"coursework_service/internal/service"
	"coursework_service/pkg/db"
	"coursework_service/pkg/kafka"
	"coursework_service/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	logger := logging.New(zapLogger)

	cfg, err := config.New()
	if err != nil {
		logger.Fatal(ctx, "cannot create config", zap.Error(err))
	}

	pool, err := db.NewPostgres(ctx, cfg.DatabaseURL, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal(ctx, "cannot connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	s3Client, err := blob.NewClient(ctx, blob.Config{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
	})
	if err != nil {
		logger.Fatal(ctx, "cannot create s3 client", zap.Error(err))
	}
	blobStore, err := blob.NewStore(ctx, s3Client, cfg.S3Bucket)
	if err != nil {
		logger.Fatal(ctx, "cannot create blob store", zap.Error(err))
	}

	producer := kafka.NewProducer(kafka.Config{
		Brokers: strings.Split(cfg.KafkaBrokers, ","),
		Topic:   cfg.KafkaTopic,
	})
	defer producer.Close()

	redisConn := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	redisCache := cache.NewRedisCache(redisConn)

	courseRepo := data.NewCourseRepository(pool)
	assignmentRepo := data.NewAssignmentRepository(pool)
	submissionRepo := data.NewSubmissionRepository(pool)

	courseService := service.NewCourseService(courseRepo, blobStore)
	assignmentService := service.NewAssignmentService(courseRepo, assignmentRepo, submissionRepo, blobStore, producer)
	submissionService := service.NewSubmissionService(courseRepo, assignmentRepo, submissionRepo, blobStore, producer)

	r := handler.NewRouter(
		handler.NewCourseHandler(courseService, redisCache),
		handler.NewAssignmentHandler(assignmentService, cfg.MaxUploadBytes),
		handler.NewSubmissionHandler(submissionService, cfg.MaxUploadBytes),
		middleware.NewLoggingMiddleware(logger),
		middleware.NewAuthMiddleware(cfg.JWTSecret),
	)

	port := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info(ctx, "Starting server", zap.String("port", port))

	srv := &http.Server{
		Addr:    port,
		Handler: http.MaxBytesHandler(r, cfg.MaxUploadBytes),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "cannot start http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal(ctx, "server forced to shutdown", zap.Error(err))
	}
	logger.Info(ctx, "Server stopped")
}
