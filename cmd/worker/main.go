package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipforge/video-export-backend/internal/config"
	"github.com/clipforge/video-export-backend/internal/exports/renderer"
	exportRepository "github.com/clipforge/video-export-backend/internal/exports/repository"
	videoRepository "github.com/clipforge/video-export-backend/internal/videos/repository"
	"github.com/clipforge/video-export-backend/internal/worker"
	"github.com/clipforge/video-export-backend/pkg/db/aws"
	"github.com/clipforge/video-export-backend/pkg/db/postgres"
	clientRedis "github.com/clipforge/video-export-backend/pkg/db/redis"
	"github.com/clipforge/video-export-backend/pkg/logger"
)

const defaultPollInterval = 30 * time.Second

func main() {
	configFile := "config.yml"
	cfgFile, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}
	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	psqlDB, err := postgres.NewPsqlDB(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to db: %s", err)
	}
	appLogger.Infof("db connected, status: %#v", psqlDB.Stats())
	defer psqlDB.Close()

	redisClient, err := clientRedis.NewRedisClient(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to redis: %s", err)
	}
	appLogger.Infof("redis connected")
	defer redisClient.Close()

	s3Client, presignClient, err := aws.NewAWSClient(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		appLogger.Fatalf("could not connect to s3: %s", err)
	}

	eRepo := exportRepository.NewExportRepo(psqlDB)
	vRepo := videoRepository.NewVideoRepo(psqlDB)
	eRedisRepo := exportRepository.NewExportRedisRepo(
		redisClient,
		cfg.Redis.JobCachePrefix,
		time.Duration(cfg.Redis.JobCacheExpire)*time.Second,
	)
	eAWSRepo := exportRepository.NewAwsRepository(s3Client, presignClient)

	ffmpegRenderer := renderer.NewFFmpegRenderer(cfg, eAWSRepo, appLogger)
	processor := worker.NewProcessor(eRepo, vRepo, eRedisRepo, ffmpegRenderer, appLogger)
	runner := worker.NewRunner(cfg, eRepo, processor, appLogger)

	pollInterval := defaultPollInterval
	if cfg.Worker.PollIntervalSec > 0 {
		pollInterval = time.Duration(cfg.Worker.PollIntervalSec) * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Infof("shutting down worker")
		cancel()
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := runner.ProcessPending(ctx, cfg.Export.MaxBatchSize)
			if err != nil {
				appLogger.Errorf("batch failed: %v", err)
				continue
			}
			if result.Processed > 0 {
				appLogger.Infof("batch processed=%d succeeded=%d failed=%d", result.Processed, result.Succeeded, result.Failed)
			}
		}
	}
}
