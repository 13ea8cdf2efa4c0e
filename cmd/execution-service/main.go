package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang-stock-signal/internal/executor/config"
	"golang-stock-signal/internal/executor/delivery/consumer"
	delivery "golang-stock-signal/internal/executor/delivery/http"
	"golang-stock-signal/internal/executor/delivery/scheduler"
	_ "golang-stock-signal/internal/executor/docs"
	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/internal/executor/service"
	"golang-stock-signal/pkg/common"
	"golang-stock-signal/pkg/logger"
	"golang-stock-signal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var (
	configPath string
	runSymbols []string
	runRefresh bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the signal service: stream consumer, run schedule and HTTP API",
	Run:   runServe,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs the pipeline once and prints the report as JSON",
	Run:   runOnce,
}

func loadConfigAndLogger() (*config.Config, *logger.Logger) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return cfg, appLogger
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, appLogger := loadConfigAndLogger()
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Signal Service", logger.Field("name", cfg.App.Name))

	a, err := buildApp(ctx, cfg, appLogger, true)
	if err != nil {
		appLogger.Fatal("Failed to initialize service", logger.ErrorField(err))
	}
	defer a.Close()

	// MKSTREAM creates the stream if it doesn't exist
	if err := a.redisClient.EnsureGroup(ctx, common.RedisStreamSignalRun, common.RedisStreamGroup); err != nil {
		appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
	}

	signalRunSvc := service.NewSignalRunService(cfg, a.redisClient.Client, a.pipeline, a.notifier, appLogger)

	redisConsumer := consumer.NewRedisConsumer(cfg, signalRunSvc, appLogger)
	redisConsumer.Start(ctx)

	var runScheduler *scheduler.RunScheduler
	if cfg.Pipeline.Schedule != "" {
		runScheduler, err = scheduler.NewRunScheduler(cfg.Pipeline.Schedule, signalRunSvc, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize run scheduler", logger.ErrorField(err))
		}
		runScheduler.Start()
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	apiV1 := e.Group("/api/v1")
	delivery.NewRunHandler(signalRunSvc, a.runRepo, appLogger).RegisterRoutes(apiV1.Group("/runs"))
	delivery.NewRecommendationHandler(a.recommendations, appLogger).RegisterRoutes(apiV1.Group("/recommendations"))
	delivery.NewSignalHandler(a.pipeline, appLogger).RegisterRoutes(apiV1.Group("/signals"))
	delivery.NewCrossHandler(a.pipeline, appLogger).RegisterRoutes(apiV1.Group("/crosses"))

	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	appLogger.Info("Signal service started. Waiting for runs...")
	<-ctx.Done()

	appLogger.Info("Shutting down signal service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}
	if runScheduler != nil {
		runScheduler.Stop()
	}
	redisConsumer.Stop()
	appLogger.Info("Signal service stopped.")
}

func runOnce(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, appLogger := loadConfigAndLogger()
	defer func() { _ = appLogger.Sync() }()

	a, err := buildApp(ctx, cfg, appLogger, false)
	if err != nil {
		appLogger.Fatal("Failed to initialize service", logger.ErrorField(err))
	}
	defer a.Close()

	req := dto.RunRequest{Source: service.TriggerManual, Refresh: runRefresh}
	for _, s := range runSymbols {
		if s = strings.TrimSpace(s); s != "" {
			req.Symbols = append(req.Symbols, s)
		}
	}
	if len(req.Symbols) == 0 {
		req.Source = service.TriggerScheduled
	}

	report, err := a.pipeline.Run(ctx, req)
	if report != nil {
		out, mErr := json.MarshalIndent(report, "", "  ")
		if mErr != nil {
			appLogger.Fatal("Failed to encode report", logger.ErrorField(mErr))
		}
		fmt.Println(string(out))
	}
	if err != nil {
		appLogger.Error("Pipeline run failed", logger.ErrorField(err))
		os.Exit(1)
	}
}

// @title Stock Signal API
// @version 1.0
// @description Technical and fundamental signal scoring for Vietnamese equities.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "execution-service"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-executor.yaml", "Path to the configuration file")

	runCmd.Flags().StringSliceVarP(&runSymbols, "symbols", "s", nil, "Comma separated symbols, empty for the watch-list")
	runCmd.Flags().BoolVar(&runRefresh, "refresh", false, "Drop cached indicator snapshots before evaluating")

	rootCmd.AddCommand(serveCmd, runCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing execution-service CLI: %s\n", err)
		os.Exit(1)
	}
}
