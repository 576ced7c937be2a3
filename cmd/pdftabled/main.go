package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/iklobato/pdftable/config"
	"github.com/iklobato/pdftable/ingest"
	"github.com/iklobato/pdftable/logging"
	"github.com/iklobato/pdftable/pipeline"
	"github.com/iklobato/pdftable/server"
	"github.com/iklobato/pdftable/telemetry"
)

const component = "pdftabled"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewLogger(logging.Config{
		Component: component,
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if cfg.Telemetry {
		shutdown, err := telemetry.Setup(ctx, component)
		if err != nil {
			logger.Fatal("init telemetry", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn("telemetry shutdown failed", zap.Error(err))
			}
		}()
	}

	store, err := ingest.New(cfg.UploadDir, ingest.WithMaxBytes(cfg.MaxUploadBytes))
	if err != nil {
		logger.Fatal("init upload store", zap.Error(err))
	}

	engines, err := cfg.Engine()
	if err != nil {
		logger.Fatal("init engines", zap.Error(err))
	}

	service := pipeline.New(store, engines,
		pipeline.WithLogger(logger),
		pipeline.WithDebug(cfg.Debug),
		pipeline.WithExtractTimeout(cfg.ExtractTimeout),
	)

	router := chi.NewRouter()

	router.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		server.Deadline(cfg.RequestTimeout),
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"*"},
			MaxAge:         300,
		}),
	)

	router.Use(logging.RequestLogger(logger))

	server.New(service).Attach(router)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(router, component),
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		logger.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("upload_dir", store.Dir()),
			zap.Stringers("formats", engines.Formats()),
			zap.Bool("debug", cfg.Debug),
		)

		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
