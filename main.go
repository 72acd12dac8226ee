package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/example/pricetag-widget/internal/auth"
	"github.com/example/pricetag-widget/internal/config"
	"github.com/example/pricetag-widget/internal/handlers"
	"github.com/example/pricetag-widget/internal/httpclient"
	"github.com/example/pricetag-widget/internal/logging"
	"github.com/example/pricetag-widget/internal/usecase"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	logger, err := logging.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	guard := initGuard(ctx, cfg.Redis, logger)

	processor := httpclient.NewImageProcessor(
		cfg.Backend.BaseURL,
		cfg.Backend.Endpoint,
		&http.Client{Timeout: cfg.Backend.Timeout},
		logger,
	)
	uc := usecase.NewSubmissionUseCase(processor, guard, logger)

	r := gin.Default()
	r.MaxMultipartMemory = cfg.Upload.MaxSize
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Fatal("invalid trusted proxies", zap.Error(err))
	}
	if len(cfg.CORS.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	var authMiddleware gin.HandlerFunc
	if cfg.Auth.JWTSecret != "" {
		authMiddleware = auth.JWTMiddleware(cfg.Auth.JWTSecret, cfg.Auth.Audience)
	} else {
		logger.Warn("JWT_SECRET not set, submissions are keyed by widget instance only")
	}

	handlers.RegisterRoutes(r, uc, handlers.Options{
		Models:        cfg.Models,
		MaxUploadSize: cfg.Upload.MaxSize,
	}, authMiddleware)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	logger.Info("price tag widget listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("backend", cfg.Backend.BaseURL+cfg.Backend.Endpoint),
	)
	if err := serveHTTPServer(server, cfg.Server.ShutdownTimeout, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// initGuard returns a Redis-backed guard when an address is configured so
// that several widget replicas share one in-flight flag per widget instance.
func initGuard(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) usecase.Guard {
	if cfg.Addr == "" {
		return usecase.NewMemoryGuard()
	}

	redisCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(redisCtx).Err(); err != nil {
		logger.Fatal("redis connection failed", zap.Error(err), zap.String("addr", cfg.Addr))
	}
	return usecase.NewCacheGuard(usecase.NewRedisCache(client), cfg.GuardTTL)
}

func serveHTTPServer(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	return serveHTTPServerWithOptions(server, shutdownTimeout, logger, nil, nil)
}

func serveHTTPServerWithOptions(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger, listener net.Listener, signalCh <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if listener != nil {
			err = server.Serve(listener)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	sigCh := signalCh
	if sigCh == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(ch)
		sigCh = ch
	}

	select {
	case err := <-errCh:
		return err
	case sig, ok := <-sigCh:
		if !ok {
			return <-errCh
		}
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-errCh
	}
}
