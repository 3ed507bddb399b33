package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-catalog-server/catalog"
	"github.com/jrsteele09/go-catalog-server/images/s3host"
	"github.com/jrsteele09/go-catalog-server/internal/config"
	"github.com/jrsteele09/go-catalog-server/internal/logging"
	"github.com/jrsteele09/go-catalog-server/kvcache"
	"github.com/jrsteele09/go-catalog-server/kvcache/memkv"
	"github.com/jrsteele09/go-catalog-server/kvcache/rediskv"
	"github.com/jrsteele09/go-catalog-server/products/pgrepo"
	"github.com/jrsteele09/go-catalog-server/server"
	"github.com/jrsteele09/go-catalog-server/token"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	if c.GetAccessTokenSecret() == "" {
		log.Fatal().Msg("ACCESS_TOKEN_SECRET must be set")
	}

	ctx := context.Background()
	pool, err := pgrepo.Connect(ctx, c.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("connect product store: %w", err)
	}
	defer pool.Close()

	repo := pgrepo.New(pool)
	if err := repo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate product store: %w", err)
	}

	cache, closeCache, healthChecks, err := newCache(c, pool)
	if err != nil {
		return err
	}
	defer closeCache()

	imageHost, err := s3host.New(s3host.Config{
		Bucket:        c.GetImageBucket(),
		Region:        c.GetImageRegion(),
		Endpoint:      c.GetImageEndpoint(),
		AccessKey:     c.GetImageAccessKey(),
		SecretKey:     c.GetImageSecretKey(),
		PublicBaseURL: c.GetImagePublicBaseURL(),
	})
	if err != nil {
		return fmt.Errorf("create image host: %w", err)
	}

	service := catalog.NewService(repo, cache, imageHost)
	verifier := token.NewVerifier(token.NewSharedSecret(c.GetAccessTokenSecret()))

	httpServer := &http.Server{Addr: c.GetPort(), Handler: server.New(c, service, verifier, healthChecks...)}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	if err := waitForStopSignal(serveErr); err != nil {
		return err
	}
	returnError = shutdown(httpServer)
	return returnError
}

// newCache picks redis when REDIS_URL is set and the in-process LRU otherwise
func newCache(c config.Config, pool *pgxpool.Pool) (kvcache.Cache, func(), []server.Option, error) {
	checks := []server.Option{server.WithHealthCheck("store", pool.Ping)}

	if url := c.GetRedisURL(); url != "" {
		cache, err := rediskv.NewWithURL(url)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create redis cache: %w", err)
		}
		log.Info().Msg("featured products cache: redis")
		checks = append(checks, server.WithHealthCheck("cache", cache.Ping))
		return cache, func() { _ = cache.Close() }, checks, nil
	}

	cache, err := memkv.New(c.GetMemoryCacheSize())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create memory cache: %w", err)
	}
	log.Info().Int("size", c.GetMemoryCacheSize()).Msg("featured products cache: in-process")
	return cache, func() {}, checks, nil
}

func listenAndServe(httpServer *http.Server) error {
	log.Info().Str("addr", httpServer.Addr).Msg("Server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal(serveErr <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		return nil
	case err := <-serveErr:
		return err
	}
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
