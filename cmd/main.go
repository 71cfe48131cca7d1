package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mcpnvidia/api"
	"mcpnvidia/config"
	"mcpnvidia/crawler"
	"mcpnvidia/engine"
	"mcpnvidia/mcp"
	"mcpnvidia/metrics"
	"mcpnvidia/pkg/logger"
	"mcpnvidia/pkg/throttle"
	"mcpnvidia/search"
)

var version = "dev"

func main() {
	// =========
	// Config
	// =========
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// =========
	// Logging
	// =========
	// stdout carries the protocol stream, so logs go to stderr
	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zlog.Sync()

	if cfg.Search.APIKey == "" {
		zlog.Warn("SERPAPI_API_KEY is not set, backend searches will fail")
	}

	// =========
	// Domains
	// =========
	validator, err := crawler.NewDomainValidator(cfg.AllowedRoots)
	if err != nil {
		zlog.Fatal("Invalid allowed roots", zap.Error(err))
	}

	// =========
	// Search backend
	// =========
	limiter := throttle.NewLimiter(cfg.Search.RateInterval)
	backend := search.NewSerpApiSearchEngine(search.SerpApiConfig{
		APIKey:  cfg.Search.APIKey,
		BaseURL: cfg.Search.BaseURL,
		Engine:  cfg.Search.Engine,
		Timeout: cfg.Search.RequestTimeout,
	}, limiter, zlog)

	// =========
	// Fetcher
	// =========
	fetcher, err := crawler.NewFetcher(&crawler.FetcherConfig{
		Timeout:              cfg.Fetch.Timeout,
		MaxBodyBytes:         cfg.Fetch.MaxBodyBytes,
		MaxRedirects:         cfg.Fetch.MaxRedirects,
		UserAgent:            cfg.Fetch.UserAgent,
		ProxyURL:             cfg.Fetch.ProxyURL,
		BlockPrivateNetworks: cfg.Fetch.BlockPrivateNetworks,
	}, validator, zlog)
	if err != nil {
		zlog.Fatal("Failed to create fetcher", zap.Error(err))
	}

	// =========
	// Engine
	// =========
	m := metrics.New()
	eng, err := engine.New(engine.Config{
		Backend:                 backend,
		Fetcher:                 fetcher,
		Validator:               validator,
		Gate:                    throttle.NewGate(cfg.Limits.Concurrency),
		Metrics:                 m,
		Logger:                  zlog,
		Domains:                 cfg.Domains,
		Deadline:                cfg.Limits.Deadline,
		DefaultResultsPerDomain: cfg.Limits.DefaultResultsPerDomain,
		MaxResultsPerDomain:     cfg.Limits.MaxResultsPerDomain,
	})
	if err != nil {
		zlog.Fatal("Failed to create engine", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========
	// HTTP
	// =========
	var httpServer *api.Server
	if cfg.HTTPAddr != "" {
		httpServer = api.NewServer(cfg.HTTPAddr, eng, m, zlog)
		go func() {
			if err := httpServer.Start(); err != nil {
				zlog.Error("HTTP server error", zap.Error(err))
				stop()
			}
		}()
	}

	// =========
	// MCP
	// =========
	zlog.Info("Serving MCP on stdio",
		zap.String("version", version),
		zap.Strings("domains", eng.Domains()))
	server := mcp.NewServer(eng, version, zlog)
	if err := server.Serve(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		zlog.Error("MCP server stopped", zap.Error(err))
	}

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			zlog.Error("Error during shutdown", zap.Error(err))
		}
	}
	zlog.Info("Server stopped")
}
