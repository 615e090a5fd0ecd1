package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/embedding"
	openaiembed "docqa/internal/embedding/openai"
	"docqa/internal/engine"
	"docqa/internal/ingest"
	"docqa/internal/language"
	"docqa/internal/server"
	"docqa/internal/tokenizer"
	"docqa/internal/vectorindex"
	"docqa/internal/vectorindex/flat"
	"docqa/internal/vectorindex/qdrant"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	codec, err := tokenizer.NewCL100K()
	if err != nil {
		return fmt.Errorf("init tokenizer: %w", err)
	}
	tc, err := chunker.NewTokenChunker(codec, cfg.Chunker.ChunkSize, cfg.ChunkOverlap())
	if err != nil {
		return fmt.Errorf("init chunker: %w", err)
	}
	detector := language.NewDetector()

	var embedder embedding.Embedder
	embedder, err = openaiembed.NewClient(openaiembed.Config{
		BaseURL:   cfg.Embedder.BaseURL,
		APIKeyEnv: cfg.Embedder.APIKeyEnv,
		Model:     cfg.Embedder.Model,
		Dimension: cfg.Embedder.Dimension,
		BatchSize: cfg.Embedder.BatchSize,
		Timeout:   cfg.EmbedTimeout(),
	})
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}

	var index vectorindex.Index
	switch cfg.Index.Backend {
	case "flat":
		index, err = flat.New(cfg.Index.Flat.Dir)
		if err != nil {
			return fmt.Errorf("open flat index: %w", err)
		}
	case "qdrant":
		qidx, err := qdrant.New(qdrant.Config{
			Addr:       cfg.Index.Qdrant.Addr,
			Collection: cfg.Index.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Index.Qdrant.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return fmt.Errorf("connect qdrant: %w", err)
		}
		defer qidx.Close()
		index = qidx
	default:
		return fmt.Errorf("unknown index backend %q", cfg.Index.Backend)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := index.Init(ctx, cfg.Embedder.Dimension); err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	logger.Info("index ready",
		zap.String("backend", cfg.Index.Backend),
		zap.Int("dimension", cfg.Embedder.Dimension))

	eng := engine.New(embedder, index, logger)
	pipeline := ingest.NewPipeline(tc, detector, embedder, index, logger)
	srv := server.New(eng, pipeline, index, logger)

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router(),
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
