// Package main bookdraft-api 服务入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bookdraft-api/internal/application/book"
	"bookdraft-api/internal/application/export"
	"bookdraft-api/internal/application/planner"
	"bookdraft-api/internal/application/writer"
	"bookdraft-api/internal/config"
	"bookdraft-api/internal/infrastructure/llm"
	"bookdraft-api/internal/infrastructure/persistence/memory"
	"bookdraft-api/internal/infrastructure/scraper"
	"bookdraft-api/internal/interfaces/http/handler"
	"bookdraft-api/internal/interfaces/http/router"
	"bookdraft-api/internal/workflow/prompt"
	"bookdraft-api/pkg/logger"
	"bookdraft-api/pkg/tracer"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting bookdraft-api",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// 组装依赖
	provider, err := llm.NewProvider(&cfg.LLM)
	if err != nil {
		logger.Fatal(ctx, "failed to create text provider", err)
	}

	prompts := prompt.NewRegistry()
	chapterStore := memory.NewChapterStore()
	tocScraper := scraper.New(&cfg.Scraper)

	plannerSvc := planner.NewService(provider, prompts, &cfg.Generation)
	writerSvc := writer.NewService(provider, prompts, &cfg.Generation)
	bookSvc := book.NewService(plannerSvc, writerSvc, chapterStore, tocScraper, provider, &cfg.Generation)
	exportSvc := export.NewService()

	r := router.New(cfg, router.Handlers{
		Health:  handler.NewHealthHandler(cfg.App.Version, provider),
		Book:    handler.NewBookHandler(bookSvc),
		Chapter: handler.NewChapterHandler(chapterStore, bookSvc),
		Preview: handler.NewPreviewHandler(),
		Export:  handler.NewExportHandler(chapterStore, exportSvc),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
