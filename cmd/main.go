package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mikele-Kochas/SmartNotebook/internal/config"
	"github.com/Mikele-Kochas/SmartNotebook/internal/handler"
	"github.com/Mikele-Kochas/SmartNotebook/internal/mcpserver"
	"github.com/Mikele-Kochas/SmartNotebook/internal/model"
	"github.com/Mikele-Kochas/SmartNotebook/internal/prompt"
	"github.com/Mikele-Kochas/SmartNotebook/internal/service"
	"github.com/Mikele-Kochas/SmartNotebook/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "path to the config file")
	flag.Parse()

	// load config
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// init logger
	if err := logger.InitWithOptions(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	// init services
	chatModel, err := model.NewChatModel(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to create chat model: %v", err)
	}
	generator, err := service.NewChainGenerator(ctx, chatModel, cfg.Model.Timeout)
	if err != nil {
		logger.Fatalf("Failed to build generator: %v", err)
	}
	builder, err := prompt.New(cfg.Prompt.Language)
	if err != nil {
		logger.Fatalf("Failed to load prompt templates: %v", err)
	}
	noteService := service.NewNoteService(builder, generator)

	// init handlers
	noteHandler := handler.NewNoteHandler(noteService)

	var mcpHandler http.Handler
	if cfg.MCP.Enabled {
		mcpHandler = mcpserver.NewHTTPHandler(mcpserver.New(noteService), cfg.MCP.Path)
	}

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(cfg, noteHandler, mcpHandler)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Infof("Server listening on port %d (provider: %s, prompt language: %s)",
			cfg.Server.Port, cfg.Model.Provider, cfg.Prompt.Language)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// wait for a signal to shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}
