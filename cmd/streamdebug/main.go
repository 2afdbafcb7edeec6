package main

import (
	"context"
	"os"

	"github.com/google/uuid"

	"github.com/PetitePluie-255/Antigravity-Manager/internal/config"
	"github.com/PetitePluie-255/Antigravity-Manager/internal/llm"
	"github.com/PetitePluie-255/Antigravity-Manager/internal/logger"
	"github.com/PetitePluie-255/Antigravity-Manager/internal/probe"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	sessionID := uuid.NewString()
	logger.L.Info("starting stream capture",
		"session", sessionID,
		"base_url", cfg.LLM.BaseURL,
		"model", cfg.LLM.Model,
		"blocking", cfg.Probe.Blocking,
	)

	p := probe.New(*cfg, llm.NewClient(cfg.LLM), os.Stdout, sessionID)
	if err := p.Run(context.Background()); err != nil {
		logger.L.Error("probe failed", "error", err)
		os.Exit(1)
	}
}
