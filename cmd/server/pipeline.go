package main

import (
	"fmt"

	"github.com/Rrens/estate-chat/internal/agent"
	"github.com/Rrens/estate-chat/internal/config"
	"github.com/Rrens/estate-chat/internal/llm"
	"github.com/Rrens/estate-chat/internal/llm/anthropic"
	"github.com/Rrens/estate-chat/internal/llm/deepseek"
	"github.com/Rrens/estate-chat/internal/llm/gemini"
	"github.com/Rrens/estate-chat/internal/llm/ollama"
	"github.com/Rrens/estate-chat/internal/llm/openai"
	"github.com/Rrens/estate-chat/internal/mcp"
	mcpMySQL "github.com/Rrens/estate-chat/internal/mcp/mysql"
	mcpPostgres "github.com/Rrens/estate-chat/internal/mcp/postgres"
	mcpSQLite "github.com/Rrens/estate-chat/internal/mcp/sqlite"
	"github.com/rs/zerolog/log"
)

const warehouseSource = "estate"

func newProviderRouter(cfg config.LLMConfig) *llm.Router {
	router := llm.NewRouter(cfg.DefaultProvider)

	log.Info().Str("default", cfg.DefaultProvider).Msg("initializing LLM providers")

	if cfg.Ollama.Host != "" {
		router.RegisterProvider(ollama.NewProvider(cfg.Ollama.Host, cfg.Ollama.DefaultModel))
	}
	if cfg.OpenAI.APIKey != "" {
		router.RegisterProvider(openai.NewProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model))
	}
	if cfg.Anthropic.APIKey != "" {
		router.RegisterProvider(anthropic.NewProvider(cfg.Anthropic.APIKey, cfg.Anthropic.Model))
	}
	if cfg.DeepSeek.APIKey != "" {
		router.RegisterProvider(deepseek.NewProvider(cfg.DeepSeek.APIKey, cfg.DeepSeek.Model))
	}
	if cfg.Gemini.APIKey != "" {
		router.RegisterProvider(gemini.NewProvider(cfg.Gemini))
	}

	log.Info().Strs("providers", router.ListProviders()).Msg("LLM providers registered")
	return router
}

func newWarehouse(cfg config.WarehouseConfig) (*mcp.Router, error) {
	router := mcp.NewRouter()
	router.RegisterAdapter("postgres", mcpPostgres.NewAdapter)
	router.RegisterAdapter("mysql", mcpMySQL.NewAdapter)
	router.RegisterAdapter("sqlite", mcpSQLite.NewAdapter)

	err := router.AddSource(warehouseSource, cfg.Type, mcp.ConnectionConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Database: cfg.Database,
		Username: cfg.User,
		Password: cfg.Password,
		SSLMode:  cfg.SSLMode,
		Path:     cfg.Path,
		Tables:   cfg.Tables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure warehouse: %w", err)
	}
	return router, nil
}

func newOrchestrator(cfg *config.Config, providers *llm.Router, cache agent.SchemaCache) (*agent.Orchestrator, error) {
	chatProvider, err := providers.GetProvider(cfg.LLM.DefaultProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat provider: %w", err)
	}

	classifierName := cfg.LLM.RouterProvider
	if classifierName == "" {
		classifierName = cfg.LLM.DefaultProvider
	}
	classifier, err := providers.GetProvider(classifierName)
	if err != nil {
		return nil, fmt.Errorf("failed to get routing provider: %w", err)
	}

	warehouse, err := newWarehouse(cfg.Warehouse)
	if err != nil {
		return nil, err
	}

	sqlAgent := agent.NewSQLAgent(agent.SQLAgentConfig{
		Provider:    chatProvider,
		Temperature: cfg.LLM.Temperature,
		Adapters:    warehouse,
		Source:      warehouseSource,
		Tables:      cfg.Warehouse.Tables,
		Cache:       cache,
		Query: mcp.QueryOptions{
			MaxRows: cfg.Warehouse.MaxRows,
			Timeout: cfg.Warehouse.QueryTimeout,
		},
		Examples: agent.DefaultExamples,
	})

	return agent.New(agent.Config{SummaryWindow: cfg.Chat.SummaryWindow}, agent.Deps{
		Classifier: classifier,
		Capabilities: []agent.Capability{
			sqlAgent.Capability(),
			agent.NewGeneralChat(chatProvider, "", cfg.LLM.Temperature),
		},
		Fallback:   agent.GeneralChat,
		OnShutdown: []func(){warehouse.CloseAll},
	})
}
