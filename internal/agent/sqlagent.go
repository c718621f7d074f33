package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/Rrens/estate-chat/internal/llm"
	"github.com/Rrens/estate-chat/internal/mcp"
	"github.com/rs/zerolog/log"
)

// SchemaCache stores warehouse DDL between turns.
type SchemaCache interface {
	Get(ctx context.Context, source string) (*domain.SchemaInfo, error)
	Set(ctx context.Context, source string, schema *domain.SchemaInfo) error
}

// AdapterSource hands out warehouse adapters by source name.
type AdapterSource interface {
	GetAdapter(ctx context.Context, name string) (mcp.Adapter, error)
}

// SQLAgentConfig configures the structured-data capability.
type SQLAgentConfig struct {
	Provider    llm.Provider
	Model       string
	Temperature float64
	Adapters    AdapterSource
	Source      string
	Tables      []string
	Cache       SchemaCache // optional
	Query       mcp.QueryOptions
	Examples    []llm.Example
}

// DefaultExamples are few-shot pairs over the metrics_vals and geo_location tables.
var DefaultExamples = []llm.Example{
	{
		Question: "What is the average monthly price in Prague?",
		SQL: "SELECT g.name, AVG(m.value) AS avg_monthly_price FROM metrics_vals m " +
			"JOIN geo_location g ON g.id = m.geo_location_id " +
			"WHERE m.metric = 'monthly_price' AND g.name = 'Prague' GROUP BY g.name",
	},
	{
		Question: "Which five regions have the largest usable area?",
		SQL: "SELECT g.name, MAX(m.value) AS usable_area_m2 FROM metrics_vals m " +
			"JOIN geo_location g ON g.id = m.geo_location_id " +
			"WHERE m.metric = 'usable_area_m2' GROUP BY g.name ORDER BY usable_area_m2 DESC LIMIT 5",
	},
	{
		Question: "Show me listings in Berlin cheaper than 12 per month.",
		SQL: "SELECT m.url, m.value AS monthly_price FROM metrics_vals m " +
			"JOIN geo_location g ON g.id = m.geo_location_id " +
			"WHERE m.metric = 'monthly_price' AND g.name = 'Berlin' AND m.value < 12 ORDER BY m.value",
	},
}

// SQLAgent answers metric questions by writing, running and explaining one
// read-only query against the warehouse.
type SQLAgent struct {
	cfg SQLAgentConfig
}

// NewSQLAgent creates the structured-data capability backend.
func NewSQLAgent(cfg SQLAgentConfig) *SQLAgent {
	return &SQLAgent{cfg: cfg}
}

// Capability exposes the agent as the real estate database entry.
func (a *SQLAgent) Capability() Capability {
	return Capability{
		Name:        RealEstateDB,
		Description: RealEstateDBDescription,
		Invoke:      a.Answer,
	}
}

// Answer runs the question through schema lookup, SQL generation, execution
// and answer synthesis.
func (a *SQLAgent) Answer(ctx context.Context, question string) (string, error) {
	adapter, err := a.cfg.Adapters.GetAdapter(ctx, a.cfg.Source)
	if err != nil {
		return "", fmt.Errorf("failed to get warehouse adapter: %w", err)
	}

	schema, err := a.schema(ctx, adapter)
	if err != nil {
		return "", err
	}

	gen, err := a.cfg.Provider.Complete(ctx, llm.Request{
		System: llm.SQLSystemPrompt,
		Prompt: llm.BuildSQLPrompt(llm.SQLPromptRequest{
			Question:     question,
			SchemaDDL:    schema.DDL,
			SQLDialect:   adapter.SQLDialect(),
			DatabaseType: adapter.DatabaseType(),
			Metrics:      domain.KnownMetrics,
			Examples:     a.cfg.Examples,
		}),
		Temperature: 0,
	}, a.cfg.Model)
	if err != nil {
		return "", fmt.Errorf("failed to generate SQL: %w", err)
	}

	sql := llm.ExtractSQL(gen.Content)
	result, err := adapter.ExecuteQuery(ctx, sql, a.cfg.Query)
	if err != nil {
		return "", fmt.Errorf("failed to execute query: %w", err)
	}

	log.Debug().
		Str("capability", RealEstateDB).
		Str("sql", sql).
		Int("rows", result.RowCount).
		Msg("warehouse query executed")

	answer, err := a.cfg.Provider.Complete(ctx, llm.Request{
		Prompt:      llm.BuildAnswerPrompt(question, sql, mcp.FormatResult(result)),
		Temperature: a.cfg.Temperature,
	}, a.cfg.Model)
	if err != nil {
		return "", fmt.Errorf("failed to phrase answer: %w", err)
	}
	return strings.TrimSpace(answer.Content), nil
}

func (a *SQLAgent) schema(ctx context.Context, adapter mcp.Adapter) (*domain.SchemaInfo, error) {
	if a.cfg.Cache != nil {
		cached, err := a.cfg.Cache.Get(ctx, a.cfg.Source)
		if err != nil {
			log.Warn().Err(err).Str("source", a.cfg.Source).Msg("schema cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	ddl, err := adapter.GetSchemaDDL(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read warehouse schema: %w", err)
	}
	if strings.TrimSpace(ddl) == "" {
		return nil, fmt.Errorf("warehouse has none of the tables %v", a.cfg.Tables)
	}

	schema := &domain.SchemaInfo{
		DatabaseType: adapter.DatabaseType(),
		Tables:       a.cfg.Tables,
		DDL:          ddl,
		CachedAt:     time.Now(),
	}
	if a.cfg.Cache != nil {
		if err := a.cfg.Cache.Set(ctx, a.cfg.Source, schema); err != nil {
			log.Warn().Err(err).Str("source", a.cfg.Source).Msg("schema cache write failed")
		}
	}
	return schema, nil
}
