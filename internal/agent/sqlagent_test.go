package agent

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/Rrens/estate-chat/internal/llm"
	"github.com/Rrens/estate-chat/internal/mcp"
	mcpsqlite "github.com/Rrens/estate-chat/internal/mcp/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var warehouseTables = []string{"metrics_vals", "geo_location"}

func newWarehouse(t *testing.T) *mcp.Router {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warehouse.db")

	db, err := sql.Open("sqlite", "file:"+path)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE geo_location (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`CREATE TABLE metrics_vals (id INTEGER PRIMARY KEY, url TEXT NOT NULL, geo_location_id INTEGER NOT NULL, metric TEXT NOT NULL, value REAL)`,
		`INSERT INTO geo_location (id, name) VALUES (1, 'Berlin'), (2, 'Prague')`,
		`INSERT INTO metrics_vals (url, geo_location_id, metric, value) VALUES
			('https://listings.example/1', 1, 'monthly_price', 14.0),
			('https://listings.example/2', 1, 'monthly_price', 15.0),
			('https://listings.example/3', 2, 'monthly_price', 18.0)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	router := mcp.NewRouter()
	router.RegisterAdapter("sqlite", mcpsqlite.NewAdapter)
	require.NoError(t, router.AddSource("estate", "sqlite", mcp.ConnectionConfig{Path: path, Tables: warehouseTables}))
	t.Cleanup(router.CloseAll)
	return router
}

// scriptedSQLProvider returns sql for generation calls and records answer prompts.
type scriptedSQLProvider struct {
	llm.MockProvider
	mu            sync.Mutex
	answerPrompts []string
	sqlPrompts    []string
}

func newScriptedSQLProvider(query, answer string) *scriptedSQLProvider {
	p := &scriptedSQLProvider{}
	p.CompleteFunc = func(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if req.System == llm.SQLSystemPrompt {
			p.sqlPrompts = append(p.sqlPrompts, req.Prompt)
			return &llm.Response{Content: "```sql\n" + query + "\n```"}, nil
		}
		p.answerPrompts = append(p.answerPrompts, req.Prompt)
		return &llm.Response{Content: answer}, nil
	}
	return p
}

type memorySchemaCache struct {
	data       map[string]*domain.SchemaInfo
	gets, sets int
}

func (c *memorySchemaCache) Get(ctx context.Context, source string) (*domain.SchemaInfo, error) {
	c.gets++
	return c.data[source], nil
}

func (c *memorySchemaCache) Set(ctx context.Context, source string, schema *domain.SchemaInfo) error {
	c.sets++
	c.data[source] = schema
	return nil
}

func TestSQLAgent_Answer(t *testing.T) {
	provider := newScriptedSQLProvider(
		`SELECT g.name, AVG(m.value) AS avg_price FROM metrics_vals m JOIN geo_location g ON g.id = m.geo_location_id WHERE m.metric = 'monthly_price' AND g.name = 'Berlin' GROUP BY g.name`,
		" Berlin averages 14.5 EUR/m2. ",
	)
	cache := &memorySchemaCache{data: map[string]*domain.SchemaInfo{}}

	agent := NewSQLAgent(SQLAgentConfig{
		Provider: provider,
		Adapters: newWarehouse(t),
		Source:   "estate",
		Tables:   warehouseTables,
		Cache:    cache,
		Query:    mcp.QueryOptions{MaxRows: 50},
	})

	reply, err := agent.Answer(context.Background(), "What is the average monthly price in Berlin?")
	require.NoError(t, err)
	assert.Equal(t, "Berlin averages 14.5 EUR/m2.", reply)

	require.Len(t, provider.sqlPrompts, 1)
	assert.Contains(t, provider.sqlPrompts[0], "CREATE TABLE metrics_vals")
	assert.Contains(t, provider.sqlPrompts[0], "monthly_price")

	require.Len(t, provider.answerPrompts, 1)
	assert.Contains(t, provider.answerPrompts[0], "name | avg_price")
	assert.Contains(t, provider.answerPrompts[0], "Berlin | 14.5")

	// Second question is served from the cached schema.
	_, err = agent.Answer(context.Background(), "And in Berlin again?")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.sets)
}

func TestSQLAgent_RejectsWrites(t *testing.T) {
	provider := newScriptedSQLProvider(`DELETE FROM metrics_vals`, "unused")
	agent := NewSQLAgent(SQLAgentConfig{
		Provider: provider,
		Adapters: newWarehouse(t),
		Source:   "estate",
		Tables:   warehouseTables,
	})

	_, err := agent.Answer(context.Background(), "delete everything")
	require.Error(t, err)
	assert.Empty(t, provider.answerPrompts)
}

func TestSQLAgent_UnknownSource(t *testing.T) {
	agent := NewSQLAgent(SQLAgentConfig{
		Provider: newScriptedSQLProvider("SELECT 1", "unused"),
		Adapters: newWarehouse(t),
		Source:   "missing",
	})

	_, err := agent.Answer(context.Background(), "price?")
	assert.Error(t, err)
}

func TestSQLAgent_FailureFallsBackToChat(t *testing.T) {
	sqlAgent := NewSQLAgent(SQLAgentConfig{
		Provider: newScriptedSQLProvider(`DROP TABLE geo_location`, "unused"),
		Adapters: newWarehouse(t),
		Source:   "estate",
		Tables:   warehouseTables,
	})
	chat := &recorder{name: GeneralChat, reply: "I can't look that up right now."}

	r, err := NewRouter(fixedClassifier(RealEstateDB, nil), "", []Capability{sqlAgent.Capability(), chat.capability()}, GeneralChat)
	require.NoError(t, err)

	d, err := r.Route(context.Background(), "What is the average monthly price in Prague?")
	require.NoError(t, err)
	assert.True(t, d.FellBack)
	assert.Equal(t, "I can't look that up right now.", d.Reply)
}

func TestSQLAgent_ListingURLs(t *testing.T) {
	provider := newScriptedSQLProvider(DefaultExamples[2].SQL, "One listing: https://listings.example/1")
	agent := NewSQLAgent(SQLAgentConfig{
		Provider: provider,
		Adapters: newWarehouse(t),
		Source:   "estate",
		Tables:   warehouseTables,
		Query:    mcp.QueryOptions{MaxRows: 50},
	})

	_, err := agent.Answer(context.Background(), "Show me cheap listings in Berlin")
	require.NoError(t, err)

	require.Len(t, provider.answerPrompts, 1)
	assert.Contains(t, provider.answerPrompts[0], "(no rows)", "no Berlin listing is below 12")

	provider = newScriptedSQLProvider(
		`SELECT m.url FROM metrics_vals m JOIN geo_location g ON g.id = m.geo_location_id WHERE g.name = 'Prague'`,
		"ok",
	)
	agent = NewSQLAgent(SQLAgentConfig{
		Provider: provider,
		Adapters: newWarehouse(t),
		Source:   "estate",
		Tables:   warehouseTables,
		Query:    mcp.QueryOptions{MaxRows: 50},
	})
	_, err = agent.Answer(context.Background(), "Which Prague listings do you have?")
	require.NoError(t, err)
	assert.Contains(t, provider.answerPrompts[0], "https://listings.example/3")
}
