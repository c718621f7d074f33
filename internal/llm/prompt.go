package llm

import (
	"fmt"
	"strings"
)

// SQLPromptRequest carries what the model needs to write one warehouse query.
type SQLPromptRequest struct {
	Question     string
	SchemaDDL    string
	SQLDialect   string
	DatabaseType string
	Metrics      []string
	Examples     []Example
}

// Example represents a question-SQL pair for few-shot learning
type Example struct {
	Question string
	SQL      string
}

// ToolOption is one capability offered to the routing call.
type ToolOption struct {
	Name        string
	Description string
}

// SQLSystemPrompt is sent as the system message for SQL generation.
const SQLSystemPrompt = "You are an expert SQL query generator. Respond with ONLY the SQL query, no explanations or markdown formatting."

// RoutingSystemPrompt steers the classification call away from using the
// database for small talk.
const RoutingSystemPrompt = `You are a smart assistant with access to tools.
- If the user asks about real estate metrics (like monthly price, area, region), choose the real estate database tool.
- If the user is greeting you, making small talk, or asking a personal/non-technical question, choose general chat.
NEVER choose the real estate database tool for small talk or greetings.`

// BuildSQLPrompt creates a prompt for SQL generation
func BuildSQLPrompt(req SQLPromptRequest) string {
	var examples strings.Builder
	if len(req.Examples) > 0 {
		examples.WriteString("\n\nExamples:\n")
		for _, ex := range req.Examples {
			fmt.Fprintf(&examples, "Question: %s\nSQL: %s\n\n", ex.Question, ex.SQL)
		}
	}

	metrics := ""
	if len(req.Metrics) > 0 {
		metrics = fmt.Sprintf("\nKnown metric names in the metric column: %s\n", strings.Join(req.Metrics, ", "))
	}

	return fmt.Sprintf(`You are an expert SQL query generator for %s databases.

%s

Rules:
1. Generate ONLY the SQL query, no explanations or markdown
2. Use only SELECT statements (no INSERT, UPDATE, DELETE, DROP, etc.)
3. Always include appropriate LIMIT clauses for safety
4. Use only tables and columns from the provided schema
5. Join metric values to locations through the location id when a place is named
6. Prefer explicit column names over SELECT *

Database Schema:
%s
%s%s
Question: %s

SQL:`, req.DatabaseType, req.SQLDialect, req.SchemaDDL, metrics, examples.String(), req.Question)
}

// BuildAnswerPrompt asks the model to phrase query results as a reply.
func BuildAnswerPrompt(question, sql, results string) string {
	return fmt.Sprintf(`Answer the user's question about real estate metrics using only the query results below.
Be concise and include the relevant numbers with units. If the results are empty, say that no matching data was found.

Question: %s

SQL used:
%s

Results:
%s

Answer:`, question, sql, results)
}

// BuildSummaryPrompt condenses a transcript, folding in any earlier summary.
func BuildSummaryPrompt(previous, transcript string) string {
	var b strings.Builder
	b.WriteString("Summarize the following conversation between a user and a real estate assistant in a few sentences. ")
	b.WriteString("Keep names, places, metrics and numbers that later questions may refer to.\n\n")
	if previous != "" {
		fmt.Fprintf(&b, "Summary of the conversation so far:\n%s\n\n", previous)
	}
	fmt.Fprintf(&b, "Conversation:\n%s\n\nSummary:", transcript)
	return b.String()
}

// BuildRoutingPrompt lists every tool and asks for exactly one name back.
func BuildRoutingPrompt(tools []ToolOption, question string) string {
	var b strings.Builder
	b.WriteString("Choose the single best tool to answer the user's question.\n\nTools:\n")
	for _, t := range tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
	}
	b.WriteString("\nReply with the tool name only.\n\n")
	fmt.Fprintf(&b, "Question: %s", question)
	return b.String()
}

// ExtractSQL extracts SQL from LLM response
func ExtractSQL(content string) string {
	if sql, ok := extractFromCodeBlock(content, "```sql"); ok {
		return sql
	}
	if sql, ok := extractFromCodeBlock(content, "```"); ok {
		return sql
	}
	return trimSQL(content)
}

func extractFromCodeBlock(content, startMarker string) (string, bool) {
	_, rest, found := strings.Cut(content, startMarker)
	if !found {
		return "", false
	}
	rest = strings.TrimPrefix(rest, "\n")

	body, _, found := strings.Cut(rest, "```")
	if !found {
		return "", false
	}
	return trimSQL(body), true
}

func trimSQL(sql string) string {
	sql = strings.TrimSpace(sql)
	sql = strings.TrimSuffix(sql, ";")
	return strings.TrimSpace(sql)
}
