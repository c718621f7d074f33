// Package agent is the conversation orchestration core: it reloads a
// session's history, condenses old turns into the rolling summary, routes the
// newest utterance to one capability and hands the result back for storage.
package agent

import (
	"strings"

	"github.com/Rrens/estate-chat/internal/domain"
)

// Turn is one message of the in-memory conversation.
type Turn struct {
	Role    domain.MessageRole
	Content string
}

// State is the conversation reconstructed for one turn. Summary covers
// everything older than the first retained message.
type State struct {
	Messages []Turn
	Summary  string
}

func (s State) clone() State {
	out := State{Summary: s.Summary, Messages: make([]Turn, len(s.Messages))}
	copy(out.Messages, s.Messages)
	return out
}

// LastUser returns the newest user utterance, or "".
func (s State) LastUser() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == domain.RoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}

// transcript renders turns as alternating speaker-labeled lines.
func transcript(turns []Turn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		if t.Role == domain.RoleAssistant {
			b.WriteString("Assistant: ")
		} else {
			b.WriteString("User: ")
		}
		b.WriteString(t.Content)
	}
	return b.String()
}
