package agent

import (
	"context"
	"strings"

	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/Rrens/estate-chat/internal/llm"
	"github.com/rs/zerolog/log"
)

// Summarizer folds turns older than the window into the rolling summary.
type Summarizer struct {
	window int
	chat   Capability
}

// NewSummarizer keeps the most recent window messages verbatim and condenses
// the rest through chat.
func NewSummarizer(window int, chat Capability) *Summarizer {
	if window < 1 {
		window = 1
	}
	return &Summarizer{window: window, chat: chat}
}

// Window returns the number of messages kept verbatim.
func (s *Summarizer) Window() int {
	return s.window
}

// Run returns st unchanged when it fits the window. If condensing fails the
// state is also returned unchanged so nothing is lost; only a ctx error is
// returned.
func (s *Summarizer) Run(ctx context.Context, st State) (State, error) {
	if len(st.Messages) <= s.window {
		return st, nil
	}

	cut := len(st.Messages) - s.window
	older, recent := st.Messages[:cut], st.Messages[cut:]

	prompt := llm.BuildSummaryPrompt(st.Summary, transcript(older))
	summary, err := s.chat.call(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return st, &domain.CapabilityError{Capability: s.chat.Name, Err: ctx.Err()}
		}
		log.Warn().Err(err).Int("older", len(older)).Msg("summarization failed, keeping full history")
		return st, nil
	}

	out := State{
		Summary:  strings.TrimSpace(summary),
		Messages: make([]Turn, len(recent)),
	}
	copy(out.Messages, recent)
	return out, nil
}
