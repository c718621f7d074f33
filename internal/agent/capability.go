package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rrens/estate-chat/internal/llm"
)

// Capability names.
const (
	RealEstateDB = "real_estate_db"
	GeneralChat  = "general_chat"
)

// Routing descriptions shown to the classification call.
const (
	RealEstateDBDescription = "Use ONLY when the question is about specific real estate metrics stored in a database (e.g. price, area, location, values). NEVER use for greetings, general conversation, or casual questions."
	GeneralChatDescription  = "Use ONLY for friendly chat, greetings, emotional support, or any question NOT asking for a number or real estate metric."
)

// InvokeFunc answers one prompt.
type InvokeFunc func(ctx context.Context, prompt string) (string, error)

// Capability is one entry of the router's declarative table.
type Capability struct {
	Name        string
	Description string
	Invoke      InvokeFunc
}

var errEmptyReply = errors.New("capability returned an empty reply")

// call invokes c and treats a blank reply as a failure.
func (c Capability) call(ctx context.Context, prompt string) (string, error) {
	if c.Invoke == nil {
		return "", fmt.Errorf("capability %s has no implementation", c.Name)
	}
	reply, err := c.Invoke(ctx, prompt)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", errEmptyReply
	}
	return reply, nil
}

// NewGeneralChat answers free-form prompts with a single completion.
func NewGeneralChat(provider llm.Provider, model string, temperature float64) Capability {
	return Capability{
		Name:        GeneralChat,
		Description: GeneralChatDescription,
		Invoke: func(ctx context.Context, prompt string) (string, error) {
			resp, err := provider.Complete(ctx, llm.Request{
				Prompt:      prompt,
				Temperature: temperature,
			}, model)
			if err != nil {
				return "", fmt.Errorf("failed to generate chat reply: %w", err)
			}
			return resp.Content, nil
		},
	}
}
