package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/Rrens/estate-chat/internal/llm"
	"github.com/rs/zerolog/log"
)

// Apology is returned when neither the chosen capability nor the fallback could answer.
const Apology = "I'm sorry, but I'm not able to answer right now. Please try again."

// Decision reports which capability produced Reply.
type Decision struct {
	Capability string
	Reply      string
	FellBack   bool
}

// Router picks one capability per prompt with a single classification call
// and falls back to the fallback capability when anything goes wrong.
type Router struct {
	classifier   llm.Provider
	model        string
	capabilities []Capability
	fallback     Capability
}

// NewRouter builds a router over capabilities. fallback must name one of them.
func NewRouter(classifier llm.Provider, model string, capabilities []Capability, fallback string) (*Router, error) {
	if len(capabilities) == 0 {
		return nil, fmt.Errorf("router needs at least one capability")
	}

	seen := make(map[string]bool, len(capabilities))
	r := &Router{classifier: classifier, model: model}
	for _, c := range capabilities {
		if c.Name == "" || c.Invoke == nil {
			return nil, fmt.Errorf("capability %q is incomplete", c.Name)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate capability %q", c.Name)
		}
		seen[c.Name] = true
		r.capabilities = append(r.capabilities, c)
		if c.Name == fallback {
			r.fallback = c
		}
	}
	if r.fallback.Name == "" {
		return nil, fmt.Errorf("fallback capability %q is not registered", fallback)
	}
	if classifier == nil && len(capabilities) > 1 {
		return nil, fmt.Errorf("router needs a classifier for %d capabilities", len(capabilities))
	}
	return r, nil
}

// Fallback returns the capability used when routing or invocation fails.
func (r *Router) Fallback() Capability {
	return r.fallback
}

// Capabilities returns the registered capability names in order.
func (r *Router) Capabilities() []string {
	names := make([]string, len(r.capabilities))
	for i, c := range r.capabilities {
		names[i] = c.Name
	}
	return names
}

// Route answers prompt. Capability failures never surface as errors; only a
// cancelled or expired ctx does, as a *domain.CapabilityError.
func (r *Router) Route(ctx context.Context, prompt string) (Decision, error) {
	chosen, err := r.classify(ctx, prompt)
	if err != nil {
		return Decision{}, err
	}

	logger := log.With().Str("capability", chosen.Name).Logger()

	reply, err := chosen.call(ctx, prompt)
	if err == nil {
		return Decision{Capability: chosen.Name, Reply: reply}, nil
	}
	if ctx.Err() != nil {
		return Decision{}, &domain.CapabilityError{Capability: chosen.Name, Err: ctx.Err()}
	}
	logger.Warn().Err(err).Msg("capability failed")

	if chosen.Name != r.fallback.Name {
		reply, err = r.fallback.call(ctx, prompt)
		if err == nil {
			logger.Info().Str("fallback", r.fallback.Name).Msg("answered by fallback capability")
			return Decision{Capability: r.fallback.Name, Reply: reply, FellBack: true}, nil
		}
		if ctx.Err() != nil {
			return Decision{}, &domain.CapabilityError{Capability: r.fallback.Name, Err: ctx.Err()}
		}
		log.Warn().Err(err).Str("capability", r.fallback.Name).Msg("fallback capability failed")
	}

	return Decision{Capability: r.fallback.Name, Reply: Apology, FellBack: true}, nil
}

func (r *Router) classify(ctx context.Context, prompt string) (Capability, error) {
	if len(r.capabilities) == 1 {
		return r.capabilities[0], nil
	}

	options := make([]llm.ToolOption, len(r.capabilities))
	for i, c := range r.capabilities {
		options[i] = llm.ToolOption{Name: c.Name, Description: c.Description}
	}

	resp, err := r.classifier.Complete(ctx, llm.Request{
		System:      llm.RoutingSystemPrompt,
		Prompt:      llm.BuildRoutingPrompt(options, prompt),
		Temperature: 0,
		MaxTokens:   16,
	}, r.model)
	if err != nil {
		if ctx.Err() != nil {
			return Capability{}, &domain.CapabilityError{Capability: "router", Err: ctx.Err()}
		}
		log.Warn().Err(err).Msg("routing call failed, using fallback capability")
		return r.fallback, nil
	}

	if c, ok := r.match(resp.Content); ok {
		log.Debug().Str("capability", c.Name).Msg("routed")
		return c, nil
	}
	log.Warn().Str("reply", resp.Content).Msg("unrecognized routing reply, using fallback capability")
	return r.fallback, nil
}

// match resolves a classification reply: an exact name first, then a name
// mentioned anywhere in the reply.
func (r *Router) match(reply string) (Capability, bool) {
	answer := strings.ToLower(strings.Trim(strings.TrimSpace(reply), "\"'`.*"))
	for _, c := range r.capabilities {
		if answer == strings.ToLower(c.Name) {
			return c, true
		}
	}

	var found []Capability
	for _, c := range r.capabilities {
		if strings.Contains(answer, strings.ToLower(c.Name)) {
			found = append(found, c)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return Capability{}, false
}
