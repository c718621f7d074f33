package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/Rrens/estate-chat/internal/llm"
	"github.com/rs/zerolog/log"
)

// SummaryPrefix introduces the rolling summary in the routed prompt.
const SummaryPrefix = "Previously on the conversation: "

// Stage names a step of the turn pipeline.
type Stage string

const (
	StageInit      Stage = "init"
	StageSummarize Stage = "summarize"
	StageRoute     Stage = "route_and_answer"
	StageDone      Stage = "done"
)

// Config tunes the pipeline.
type Config struct {
	SummaryWindow int
}

// Deps are the collaborators of an Orchestrator. Capabilities is the
// declarative routing table; Fallback names the general chat entry, which
// also condenses history. OnStage, if set, sees every stage a turn enters.
// OnShutdown hooks run once from Shutdown.
type Deps struct {
	Classifier      llm.Provider
	ClassifierModel string
	Capabilities    []Capability
	Fallback        string
	OnStage         func(Stage)
	OnShutdown      []func()
}

// Result is the outcome of one turn.
type Result struct {
	State    State
	Decision Decision
}

// Orchestrator runs INIT, SUMMARIZE and ROUTE_AND_ANSWER once per turn.
// It holds no conversation data between calls.
type Orchestrator struct {
	router     *Router
	summarizer *Summarizer
	onStage    func(Stage)
	onShutdown []func()
	once       sync.Once
}

// New wires an orchestrator from cfg and deps.
func New(cfg Config, deps Deps) (*Orchestrator, error) {
	router, err := NewRouter(deps.Classifier, deps.ClassifierModel, deps.Capabilities, deps.Fallback)
	if err != nil {
		return nil, fmt.Errorf("failed to build router: %w", err)
	}

	return &Orchestrator{
		router:     router,
		summarizer: NewSummarizer(cfg.SummaryWindow, router.Fallback()),
		onStage:    deps.OnStage,
		onShutdown: deps.OnShutdown,
	}, nil
}

// Router exposes the capability router.
func (o *Orchestrator) Router() *Router {
	return o.router
}

// ProcessTurn appends userText to st, condenses, routes and appends the reply.
// st is not modified.
func (o *Orchestrator) ProcessTurn(ctx context.Context, st State, userText string) (*Result, error) {
	o.enter(StageInit)
	state := st.clone()
	state.Messages = append(state.Messages, Turn{Role: domain.RoleUser, Content: userText})

	o.enter(StageSummarize)
	state, err := o.summarizer.Run(ctx, state)
	if err != nil {
		return nil, err
	}

	o.enter(StageRoute)
	decision, err := o.router.Route(ctx, BuildPrompt(state.Summary, userText))
	if err != nil {
		return nil, err
	}
	state.Messages = append(state.Messages, Turn{Role: domain.RoleAssistant, Content: decision.Reply})

	o.enter(StageDone)
	log.Debug().
		Str("capability", decision.Capability).
		Bool("fell_back", decision.FellBack).
		Int("retained", len(state.Messages)).
		Msg("turn processed")

	return &Result{State: state, Decision: decision}, nil
}

func (o *Orchestrator) enter(stage Stage) {
	log.Trace().Str("stage", string(stage)).Msg("pipeline stage")
	if o.onStage != nil {
		o.onStage(stage)
	}
}

// Shutdown releases the resources behind the capabilities. Safe to call twice.
func (o *Orchestrator) Shutdown() {
	o.once.Do(func() {
		for _, fn := range o.onShutdown {
			fn()
		}
	})
}

// BuildPrompt prefixes a non-empty summary to the newest utterance.
func BuildPrompt(summary, text string) string {
	if summary == "" {
		return text
	}
	return SummaryPrefix + summary + "\n\n" + text
}
