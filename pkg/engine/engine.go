// Package engine drives a session through its workflow: menus, answers, seeds,
// prompt assembly and the generation hand-off.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jwebster45206/plaidlibs/pkg/catalog"
	"github.com/jwebster45206/plaidlibs/pkg/chat"
	"github.com/jwebster45206/plaidlibs/pkg/menu"
	"github.com/jwebster45206/plaidlibs/pkg/state"
	"github.com/jwebster45206/plaidlibs/pkg/textfilter"
	"github.com/jwebster45206/plaidlibs/pkg/workflow"
)

var (
	ErrInvalidChoice       = menu.ErrInvalidChoice
	ErrAlreadySelected     = state.ErrAlreadySelected
	ErrEmptyRequiredField  = errors.New("required field is empty")
	ErrExternalGeneration  = errors.New("external generation failed")
	ErrSessionStateMissing = errors.New("session state missing")
	ErrUnknownWorkflow     = errors.New("unknown workflow")
	ErrUnknownNarrator     = errors.New("unknown narrator")
	ErrNotGenerated        = errors.New("nothing generated yet")
	ErrInvalidRemix        = errors.New("invalid remix option")
	ErrGenerationPending   = errors.New("generation pending")
	ErrNothingPending      = errors.New("no generation pending")
	ErrImageNotAccepted    = errors.New("image upload not accepted at this step")
)

// IsValidation reports whether err is a recoverable input error for the current step.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidChoice) ||
		errors.Is(err, ErrEmptyRequiredField) ||
		errors.Is(err, ErrAlreadySelected) ||
		errors.Is(err, ErrInvalidRemix) ||
		errors.Is(err, ErrUnknownNarrator) ||
		errors.Is(err, ErrUnknownWorkflow) ||
		errors.Is(err, ErrNotGenerated) ||
		errors.Is(err, ErrGenerationPending) ||
		errors.Is(err, ErrImageNotAccepted)
}

// RequestKind picks the generation backend call.
type RequestKind string

const (
	RequestText  RequestKind = "text"
	RequestImage RequestKind = "image"
	RequestChat  RequestKind = "chat"
)

// Request is the work handed to a generation service once a prompt is assembled.
type Request struct {
	Kind     RequestKind           `json:"kind"`
	Prompt   string                `json:"prompt,omitempty"`
	Messages []chat.ChatMessage    `json:"messages,omitempty"`
	Params   chat.GenerationParams `json:"params"`
}

// Engine is stateless apart from its configuration; all session state lives in
// *state.Session and calls on different sessions may run concurrently.
type Engine struct {
	cat    *catalog.Catalog
	rng    menu.Rand
	logger *slog.Logger
	params chat.GenerationParams
	rating string
	filter *textfilter.ProfanityFilter
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the randomness source. Tests pass a seeded *rand.Rand.
func WithRand(rng menu.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithParams sets sampling parameters for story generation.
func WithParams(p chat.GenerationParams) Option {
	return func(e *Engine) { e.params = p.WithDefaults() }
}

// WithContentRating sets the rating sent to the generator and enables the
// profanity filter on generated text for family ratings. User input is kept as typed.
func WithContentRating(rating string) Option {
	return func(e *Engine) {
		e.rating = rating
		e.filter = textfilter.ForRating(rating)
	}
}

// New creates an engine over cat. A nil catalog uses the built-in one.
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	if cat == nil {
		cat = catalog.Default()
	}
	e := &Engine{
		cat:    cat,
		rng:    menu.DefaultRand,
		logger: slog.New(slog.DiscardHandler),
		params: chat.GenerationParams{}.WithDefaults(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.cat
}

// Start switches the session to workflowID, clearing everything, and enters step 1.
func (e *Engine) Start(s *state.Session, workflowID string) error {
	w, ok := workflow.Get(workflowID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownWorkflow, workflowID)
	}
	s.Workflow = w.ID
	if _, ok := e.cat.Narrator(s.Narrator); !ok {
		s.Narrator = e.cat.DefaultNarrator
	}
	e.restart(s, w)
	e.logger.Debug("Session started", "session_id", s.ID, "workflow", w.ID)
	return nil
}

// Restart returns the session to step 1 of its workflow with all state cleared.
func (e *Engine) Restart(s *state.Session) error {
	w, ok := workflow.Get(s.Workflow)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownWorkflow, s.Workflow)
	}
	e.restart(s, w)
	e.logger.Debug("Session restarted", "session_id", s.ID, "workflow", w.ID)
	return nil
}

func (e *Engine) restart(s *state.Session, w workflow.Workflow) {
	s.Reset()
	s.CurrentStep = 1
	s.Phase = state.PhaseSelecting
	if w.Output == workflow.OutputChat {
		e.greet(s)
	}
	e.enterStep(s, w)
}

// SetNarrator validates and sets the session narrator.
func (e *Engine) SetNarrator(s *state.Session, name string) error {
	n, ok := e.cat.Narrator(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNarrator, name)
	}
	s.Narrator = n.Name
	// an untouched chat gets the new narrator's greeting
	if s.Workflow == workflow.PlaidChat && len(s.ChatHistory) <= 1 {
		e.greet(s)
	}
	s.Touch()
	return nil
}

func (e *Engine) narrator(s *state.Session) catalog.Narrator {
	if n, ok := e.cat.Narrator(s.Narrator); ok {
		return n
	}
	n, _ := e.cat.Narrator(e.cat.DefaultNarrator)
	return n
}

// enterStep prepares per-step state for s.CurrentStep.
func (e *Engine) enterStep(s *state.Session, w workflow.Workflow) {
	step, ok := w.Step(s.CurrentStep)
	if !ok {
		return
	}
	switch step.Kind {
	case workflow.StepChoice, workflow.StepTags:
		e.buildMenu(s, step)
	case workflow.StepSeeds:
		s.Phase = state.PhaseCollectingSeeds
		s.SeedsNeeded = len(e.cat.SeedSlots)
		s.SeedsCollected = 0
	}
}

func (e *Engine) buildMenu(s *state.Session, step workflow.Step) {
	pool, ok := e.cat.Pool(step.Pool)
	if !ok {
		e.logger.Warn("Workflow step references unknown pool", "pool", step.Pool, "workflow", s.Workflow)
	}
	var m menu.Menu
	if step.Fixed {
		m = menu.Fixed(pool.All(), step.Controls)
	} else {
		m = menu.Build(e.rng, pool, step.Counts, step.Controls)
	}
	s.Menu = &m
}

func (e *Engine) poolOptions(step workflow.Step) []menu.Option {
	pool, _ := e.cat.Pool(step.Pool)
	return pool.All()
}

func (e *Engine) storyWords(s *state.Session) []string {
	return slices.DeleteFunc(s.Seeds.Values(), func(v string) bool { return v == "" })
}
