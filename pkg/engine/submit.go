package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jwebster45206/plaidlibs/pkg/menu"
	"github.com/jwebster45206/plaidlibs/pkg/state"
	"github.com/jwebster45206/plaidlibs/pkg/workflow"
)

const (
	// SurpriseMe asks for a random seed.
	SurpriseMe = "surprise me"
	// NoExtraTags is the enhancement tag meaning none.
	NoExtraTags = "No Extra Tags"
)

var readyAnswers = map[string]bool{"yes": true, "y": true, "let's go": true, "lets go": true}

// Submit interprets one raw answer against the session's current step.
//
// A non-nil Request means the session reached assembly and the caller should run
// generation. Validation failures leave the step and its menu unchanged, record
// LastError, and return an error matching one of the package sentinels.
func (e *Engine) Submit(s *state.Session, raw string) (*Request, error) {
	w, ok := workflow.Get(s.Workflow)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorkflow, s.Workflow)
	}
	defer s.Touch()

	switch s.Phase {
	case state.PhaseGenerated:
		return e.Remix(s, raw)
	case state.PhaseAssembling:
		return nil, e.fail(s, ErrGenerationPending)
	}

	step, ok := w.Step(s.CurrentStep)
	if !ok {
		e.logger.Warn("Session step out of range, restarting workflow",
			"session_id", s.ID, "workflow", s.Workflow, "step", s.CurrentStep, "error", ErrSessionStateMissing)
		e.restart(s, w)
		return nil, nil
	}

	switch step.Kind {
	case workflow.StepChoice:
		return e.submitChoice(s, w, step, raw)
	case workflow.StepText:
		return e.submitText(s, w, step, raw)
	case workflow.StepConfirm:
		return e.submitConfirm(s, step, raw)
	case workflow.StepSeeds:
		return e.submitSeed(s, w, raw)
	case workflow.StepTags:
		return e.submitTags(s, step, raw)
	case workflow.StepPlayers:
		return e.submitPlayers(s, step, raw)
	case workflow.StepChat:
		return e.ChatTurn(s, raw)
	}
	return nil, fmt.Errorf("unsupported step kind %q", step.Kind)
}

// Advance records sel under the current decision point, moves to the next step and
// clears the menu and last error. A reshuffle selection rebuilds the menu in place.
// Past the last step the prompt is assembled and its Request returned. A step
// out of range restarts the workflow.
func (e *Engine) Advance(s *state.Session, sel menu.Selection) (*Request, error) {
	w, ok := workflow.Get(s.Workflow)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorkflow, s.Workflow)
	}
	step, ok := w.Step(s.CurrentStep)
	if !ok {
		e.logger.Warn("Session step out of range, restarting workflow",
			"session_id", s.ID, "workflow", s.Workflow, "step", s.CurrentStep, "error", ErrSessionStateMissing)
		e.restart(s, w)
		return nil, nil
	}

	if sel.Reshuffle {
		e.buildMenu(s, step)
		s.LastError = ""
		return nil, nil
	}

	if step.Point != "" {
		if err := s.Selections.Set(step.Point, sel.Option.Name); err != nil {
			return nil, e.fail(s, err)
		}
	}

	s.CurrentStep++
	s.Menu = nil
	s.LastError = ""

	if s.CurrentStep > len(w.Steps) {
		return e.assemble(s, w)
	}
	e.enterStep(s, w)
	return nil, nil
}

// CollectSeed stores one seed value. Blank answers and "surprise me" draw from the
// slot's candidates. Once SeedsNeeded values are in, the phase moves to assembling.
func (e *Engine) CollectSeed(s *state.Session, slot, raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || strings.EqualFold(value, SurpriseMe) {
		value = e.surprise(slot)
	}

	s.Seeds.Set(slot, value)
	s.SeedsCollected++
	s.LastError = ""
	if s.SeedsNeeded > 0 && s.SeedsCollected >= s.SeedsNeeded {
		s.Phase = state.PhaseAssembling
	}
	return value
}

func (e *Engine) surprise(slot string) string {
	if v, ok := menu.Pick(e.rng, e.cat.SlotCandidates(slot)); ok {
		return v
	}
	return "plaid"
}

func (e *Engine) submitChoice(s *state.Session, w workflow.Workflow, step workflow.Step, raw string) (*Request, error) {
	if s.Menu == nil || s.Menu.Len() == 0 {
		e.logger.Warn("Menu missing for choice step, rebuilding",
			"session_id", s.ID, "workflow", w.ID, "step", s.CurrentStep, "error", ErrSessionStateMissing)
		e.buildMenu(s, step)
		s.LastError = "The menu was refreshed, please choose again."
		return nil, nil
	}

	sel, err := menu.Interpret(e.rng, raw, *s.Menu, e.poolOptions(step), step.FreeText)
	if err != nil {
		return nil, e.fail(s, err)
	}
	return e.Advance(s, sel)
}

func (e *Engine) submitText(s *state.Session, w workflow.Workflow, step workflow.Step, raw string) (*Request, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		switch {
		case step.Required:
			return nil, e.fail(s, fmt.Errorf("%w: %s", ErrEmptyRequiredField, strings.ToLower(step.Title)))
		case step.Default != "":
			value = step.Default
		case w.Output == workflow.OutputPlay:
			value = e.cat.Play.DefaultPrompt
		}
	}
	return e.Advance(s, menu.Selection{Option: menu.Option{Name: value}, Custom: true})
}

func (e *Engine) submitConfirm(s *state.Session, step workflow.Step, raw string) (*Request, error) {
	answer := strings.ToLower(strings.TrimSpace(raw))
	if !step.AcceptAny && !readyAnswers[answer] {
		return nil, e.fail(s, fmt.Errorf("%w: type 'yes' or 'let's go' to continue", ErrInvalidChoice))
	}
	return e.Advance(s, menu.Selection{})
}

func (e *Engine) submitSeed(s *state.Session, w workflow.Workflow, raw string) (*Request, error) {
	if s.SeedsNeeded == 0 || s.SeedsCollected >= len(e.cat.SeedSlots) {
		e.logger.Warn("Seed counters missing, resetting collection",
			"session_id", s.ID, "collected", s.SeedsCollected, "needed", s.SeedsNeeded, "error", ErrSessionStateMissing)
		s.Seeds = nil
		s.SeedsNeeded = len(e.cat.SeedSlots)
		s.SeedsCollected = 0
		s.Phase = state.PhaseCollectingSeeds
	}
	if s.SeedsNeeded == 0 {
		return e.assemble(s, w)
	}

	slot := e.cat.SeedSlots[s.SeedsCollected]
	e.CollectSeed(s, slot.Key, raw)
	if s.Phase == state.PhaseAssembling {
		s.CurrentStep++
		return e.assemble(s, w)
	}
	return nil, nil
}

func (e *Engine) submitTags(s *state.Session, step workflow.Step, raw string) (*Request, error) {
	if s.Menu == nil {
		e.buildMenu(s, step)
	}
	var tags []string
	for part := range strings.SplitSeq(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		sel, err := menu.Interpret(e.rng, part, *s.Menu, nil, false)
		if err != nil {
			return nil, e.fail(s, fmt.Errorf("%w: %q", err, strings.TrimSpace(part)))
		}
		if sel.Reshuffle || sel.Option.Name == NoExtraTags || containsFold(tags, sel.Option.Name) {
			continue
		}
		tags = append(tags, sel.Option.Name)
	}

	return e.Advance(s, menu.Selection{Option: menu.Option{Name: strings.Join(tags, ", ")}})
}

func (e *Engine) submitPlayers(s *state.Session, step workflow.Step, raw string) (*Request, error) {
	answer := strings.TrimSpace(raw)
	if answer == "" {
		answer = step.Default
	}
	n, err := strconv.Atoi(answer)
	lo, hi := e.cat.Play.MinPlayers, e.cat.Play.MaxPlayers
	if err != nil || n < lo || (hi > 0 && n > hi) {
		return nil, e.fail(s, fmt.Errorf("%w: pick a number of players from %d to %d", ErrInvalidChoice, lo, hi))
	}
	s.Players = n
	return e.Advance(s, menu.Selection{})
}

// AttachImage marks that the user supplied a picture for the PlaidPic description
// step. The bytes are not kept; the visual prompt notes the upload.
func (e *Engine) AttachImage(s *state.Session, mimeType string) error {
	w, _ := workflow.Get(s.Workflow)
	step, ok := w.Step(s.CurrentStep)
	if w.Output != workflow.OutputStoryVisual || !ok || step.Point != state.Description || s.Phase != state.PhaseSelecting {
		return e.fail(s, ErrImageNotAccepted)
	}
	s.Selections.ImageUploaded = true
	s.LastError = ""
	s.Touch()
	e.logger.Debug("Image attached", "session_id", s.ID, "mime_type", mimeType)
	return nil
}

// fail records err as the step's visible error and returns it.
func (e *Engine) fail(s *state.Session, err error) error {
	s.LastError = err.Error()
	return err
}

func containsFold(list []string, v string) bool {
	for _, x := range list {
		if strings.EqualFold(x, v) {
			return true
		}
	}
	return false
}
