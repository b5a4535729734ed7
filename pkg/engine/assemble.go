package engine

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/jwebster45206/plaidlibs/pkg/chat"
	"github.com/jwebster45206/plaidlibs/pkg/menu"
	"github.com/jwebster45206/plaidlibs/pkg/play"
	"github.com/jwebster45206/plaidlibs/pkg/prompts"
	"github.com/jwebster45206/plaidlibs/pkg/state"
	"github.com/jwebster45206/plaidlibs/pkg/textfilter"
	"github.com/jwebster45206/plaidlibs/pkg/workflow"
)

// PlaidPic renders its visual prompt with a fixed format and tag set.
const plaidPicFormat = "3-Panel Comic"

var plaidPicTags = []string{"Cinematic Lighting", "Showcase Plaid Clothing"}

var (
	conceptWords  = regexp.MustCompile(`[A-Za-z']+`)
	conceptNames  = regexp.MustCompile(`\b[A-Z][a-z']+\b`)
	conceptPlaces = regexp.MustCompile(`(?i)\b(?:in|at|under|inside|near)\s+([A-Za-z][A-Za-z\s']{2,})`)
)

// assemble derives seeds for the workflow, builds its prompt and moves the
// session to assembling. PlaidPlay has no external step and finishes directly.
func (e *Engine) assemble(s *state.Session, w workflow.Workflow) (*Request, error) {
	s.Menu = nil
	s.LastError = ""

	switch w.Seeds {
	case workflow.SeedsAuto:
		s.Seeds = e.deriveSeeds(nil)
	case workflow.SeedsConcept:
		s.Seeds = e.deriveSeeds(e.seedsFromConcept(s.Selections.Concept))
	case workflow.SeedsImage:
		s.Seeds = e.deriveSeeds(map[string]string{
			"place":     s.Selections.Environment,
			"adjective": s.Selections.Mood,
			"object":    s.Selections.Focal,
		})
	}

	if w.Output == workflow.OutputPlay {
		e.finishPlay(s)
		return nil, nil
	}

	// storyline never asks for a genre
	if w.Output == workflow.OutputStory && !s.Selections.Has(state.Genre) {
		if g, ok := menu.Pick(e.rng, e.cat.Genres.All()); ok {
			_ = s.Selections.Set(state.Genre, g.Name)
		}
	}
	return e.buildPrompt(s, w)
}

// buildPrompt renders prompts from the current selections and seeds without
// re-deriving either. Remix uses it after mutating them.
func (e *Engine) buildPrompt(s *state.Session, w workflow.Workflow) (*Request, error) {
	s.Story = ""
	s.PlainStory = ""
	s.Image = nil
	s.ImageMIME = ""
	s.VisualPrompt = ""

	switch w.Output {
	case workflow.OutputVisual:
		s.VisualPrompt = prompts.VisualPrompt(s.Selections.Format, s.Selections.Style,
			s.Selections.Description, s.Selections.Tags, e.blurb())
		s.Prompt = s.VisualPrompt
	case workflow.OutputStoryVisual:
		s.VisualPrompt = prompts.VisualPrompt(plaidPicFormat, s.Selections.Style,
			e.picDescription(s.Selections), plaidPicTags, e.blurb())
		s.Prompt = e.storyPrompt(s)
	default:
		s.Prompt = e.storyPrompt(s)
	}

	s.Phase = state.PhaseAssembling
	e.logger.Debug("Prompt assembled", "session_id", s.ID, "workflow", w.ID, "prompt_len", len(s.Prompt))
	return e.Pending(s)
}

func (e *Engine) storyPrompt(s *state.Session) string {
	return prompts.AssemblePrompt(s.Selections, s.Seeds, prompts.Guide{
		StyleRules:        e.cat.StyleRules,
		AbsurdityGuidance: e.cat.AbsurdityGuidance,
		Narrator:          e.narrator(s),
		Rating:            e.rating,
	})
}

func (e *Engine) blurb() string {
	b, _ := menu.Pick(e.rng, e.cat.VisualBlurbs)
	return b
}

func (e *Engine) picDescription(sel state.Selections) string {
	if sel.Description != "" {
		return sel.Description
	}
	caption := sel.Caption
	if caption == "" {
		caption = "A moment in plaid"
	}
	if sel.ImageUploaded {
		caption = "Based on the uploaded image: " + caption
	}
	return fmt.Sprintf("%s, mood %s, focal %s", caption, sel.Mood, sel.Focal)
}

// deriveSeeds fills every catalog slot, preferring known values and drawing the rest.
func (e *Engine) deriveSeeds(known map[string]string) state.Seeds {
	seeds := make(state.Seeds, 0, len(e.cat.SeedSlots))
	for _, slot := range e.cat.SeedSlots {
		v := strings.TrimSpace(known[slot.Key])
		if v == "" {
			v = e.surprise(slot.Key)
		}
		seeds = append(seeds, state.Seed{Slot: slot.Key, Value: v})
	}
	return seeds
}

// seedsFromConcept pulls a name, profession, place and adjective out of free text.
func (e *Engine) seedsFromConcept(concept string) map[string]string {
	known := map[string]string{}
	if m := conceptNames.FindString(concept); m != "" {
		known["name"] = m
	}

	hints := e.cat.ConceptHints
	words := conceptWords.FindAllString(concept, -1)
	for _, w := range words {
		lw := strings.ToLower(w)
		if slices.Contains(hints.Professions, lw) || (strings.HasSuffix(lw, "er") && len(lw) > 4) {
			known["profession"] = lw
			break
		}
	}
	for _, w := range words {
		if lw := strings.ToLower(w); slices.Contains(hints.Adjectives, lw) {
			known["adjective"] = lw
			break
		}
	}
	if m := conceptPlaces.FindStringSubmatch(concept); m != nil {
		fields := strings.Fields(m[1])
		known["place"] = strings.Join(fields[:min(2, len(fields))], " ")
	}
	return known
}

func (e *Engine) finishPlay(s *state.Session) {
	words := play.Words{
		Nouns:      e.cat.Play.Nouns,
		Adjectives: e.cat.Play.Adjectives,
		Wilds:      e.cat.Play.Wilds,
	}
	s.Submissions = play.Simulate(e.rng, words, s.Players)
	s.Tally = play.Tally(e.rng, s.Submissions)
	if w, ok := play.Winner(s.Tally); ok {
		s.Winner = w.Player
	}
	s.Story = play.Encore(s.Selections.Concept, s.Submissions, s.Tally)
	s.Phase = state.PhaseGenerated
}

// Pending returns the generation request for a session waiting on one. Calling it
// again after a failure yields the same prompt.
func (e *Engine) Pending(s *state.Session) (*Request, error) {
	if s.Workflow == workflow.PlaidChat {
		return e.chatRequest(s)
	}
	if s.Phase != state.PhaseAssembling || s.Prompt == "" {
		return nil, ErrNothingPending
	}
	w, _ := workflow.Get(s.Workflow)
	kind := RequestText
	if w.Output == workflow.OutputVisual {
		kind = RequestImage
	}
	return &Request{Kind: kind, Prompt: s.Prompt, Params: e.params}, nil
}

// Complete stores generated story text and moves the session to generated.
func (e *Engine) Complete(s *state.Session, text string) error {
	if s.Phase != state.PhaseAssembling {
		return ErrNothingPending
	}
	if strings.TrimSpace(text) == "" {
		return e.GenerationFailed(s, fmt.Errorf("generator returned no content"))
	}
	s.PlainStory = e.filter.Apply(strings.TrimSpace(text))
	s.Story = textfilter.Highlight(s.PlainStory, e.storyWords(s))
	s.Phase = state.PhaseGenerated
	s.LastError = ""
	s.Touch()
	return nil
}

// CompleteImage stores a generated image and moves the session to generated.
func (e *Engine) CompleteImage(s *state.Session, img *chat.Image) error {
	if s.Phase != state.PhaseAssembling {
		return ErrNothingPending
	}
	if img == nil || len(img.Data) == 0 {
		return e.GenerationFailed(s, fmt.Errorf("generator returned no image"))
	}
	s.Image = img.Data
	s.ImageMIME = img.MIMEType
	s.Phase = state.PhaseGenerated
	s.LastError = ""
	s.Touch()
	return nil
}

// GenerationFailed records a generator error. The session keeps its prompt and
// phase so the same request can be retried.
func (e *Engine) GenerationFailed(s *state.Session, cause error) error {
	err := fmt.Errorf("%w: %v", ErrExternalGeneration, cause)
	s.LastError = err.Error()
	s.Touch()
	e.logger.Warn("Generation failed", "session_id", s.ID, "workflow", s.Workflow, "error", cause)
	return err
}
