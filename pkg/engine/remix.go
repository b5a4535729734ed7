package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jwebster45206/plaidlibs/pkg/menu"
	"github.com/jwebster45206/plaidlibs/pkg/state"
	"github.com/jwebster45206/plaidlibs/pkg/workflow"
)

const (
	fluffStyle    = "Magic Realism"
	dialectSuffix = " (dialect spice)"
	maxRemixTags  = 3
)

var remixLabels = map[string]string{
	workflow.RemixFluff:       "Retell with a touch of Magic Realism",
	workflow.RemixDialect:     "Add dialect spice",
	workflow.RemixRestyle:     "Try a different style",
	workflow.RemixPlaidgerize: "Maximum Plaidemonium",
	workflow.RemixTags:        "Shuffle enhancement tags",
	workflow.RemixNew:         "Start over",
}

// RemixMenu lists the remix options for the session's workflow.
func (e *Engine) RemixMenu(s *state.Session) menu.Menu {
	w, _ := workflow.Get(s.Workflow)
	opts := make([]menu.Option, 0, len(w.Remixes))
	for _, r := range w.Remixes {
		opts = append(opts, menu.Option{Name: r, Description: remixLabels[r]})
	}
	return menu.Fixed(opts, menu.NoControls)
}

// Remix mutates a copy of a generated session's selections or seeds and re-enters
// assembling. option is a remix name or its number in RemixMenu. "new" restarts.
func (e *Engine) Remix(s *state.Session, option string) (*Request, error) {
	w, ok := workflow.Get(s.Workflow)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorkflow, s.Workflow)
	}
	if s.Phase != state.PhaseGenerated {
		return nil, e.fail(s, ErrNotGenerated)
	}

	sel, err := menu.Interpret(e.rng, option, e.RemixMenu(s), nil, false)
	if err != nil || sel.Reshuffle {
		return nil, e.fail(s, fmt.Errorf("%w: %q", ErrInvalidRemix, strings.TrimSpace(option)))
	}
	name := sel.Option.Name

	if name == workflow.RemixNew {
		e.restart(s, w)
		return nil, nil
	}

	selections := s.Selections.Clone()
	seeds := s.Seeds.Clone()
	switch name {
	case workflow.RemixFluff:
		_ = selections.Overwrite(state.Style, fluffStyle)
	case workflow.RemixDialect:
		seeds.Set("trait", seeds.GetOr("trait", "grace")+dialectSuffix)
	case workflow.RemixRestyle:
		_ = selections.Overwrite(state.Style, e.otherStyle(selections.Style))
	case workflow.RemixPlaidgerize:
		_ = selections.Overwrite(state.Absurdity, e.maxAbsurdity())
	case workflow.RemixTags:
		_ = selections.Overwrite(state.Tags, strings.Join(e.randomTags(), ", "))
	}

	s.Selections = selections
	s.Seeds = seeds
	s.Remix = name
	e.logger.Debug("Remix applied", "session_id", s.ID, "remix", name)
	return e.buildPrompt(s, w)
}

func (e *Engine) otherStyle(current string) string {
	others := slices.DeleteFunc(e.cat.Styles.All(), func(o menu.Option) bool {
		return strings.EqualFold(o.Name, current)
	})
	if o, ok := menu.Pick(e.rng, others); ok {
		return o.Name
	}
	return current
}

// maxAbsurdity is the catalog's Plaidemonium level, or its last level.
func (e *Engine) maxAbsurdity() string {
	for _, a := range e.cat.Absurdity {
		if strings.HasPrefix(a.Name, "Plaidemonium") {
			return a.Name
		}
	}
	return e.cat.Absurdity[len(e.cat.Absurdity)-1].Name
}

func (e *Engine) randomTags() []string {
	var names []string
	for _, t := range e.cat.ImageTags {
		if t.Name != NoExtraTags {
			names = append(names, t.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return menu.Sample(e.rng, names, 1+e.rng.IntN(min(maxRemixTags, len(names))))
}
