package menu

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// ErrInvalidChoice is returned when an answer matches no menu entry and free text is not allowed.
var ErrInvalidChoice = errors.New("invalid choice")

// Selection is the interpreted answer to a menu.
type Selection struct {
	Option    Option
	Reshuffle bool // rebuild the menu, nothing selected
	WildCard  bool // Option was drawn at random
	Custom    bool // Option.Name is the user's own text
}

func folded(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Interpret resolves a raw answer against the displayed menu.
//
// Lookup order: numeric key, exact name, unique name prefix, then free text when allowed.
// A wild card draws from pool, the full candidate list, not just what is displayed; an
// empty pool falls back to the displayed options. Prefixes matching more than one
// entry are treated as no match.
func Interpret(rng Rand, raw string, m Menu, pool []Option, allowFreeText bool) (Selection, error) {
	answer := strings.TrimSpace(raw)
	if answer == "" {
		return Selection{}, ErrInvalidChoice
	}

	if e, ok := m.Options[answer]; ok {
		return resolve(rng, e, m, pool)
	}

	want := folded(answer)
	var prefixed []Entry
	for i := 1; i <= len(m.Options); i++ {
		e, ok := m.Options[strconv.Itoa(i)]
		if !ok {
			break
		}
		name := folded(e.Option.Name)
		if name == want {
			return resolve(rng, e, m, pool)
		}
		if strings.HasPrefix(name, want) {
			prefixed = append(prefixed, e)
		}
	}
	if len(prefixed) == 1 {
		return resolve(rng, prefixed[0], m, pool)
	}

	if allowFreeText {
		return Selection{Option: Option{Name: answer}, Custom: true}, nil
	}
	return Selection{}, ErrInvalidChoice
}

func resolve(rng Rand, e Entry, m Menu, pool []Option) (Selection, error) {
	switch e.Kind {
	case KindReshuffle:
		return Selection{Reshuffle: true}, nil
	case KindWildCard:
		candidates := pool
		if len(candidates) == 0 {
			candidates = m.Displayed()
		}
		opt, ok := Pick(rng, candidates)
		if !ok {
			return Selection{}, ErrInvalidChoice
		}
		return Selection{Option: opt, WildCard: true}, nil
	default:
		return Selection{Option: e.Option}, nil
	}
}
