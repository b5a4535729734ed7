package menu

import (
	"fmt"
	"strconv"
	"strings"
)

// Names of the reserved control entries appended after the real options.
const (
	WildCardName  = "Wild Card"
	ReshuffleName = "Reshuffle"
)

// Option is a single choice a user can pick from a menu.
type Option struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Pool groups the options for one decision point. Menus draw from Core first, then Flex, then Bonus.
type Pool struct {
	Core  []Option `json:"core" yaml:"core"`
	Flex  []Option `json:"flex,omitempty" yaml:"flex,omitempty"`
	Bonus []Option `json:"bonus,omitempty" yaml:"bonus,omitempty"`
}

// All returns every option in group order.
func (p Pool) All() []Option {
	all := make([]Option, 0, p.Size())
	all = append(all, p.Core...)
	all = append(all, p.Flex...)
	all = append(all, p.Bonus...)
	return all
}

// Size is the number of options across all groups.
func (p Pool) Size() int {
	return len(p.Core) + len(p.Flex) + len(p.Bonus)
}

// Counts is how many options to sample from each group.
type Counts struct {
	Core  int `json:"core" yaml:"core"`
	Flex  int `json:"flex,omitempty" yaml:"flex,omitempty"`
	Bonus int `json:"bonus,omitempty" yaml:"bonus,omitempty"`
}

// Total is the requested number of real options.
func (c Counts) Total() int {
	return c.Core + c.Flex + c.Bonus
}

// Controls selects which control entries are appended to a menu.
type Controls int

const (
	NoControls Controls = iota
	WildCardOnly
	WildCardAndReshuffle
)

// EntryKind tells a real option apart from a control entry.
type EntryKind string

const (
	KindOption    EntryKind = "option"
	KindWildCard  EntryKind = "wild_card"
	KindReshuffle EntryKind = "reshuffle"
)

// Entry is one numbered line of a rendered menu.
type Entry struct {
	Kind   EntryKind `json:"kind"`
	Option Option    `json:"option"`
}

// Menu is a rendered, numbered option set. Options is keyed by "1".."N".
type Menu struct {
	Text    string           `json:"text"`
	Options map[string]Entry `json:"options"`
}

// Len returns the number of numbered entries, controls included.
func (m Menu) Len() int {
	return len(m.Options)
}

// Displayed returns the real options in display order, without controls.
func (m Menu) Displayed() []Option {
	var out []Option
	for i := 1; i <= len(m.Options); i++ {
		e, ok := m.Options[strconv.Itoa(i)]
		if !ok {
			break
		}
		if e.Kind == KindOption {
			out = append(out, e.Option)
		}
	}
	return out
}

// Build samples without replacement from each group of the pool and appends the requested controls.
// Groups smaller than their count contribute all their members.
func Build(rng Rand, pool Pool, counts Counts, controls Controls) Menu {
	picked := make([]Option, 0, counts.Total())
	picked = append(picked, Sample(rng, pool.Core, counts.Core)...)
	picked = append(picked, Sample(rng, pool.Flex, counts.Flex)...)
	picked = append(picked, Sample(rng, pool.Bonus, counts.Bonus)...)
	return render(picked, controls)
}

// Fixed renders options in the order given, with no sampling.
func Fixed(options []Option, controls Controls) Menu {
	return render(options, controls)
}

func render(options []Option, controls Controls) Menu {
	m := Menu{Options: make(map[string]Entry, len(options)+2)}
	var b strings.Builder
	n := 0
	add := func(e Entry, desc string) {
		n++
		key := strconv.Itoa(n)
		m.Options[key] = e
		if desc != "" {
			fmt.Fprintf(&b, "%s. %s - %s\n", key, e.Option.Name, desc)
		} else {
			fmt.Fprintf(&b, "%s. %s\n", key, e.Option.Name)
		}
	}

	for _, opt := range options {
		add(Entry{Kind: KindOption, Option: opt}, opt.Description)
	}
	if controls >= WildCardOnly {
		add(Entry{Kind: KindWildCard, Option: Option{Name: WildCardName}}, "Surprise pick!")
	}
	if controls >= WildCardAndReshuffle {
		add(Entry{Kind: KindReshuffle, Option: Option{Name: ReshuffleName}}, "Show different options")
	}

	m.Text = strings.TrimRight(b.String(), "\n")
	return m
}
