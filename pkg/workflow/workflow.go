// Package workflow defines the ordered decision points of each PlaidLibs workflow.
package workflow

import (
	"github.com/jwebster45206/plaidlibs/pkg/catalog"
	"github.com/jwebster45206/plaidlibs/pkg/menu"
	"github.com/jwebster45206/plaidlibs/pkg/state"
)

// Workflow IDs.
const (
	LibAte       = "lib-ate"
	CreateDirect = "create-direct"
	Storyline    = "storyline"
	PlaidPic     = "plaidpic"
	PlaidMagGen  = "plaidmaggen"
	PlaidPlay    = "plaidplay"
	PlaidChat    = "plaidchat"
)

// StepKind decides how a raw answer is read.
type StepKind string

const (
	StepChoice  StepKind = "choice"  // numbered menu
	StepText    StepKind = "text"    // free text
	StepConfirm StepKind = "confirm" // ready confirmation
	StepSeeds   StepKind = "seeds"   // one answer per seed slot
	StepTags    StepKind = "tags"    // comma-separated menu picks
	StepPlayers StepKind = "players" // player count
	StepChat    StepKind = "chat"    // open conversation
)

// Output is what a finished workflow produces.
type Output string

const (
	OutputStory       Output = "story"
	OutputVisual      Output = "visual"
	OutputStoryVisual Output = "story+visual"
	OutputPlay        Output = "play"
	OutputChat        Output = "chat"
)

// SeedSource says where seeds come from when the session reaches assembly.
type SeedSource string

const (
	SeedsCollected SeedSource = "collected" // asked slot by slot
	SeedsAuto      SeedSource = "auto"      // drawn from slot candidates
	SeedsConcept   SeedSource = "concept"   // pulled from the storyline concept
	SeedsImage     SeedSource = "image"     // labels from the image analysis
	SeedsNone      SeedSource = ""
)

// Remix options offered after generation.
const (
	RemixFluff       = "fluff"
	RemixDialect     = "dialect"
	RemixRestyle     = "restyle"
	RemixPlaidgerize = "plaidgerize"
	RemixTags        = "tags"
	RemixNew         = "new"
)

// Step is one decision point.
type Step struct {
	Kind      StepKind            `json:"kind"`
	Point     state.DecisionPoint `json:"point,omitempty"`
	Title     string              `json:"title"`
	Prompt    string              `json:"prompt,omitempty"`
	Pool      string              `json:"pool,omitempty"`  // catalog pool name for choice and tags steps
	Counts    menu.Counts         `json:"counts,omitzero"` // sampled menus only
	Fixed     bool                `json:"fixed,omitempty"` // show the whole pool in catalog order
	Controls  menu.Controls       `json:"controls"`
	FreeText  bool                `json:"free_text,omitempty"`
	Required  bool                `json:"required,omitempty"`
	Default   string              `json:"default,omitempty"` // used for blank optional answers
	AcceptAny bool                `json:"accept_any,omitempty"`
}

// Workflow is an ordered list of steps plus how its seeds and output are produced.
type Workflow struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Steps       []Step     `json:"steps"`
	Seeds       SeedSource `json:"seeds,omitempty"`
	Output      Output     `json:"output"`
	Remixes     []string   `json:"remixes,omitempty"`
}

// Step returns the 1-based step n.
func (w Workflow) Step(n int) (Step, bool) {
	if n < 1 || n > len(w.Steps) {
		return Step{}, false
	}
	return w.Steps[n-1], true
}

var (
	styleStep = Step{
		Kind:     StepChoice,
		Point:    state.Style,
		Title:    "Literary style",
		Prompt:   "Choose your literary style:",
		Pool:     catalog.PoolStyles,
		Counts:   menu.Counts{Core: 5},
		Controls: menu.WildCardAndReshuffle,
	}
	genreStep = Step{
		Kind:     StepChoice,
		Point:    state.Genre,
		Title:    "Genre",
		Prompt:   "Choose your genre:",
		Pool:     catalog.PoolGenres,
		Counts:   menu.Counts{Core: 3, Flex: 2, Bonus: 1},
		Controls: menu.WildCardAndReshuffle,
	}
	absurdityStep = Step{
		Kind:     StepChoice,
		Point:    state.Absurdity,
		Title:    "Absurdity level",
		Prompt:   "How much chaos?",
		Pool:     catalog.PoolAbsurdity,
		Fixed:    true,
		Controls: menu.WildCardOnly,
	}
)

var workflows = []Workflow{
	{
		ID:          LibAte,
		Name:        "Lib-Ate",
		Description: "Strict step-by-step word collection.",
		Steps: []Step{
			styleStep,
			genreStep,
			absurdityStep,
			{Kind: StepConfirm, Title: "Ready", Prompt: "I'll need 12 words or phrases from you. Type 'yes' or 'let's go' to start:"},
			{Kind: StepSeeds, Title: "Word collection", Prompt: "If you draw a blank, type \"surprise me\"."},
		},
		Seeds:   SeedsCollected,
		Output:  OutputStory,
		Remixes: []string{RemixFluff, RemixDialect, RemixRestyle, RemixPlaidgerize, RemixNew},
	},
	{
		ID:          CreateDirect,
		Name:        "Create Direct",
		Description: "Instant story with auto-picked seeds.",
		Steps: []Step{
			styleStep,
			genreStep,
			absurdityStep,
			{Kind: StepConfirm, Title: "Ready", Prompt: "Ready for your instant story? Type 'Let's Go' or anything at all:", AcceptAny: true},
		},
		Seeds:   SeedsAuto,
		Output:  OutputStory,
		Remixes: []string{RemixFluff, RemixDialect, RemixRestyle, RemixPlaidgerize, RemixNew},
	},
	{
		ID:          Storyline,
		Name:        "Storyline",
		Description: "Your concept, turned into a story.",
		Steps: []Step{
			{Kind: StepText, Point: state.Concept, Title: "Story concept", Prompt: "Describe your story idea in a sentence or two:", Required: true},
			styleStep,
			absurdityStep,
		},
		Seeds:   SeedsConcept,
		Output:  OutputStory,
		Remixes: []string{RemixFluff, RemixDialect, RemixRestyle, RemixPlaidgerize, RemixNew},
	},
	{
		ID:          PlaidPic,
		Name:        "PlaidPic",
		Description: "An image description turned into a story and a visual prompt.",
		Steps: []Step{
			{Kind: StepText, Point: state.Description, Title: "Image or description", Prompt: "Describe what's in the image:"},
			{Kind: StepText, Point: state.Caption, Title: "Short caption", Prompt: "Short caption (optional):"},
			{Kind: StepText, Point: state.Mood, Title: "Mood / tone", Prompt: "Mood or tone (optional):", Default: "restless"},
			{Kind: StepText, Point: state.Focal, Title: "Focal element", Prompt: "Focal element (optional):", Default: "lantern"},
			{Kind: StepText, Point: state.Environment, Title: "Environment", Prompt: "Environment (optional):", Default: "Rainmarket"},
			styleStep,
			genreStep,
			absurdityStep,
		},
		Seeds:   SeedsImage,
		Output:  OutputStoryVisual,
		Remixes: []string{RemixRestyle, RemixPlaidgerize, RemixNew},
	},
	{
		ID:          PlaidMagGen,
		Name:        "PlaidMagGen",
		Description: "Visual prompt builder for image generation.",
		Steps: []Step{
			{Kind: StepChoice, Point: state.Format, Title: "Format", Prompt: "Choose a format:", Pool: catalog.PoolFormats, Fixed: true, Controls: menu.WildCardOnly},
			styleStep,
			{Kind: StepText, Point: state.Description, Title: "Description", Prompt: "Describe the image you want:", Required: true},
			{Kind: StepTags, Point: state.Tags, Title: "Enhancements", Prompt: "Pick enhancement tags, comma separated (e.g. 1,3):", Pool: catalog.PoolImageTags, Fixed: true},
		},
		Output:  OutputVisual,
		Remixes: []string{RemixRestyle, RemixTags, RemixNew},
	},
	{
		ID:          PlaidPlay,
		Name:        "PlaidPlay",
		Description: "Simulated multiplayer round with random voting.",
		Steps: []Step{
			{Kind: StepPlayers, Title: "Players", Prompt: "How many players?", Default: "4"},
			{Kind: StepText, Point: state.Concept, Title: "Master prompt", Prompt: "Master prompt for this round:"},
		},
		Output:  OutputPlay,
		Remixes: []string{RemixNew},
	},
	{
		ID:          PlaidChat,
		Name:        "PlaidChat",
		Description: "Open-ended chat with your narrator.",
		Steps: []Step{
			{Kind: StepChat, Title: "Chat", Prompt: "Say anything."},
		},
		Output: OutputChat,
	},
}

// Get looks up a workflow by ID.
func Get(id string) (Workflow, bool) {
	for _, w := range workflows {
		if w.ID == id {
			return w, true
		}
	}
	return Workflow{}, false
}

// All returns every workflow in menu order.
func All() []Workflow {
	out := make([]Workflow, len(workflows))
	copy(out, workflows)
	return out
}
