package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/plaidlibs/pkg/menu"
)

//go:embed default.yaml
var defaultYAML []byte

// Pool names usable from workflow step definitions.
const (
	PoolStyles    = "styles"
	PoolGenres    = "genres"
	PoolAbsurdity = "absurdity"
	PoolFormats   = "formats"
	PoolImageTags = "image_tags"
)

// SeedSlot is one word prompt in seed collection.
type SeedSlot struct {
	Key        string   `yaml:"key" json:"key"`
	Title      string   `yaml:"title" json:"title"`
	Hint       string   `yaml:"hint" json:"hint"`
	Candidates []string `yaml:"candidates" json:"candidates"` // drawn from on "surprise me"
}

// Narrator is a storyteller persona ("Quip").
type Narrator struct {
	Name     string `yaml:"name" json:"name"`
	Greeting string `yaml:"greeting" json:"greeting"`
	Intro    string `yaml:"intro" json:"intro"`
	Outro    string `yaml:"outro" json:"outro"`
	Voice    string `yaml:"voice" json:"voice"` // short persona description for chat
}

// ConceptHints are the word lists used to pull seeds out of a free-text concept.
type ConceptHints struct {
	Professions []string `yaml:"professions" json:"professions"`
	Adjectives  []string `yaml:"adjectives" json:"adjectives"`
}

// PlayWords configures the simulated multiplayer round.
type PlayWords struct {
	DefaultPrompt string   `yaml:"default_prompt" json:"default_prompt"`
	MinPlayers    int      `yaml:"min_players" json:"min_players"`
	MaxPlayers    int      `yaml:"max_players" json:"max_players"`
	Nouns         []string `yaml:"nouns" json:"nouns"`
	Adjectives    []string `yaml:"adjectives" json:"adjectives"`
	Wilds         []string `yaml:"wilds" json:"wilds"`
}

// Catalog holds every option pool and word list the engine draws from.
type Catalog struct {
	Styles            menu.Pool         `yaml:"styles" json:"styles"`
	StyleRules        map[string]string `yaml:"style_rules" json:"style_rules"`
	Genres            menu.Pool         `yaml:"genres" json:"genres"`
	Absurdity         []menu.Option     `yaml:"absurdity" json:"absurdity"`
	AbsurdityGuidance map[string]string `yaml:"absurdity_guidance" json:"absurdity_guidance"`
	Formats           []menu.Option     `yaml:"formats" json:"formats"`
	ImageTags         []menu.Option     `yaml:"image_tags" json:"image_tags"`
	VisualBlurbs      []string          `yaml:"visual_blurbs" json:"visual_blurbs"`
	SeedSlots         []SeedSlot        `yaml:"seed_slots" json:"seed_slots"`
	Surprises         []string          `yaml:"surprises" json:"surprises"`
	ConceptHints      ConceptHints      `yaml:"concept_hints" json:"concept_hints"`
	DefaultNarrator   string            `yaml:"default_narrator" json:"default_narrator"`
	Narrators         []Narrator        `yaml:"narrators" json:"narrators"`
	Play              PlayWords         `yaml:"play" json:"play"`
}

// Default returns the built-in catalog. It panics if the embedded file is broken.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog and validates it.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports every structural problem at once.
func (c *Catalog) Validate() error {
	var errs []error
	if c.Styles.Size() == 0 {
		errs = append(errs, errors.New("styles: at least one style is required"))
	}
	if c.Genres.Size() == 0 {
		errs = append(errs, errors.New("genres: at least one genre is required"))
	}
	if len(c.Absurdity) == 0 {
		errs = append(errs, errors.New("absurdity: at least one level is required"))
	}
	if len(c.Formats) == 0 {
		errs = append(errs, errors.New("formats: at least one format is required"))
	}
	errs = append(errs, duplicates("styles", c.Styles.All())...)
	errs = append(errs, duplicates("genres", c.Genres.All())...)
	errs = append(errs, duplicates("absurdity", c.Absurdity)...)

	slots := map[string]bool{}
	for i, s := range c.SeedSlots {
		switch {
		case s.Key == "":
			errs = append(errs, fmt.Errorf("seed_slots[%d]: key is required", i))
		case slots[s.Key]:
			errs = append(errs, fmt.Errorf("seed_slots[%d]: duplicate key %q", i, s.Key))
		}
		slots[s.Key] = true
		if len(s.Candidates) == 0 && len(c.Surprises) == 0 {
			errs = append(errs, fmt.Errorf("seed_slots[%d]: no candidates and no shared surprises", i))
		}
	}

	if len(c.Narrators) == 0 {
		errs = append(errs, errors.New("narrators: at least one narrator is required"))
	} else if c.DefaultNarrator == "" {
		c.DefaultNarrator = c.Narrators[0].Name
	} else if _, ok := c.Narrator(c.DefaultNarrator); !ok {
		errs = append(errs, fmt.Errorf("default_narrator: %q is not a narrator", c.DefaultNarrator))
	}

	if c.Play.MinPlayers > c.Play.MaxPlayers {
		errs = append(errs, fmt.Errorf("play: min_players %d exceeds max_players %d", c.Play.MinPlayers, c.Play.MaxPlayers))
	}
	return errors.Join(errs...)
}

func duplicates(field string, options []menu.Option) []error {
	var errs []error
	seen := map[string]bool{}
	for _, o := range options {
		if o.Name == "" {
			errs = append(errs, fmt.Errorf("%s: option name is required", field))
			continue
		}
		key := strings.ToLower(o.Name)
		if seen[key] {
			errs = append(errs, fmt.Errorf("%s: duplicate option %q", field, o.Name))
		}
		seen[key] = true
	}
	return errs
}

// Pool returns the named option pool. Flat lists are returned as a core-only pool.
func (c *Catalog) Pool(name string) (menu.Pool, bool) {
	switch name {
	case PoolStyles:
		return c.Styles, true
	case PoolGenres:
		return c.Genres, true
	case PoolAbsurdity:
		return menu.Pool{Core: c.Absurdity}, true
	case PoolFormats:
		return menu.Pool{Core: c.Formats}, true
	case PoolImageTags:
		return menu.Pool{Core: c.ImageTags}, true
	}
	return menu.Pool{}, false
}

// Narrator looks up a narrator by case-insensitive name.
func (c *Catalog) Narrator(name string) (Narrator, bool) {
	for _, n := range c.Narrators {
		if strings.EqualFold(n.Name, strings.TrimSpace(name)) {
			return n, true
		}
	}
	return Narrator{}, false
}

// NarratorNames lists narrator names in catalog order.
func (c *Catalog) NarratorNames() []string {
	names := make([]string, len(c.Narrators))
	for i, n := range c.Narrators {
		names[i] = n.Name
	}
	return names
}

// SeedSlot looks up a seed slot by key.
func (c *Catalog) SeedSlot(key string) (SeedSlot, bool) {
	for _, s := range c.SeedSlots {
		if s.Key == key {
			return s, true
		}
	}
	return SeedSlot{}, false
}

// SlotCandidates returns the slot's own candidates, falling back to the shared surprise list.
func (c *Catalog) SlotCandidates(key string) []string {
	if s, ok := c.SeedSlot(key); ok && len(s.Candidates) > 0 {
		return s.Candidates
	}
	return c.Surprises
}
