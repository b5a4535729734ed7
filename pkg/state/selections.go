package state

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrAlreadySelected = errors.New("decision point already selected")
	ErrUnknownDecision = errors.New("unknown decision point")
)

// DecisionPoint names one recorded choice in a workflow.
type DecisionPoint string

const (
	Style       DecisionPoint = "style"
	Genre       DecisionPoint = "genre"
	Absurdity   DecisionPoint = "absurdity"
	Format      DecisionPoint = "format"
	Concept     DecisionPoint = "concept"
	Description DecisionPoint = "description"
	Caption     DecisionPoint = "caption"
	Mood        DecisionPoint = "mood"
	Focal       DecisionPoint = "focal"
	Environment DecisionPoint = "environment"
	Tags        DecisionPoint = "tags"
)

// Selections records one value per decision point. Order keeps insertion order for prompt assembly.
type Selections struct {
	Style         string          `json:"style,omitempty"`
	Genre         string          `json:"genre,omitempty"`
	Absurdity     string          `json:"absurdity,omitempty"`
	Format        string          `json:"format,omitempty"`
	Concept       string          `json:"concept,omitempty"`     // storyline concept or plaidplay master prompt
	Description   string          `json:"description,omitempty"` // image description
	Caption       string          `json:"caption,omitempty"`
	Mood          string          `json:"mood,omitempty"`
	Focal         string          `json:"focal,omitempty"`
	Environment   string          `json:"environment,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
	ImageUploaded bool            `json:"image_uploaded,omitempty"`
	Order         []DecisionPoint `json:"order,omitempty"`
}

// Entry is a decision point with its recorded value.
type Entry struct {
	Point DecisionPoint `json:"point"`
	Value string        `json:"value"`
}

func (s *Selections) field(dp DecisionPoint) (*string, error) {
	switch dp {
	case Style:
		return &s.Style, nil
	case Genre:
		return &s.Genre, nil
	case Absurdity:
		return &s.Absurdity, nil
	case Format:
		return &s.Format, nil
	case Concept:
		return &s.Concept, nil
	case Description:
		return &s.Description, nil
	case Caption:
		return &s.Caption, nil
	case Mood:
		return &s.Mood, nil
	case Focal:
		return &s.Focal, nil
	case Environment:
		return &s.Environment, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDecision, dp)
}

// Has reports whether dp has been recorded.
func (s *Selections) Has(dp DecisionPoint) bool {
	return slices.Contains(s.Order, dp)
}

// Set records value under dp. A decision point can only be set once.
func (s *Selections) Set(dp DecisionPoint, value string) error {
	if dp == Tags {
		return s.SetTags(splitTags(value))
	}
	f, err := s.field(dp)
	if err != nil {
		return err
	}
	if s.Has(dp) {
		return fmt.Errorf("%w: %s", ErrAlreadySelected, dp)
	}
	*f = value
	s.Order = append(s.Order, dp)
	return nil
}

// SetTags records the enhancement tag list.
func (s *Selections) SetTags(tags []string) error {
	if s.Has(Tags) {
		return fmt.Errorf("%w: %s", ErrAlreadySelected, Tags)
	}
	s.Tags = slices.Clone(tags)
	s.Order = append(s.Order, Tags)
	return nil
}

// Overwrite replaces a recorded value. Used by remix only.
func (s *Selections) Overwrite(dp DecisionPoint, value string) error {
	if dp == Tags {
		s.Tags = splitTags(value)
	} else {
		f, err := s.field(dp)
		if err != nil {
			return err
		}
		*f = value
	}
	if !s.Has(dp) {
		s.Order = append(s.Order, dp)
	}
	return nil
}

// Get returns the recorded value for dp.
func (s *Selections) Get(dp DecisionPoint) (string, bool) {
	if !s.Has(dp) {
		return "", false
	}
	if dp == Tags {
		return strings.Join(s.Tags, ", "), true
	}
	f, err := s.field(dp)
	if err != nil {
		return "", false
	}
	return *f, true
}

// Entries lists recorded values in the order they were chosen.
func (s *Selections) Entries() []Entry {
	out := make([]Entry, 0, len(s.Order))
	for _, dp := range s.Order {
		v, _ := s.Get(dp)
		out = append(out, Entry{Point: dp, Value: v})
	}
	return out
}

// Clone returns a deep copy.
func (s Selections) Clone() Selections {
	s.Tags = slices.Clone(s.Tags)
	s.Order = slices.Clone(s.Order)
	return s
}

func splitTags(value string) []string {
	var tags []string
	for t := range strings.SplitSeq(value, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
