package state

import "slices"

// Seed is one collected word or phrase.
type Seed struct {
	Slot  string `json:"slot"`
	Value string `json:"value"`
}

// Seeds is an ordered slot to value list.
type Seeds []Seed

// Get returns the value stored for slot.
func (s Seeds) Get(slot string) (string, bool) {
	for _, seed := range s {
		if seed.Slot == slot {
			return seed.Value, true
		}
	}
	return "", false
}

// GetOr returns the value for slot or fallback when it is missing or blank.
func (s Seeds) GetOr(slot, fallback string) string {
	if v, ok := s.Get(slot); ok && v != "" {
		return v
	}
	return fallback
}

// Set replaces the value for slot in place, or appends a new seed.
func (s *Seeds) Set(slot, value string) {
	for i := range *s {
		if (*s)[i].Slot == slot {
			(*s)[i].Value = value
			return
		}
	}
	*s = append(*s, Seed{Slot: slot, Value: value})
}

// Values lists seed values in slot order.
func (s Seeds) Values() []string {
	out := make([]string, len(s))
	for i, seed := range s {
		out[i] = seed.Value
	}
	return out
}

func (s Seeds) Clone() Seeds {
	return slices.Clone(s)
}
