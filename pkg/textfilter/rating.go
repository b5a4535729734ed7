package textfilter

import "strings"

// ShouldFilterContent determines if content should be filtered based on rating.
// Ratings at or below PG-13 are filtered; anything else, including blank, is not.
func ShouldFilterContent(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}

// ForRating returns a filter when the rating requires one, nil otherwise.
func ForRating(rating string) *ProfanityFilter {
	if !ShouldFilterContent(rating) {
		return nil
	}
	return NewProfanityFilter()
}

// Apply filters text when pf is non-nil.
func (pf *ProfanityFilter) Apply(text string) string {
	if pf == nil {
		return text
	}
	return pf.FilterText(text)
}
