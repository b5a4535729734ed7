package textfilter

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Common US English swear words that should be filtered for PG13 and lower content
var swearWords = []string{
	"fuck", "shit", "damn", "hell", "ass", "bitch", "bastard", "crap",
	"piss", "cock", "dick", "pussy", "tits", "boobs", "whore", "slut",
	"fag", "retard", "nigger", "nigga", "spic", "chink", "kike",
	"motherfucker", "goddamn", "jesus christ", "christ", "asshole",
	"dumbass", "jackass", "smartass", "badass", "bullshit", "horseshit",
	"dipshit", "shithead", "dickhead", "prick", "douche", "douchebag",
}

// swearWordReplacements maps swear words to family-friendly alternatives
var swearWordReplacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"ass":          "butt",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"cock":         "[censored]",
	"dick":         "jerk",
	"pussy":        "[censored]",
	"tits":         "[censored]",
	"boobs":        "[censored]",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"fag":          "[censored]",
	"retard":       "[censored]",
	"nigger":       "[censored]",
	"nigga":        "[censored]",
	"spic":         "[censored]",
	"chink":        "[censored]",
	"kike":         "[censored]",
	"motherfucker": "mother-trucker",
	"goddamn":      "gosh-dang",
	"jesus christ": "jeez",
	"christ":       "crikey",
	"asshole":      "jerk",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"smartass":     "smarty",
	"badass":       "tough",
	"bullshit":     "baloney",
	"horseshit":    "nonsense",
	"dipshit":      "dummy",
	"shithead":     "jerk",
	"dickhead":     "jerk",
	"prick":        "jerk",
	"douche":       "jerk",
	"douchebag":    "jerk",
}

// ProfanityFilter softens profanity in user-supplied text and generated stories.
type ProfanityFilter struct {
	pattern *regexp.Regexp
}

// NewProfanityFilter compiles every swear word into one case-insensitive pattern.
// Longer words are tried first so "bullshit" wins over "shit". A trailing "s" is
// treated as a plural and kept.
func NewProfanityFilter() *ProfanityFilter {
	words := slices.Clone(swearWords)
	slices.SortFunc(words, func(a, b string) int { return len(b) - len(a) })
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return &ProfanityFilter{
		pattern: regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)(s?)\b`),
	}
}

// FilterText replaces profanity with family-friendly alternatives, keeping the
// original capitalisation.
func (pf *ProfanityFilter) FilterText(text string) string {
	return pf.pattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := pf.pattern.FindStringSubmatch(match)
		word, plural := sub[1], sub[2]
		replacement, ok := swearWordReplacements[strings.ToLower(word)]
		if !ok {
			return match
		}
		return preserveCase(word, replacement) + plural
	})
}

// ContainsProfanity reports whether text holds any listed word.
func (pf *ProfanityFilter) ContainsProfanity(text string) bool {
	return pf.pattern.MatchString(text)
}

// preserveCase applies the case pattern of original to replacement.
func preserveCase(original, replacement string) string {
	switch {
	case original == "":
		return replacement
	case strings.ToUpper(original) == original:
		return strings.ToUpper(replacement)
	case strings.ToLower(original) == original:
		return strings.ToLower(replacement)
	}

	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// mixed case: copy case rune by rune, lowercase past the end of original
	orig := []rune(original)
	out := []rune(replacement)
	for i, r := range out {
		if i < len(orig) && unicode.IsUpper(orig[i]) {
			out[i] = unicode.ToUpper(r)
		} else {
			out[i] = unicode.ToLower(r)
		}
	}
	return string(out)
}
