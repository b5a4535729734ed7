package textfilter

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Highlight wraps every case-insensitive whole-word occurrence of words in markdown bold.
// Longer phrases take precedence, so "East Gate" is bolded once rather than "Gate" inside it.
func Highlight(text string, words []string) string {
	uniq := make([]string, 0, len(words))
	seen := map[string]bool{}
	for _, w := range words {
		w = strings.TrimSpace(w)
		key := strings.ToLower(w)
		if w == "" || seen[key] {
			continue
		}
		seen[key] = true
		uniq = append(uniq, w)
	}
	if len(uniq) == 0 || text == "" {
		return text
	}
	slices.SortStableFunc(uniq, func(a, b string) int { return len(b) - len(a) })

	alts := make([]string, len(uniq))
	for i, w := range uniq {
		alts[i] = boundary(w)
	}
	re := regexp.MustCompile(`(?i)` + strings.Join(alts, "|"))
	return re.ReplaceAllString(text, "**${0}**")
}

// boundary quotes w and anchors it on word boundaries where its edges are word characters.
func boundary(w string) string {
	q := regexp.QuoteMeta(w)
	first, _ := utf8.DecodeRuneInString(w)
	last, _ := utf8.DecodeLastRuneInString(w)
	if isWord(first) {
		q = `\b` + q
	}
	if isWord(last) {
		q += `\b`
	}
	return q
}

// isWord matches the ASCII-only definition RE2 uses for \b.
func isWord(r rune) bool {
	return r < utf8.RuneSelf && (r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
}
