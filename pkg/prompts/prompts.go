package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/plaidlibs/pkg/catalog"
	"github.com/jwebster45206/plaidlibs/pkg/state"
)

// Content rating prompts.
const (
	RatingG    = "G"
	RatingPG   = "PG"
	RatingPG13 = "PG-13"
	RatingR    = "R"

	ContentRatingG    = `Write content suitable for young children. Avoid violence, romance and scary elements. Use simple language and positive messages.`
	ContentRatingPG   = `Write content suitable for children and families. Mild peril or tension is okay, but avoid strong language, explicit violence, or dark themes.`
	ContentRatingPG13 = `Write content appropriate for teenagers. Mild swearing, romantic tension and action are fine, but avoid explicit adult situations, graphic violence, or drug use.`
	ContentRatingR    = `Write with full freedom for adult audiences.`
)

// StoryPostPrompt closes every story prompt.
const StoryPostPrompt = "Return only the story text in markdown, with no title line and no commentary."

// VisualConstraints is appended to every visual configuration.
const VisualConstraints = "Constraints: Bright white background; visible plaid elements where appropriate; match selected style."

// GetContentRatingPrompt returns the rating instruction, defaulting to PG-13.
func GetContentRatingPrompt(rating string) string {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case RatingG:
		return ContentRatingG
	case RatingPG:
		return ContentRatingPG
	case "PG13", RatingPG13:
		return ContentRatingPG13
	case RatingR:
		return ContentRatingR
	default:
		return ContentRatingPG13
	}
}

// Guide carries the catalog rules a story prompt is built from.
type Guide struct {
	StyleRules        map[string]string
	AbsurdityGuidance map[string]string
	Narrator          catalog.Narrator
	Rating            string
}

// AssemblePrompt interpolates selections and seeds into the instruction handed to the
// text generator. It is deterministic and every seed value appears verbatim.
func AssemblePrompt(sel state.Selections, seeds state.Seeds, g Guide) string {
	var sb strings.Builder

	narrator := g.Narrator.Name
	if narrator == "" {
		narrator = "the narrator"
	}
	fmt.Fprintf(&sb, "You are %s, the storyteller of PlaidLibs.", narrator)
	if g.Narrator.Voice != "" {
		fmt.Fprintf(&sb, " Your voice: %s.", g.Narrator.Voice)
	}
	sb.WriteString("\n\n")

	style := orDefault(sel.Style, "Flash Fiction")
	genre := orDefault(sel.Genre, "narrator's choice")
	fmt.Fprintf(&sb, "Write a %s story. Genre: %s.\n", style, genre)

	rule, ok := g.StyleRules[style]
	if !ok || rule == "" {
		rule = fmt.Sprintf("Write in the %s style.", style)
	}
	fmt.Fprintf(&sb, "Style rule: %s\n", rule)

	if sel.Absurdity != "" {
		guidance, ok := g.AbsurdityGuidance[sel.Absurdity]
		if !ok || guidance == "" {
			guidance = fmt.Sprintf("Keep the absurdity at %s.", sel.Absurdity)
		}
		fmt.Fprintf(&sb, "Absurdity: %s. %s\n", sel.Absurdity, guidance)
	}
	if sel.Concept != "" {
		fmt.Fprintf(&sb, "Concept: \"%s\"\n", sel.Concept)
	}

	var details []string
	for _, e := range sel.Entries() {
		switch e.Point {
		case state.Style, state.Genre, state.Absurdity, state.Concept:
			continue
		}
		if e.Value != "" {
			details = append(details, fmt.Sprintf("- %s: %s", e.Point, e.Value))
		}
	}
	if len(details) > 0 {
		sb.WriteString("\nDetails:\n")
		sb.WriteString(strings.Join(details, "\n"))
		sb.WriteString("\n")
	}

	if len(seeds) > 0 {
		sb.WriteString("\nUse every one of these words or phrases at least once, exactly as written:\n")
		for _, s := range seeds {
			fmt.Fprintf(&sb, "- %s: %s\n", s.Slot, s.Value)
		}
	}

	if g.Narrator.Intro != "" {
		fmt.Fprintf(&sb, "\nOpen in character, in the spirit of: \"%s\"\n", g.Narrator.Intro)
	}
	if g.Narrator.Outro != "" {
		fmt.Fprintf(&sb, "Sign off in character, in the spirit of: \"%s\"\n", g.Narrator.Outro)
	}

	fmt.Fprintf(&sb, "\nContent rating: %s\n", GetContentRatingPrompt(g.Rating))
	sb.WriteString(StoryPostPrompt)
	return sb.String()
}

// VisualPrompt renders the visual configuration block for image generation. The blurb
// is passed in so the output stays deterministic.
func VisualPrompt(format, style, description string, tags []string, blurb string) string {
	var sb strings.Builder
	sb.WriteString("[VISUAL CONFIGURATION]\n")
	fmt.Fprintf(&sb, "Format: %s\n", format)
	fmt.Fprintf(&sb, "Style: %s\n", style)
	fmt.Fprintf(&sb, "Description: \"%s\"\n", strings.TrimSpace(description))
	enh := "None"
	if len(tags) > 0 {
		enh = strings.Join(tags, ", ")
	}
	fmt.Fprintf(&sb, "Enhancements: %s\n\n", enh)
	sb.WriteString(VisualConstraints + "\n")
	if blurb != "" {
		sb.WriteString("\nShort creative blurb:\n")
		sb.WriteString(blurb)
	}
	return sb.String()
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
