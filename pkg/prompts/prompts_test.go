package prompts

import (
	"strings"
	"testing"

	"github.com/jwebster45206/plaidlibs/pkg/catalog"
	"github.com/jwebster45206/plaidlibs/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGuide() Guide {
	cat := catalog.Default()
	n, _ := cat.Narrator("MacQuip")
	return Guide{
		StyleRules:        cat.StyleRules,
		AbsurdityGuidance: cat.AbsurdityGuidance,
		Narrator:          n,
		Rating:            "PG",
	}
}

func testSelections(t *testing.T) state.Selections {
	t.Helper()
	var sel state.Selections
	require.NoError(t, sel.Set(state.Style, "Noir"))
	require.NoError(t, sel.Set(state.Genre, "Mystery"))
	require.NoError(t, sel.Set(state.Absurdity, "Plaidemonium™"))
	return sel
}

func TestAssemblePrompt_ContainsEverySeed(t *testing.T) {
	seeds := state.Seeds{
		{Slot: "name", Value: "Rowan"},
		{Slot: "place", Value: "Glimmerfall"},
		{Slot: "object", Value: "vending machine"},
		{Slot: "wild", Value: `a "quoted" 100% odd {thing}`},
	}
	got := AssemblePrompt(testSelections(t), seeds, testGuide())

	for _, s := range seeds {
		assert.Contains(t, got, s.Value)
	}
	assert.Contains(t, got, "You are MacQuip")
	assert.Contains(t, got, "Write a Noir story. Genre: Mystery.")
	assert.Contains(t, got, "Style rule: Narrate in first person")
	assert.Contains(t, got, "Absurdity: Plaidemonium™. Abandon all logic.")
	assert.Contains(t, got, ContentRatingPG)
	assert.True(t, strings.HasSuffix(got, StoryPostPrompt))
}

func TestAssemblePrompt_Deterministic(t *testing.T) {
	sel := testSelections(t)
	seeds := state.Seeds{{Slot: "name", Value: "Harper"}}
	g := testGuide()

	first := AssemblePrompt(sel, seeds, g)
	for range 5 {
		assert.Equal(t, first, AssemblePrompt(sel, seeds, g))
	}
}

func TestAssemblePrompt_Fallbacks(t *testing.T) {
	var sel state.Selections
	require.NoError(t, sel.Set(state.Style, "Limerick"))
	require.NoError(t, sel.Set(state.Absurdity, "Cosmic"))

	got := AssemblePrompt(sel, nil, Guide{})

	assert.Contains(t, got, "You are the narrator,")
	assert.Contains(t, got, "Genre: narrator's choice.")
	assert.Contains(t, got, "Style rule: Write in the Limerick style.")
	assert.Contains(t, got, "Absurdity: Cosmic. Keep the absurdity at Cosmic.")
	assert.Contains(t, got, ContentRatingPG13)
	assert.NotContains(t, got, "Use every one of these words")
}

func TestAssemblePrompt_DetailsInOrder(t *testing.T) {
	var sel state.Selections
	require.NoError(t, sel.Set(state.Description, "A fox in a plaid scarf"))
	require.NoError(t, sel.Set(state.Caption, ""))
	require.NoError(t, sel.Set(state.Mood, "wistful"))
	require.NoError(t, sel.Set(state.Style, "Ballads"))
	require.NoError(t, sel.Set(state.Concept, "a heist"))

	got := AssemblePrompt(sel, nil, testGuide())

	assert.Contains(t, got, "Details:\n- description: A fox in a plaid scarf\n- mood: wistful\n")
	assert.NotContains(t, got, "- caption:")
	assert.Contains(t, got, `Concept: "a heist"`)
}

func TestVisualPrompt(t *testing.T) {
	got := VisualPrompt("3-Panel Comic", "Noir", "  A fox at a bus stop ", []string{"Cinematic Lighting", "Showcase Plaid Clothing"}, "Plaid lines anchor a surreal cascade.")

	want := "[VISUAL CONFIGURATION]\n" +
		"Format: 3-Panel Comic\n" +
		"Style: Noir\n" +
		"Description: \"A fox at a bus stop\"\n" +
		"Enhancements: Cinematic Lighting, Showcase Plaid Clothing\n\n" +
		VisualConstraints + "\n" +
		"\nShort creative blurb:\n" +
		"Plaid lines anchor a surreal cascade."
	assert.Equal(t, want, got)

	assert.Contains(t, VisualPrompt("Poster", "Mythic", "x", nil, ""), "Enhancements: None")
}

func TestGetContentRatingPrompt(t *testing.T) {
	tests := map[string]string{
		"G":     ContentRatingG,
		"pg":    ContentRatingPG,
		"PG13":  ContentRatingPG13,
		"PG-13": ContentRatingPG13,
		"R":     ContentRatingR,
		"":      ContentRatingPG13,
	}
	for rating, want := range tests {
		if got := GetContentRatingPrompt(rating); got != want {
			t.Errorf("GetContentRatingPrompt(%q) = %q, want %q", rating, got, want)
		}
	}
}
