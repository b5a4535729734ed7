package state

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jwebster45206/plaidlibs/pkg/chat"
	"github.com/jwebster45206/plaidlibs/pkg/menu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelections_SetIsImmutable(t *testing.T) {
	var s Selections
	require.NoError(t, s.Set(Style, "Noir"))

	err := s.Set(Style, "Ballads")
	if !errors.Is(err, ErrAlreadySelected) {
		t.Fatalf("expected ErrAlreadySelected, got %v", err)
	}
	assert.Equal(t, "Noir", s.Style)
}

func TestSelections_OrderAndEntries(t *testing.T) {
	var s Selections
	require.NoError(t, s.Set(Genre, "Mystery"))
	require.NoError(t, s.Set(Style, "Noir"))
	require.NoError(t, s.Set(Tags, "Cinematic Lighting, , Showcase Plaid Clothing"))
	require.NoError(t, s.Set(Caption, ""))

	assert.Equal(t, []Entry{
		{Genre, "Mystery"},
		{Style, "Noir"},
		{Tags, "Cinematic Lighting, Showcase Plaid Clothing"},
		{Caption, ""},
	}, s.Entries())

	v, ok := s.Get(Caption)
	assert.True(t, ok, "an empty optional answer still counts as recorded")
	assert.Empty(t, v)

	_, ok = s.Get(Absurdity)
	assert.False(t, ok)
}

func TestSelections_UnknownDecision(t *testing.T) {
	var s Selections
	err := s.Set(DecisionPoint("weather"), "rainy")
	assert.ErrorIs(t, err, ErrUnknownDecision)
	assert.Empty(t, s.Order)
}

func TestSelections_OverwriteAndClone(t *testing.T) {
	var s Selections
	require.NoError(t, s.Set(Style, "Noir"))
	require.NoError(t, s.SetTags([]string{"No Extra Tags"}))

	c := s.Clone()
	require.NoError(t, c.Overwrite(Style, "Magic Realism"))
	require.NoError(t, c.Overwrite(Absurdity, "Plaidemonium™"))
	c.Tags[0] = "Add Surreal Element"

	assert.Equal(t, "Noir", s.Style)
	assert.Equal(t, []string{"No Extra Tags"}, s.Tags)
	assert.Equal(t, []DecisionPoint{Style, Tags}, s.Order)
	assert.Equal(t, []DecisionPoint{Style, Tags, Absurdity}, c.Order)
}

func TestSeeds(t *testing.T) {
	var seeds Seeds
	seeds.Set("name", "Rowan")
	seeds.Set("place", "Dockside")
	seeds.Set("name", "Harper")

	assert.Equal(t, Seeds{{"name", "Harper"}, {"place", "Dockside"}}, seeds)
	assert.Equal(t, []string{"Harper", "Dockside"}, seeds.Values())
	assert.Equal(t, "Dockside", seeds.GetOr("place", "Somewhere"))
	assert.Equal(t, "Somewhere", seeds.GetOr("place2", "Somewhere"))

	c := seeds.Clone()
	c.Set("place", "Rookery")
	v, _ := seeds.Get("place")
	assert.Equal(t, "Dockside", v)
}

func TestSession_Reset(t *testing.T) {
	s := NewSession()
	s.Workflow = "lib-ate"
	s.Narrator = "SoQuip"
	s.CurrentStep = 4
	s.Phase = PhaseCollectingSeeds
	_ = s.Selections.Set(Style, "Noir")
	s.Seeds.Set("name", "Rowan")
	s.SeedsCollected = 1
	s.Menu = &menu.Menu{Text: "1. Mild"}
	s.Story = "once"
	id, created := s.ID, s.CreatedAt

	s.Reset()

	assert.Equal(t, id, s.ID)
	assert.Equal(t, created, s.CreatedAt)
	assert.Equal(t, "lib-ate", s.Workflow)
	assert.Equal(t, "SoQuip", s.Narrator)
	assert.Zero(t, s.CurrentStep)
	assert.Empty(t, s.Selections.Order)
	assert.Empty(t, s.Seeds)
	assert.Zero(t, s.SeedsCollected)
	assert.Nil(t, s.Menu)
	assert.Empty(t, s.Story)
}

func TestSession_HistoryForPrompt(t *testing.T) {
	s := NewSession()
	assert.Empty(t, s.HistoryForPrompt(PromptHistoryLimit))

	for i := range 15 {
		s.ChatHistory = append(s.ChatHistory, chat.ChatMessage{Role: chat.ChatRoleUser, Content: string(rune('a' + i))})
	}
	got := s.HistoryForPrompt(PromptHistoryLimit)
	require.Len(t, got, PromptHistoryLimit)
	assert.Equal(t, "f", got[0].Content)
	assert.Equal(t, "o", got[len(got)-1].Content)
}

func TestSession_JSONKeepsMenu(t *testing.T) {
	s := NewSession()
	m := menu.Fixed([]menu.Option{{Name: "Mild"}}, menu.WildCardOnly)
	s.Menu = &m

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var out Session
	require.NoError(t, json.Unmarshal(data, &out))
	require.NotNil(t, out.Menu)
	assert.Equal(t, menu.KindWildCard, out.Menu.Options["2"].Kind)
}
