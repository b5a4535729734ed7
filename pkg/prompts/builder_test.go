package prompts

import (
	"fmt"
	"testing"

	"github.com/jwebster45206/plaidlibs/pkg/catalog"
	"github.com/jwebster45206/plaidlibs/pkg/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_RequiresNarrator(t *testing.T) {
	_, err := New().WithUserMessage("hi").Build()
	assert.Error(t, err)
}

func TestBuilder_Build(t *testing.T) {
	n, _ := catalog.Default().Narrator("ErrQuip")
	history := []chat.ChatMessage{
		{Role: chat.ChatRoleAgent, Content: n.Greeting},
		{Role: chat.ChatRoleUser, Content: "tell me a joke"},
		{Role: chat.ChatRoleAgent, Content: "error 418"},
	}

	msgs, err := New().
		WithNarrator(n).
		WithHistory(history).
		WithUserMessage("  another one  ").
		WithRating("G").
		Build()
	require.NoError(t, err)

	require.Len(t, msgs, 5)
	assert.Equal(t, chat.ChatRoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "You are ErrQuip, a playful narrator")
	assert.Contains(t, msgs[0].Content, ContentRatingG)
	assert.Equal(t, history, msgs[1:4])
	assert.Equal(t, chat.ChatMessage{Role: chat.ChatRoleUser, Content: "another one"}, msgs[4])
}

func TestBuilder_HistoryWindowAndRoles(t *testing.T) {
	var history []chat.ChatMessage
	for i := range 30 {
		history = append(history, chat.ChatMessage{Role: chat.ChatRoleSystem, Content: fmt.Sprintf("m%d", i)})
	}

	msgs, err := New().
		WithNarrator(catalog.Narrator{Name: "McQuip"}).
		WithHistory(history).
		WithHistoryLimit(4).
		Build()
	require.NoError(t, err)

	require.Len(t, msgs, 5)
	assert.Equal(t, "m26", msgs[1].Content)
	for _, m := range msgs[1:] {
		assert.Equal(t, chat.ChatRoleUser, m.Role, "non-assistant history is replayed as user")
	}
	assert.Equal(t, chat.ChatRoleSystem, history[26].Role, "input history must not be modified")
}
