package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/plaidlibs/pkg/catalog"
	"github.com/jwebster45206/plaidlibs/pkg/chat"
)

// ChatSystemPrompt sets up the plaidchat persona. The narrator name fills both verbs.
const ChatSystemPrompt = "You are %s, a playful narrator with a unique personality. Stay in character and respond in a conversational way, but flavored with the humor and quirks of %s. Keep responses concise, engaging, and context-aware."

// Builder constructs chat messages for a plaidchat turn using a fluent interface.
type Builder struct {
	narrator     catalog.Narrator
	history      []chat.ChatMessage
	userMessage  string
	rating       string
	historyLimit int
}

// New creates a builder with default settings.
func New() *Builder {
	return &Builder{historyLimit: 20}
}

// WithNarrator sets the persona.
func (b *Builder) WithNarrator(n catalog.Narrator) *Builder {
	b.narrator = n
	return b
}

// WithHistory sets prior conversation, oldest first.
func (b *Builder) WithHistory(history []chat.ChatMessage) *Builder {
	b.history = history
	return b
}

// WithUserMessage sets the new user message.
func (b *Builder) WithUserMessage(message string) *Builder {
	b.userMessage = message
	return b
}

// WithRating sets the content rating.
func (b *Builder) WithRating(rating string) *Builder {
	b.rating = rating
	return b
}

// WithHistoryLimit sets the chat history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build returns system prompt, windowed history, then the user message.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.narrator.Name == "" {
		return nil, fmt.Errorf("narrator is required")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, ChatSystemPrompt, b.narrator.Name, b.narrator.Name)
	if b.narrator.Voice != "" {
		fmt.Fprintf(&sb, " Your voice: %s.", b.narrator.Voice)
	}
	sb.WriteString("\n\nContent rating: " + GetContentRatingPrompt(b.rating))

	messages := []chat.ChatMessage{{Role: chat.ChatRoleSystem, Content: sb.String()}}

	history := b.history
	if b.historyLimit > 0 && len(history) > b.historyLimit {
		history = history[len(history)-b.historyLimit:]
	}
	for _, m := range history {
		if m.Role != chat.ChatRoleAgent {
			m.Role = chat.ChatRoleUser
		}
		messages = append(messages, m)
	}

	if msg := strings.TrimSpace(b.userMessage); msg != "" {
		messages = append(messages, chat.ChatMessage{Role: chat.ChatRoleUser, Content: msg})
	}
	return messages, nil
}
