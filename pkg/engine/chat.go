package engine

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/plaidlibs/pkg/chat"
	"github.com/jwebster45206/plaidlibs/pkg/prompts"
	"github.com/jwebster45206/plaidlibs/pkg/state"
)

func (e *Engine) greet(s *state.Session) {
	s.ChatHistory = []chat.ChatMessage{{Role: chat.ChatRoleAgent, Content: e.narrator(s).Greeting}}
}

// ChatTurn appends the user's message and returns the request for the narrator's reply.
func (e *Engine) ChatTurn(s *state.Session, raw string) (*Request, error) {
	msg := strings.TrimSpace(raw)
	if msg == "" {
		return nil, e.fail(s, fmt.Errorf("%w: message", ErrEmptyRequiredField))
	}
	s.ChatHistory = append(s.ChatHistory, chat.ChatMessage{Role: chat.ChatRoleUser, Content: msg})
	s.LastError = ""
	s.Touch()
	return e.chatRequest(s)
}

// chatRequest builds the reply request when the conversation ends on a user message.
func (e *Engine) chatRequest(s *state.Session) (*Request, error) {
	n := len(s.ChatHistory)
	if n == 0 || s.ChatHistory[n-1].Role != chat.ChatRoleUser {
		return nil, ErrNothingPending
	}
	msgs, err := prompts.New().
		WithNarrator(e.narrator(s)).
		WithHistory(s.ChatHistory[:n-1]).
		WithUserMessage(s.ChatHistory[n-1].Content).
		WithHistoryLimit(state.PromptHistoryLimit).
		WithRating(e.rating).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build chat messages: %w", err)
	}
	return &Request{
		Kind:     RequestChat,
		Messages: msgs,
		Params:   chat.GenerationParams{Temperature: e.params.Temperature, MaxTokens: chat.ChatMaxTokens},
	}, nil
}

// CompleteChat appends the narrator's reply.
func (e *Engine) CompleteChat(s *state.Session, reply string) error {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return e.GenerationFailed(s, fmt.Errorf("narrator returned no reply"))
	}
	s.ChatHistory = append(s.ChatHistory, chat.ChatMessage{Role: chat.ChatRoleAgent, Content: e.filter.Apply(reply)})
	s.LastError = ""
	s.Touch()
	return nil
}
