package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/plaidlibs/pkg/chat"
	"github.com/jwebster45206/plaidlibs/pkg/engine"
	"github.com/jwebster45206/plaidlibs/pkg/state"
)

var errNoImageGenerator = errors.New("no image generator configured")

type generation struct {
	text  string
	image *chat.Image
	err   error
}

// runGeneration calls the backend for req outside the session lock, then applies
// the result under the lock. If the session moved on while the call ran, the
// result is dropped and the current session returned.
func (h *SessionHandler) runGeneration(ctx context.Context, log *slog.Logger, id uuid.UUID, req *engine.Request) (*state.Session, error) {
	gctx, cancel := context.WithTimeout(ctx, h.timeout)
	start := time.Now()
	out := h.call(gctx, req)
	cancel()
	took := time.Since(start)
	h.metrics.Generation(string(req.Kind), took, out.err)

	log.Info("Generation finished",
		"session_id", id,
		"kind", req.Kind,
		"duration", took,
		"success", out.err == nil)

	return h.sessions.Update(context.WithoutCancel(ctx), id, func(s *state.Session) error {
		if stale(h.engine, s, req) {
			log.Warn("Session changed during generation, dropping result", "session_id", id, "kind", req.Kind)
			return nil
		}
		if out.err != nil {
			return h.engine.GenerationFailed(s, out.err)
		}
		switch req.Kind {
		case engine.RequestImage:
			return h.engine.CompleteImage(s, out.image)
		case engine.RequestChat:
			return h.engine.CompleteChat(s, out.text)
		default:
			return h.engine.Complete(s, out.text)
		}
	})
}

func (h *SessionHandler) call(ctx context.Context, req *engine.Request) generation {
	switch req.Kind {
	case engine.RequestImage:
		if h.images == nil {
			return generation{err: errNoImageGenerator}
		}
		img, err := h.images.GenerateImage(ctx, req.Prompt)
		return generation{image: img, err: err}
	case engine.RequestChat:
		resp, err := h.llm.Chat(ctx, req.Messages, req.Params)
		if err != nil {
			return generation{err: err}
		}
		if resp == nil {
			return generation{err: fmt.Errorf("empty chat response")}
		}
		return generation{text: resp.Message}
	default:
		text, err := h.llm.Generate(ctx, req.Prompt, req.Params)
		return generation{text: text, err: err}
	}
}

// stale reports whether s no longer waits on req.
func stale(eng *engine.Engine, s *state.Session, req *engine.Request) bool {
	cur, err := eng.Pending(s)
	if err != nil || cur.Kind != req.Kind || cur.Prompt != req.Prompt {
		return true
	}
	return !slices.Equal(cur.Messages, req.Messages)
}
