package main

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/plaidlibs/internal/handlers"
	"github.com/jwebster45206/plaidlibs/internal/services"
	"github.com/jwebster45206/plaidlibs/internal/session"
	"github.com/jwebster45206/plaidlibs/pkg/engine"
	"github.com/jwebster45206/plaidlibs/pkg/state"
	"github.com/jwebster45206/plaidlibs/pkg/storage"
	"github.com/jwebster45206/plaidlibs/pkg/workflow"
)

func newTestClient(t *testing.T) (*apiClient, *services.MockLLMAPI) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	store := storage.NewMockStorage()
	llm := services.NewMockLLMAPI()
	eng := engine.New(nil, engine.WithRand(rand.New(rand.NewPCG(1, 2))))

	srv := httptest.NewServer(handlers.NewRouter(handlers.Router{
		Health:    handlers.NewHealthHandler(store, llm, "test-model", logger),
		Workflows: handlers.NewWorkflowsHandler(eng.Catalog(), logger),
		Sessions:  handlers.NewSessionHandler(eng, session.NewManager(store), llm, logger),
		Logger:    logger,
	}))
	t.Cleanup(srv.Close)
	return newAPIClient(srv.Client(), srv.URL), llm
}

func TestAPIClient_Flow(t *testing.T) {
	api, _ := newTestClient(t)
	require.True(t, api.testConnection())

	wfs, err := api.workflows()
	require.NoError(t, err)
	require.NotEmpty(t, wfs.Workflows)

	created, err := api.createSession(workflow.CreateDirect, "")
	require.NoError(t, err)
	assert.Equal(t, 1, created.View.Step)

	var resp *handlers.SessionResponse
	for _, a := range []string{"1", "1", "2", "go"} {
		resp, err = api.answer(created.ID, a)
		require.NoError(t, err, a)
	}
	assert.Equal(t, state.PhaseGenerated, resp.View.Phase)

	data, err := api.download(created.ID, "txt")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Your story")

	resp, err = api.restart(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.View.Step)
}

func TestAPIClient_ErrorsCarryView(t *testing.T) {
	api, _ := newTestClient(t)
	created, err := api.createSession(workflow.LibAte, "")
	require.NoError(t, err)

	resp, err := api.answer(created.ID, "99")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.NotNil(t, resp)
	assert.Equal(t, 1, resp.View.Step)
	assert.NotEmpty(t, resp.View.Error)

	_, err = api.answer(uuid.New(), "1")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Nil(t, apiErr.Resp)
	assert.Equal(t, "session not found", apiErr.Message)

	_, err = api.download(created.ID, "txt")
	assert.Error(t, err)
}

func TestAPIClient_RetryAfterFailure(t *testing.T) {
	api, llm := newTestClient(t)
	created, err := api.createSession(workflow.CreateDirect, "")
	require.NoError(t, err)
	for _, a := range []string{"1", "1", "2"} {
		_, err = api.answer(created.ID, a)
		require.NoError(t, err)
	}

	llm.SetGenerateError(errors.New("overloaded"))
	resp, err := api.answer(created.ID, "go")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, state.PhaseAssembling, resp.View.Phase)

	llm.Reset()
	resp, err = api.generate(created.ID)
	require.NoError(t, err)
	assert.Equal(t, state.PhaseGenerated, resp.View.Phase)
}

func TestRenderView(t *testing.T) {
	out := renderView(engine.View{
		Title: "Step 2: Genre",
		Text:  "Choose your genre:\n1. Mystery",
		Error: "invalid choice",
	}, 40)
	assert.Contains(t, out, "Step 2: Genre")
	assert.Contains(t, out, "1. Mystery")
	assert.Contains(t, out, "invalid choice")

	long := renderView(engine.View{Title: "T", Text: strings.Repeat("plaid ", 30)}, 20)
	for _, line := range strings.Split(long, "\n") {
		if strings.HasPrefix(line, "plaid") {
			assert.LessOrEqual(t, len(line), 20)
		}
	}
}

func TestWriteMetadata(t *testing.T) {
	id := uuid.New().String()
	out := writeMetadata(id, engine.View{Workflow: "lib-ate", Narrator: "MacQuip", Step: 2, Steps: 5, Phase: state.PhaseSelecting})
	assert.Contains(t, out, id[:8])
	assert.Contains(t, out, "Step 2 of 5")
	assert.Contains(t, out, "MacQuip")

	out = writeMetadata(id, engine.View{Phase: state.PhaseGenerated})
	assert.Contains(t, out, "Done")
}

func TestAPIClient_UploadImage(t *testing.T) {
	api, _ := newTestClient(t)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")

	pic, err := api.createSession(workflow.PlaidPic, "")
	require.NoError(t, err)
	resp, err := api.uploadImage(pic.ID, png)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.View.Step)

	_, err = api.uploadImage(pic.ID, []byte("plain text"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnsupportedMediaType, apiErr.Status)
}
