package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/plaidlibs/pkg/catalog"
	"github.com/jwebster45206/plaidlibs/pkg/workflow"
)

type WorkflowSummary struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Output      workflow.Output `json:"output"`
	Steps       int             `json:"steps"`
}

type WorkflowsResponse struct {
	Workflows       []WorkflowSummary `json:"workflows"`
	Narrators       []string          `json:"narrators"`
	DefaultNarrator string            `json:"default_narrator"`
}

// WorkflowsHandler lists the workflows and narrators a session can pick.
type WorkflowsHandler struct {
	cat    *catalog.Catalog
	logger *slog.Logger
}

func NewWorkflowsHandler(cat *catalog.Catalog, logger *slog.Logger) *WorkflowsHandler {
	return &WorkflowsHandler{cat: cat, logger: logger}
}

func (h *WorkflowsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	all := workflow.All()
	resp := WorkflowsResponse{
		Workflows:       make([]WorkflowSummary, 0, len(all)),
		Narrators:       h.cat.NarratorNames(),
		DefaultNarrator: h.cat.DefaultNarrator,
	}
	for _, wf := range all {
		resp.Workflows = append(resp.Workflows, WorkflowSummary{
			ID:          wf.ID,
			Name:        wf.Name,
			Description: wf.Description,
			Output:      wf.Output,
			Steps:       len(wf.Steps),
		})
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}
