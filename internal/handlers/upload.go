package handlers

import (
	"io"
	"net/http"

	"github.com/jwebster45206/plaidlibs/pkg/engine"
	"github.com/jwebster45206/plaidlibs/pkg/state"
)

const maxImageBytes = 10 << 20

var uploadTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// uploadImage accepts a raw image body for the PlaidPic description step.
func (h *SessionHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		writeError(w, log, http.StatusRequestEntityTooLarge, "Image must be at most 10MB")
		return
	}
	mimeType := http.DetectContentType(data)
	if len(data) == 0 || !uploadTypes[mimeType] {
		writeError(w, log, http.StatusUnsupportedMediaType, "Upload a PNG, JPEG or WebP image")
		return
	}
	h.mutate(w, r, nil, func(s *state.Session) (*engine.Request, error) {
		return nil, h.engine.AttachImage(s, mimeType)
	})
}
