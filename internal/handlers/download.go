package handlers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/jwebster45206/plaidlibs/pkg/engine"
	"github.com/jwebster45206/plaidlibs/pkg/state"
)

// Document is the downloadable form of a generated result.
type Document struct {
	Title        string
	Story        string
	VisualPrompt string
	Image        []byte
	ImageMIME    string
}

func newDocument(s *state.Session, v engine.View) Document {
	return Document{
		Title:        v.Title,
		Story:        s.StoryText(),
		VisualPrompt: s.VisualPrompt,
		Image:        s.Image,
		ImageMIME:    s.ImageMIME,
	}
}

// Text renders the document as plain text.
func (d Document) Text() string {
	var parts []string
	parts = append(parts, d.Title, strings.Repeat("=", len(d.Title)))
	if d.Story != "" {
		parts = append(parts, d.Story)
	}
	if d.VisualPrompt != "" {
		parts = append(parts, d.VisualPrompt)
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// PDF renders the document with gofpdf. PNG and JPEG images that decode are
// placed under the text; anything else is skipped.
func (d Document) PDF() ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(d.Title, true)
	pdf.SetCreator("PlaidLibs", true)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, tr(d.Title), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Times", "", 12)
	if d.Story != "" {
		pdf.MultiCell(0, 6, tr(d.Story), "", "L", false)
		pdf.Ln(4)
	}
	if d.VisualPrompt != "" {
		pdf.SetFont("Courier", "", 9)
		pdf.MultiCell(0, 4.5, tr(d.VisualPrompt), "", "L", false)
		pdf.Ln(4)
	}
	if kind, ok := pdfImageType(d.Image); ok {
		opt := gofpdf.ImageOptions{ImageType: kind, ReadDpi: true}
		pdf.RegisterImageOptionsReader("result", opt, bytes.NewReader(d.Image))
		left, _, right, _ := pdf.GetMargins()
		pageW, _ := pdf.GetPageSize()
		pdf.ImageOptions("result", left, pdf.GetY(), pageW-left-right, 0, true, opt, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func pdfImageType(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	switch format {
	case "png":
		return "PNG", true
	case "jpeg":
		return "JPG", true
	}
	return "", false
}

func (h *SessionHandler) download(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	s, err := h.sessions.Load(r.Context(), id)
	if err != nil {
		h.fail(w, r, s, err)
		return
	}
	if s.Phase != state.PhaseGenerated || (s.Story == "" && s.VisualPrompt == "") {
		h.fail(w, r, s, engine.ErrNotGenerated)
		return
	}

	doc := newDocument(s, h.engine.Render(s))
	name := "plaidlibs-" + s.ID.String()
	switch format := r.URL.Query().Get("format"); format {
	case "", "txt":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.txt"`, name))
		_, _ = w.Write([]byte(doc.Text()))
	case "pdf":
		data, err := doc.PDF()
		if err != nil {
			log.Error("Failed to render pdf", "error", err, "session_id", s.ID)
			writeError(w, log, http.StatusInternalServerError, "Failed to render pdf")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, name))
		_, _ = w.Write(data)
	default:
		writeError(w, log, http.StatusBadRequest, "format must be txt or pdf")
	}
}
