package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/memberdesk/internal/pdfdoc"
)

// maxDocumentBody bounds the JSON body of POST /api/documents.
const maxDocumentBody = 1 << 20

// handleDocument renders a JSON {title, lines} request as a PDF.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBody)

	var req pdfdoc.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}

	pdf, err := s.service.RenderDocument(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writePDF(w, pdf, documentFileName(req.Title))
}

// handleSummaryReport renders the summary of a dataset as a PDF.
// The optional title query parameter overrides the default title.
func (s *Server) handleSummaryReport(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")

	pdf, err := s.service.SummaryReport(r.Context(), dataset, r.URL.Query().Get("title"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writePDF(w, pdf, dataset+"_summary.pdf")
}

func writePDF(w http.ResponseWriter, pdf []byte, fileName string) {
	setAttachment(w, "application/pdf", fileName)
	w.Header().Set("Content-Length", fmt.Sprint(len(pdf)))
	w.Write(pdf)
}

// documentFileName derives a download name from a document title.
func documentFileName(title string) string {
	name := safeFileName(strings.ToLower(title))
	if name == "" {
		name = "document"
	}
	return name + ".pdf"
}

// safeFileName keeps ASCII letters, digits, dots, dashes and underscores and
// turns runs of anything else into a single dash.
func safeFileName(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(b.String(), "-.")
}
