package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/memberdesk/internal/core"
	"github.com/JonMunkholm/memberdesk/internal/logging"
	"github.com/JonMunkholm/memberdesk/internal/web/templates"
)

// handleDashboard renders the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats := s.service.Stats(r.Context())

	cards := make([]templates.DatasetCard, len(stats))
	for i, st := range stats {
		cards[i] = templates.DatasetCard{
			Key:         st.Info.Key,
			Label:       st.Info.Label,
			Description: st.Info.Description,
			RowCount:    st.RowCount,
		}
		if st.LastImport != nil {
			cards[i].LastImport = &st.LastImport.StartedAt
			cards[i].LastFile = st.LastImport.FileName
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Dashboard(cards).Render(r.Context(), w)
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status   string                   `json:"status"`
	Database string                   `json:"database"`
	Imports  core.ImportLimiterStatus `json:"imports"`
}

// handleHealth reports database reachability and import slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "unchecked",
		Imports:  s.service.ImportLimiterStatus(),
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			logging.FromContext(r.Context()).Warn("health check failed", "error", err)
			resp.Status = "degraded"
			resp.Database = "unreachable"
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			writeJSON(w, resp)
			return
		}
		resp.Database = "ok"
	}
	writeJSON(w, resp)
}

// handleListDatasets returns every registered dataset.
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.ListDatasets())
}

// handleDownloadTemplate returns a CSV file holding only the header row.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")

	body, err := s.service.TemplateCSV(dataset)
	if err != nil {
		respondError(w, r, err)
		return
	}

	setAttachment(w, "text/csv; charset=utf-8", dataset+"_template.csv")
	fmt.Fprint(w, body)
}

// handleExportData streams every stored record of a dataset as CSV.
func (s *Server) handleExportData(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")
	if _, err := s.service.Dataset(dataset); err != nil {
		respondError(w, r, err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	setAttachment(w, "text/csv; charset=utf-8", fmt.Sprintf("%s_%s.csv", dataset, timestamp))

	n, err := s.service.WriteExport(r.Context(), w, dataset)
	if err != nil {
		// Headers are already sent; the client sees a truncated file.
		logging.FromContext(r.Context()).Error("export failed",
			"dataset", dataset,
			"rows", n,
			"error", err,
		)
	}
}

// handleImportHistory returns the latest imports of a dataset.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")

	runs, err := s.service.ImportHistory(r.Context(), dataset, parseIntParam(r, "limit", 0))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if runs == nil {
		runs = []core.ImportRun{}
	}
	writeJSON(w, runs)
}

// handleImportQueueStatus returns the current state of the import limiter.
func (s *Server) handleImportQueueStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.ImportLimiterStatus())
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// setAttachment sets the headers of a file download.
func setAttachment(w http.ResponseWriter, contentType, fileName string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
}
