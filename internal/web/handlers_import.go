package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/memberdesk/internal/core"
)

// multipartMemory is how much of a form ParseMultipartForm keeps in memory.
const multipartMemory = 32 << 20

// ImportResponse is the JSON form of a finished import.
type ImportResponse struct {
	ImportID   string           `json:"import_id"`
	Dataset    string           `json:"dataset"`
	FileName   string           `json:"file_name"`
	Encoding   string           `json:"encoding"`
	TotalRows  int              `json:"total_rows"`
	Imported   int              `json:"imported"`
	Skipped    int              `json:"skipped"`
	Columns    []string         `json:"columns"`
	Unknown    []string         `json:"unknown_columns,omitempty"`
	Duplicate  []string         `json:"duplicate_columns,omitempty"`
	FailedRows []core.FailedRow `json:"failed_rows,omitempty"`
	Duration   string           `json:"duration"`
}

// toResponse converts an ImportResult to a JSON-friendly format.
func toResponse(result *core.ImportResult) ImportResponse {
	return ImportResponse{
		ImportID:   result.ImportID,
		Dataset:    result.Dataset,
		FileName:   result.FileName,
		Encoding:   result.Encoding,
		TotalRows:  result.TotalRows,
		Imported:   result.Imported,
		Skipped:    result.Skipped,
		Columns:    result.Columns,
		Unknown:    result.Unknown,
		Duplicate:  result.Duplicate,
		FailedRows: result.FailedRows,
		Duration:   result.Duration.String(),
	}
}

// readUpload returns the name and content of the multipart field "file".
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	limit := s.cfg.Import.MaxFileSize
	if limit > 0 {
		// Leave room for the multipart envelope; the file itself is
		// checked against limit below.
		r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			return "", nil, core.ErrFileTooLarge
		}
		return "", nil, fmt.Errorf("%w: %v", errBadForm, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errNoFile
	}
	defer file.Close()

	data, err := core.ReadLimited(file, limit)
	if err != nil {
		return "", nil, err
	}
	return header.Filename, data, nil
}

// handleImport validates an uploaded CSV and writes its valid rows.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")

	fileName, data, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.ImportCSV(ctx, dataset, fileName, data)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, toResponse(result))
}

// handlePreview analyzes an uploaded CSV and returns what an import would do.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")

	_, data, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	preview, err := s.service.PreviewCSV(r.Context(), dataset, data)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, preview)
}

// handleFailedRows returns the rows an import of the uploaded file would
// skip, as CSV with the line number and reason in front.
func (s *Server) handleFailedRows(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")

	fileName, data, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	body, n, err := s.service.CheckCSV(r.Context(), dataset, data)
	if err != nil {
		respondError(w, r, err)
		return
	}

	setAttachment(w, "text/csv; charset=utf-8", "failed_rows_"+baseName(fileName)+".csv")
	w.Header().Set("X-Failed-Rows", strconv.Itoa(n))
	fmt.Fprint(w, body)
}

// baseName strips the directory and extension from an uploaded file name
// and keeps only characters safe in a header.
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".csv")
	name = safeFileName(name)
	if name == "" {
		return "upload"
	}
	return name
}
