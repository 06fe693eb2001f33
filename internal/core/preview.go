package core

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/JonMunkholm/memberdesk/internal/csvcodec"
	"github.com/JonMunkholm/memberdesk/internal/logging"
)

// PreviewSummary contains the summary counts for an import preview.
type PreviewSummary struct {
	TotalRows       int `json:"totalRows"`
	NewRows         int `json:"newRows"`
	UpdateRows      int `json:"updateRows"`
	ErrorRows       int `json:"errorRows"`
	DuplicateInFile int `json:"duplicateInFile"`
}

// RowPreview represents a single row for preview display.
type RowPreview struct {
	LineNumber int             `json:"lineNumber"`
	RowID      string          `json:"rowId"`
	Values     csvcodec.Record `json:"values"`
}

// ErrorPreview represents a row that will be skipped.
type ErrorPreview struct {
	LineNumber int             `json:"lineNumber"`
	Values     csvcodec.Record `json:"values,omitempty"`
	Errors     []string        `json:"errors"`
}

// DuplicatePreview lists the lines that share one row identity.
type DuplicatePreview struct {
	RowID       string `json:"rowId"`
	LineNumbers []int  `json:"lineNumbers"`
}

// PreviewResponse is the read-only analysis of an upload.
type PreviewResponse struct {
	Dataset          string             `json:"dataset"`
	Encoding         string             `json:"encoding"`
	Columns          []string           `json:"columns"`
	UnknownColumns   []string           `json:"unknownColumns,omitempty"`
	DuplicateColumns []string           `json:"duplicateColumns,omitempty"`
	Summary          PreviewSummary     `json:"summary"`
	NewRowSamples    []RowPreview       `json:"newRowSamples"`
	UpdateSamples    []RowPreview       `json:"updateSamples"`
	ErrorSamples     []ErrorPreview     `json:"errorSamples"`
	DuplicateSamples []DuplicatePreview `json:"duplicateSamples"`
	ProcessingTimeMs int64              `json:"processingTimeMs"`
}

// maxErrorSamples caps error samples independently of the row sample size.
const maxErrorSamples = 20

// PreviewCSV analyzes an upload without writing anything. Valid rows are
// classified as new or update by looking up their ids in the store.
func (s *Service) PreviewCSV(ctx context.Context, dataset string, data []byte) (*PreviewResponse, error) {
	start := s.now()

	ds, err := s.Dataset(dataset)
	if err != nil {
		return nil, err
	}
	b, err := s.prepare(ds, data)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(b.valid))
	for i, row := range b.valid {
		ids[i] = row.ID
	}
	existing := map[uuid.UUID]bool{}
	if len(ids) > 0 {
		existing, err = s.store.ExistingIDs(ctx, ds, ids)
		if err != nil {
			return nil, err
		}
	}

	resp := &PreviewResponse{
		Dataset:          ds.Info.Key,
		Encoding:         b.encoding,
		Columns:          b.header,
		UnknownColumns:   b.report.UnknownColumns,
		DuplicateColumns: b.report.DuplicateColumns,
		Summary: PreviewSummary{
			TotalRows: b.total(),
			ErrorRows: len(b.rejected),
		},
	}

	samples := s.opts.PreviewSamples
	for _, row := range b.valid {
		rp := RowPreview{LineNumber: row.Line, RowID: row.ID.String(), Values: row.Values}
		if existing[row.ID] {
			resp.Summary.UpdateRows++
			if len(resp.UpdateSamples) < samples {
				resp.UpdateSamples = append(resp.UpdateSamples, rp)
			}
			continue
		}
		resp.Summary.NewRows++
		if len(resp.NewRowSamples) < samples {
			resp.NewRowSamples = append(resp.NewRowSamples, rp)
		}
	}

	sortRejected(b.rejected)
	for _, r := range b.rejected {
		if len(resp.ErrorSamples) == maxErrorSamples {
			break
		}
		resp.ErrorSamples = append(resp.ErrorSamples, ErrorPreview{
			LineNumber: r.line,
			Values:     r.values,
			Errors:     r.reasons,
		})
	}

	for id, lines := range b.dupes {
		if len(lines) < 2 {
			continue
		}
		resp.Summary.DuplicateInFile += len(lines) - 1
		resp.DuplicateSamples = append(resp.DuplicateSamples, DuplicatePreview{
			RowID:       id.String(),
			LineNumbers: lines,
		})
	}
	sort.Slice(resp.DuplicateSamples, func(i, j int) bool {
		return resp.DuplicateSamples[i].LineNumbers[0] < resp.DuplicateSamples[j].LineNumbers[0]
	})
	if len(resp.DuplicateSamples) > samples {
		resp.DuplicateSamples = resp.DuplicateSamples[:samples]
	}

	resp.ProcessingTimeMs = s.now().Sub(start).Milliseconds()
	logging.FromContext(ctx).Debug("preview complete",
		"dataset", ds.Info.Key,
		"total", resp.Summary.TotalRows,
		"new", resp.Summary.NewRows,
		"update", resp.Summary.UpdateRows,
		"errors", resp.Summary.ErrorRows,
	)
	return resp, nil
}
