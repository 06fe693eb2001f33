package core

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/memberdesk/internal/csvcodec"
	"github.com/JonMunkholm/memberdesk/internal/logging"
)

// Columns prepended to the failed-rows CSV.
const (
	FailedLineColumn  = "_line"
	FailedErrorColumn = "_error"
)

// exportDocument loads every stored row of ds into a Document.
func (s *Service) exportDocument(ctx context.Context, ds Dataset) (*csvcodec.Document, error) {
	recs, err := s.store.ListRows(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", ds.Info.Key, err)
	}
	doc := csvcodec.NewDocument(ds.Info.Columns)
	for _, rec := range recs {
		doc.Append(rec)
	}
	return doc, nil
}

// ExportCSV returns every stored row of a dataset as CSV text.
func (s *Service) ExportCSV(ctx context.Context, dataset string) (string, error) {
	ds, err := s.Dataset(dataset)
	if err != nil {
		return "", err
	}
	doc, err := s.exportDocument(ctx, ds)
	if err != nil {
		return "", err
	}
	logging.FromContext(ctx).Info("export complete", "dataset", ds.Info.Key, "rows", doc.Len())
	return csvcodec.Serialize(doc), nil
}

// WriteExport streams the CSV export of a dataset to w and returns the
// number of rows written.
func (s *Service) WriteExport(ctx context.Context, w io.Writer, dataset string) (int, error) {
	ds, err := s.Dataset(dataset)
	if err != nil {
		return 0, err
	}
	doc, err := s.exportDocument(ctx, ds)
	if err != nil {
		return 0, err
	}
	var enc csvcodec.Encoder
	if err := enc.Encode(w, doc); err != nil {
		return 0, fmt.Errorf("write %s export: %w", ds.Info.Key, err)
	}
	logging.FromContext(ctx).Info("export complete", "dataset", ds.Info.Key, "rows", doc.Len())
	return doc.Len(), nil
}

// TemplateCSV returns the header-only CSV of a dataset's canonical columns.
func (s *Service) TemplateCSV(dataset string) (string, error) {
	ds, err := s.Dataset(dataset)
	if err != nil {
		return "", err
	}
	return csvcodec.Serialize(csvcodec.NewDocument(ds.Info.Columns)), nil
}

// FailedRowsCSV lays out rejected rows as CSV: the source line, the reason,
// then the row's values under columns.
func FailedRowsCSV(columns []string, rows []FailedRow) string {
	header := make([]string, 0, len(columns)+2)
	header = append(header, FailedLineColumn, FailedErrorColumn)
	header = append(header, columns...)

	doc := csvcodec.NewDocument(header)
	for _, fr := range rows {
		rec := make(csvcodec.Record, len(fr.Values)+2)
		for k, v := range fr.Values {
			rec[k] = v
		}
		rec[FailedLineColumn] = strconv.Itoa(fr.Line)
		rec[FailedErrorColumn] = fr.Reason
		doc.Append(rec)
	}
	return csvcodec.Serialize(doc)
}
