package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/memberdesk/internal/csvcodec"
	"github.com/JonMunkholm/memberdesk/internal/logging"
)

// rejected is a source row that will not be written.
type rejected struct {
	line    int
	reasons []string
	values  csvcodec.Record
}

func (r rejected) failedRow() FailedRow {
	return FailedRow{Line: r.line, Reason: strings.Join(r.reasons, "; "), Values: r.values}
}

// batch is an uploaded file after decoding, parsing and validation.
type batch struct {
	encoding string
	header   []string
	report   *csvcodec.Report
	valid    []Row
	rejected []rejected
	// dupes maps a row id to every line that produced it.
	dupes map[uuid.UUID][]int
}

// total is the number of data rows the tokenizer saw.
func (b *batch) total() int {
	return b.report.Rows + b.report.Skipped
}

// prepare decodes data and validates every row. Rows are never written here.
func (s *Service) prepare(ds Dataset, data []byte) (*batch, error) {
	if s.opts.MaxFileSize > 0 && int64(len(data)) > s.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, len(data), s.opts.MaxFileSize)
	}

	text, enc, err := DecodeText(data)
	if err != nil {
		return nil, err
	}

	dec := csvcodec.Decoder{Resolver: ds.Resolver}
	doc, report, err := dec.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s csv: %w", ds.Info.Key, err)
	}
	if err := ValidateHeader(doc.Header, ds.Fields); err != nil {
		return nil, err
	}

	b := &batch{
		encoding: enc,
		header:   doc.Header,
		report:   report,
		dupes:    make(map[uuid.UUID][]int),
	}
	for _, sk := range report.SkippedRows {
		b.rejected = append(b.rejected, rejected{line: sk.Line, reasons: []string{sk.Reason}})
	}

	validator := NewRowValidator(ds.Fields)
	firstLine := make(map[uuid.UUID]int)

	for i, rec := range doc.Rows {
		line := report.RowLines[i]

		res := validator.ValidateRecord(rec)
		if !res.Valid {
			reasons := make([]string, len(res.Errors))
			for j, ve := range res.Errors {
				reasons[j] = ve.Error()
			}
			b.rejected = append(b.rejected, rejected{line: line, reasons: reasons, values: rec})
			continue
		}

		id := rowID(ds, rec)
		if prev, seen := firstLine[id]; seen {
			b.dupes[id] = append(b.dupes[id], line)
			b.rejected = append(b.rejected, rejected{
				line:    line,
				reasons: []string{fmt.Sprintf("duplicate of line %d", prev)},
				values:  rec,
			})
			continue
		}
		firstLine[id] = line
		b.dupes[id] = []int{line}
		b.valid = append(b.valid, Row{ID: id, Line: line, Values: rec})
	}

	return b, nil
}

func rowID(ds Dataset, rec csvcodec.Record) uuid.UUID {
	if ds.RowKey != nil {
		return ds.RowKey(rec)
	}
	return uuid.New()
}

// ImportCSV decodes, validates and stores an uploaded file.
//
// A file that cannot be parsed at all fails with an error. Individual rows
// that are malformed, invalid, duplicated or refused by the store are
// reported in ImportResult.FailedRows and do not stop the others.
func (s *Service) ImportCSV(ctx context.Context, dataset, fileName string, data []byte) (*ImportResult, error) {
	start := s.now()

	ds, err := s.Dataset(dataset)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.opts.ImportTimeout)
	defer cancel()

	importID := uuid.New()
	logger := logging.WithFields(ctx,
		"import_id", importID.String(),
		"dataset", ds.Info.Key,
		"file", fileName,
	)

	b, err := s.prepare(ds, data)
	if err != nil {
		logger.Warn("import rejected", "error", err)
		return nil, err
	}

	imported, rowErrs, err := s.store.UpsertRows(ctx, ds, b.valid)
	if err != nil {
		logger.Error("import failed", "error", err)
		return nil, fmt.Errorf("import %s: %w", ds.Info.Key, err)
	}

	for _, re := range rowErrs {
		row := b.valid[re.Index]
		b.rejected = append(b.rejected, rejected{line: row.Line, reasons: []string{re.Err.Error()}, values: row.Values})
	}

	result := &ImportResult{
		ImportID:  importID.String(),
		Dataset:   ds.Info.Key,
		FileName:  fileName,
		Encoding:  b.encoding,
		TotalRows: b.total(),
		Imported:  imported,
		Columns:   b.header,
		Unknown:   b.report.UnknownColumns,
		Duplicate: b.report.DuplicateColumns,
	}
	result.FailedRows = failedRows(b.rejected)
	result.Skipped = len(result.FailedRows)
	result.Duration = s.now().Sub(start)

	run := ImportRun{
		ID:         importID,
		Dataset:    ds.Info.Key,
		FileName:   fileName,
		Imported:   result.Imported,
		Skipped:    result.Skipped,
		IPAddress:  IPAddressFromContext(ctx),
		UserAgent:  UserAgentFromContext(ctx),
		StartedAt:  start,
		DurationMs: result.Duration.Milliseconds(),
	}
	if err := s.store.RecordImport(ctx, run); err != nil {
		logger.Warn("record import history", "error", err)
	}

	logger.Info("import complete",
		"encoding", result.Encoding,
		"total", result.TotalRows,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// CheckCSV validates an upload without writing and returns the rows that
// would be skipped, as CSV. See FailedRowsCSV for the layout.
func (s *Service) CheckCSV(ctx context.Context, dataset string, data []byte) (string, int, error) {
	ds, err := s.Dataset(dataset)
	if err != nil {
		return "", 0, err
	}
	b, err := s.prepare(ds, data)
	if err != nil {
		return "", 0, err
	}

	rows := failedRows(b.rejected)
	logging.FromContext(ctx).Debug("checked upload", "dataset", ds.Info.Key, "rejected", len(rows))
	return FailedRowsCSV(b.header, rows), len(rows), nil
}

// ImportHistory returns the most recent imports of a dataset, newest first.
func (s *Service) ImportHistory(ctx context.Context, dataset string, limit int) ([]ImportRun, error) {
	ds, err := s.Dataset(dataset)
	if err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = 20
	case limit > 100:
		limit = 100
	}
	return s.store.ListImports(ctx, ds.Info.Key, limit)
}

// failedRows sorts rs by source line and converts them for the result.
func failedRows(rs []rejected) []FailedRow {
	sortRejected(rs)
	out := make([]FailedRow, len(rs))
	for i, r := range rs {
		out[i] = r.failedRow()
	}
	return out
}

func sortRejected(rs []rejected) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].line < rs[j].line })
}
