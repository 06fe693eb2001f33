package csvcodec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Decoder turns CSV text into a Document. The zero value uses a comma
// delimiter and only normalizes header names.
type Decoder struct {
	// Resolver maps header cells to canonical names. Nil means headers are
	// normalized but not aliased.
	Resolver *Resolver
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// Parse decodes raw member CSV using MemberResolver.
func Parse(raw string) (*Document, error) {
	doc, _, err := ParseWithReport(raw, MemberResolver())
	return doc, err
}

// ParseWithReport decodes raw using r for header resolution and also
// returns the decode report.
func ParseWithReport(raw string, r *Resolver) (*Document, *Report, error) {
	d := Decoder{Resolver: r}
	return d.Decode(raw)
}

// column ties a source column index to the header name it feeds.
type column struct {
	index int
	name  string
}

// record is one tokenized CSV record and the line it starts on. blank marks
// a record read from a line holding nothing but whitespace.
type record struct {
	line  int
	cells []string
	blank bool
}

// Decode parses raw. It fails only with ErrEmptyInput, ErrMissingDataRows,
// ErrInvalidHeader or a wrapped tokenizer error; bad rows are skipped and
// listed in the Report.
//
// Whitespace-only lines are not content: the header is the first record
// read from a non-blank line, and a file needs at least one more such record
// after it.
func (d *Decoder) Decode(raw string) (*Document, *Report, error) {
	records, err := d.tokenize(normalizeNewlines(strings.TrimPrefix(raw, "\ufeff")))
	if err != nil {
		return nil, nil, err
	}

	first := slices.IndexFunc(records, func(r record) bool { return !r.blank })
	if first < 0 {
		return nil, nil, ErrEmptyInput
	}
	headerCells, body := records[first].cells, records[first+1:]
	if !slices.ContainsFunc(body, func(r record) bool { return !r.blank }) {
		return nil, nil, ErrMissingDataRows
	}

	report := &Report{}
	cols := d.resolveHeader(headerCells, report)
	if len(cols) == 0 {
		return nil, nil, ErrInvalidHeader
	}

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.name
	}
	doc := &Document{Header: header}
	width := len(headerCells)

	for _, r := range body {
		if reason := rowProblem(r.cells, width); reason != "" {
			report.Skipped++
			report.SkippedRows = append(report.SkippedRows, SkippedRow{Line: r.line, Reason: reason})
			continue
		}

		rec := make(Record, len(cols))
		for _, c := range cols {
			rec[c.name] = r.cells[c.index]
		}
		doc.Rows = append(doc.Rows, rec)
		report.RowLines = append(report.RowLines, r.line)
	}

	report.Rows = len(doc.Rows)
	return doc, report, nil
}

// tokenize reads every record of text with cleaned cells.
func (d *Decoder) tokenize(text string) ([]record, error) {
	cr := csv.NewReader(strings.NewReader(text))
	if d.Comma != 0 {
		cr.Comma = d.Comma
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	var records []record
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("csvcodec: read record: %w", err)
		}
		line, _ := cr.FieldPos(0)
		blank := len(cells) == 1 && strings.TrimSpace(cells[0]) == ""
		for i := range cells {
			cells[i] = cleanCell(cells[i])
		}
		records = append(records, record{line: line, cells: cells, blank: blank})
	}
}

// resolveHeader picks the columns that become record keys. Columns whose
// name normalizes to "" are ignored, and when two columns resolve to the
// same name the first one wins.
func (d *Decoder) resolveHeader(cells []string, report *Report) []column {
	seen := make(map[string]bool, len(cells))
	var cols []column
	for i, cell := range cells {
		name := d.Resolver.Resolve(cleanCell(cell))
		if name == "" {
			continue
		}
		if seen[name] {
			report.DuplicateColumns = append(report.DuplicateColumns, name)
			continue
		}
		seen[name] = true
		cols = append(cols, column{index: i, name: name})
		if d.Resolver != nil && !d.Resolver.IsCanonical(name) {
			report.UnknownColumns = append(report.UnknownColumns, name)
		}
	}
	return cols
}

// rowProblem returns why a row cannot be used, or "" if it can.
func rowProblem(cells []string, width int) string {
	if isBlank(cells) {
		return "blank row"
	}

	if len(cells) < width {
		return fmt.Sprintf("expected %d columns, got %d", width, len(cells))
	}
	for _, extra := range cells[width:] {
		if extra != "" {
			return fmt.Sprintf("expected %d columns, got %d", width, len(cells))
		}
	}
	return ""
}

// cleanCell trims whitespace and strips one pair of surrounding backticks.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '`' && s[len(s)-1] == '`' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

var newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func normalizeNewlines(s string) string {
	return newlineReplacer.Replace(s)
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
