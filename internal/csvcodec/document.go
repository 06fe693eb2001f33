// Package csvcodec converts between CSV text and column-keyed records.
//
// Decoding is lenient about what humans put in spreadsheets: a byte order
// mark, any line ending, header spellings that differ from the canonical
// names, stray blank rows, and rows with the wrong number of cells. Rows
// that cannot be used are skipped and described in a Report rather than
// failing the whole file.
//
// Encoding uses minimal quoting, so output stays readable in a diff and
// decodes back to the same Document.
package csvcodec

// Record maps canonical column names to cell values.
type Record map[string]string

// Document is a header plus the rows keyed by it. Every row has exactly the
// header's keys, and encoded column order always follows Header.
type Document struct {
	Header []string
	Rows   []Record
}

// NewDocument returns an empty document with the given header.
func NewDocument(header []string) *Document {
	h := make([]string, len(header))
	copy(h, header)
	return &Document{Header: h}
}

// Append adds rec as a new row. Header keys missing from rec become empty
// cells and keys outside the header are dropped.
func (d *Document) Append(rec Record) {
	row := make(Record, len(d.Header))
	for _, col := range d.Header {
		row[col] = rec[col]
	}
	d.Rows = append(d.Rows, row)
}

// Len returns the number of rows.
func (d *Document) Len() int {
	return len(d.Rows)
}

// SkippedRow describes a source row that was not turned into a Record.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Report carries per-decode statistics for callers that show
// "imported X, skipped Y" style summaries.
type Report struct {
	Rows             int          `json:"rows"`
	Skipped          int          `json:"skipped"`
	SkippedRows      []SkippedRow `json:"skipped_rows,omitempty"`
	DuplicateColumns []string     `json:"duplicate_columns,omitempty"`
	// UnknownColumns lists kept header names the resolver does not define.
	UnknownColumns []string `json:"unknown_columns,omitempty"`
	// RowLines holds the 1-based source line of each kept row, index-aligned
	// with Document.Rows.
	RowLines []int `json:"-"`
}
