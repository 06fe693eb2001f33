package csvcodec

import (
	"bufio"
	"io"
	"strings"
)

// Encoder writes Documents as CSV text. The zero value uses a comma.
type Encoder struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// Serialize encodes doc with the default Encoder.
func Serialize(doc *Document) string {
	var b strings.Builder
	// strings.Builder never fails, so neither does Encode.
	_ = (&Encoder{}).Encode(&b, doc)
	return b.String()
}

// Encode writes the header line and one line per row to w. Every line ends
// in "\n". Keys a row lacks are written as empty cells.
func (e *Encoder) Encode(w io.Writer, doc *Document) error {
	bw := bufio.NewWriter(w)
	comma := e.comma()

	e.writeLine(bw, doc.Header, comma)
	cells := make([]string, len(doc.Header))
	for _, row := range doc.Rows {
		for i, col := range doc.Header {
			cells[i] = row[col]
		}
		e.writeLine(bw, cells, comma)
	}
	return bw.Flush()
}

func (e *Encoder) comma() rune {
	if e.Comma == 0 {
		return ','
	}
	return e.Comma
}

func (e *Encoder) writeLine(bw *bufio.Writer, cells []string, comma rune) {
	for i, cell := range cells {
		if i > 0 {
			bw.WriteRune(comma)
		}
		bw.WriteString(quote(cell, comma))
	}
	bw.WriteByte('\n')
}

// QuoteCell returns s as a comma-delimited CSV cell.
func QuoteCell(s string) string {
	return quote(s, ',')
}

// quote wraps s in double quotes, doubling any inside, only when s contains
// the delimiter, a quote or a line break.
func quote(s string, comma rune) string {
	if !strings.ContainsRune(s, comma) && !strings.ContainsAny(s, "\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
