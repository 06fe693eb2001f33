// Package pdfdoc assembles minimal single-page PDF files from plain text.
//
// The output is written byte by byte through a position-tracking writer so
// that the cross-reference table always points at the exact offset where
// each "N 0 obj" begins. Only the built-in Helvetica font is used; there is
// no compression, no images and no encryption.
//
// Every file has the same five objects:
//
//	1 Catalog   -> 2 Pages
//	2 Pages     -> 3 Page
//	3 Page      -> 4 Content, 5 Font (via /Resources)
//	4 Content   text placement instructions
//	5 Font      /Type1 /Helvetica
//
// Text reaches the content stream through the textlayout package, which
// limits it to printable ASCII and a fixed column width, and is then escaped
// for PDF string syntax.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"

	"github.com/JonMunkholm/memberdesk/internal/textlayout"
)

// Page geometry and typography, in PDF points (1/72 inch).
const (
	PageWidth  = 612
	PageHeight = 792

	MarginLeft   = 50
	MarginBottom = 72

	TitleY        = 750
	TitleFontSize = 18

	BodyTopY     = 720
	BodyFontSize = 11
	LineHeight   = 14

	FontName = "Helvetica"
)

// DefaultWrapWidth is the column width used when wrapping content lines.
// Helvetica at 11pt averages about 5.5pt per character, so 90 columns stay
// inside the right margin for typical text.
const DefaultWrapWidth = 90

// TitleWrapWidth is the column width the title is clamped to. Helvetica at
// 18pt averages about 9pt per character across the 512pt between margins.
const TitleWrapWidth = 56

// DefaultMaxLines is how many content lines fit between BodyTopY and the
// bottom margin.
const DefaultMaxLines = (BodyTopY - MarginBottom) / LineHeight

// ErrContentOverflow is returned by Build when the content does not fit on a
// single page and the assembler was configured with OverflowReject.
var ErrContentOverflow = errors.New("pdfdoc: content does not fit on one page")

// Object ids are fixed because the graph never changes shape.
const (
	catalogID = 1
	pagesID   = 2
	pageID    = 3
	contentID = 4
	fontID    = 5

	objectCount = 5
)

// OverflowPolicy decides what happens to content lines beyond MaxLines.
type OverflowPolicy int

const (
	// OverflowTruncate silently drops lines that do not fit.
	OverflowTruncate OverflowPolicy = iota
	// OverflowReject makes Build fail with ErrContentOverflow.
	OverflowReject
)

// String returns the configuration spelling of the policy.
func (p OverflowPolicy) String() string {
	switch p {
	case OverflowReject:
		return "reject"
	default:
		return "truncate"
	}
}

// ParseOverflowPolicy converts "truncate" or "reject" to a policy.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "truncate":
		return OverflowTruncate, nil
	case "reject":
		return OverflowReject, nil
	default:
		return OverflowTruncate, fmt.Errorf("unknown overflow policy %q", s)
	}
}

// Request is the input for one document: a title and its content lines.
// Lines may be arbitrary text; they are sanitized and wrapped before use.
type Request struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// Assembler renders Requests into PDF bytes. An Assembler holds only
// configuration and may be shared between goroutines.
type Assembler struct {
	wrapWidth int
	maxLines  int
	overflow  OverflowPolicy
	lang      language.Tag
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithWrapWidth sets the column width for content lines.
func WithWrapWidth(width int) Option {
	return func(a *Assembler) {
		if width >= textlayout.MinWidth {
			a.wrapWidth = width
		}
	}
}

// WithMaxLines caps the number of content lines on the page.
// Values above DefaultMaxLines are lowered to it, since further lines would
// be placed below the bottom margin.
func WithMaxLines(n int) Option {
	return func(a *Assembler) {
		if n > 0 && n <= DefaultMaxLines {
			a.maxLines = n
		}
	}
}

// WithOverflow sets the overflow policy.
func WithOverflow(p OverflowPolicy) Option {
	return func(a *Assembler) {
		a.overflow = p
	}
}

// WithLanguage records the natural language of the text in the Catalog's
// /Lang entry. language.Und omits the entry.
func WithLanguage(tag language.Tag) Option {
	return func(a *Assembler) {
		a.lang = tag
	}
}

// New returns an Assembler with the default single-page layout.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		wrapWidth: DefaultWrapWidth,
		maxLines:  DefaultMaxLines,
		overflow:  OverflowTruncate,
		lang:      language.Und,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble renders title and lines with the default layout.
// Content beyond one page is truncated, so Assemble cannot fail.
func Assemble(title string, lines []string) []byte {
	// The default policy truncates, which leaves no error path.
	out, _ := New().Build(Request{Title: title, Lines: lines})
	return out
}

// Fit lays out the request's lines and caps them at the page limit.
// It returns the lines that will be rendered and how many were dropped.
func (a *Assembler) Fit(req Request) (lines []string, dropped int) {
	lines = textlayout.LayoutAll(req.Lines, a.wrapWidth)
	if len(lines) > a.maxLines {
		dropped = len(lines) - a.maxLines
		lines = lines[:a.maxLines]
	}
	return lines, dropped
}

// Build renders req into a new byte slice.
func (a *Assembler) Build(req Request) ([]byte, error) {
	out, _, err := a.BuildFit(req)
	return out, err
}

// BuildFit renders req like Build and also reports how many content lines
// were dropped to fit the page. Lines are laid out once.
func (a *Assembler) BuildFit(req Request) ([]byte, int, error) {
	var buf bytes.Buffer
	lines, dropped := a.Fit(req)
	if _, err := a.write(&buf, req.Title, lines, dropped); err != nil {
		return nil, dropped, err
	}
	return buf.Bytes(), dropped, nil
}

// WriteTo renders req directly to w and returns the number of bytes written.
// Offsets in the cross-reference table are relative to the first byte
// written to w.
func (a *Assembler) WriteTo(w io.Writer, req Request) (int64, error) {
	lines, dropped := a.Fit(req)
	return a.write(w, req.Title, lines, dropped)
}

// FitTitle sanitizes title and clamps it to one line of TitleWrapWidth
// columns. Words past the first line are dropped.
func FitTitle(title string) string {
	return textlayout.Wrap(textlayout.Sanitize(title), TitleWrapWidth)[0]
}

func (a *Assembler) write(w io.Writer, title string, lines []string, dropped int) (int64, error) {
	if dropped > 0 && a.overflow == OverflowReject {
		return 0, fmt.Errorf("%w: %d lines, limit %d", ErrContentOverflow, len(lines)+dropped, a.maxLines)
	}

	content := contentStream(FitTitle(title), lines)

	pw := &posWriter{w: w}
	pw.WriteString("%PDF-1.4\n%\x80\x80\x80\x80\n")

	offsets := make([]int64, 0, objectCount)
	writeObject := func(id int, body string) {
		// Ids are emitted in order, so offsets[id-1] belongs to object id.
		offsets = append(offsets, pw.pos)
		pw.Printf("%d 0 obj\n%s\nendobj\n", id, body)
	}

	writeObject(catalogID, a.catalogDict())
	writeObject(pagesID, fmt.Sprintf("<< /Type /Pages /Kids [%d 0 R] /Count 1 >>", pageID))
	writeObject(pageID, fmt.Sprintf(
		"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %d %d] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
		pagesID, PageWidth, PageHeight, fontID, contentID))
	writeObject(contentID, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	writeObject(fontID, fmt.Sprintf(
		"<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding >>", FontName))

	xrefPos := pw.pos
	pw.Printf("xref\n0 %d\n", len(offsets)+1)
	pw.WriteString("0000000000 65535 f\r\n")
	for _, off := range offsets {
		pw.Printf("%010d 00000 n\r\n", off)
	}
	pw.Printf("trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, catalogID, xrefPos)

	return pw.pos, pw.err
}

func (a *Assembler) catalogDict() string {
	if a.lang == language.Und {
		return fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesID)
	}
	return fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R /Lang (%s) >>", pagesID, Escape(a.lang.String()))
}

// contentStream places the title and each line at absolute coordinates.
// Every line gets its own BT/ET block so its position does not depend on
// the instructions before it.
func contentStream(title string, lines []string) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "BT /F1 %d Tf %d %d Td (%s) Tj ET\n", TitleFontSize, MarginLeft, TitleY, Escape(title))
	}
	for i, line := range lines {
		y := BodyTopY - i*LineHeight
		fmt.Fprintf(&b, "BT /F1 %d Tf %d %d Td (%s) Tj ET\n", BodyFontSize, MarginLeft, y, Escape(line))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

var delimiterEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// Escape backslash-escapes the characters that delimit PDF literal strings.
func Escape(s string) string {
	return delimiterEscaper.Replace(s)
}

// posWriter tracks how many bytes have been written and remembers the first
// error, so the assembly code can write unconditionally and check once.
type posWriter struct {
	w   io.Writer
	pos int64
	err error
}

func (p *posWriter) Write(b []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	n, err := p.w.Write(b)
	p.pos += int64(n)
	p.err = err
	return n, err
}

func (p *posWriter) WriteString(s string) {
	_, _ = io.WriteString(p, s)
}

func (p *posWriter) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p, format, args...)
}
