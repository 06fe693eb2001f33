// Command docgen renders PDF documents and cleans member CSV files from the
// command line, without a database.
//
//	docgen pdf -title "Notice" -in notice.txt -out notice.pdf
//	docgen csv -in export.csv -out members.csv
//	docgen template > members.csv
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/memberdesk/internal/core"
	"github.com/JonMunkholm/memberdesk/internal/core/datasets"
	"github.com/JonMunkholm/memberdesk/internal/csvcodec"
	"github.com/JonMunkholm/memberdesk/internal/pdfdoc"
)

// errUsage reports bad command line arguments; usage has been printed.
var errUsage = errors.New("usage")

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "docgen:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errUsage
	}

	switch args[0] {
	case "pdf":
		return runPDF(args[1:], stdin, stdout, stderr)
	case "csv":
		return runCSV(args[1:], stdin, stdout, stderr)
	case "template":
		return runTemplate(stdout)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return errUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docgen <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  pdf       render text lines as a single-page PDF")
	fmt.Fprintln(w, "  csv       normalize a member CSV file")
	fmt.Fprintln(w, "  template  print the member CSV header")
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("docgen "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// openInput returns stdin for "" or "-", else the named file.
func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(stdin), nil
	}
	return os.Open(path)
}

// writeOutput writes data to stdout for "" or "-", else to the named file.
func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func runPDF(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet("pdf", stderr)
	title := fs.String("title", "", "document title")
	in := fs.String("in", "", "text file with one content line per line (default stdin)")
	out := fs.String("out", "", "output PDF file (default stdout)")
	width := fs.Int("width", pdfdoc.DefaultWrapWidth, "wrap width in characters")
	maxLines := fs.Int("max-lines", pdfdoc.DefaultMaxLines, "maximum content lines")
	overflow := fs.String("overflow", "truncate", "what to do with lines that do not fit: truncate or reject")
	lang := fs.String("lang", "", "BCP 47 language tag of the text")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if (*out == "" || *out == "-") && isTerminal(stdout) {
		return errors.New("refusing to write PDF to a terminal; use -out or redirect stdout")
	}

	policy, err := pdfdoc.ParseOverflowPolicy(*overflow)
	if err != nil {
		return err
	}
	opts := []pdfdoc.Option{
		pdfdoc.WithWrapWidth(*width),
		pdfdoc.WithMaxLines(*maxLines),
		pdfdoc.WithOverflow(policy),
	}
	if *lang != "" {
		tag, err := language.Parse(*lang)
		if err != nil {
			return fmt.Errorf("language %q: %w", *lang, err)
		}
		opts = append(opts, pdfdoc.WithLanguage(tag))
	}

	r, err := openInput(*in, stdin)
	if err != nil {
		return err
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	text, _, err := core.DecodeText(raw)
	if err != nil {
		return err
	}

	asm := pdfdoc.New(opts...)
	req := pdfdoc.Request{Title: *title, Lines: splitLines(text)}
	pdf, dropped, err := asm.BuildFit(req)
	if err != nil {
		return err
	}
	if dropped > 0 {
		fmt.Fprintf(stderr, "docgen: %d lines did not fit and were dropped\n", dropped)
	}
	return writeOutput(*out, stdout, pdf)
}

// splitLines splits text into lines, dropping one trailing empty line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func runCSV(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet("csv", stderr)
	in := fs.String("in", "", "member CSV file (default stdin)")
	out := fs.String("out", "", "output CSV file (default stdout)")
	validate := fs.Bool("validate", false, "drop rows that fail member field validation")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	ds, ok := core.Get(datasets.MembersKey)
	if !ok {
		return core.ErrUnknownDataset
	}

	r, err := openInput(*in, stdin)
	if err != nil {
		return err
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	text, enc, err := core.DecodeText(raw)
	if err != nil {
		return err
	}

	doc, report, err := (&csvcodec.Decoder{Resolver: ds.Resolver}).Decode(text)
	if err != nil {
		return err
	}

	fmt.Fprintf(stderr, "encoding: %s\n", enc)
	if len(report.UnknownColumns) > 0 {
		fmt.Fprintf(stderr, "unknown columns: %s\n", strings.Join(report.UnknownColumns, ", "))
	}
	if len(report.DuplicateColumns) > 0 {
		fmt.Fprintf(stderr, "duplicate columns ignored: %s\n", strings.Join(report.DuplicateColumns, ", "))
	}
	for _, sr := range report.SkippedRows {
		fmt.Fprintf(stderr, "line %d: %s\n", sr.Line, sr.Reason)
	}

	skipped := report.Skipped
	v := core.NewRowValidator(ds.Fields)
	if !*validate {
		for _, rec := range doc.Rows {
			v.Normalize(rec)
		}
	} else {
		kept := doc.Rows[:0]
		for i, rec := range doc.Rows {
			if err := v.ValidateRecordFirst(rec); err != nil {
				fmt.Fprintf(stderr, "line %d: %v\n", report.RowLines[i], err)
				skipped++
				continue
			}
			kept = append(kept, rec)
		}
		doc.Rows = kept
	}
	fmt.Fprintf(stderr, "rows: %d kept, %d skipped\n", len(doc.Rows), skipped)

	return writeOutput(*out, stdout, []byte(csvcodec.Serialize(doc)))
}

func runTemplate(stdout io.Writer) error {
	ds, ok := core.Get(datasets.MembersKey)
	if !ok {
		return core.ErrUnknownDataset
	}
	_, err := io.WriteString(stdout, csvcodec.Serialize(csvcodec.NewDocument(ds.Info.Columns)))
	return err
}
