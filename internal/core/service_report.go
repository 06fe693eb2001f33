package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/memberdesk/internal/logging"
	"github.com/JonMunkholm/memberdesk/internal/pdfdoc"
)

// ReportTimeLayout formats timestamps printed in reports.
const ReportTimeLayout = "2006-01-02 15:04 MST"

// RenderDocument builds a one-page PDF from caller-supplied content.
func (s *Service) RenderDocument(ctx context.Context, req pdfdoc.Request) ([]byte, error) {
	pdf, dropped, err := s.assembler.BuildFit(req)
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	if dropped > 0 {
		logger.Warn("document truncated", "title", req.Title, "dropped_lines", dropped)
	}
	logger.Debug("document rendered", "title", req.Title, "bytes", len(pdf))
	return pdf, nil
}

// SummaryLines builds the body of a dataset's summary report.
func (s *Service) SummaryLines(ctx context.Context, ds Dataset) ([]string, error) {
	lines := []string{
		"Dataset: " + ds.Info.Label,
		"Generated: " + s.now().UTC().Format(ReportTimeLayout),
	}

	runs, err := s.store.ListImports(ctx, ds.Info.Key, 1)
	if err != nil {
		return nil, fmt.Errorf("summary %s: %w", ds.Info.Key, err)
	}
	if len(runs) > 0 {
		r := runs[0]
		lines = append(lines, fmt.Sprintf("Last import: %s on %s, %d imported, %d skipped",
			r.FileName, r.StartedAt.UTC().Format(ReportTimeLayout), r.Imported, r.Skipped))
	}

	total, err := s.store.Count(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("summary %s: %w", ds.Info.Key, err)
	}
	lines = append(lines, fmt.Sprintf("Total records: %d", total))

	for _, col := range ds.SummaryColumns {
		groups, err := s.store.CountBy(ctx, ds, col)
		if err != nil {
			return nil, fmt.Errorf("summary %s by %s: %w", ds.Info.Key, col, err)
		}

		lines = append(lines, "", "By "+strings.ReplaceAll(col, "_", " ")+":")
		for _, g := range groups {
			value := g.Value
			if value == "" {
				value = "(blank)"
			}
			lines = append(lines, fmt.Sprintf("- %s: %d", value, g.Count))
		}
	}
	return lines, nil
}

// SummaryReport renders the summary of a dataset as a PDF. An empty title
// defaults to "<Label> Summary".
func (s *Service) SummaryReport(ctx context.Context, dataset, title string) ([]byte, error) {
	ds, err := s.Dataset(dataset)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = ds.Info.Label + " Summary"
	}

	lines, err := s.SummaryLines(ctx, ds)
	if err != nil {
		return nil, err
	}
	return s.RenderDocument(ctx, pdfdoc.Request{Title: title, Lines: lines})
}
