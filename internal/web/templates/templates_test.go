package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestDashboard(t *testing.T) {
	last := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	html := render(t, Dashboard([]DatasetCard{{
		Key:         "members",
		Label:       "Members",
		Description: "People & <groups>",
		RowCount:    42,
		LastImport:  &last,
		LastFile:    "march.csv",
	}}))

	for _, want := range []string{
		"<!doctype html>",
		`id="dataset-members"`,
		"People &amp; &lt;groups&gt;",
		"42 records, last import 2026-03-14 09:30 from march.csv",
		`action="/api/import/members"`,
		`href="/api/reports/members/summary.pdf"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestDashboard_Empty(t *testing.T) {
	html := render(t, Dashboard(nil))
	if !strings.Contains(html, "No datasets are registered.") {
		t.Errorf("empty dashboard: %s", html)
	}
}

func TestErrorAlert(t *testing.T) {
	html := render(t, ErrorAlert("Bad <file>", "", "CSV001"))
	if !strings.Contains(html, "Bad &lt;file&gt;") || !strings.Contains(html, "CSV001") {
		t.Errorf("alert: %s", html)
	}
	if strings.Contains(html, "<p></p>") {
		t.Errorf("empty action rendered: %s", html)
	}
}

func TestDashboard_EscapesDatasetFields(t *testing.T) {
	html := render(t, Dashboard([]DatasetCard{{
		Key:         `x"><script>alert(1)</script>`,
		Label:       "<b>Label</b>",
		Description: "plain",
		LastFile:    "<img>",
	}}))

	for _, bad := range []string{"<script>", "<b>Label</b>", `"><`} {
		if strings.Contains(html, bad) {
			t.Errorf("dashboard contains unescaped %q", bad)
		}
	}
	if !strings.Contains(html, `href="/api/template/x%22%3E%3Cscript%3Ealert%281%29%3C%2Fscript%3E"`) {
		t.Errorf("template link not path-escaped: %s", html)
	}
}

func TestDatasetCard_Summary(t *testing.T) {
	last := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	tests := []struct {
		name string
		card DatasetCard
		want string
	}{
		{"never imported", DatasetCard{RowCount: 0}, "0 records, never imported"},
		{"imported", DatasetCard{RowCount: 7, LastImport: &last, LastFile: "jan.csv"}, "7 records, last import 2026-01-02 03:04 from jan.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.card.Summary(); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorPage(t *testing.T) {
	html := render(t, ErrorPage("Upload failed", "Check the file", "CSV002"))
	for _, want := range []string{"<title>Error</title>", `role="alert"`, "<p>Check the file</p>", "Error code: CSV002"} {
		if !strings.Contains(html, want) {
			t.Errorf("error page missing %q", want)
		}
	}
}
