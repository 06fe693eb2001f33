package core

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func TestToPgDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      string
	}{
		{name: "ISO format", input: "2024-01-15", wantValid: true, want: "2024-01-15"},
		{name: "ISO leap day", input: "2024-02-29", wantValid: true, want: "2024-02-29"},
		{name: "ISO slashes", input: "2024/03/07", wantValid: true, want: "2024-03-07"},
		{name: "US slashes", input: "01/15/2024", wantValid: true, want: "2024-01-15"},
		{name: "US single digits", input: "1/5/2024", wantValid: true, want: "2024-01-05"},
		{name: "US dashes", input: "01-15-2024", wantValid: true, want: "2024-01-15"},
		{name: "dots", input: "1.15.2024", wantValid: true, want: "2024-01-15"},
		{name: "short month name", input: "Jan 15, 2024", wantValid: true, want: "2024-01-15"},
		{name: "long month name", input: "January 15, 2024", wantValid: true, want: "2024-01-15"},
		{name: "day first month name", input: "15 Jan 2024", wantValid: true, want: "2024-01-15"},
		{name: "compact", input: "20240115", wantValid: true, want: "2024-01-15"},
		{name: "surrounding whitespace", input: "  2024-01-15  ", wantValid: true, want: "2024-01-15"},

		{name: "empty", input: "", wantValid: false},
		{name: "whitespace only", input: "   ", wantValid: false},
		{name: "not a date", input: "yesterday", wantValid: false},
		{name: "invalid month", input: "2024-13-01", wantValid: false},
		{name: "invalid leap day", input: "2023-02-29", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPgDate(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ToPgDate(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if s := PgDateToString(got); s != tt.want {
				t.Errorf("PgDateToString(ToPgDate(%q)) = %q, want %q", tt.input, s, tt.want)
			}
		})
	}
}

func TestToPgDate_TwoDigitYear(t *testing.T) {
	originalPivot := TwoDigitYearPivot
	defer func() { TwoDigitYearPivot = originalPivot }()
	TwoDigitYearPivot = 20

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	tests := []struct {
		input string
		yy    int
	}{
		{"01/15/25", 25},
		{"01/15/30", 30},
		{"01/15/85", 85},
		{"1-15-99", 99},
		{"01.15.99", 99},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			want := 2000 + tt.yy
			if want > pivotYear {
				want -= 100
			}
			got := ToPgDate(tt.input)
			if !got.Valid {
				t.Fatalf("ToPgDate(%q) invalid", tt.input)
			}
			if got.Time.Year() != want {
				t.Errorf("ToPgDate(%q).Year = %d, want %d (pivot year %d)", tt.input, got.Time.Year(), want, pivotYear)
			}
		})
	}
}

func TestToPgText(t *testing.T) {
	tests := []struct {
		input      string
		wantValid  bool
		wantString string
	}{
		{"hello", true, "hello"},
		{"  hello world  ", true, "hello world"},
		{"café", true, "café"},
		{"", false, ""},
		{" \t\n", false, ""},
	}
	for _, tt := range tests {
		got := ToPgText(tt.input)
		if got.Valid != tt.wantValid || got.String != tt.wantString {
			t.Errorf("ToPgText(%q) = {%q %v}, want {%q %v}", tt.input, got.String, got.Valid, tt.wantString, tt.wantValid)
		}
		if s := PgTextToString(got); s != tt.wantString {
			t.Errorf("PgTextToString(ToPgText(%q)) = %q, want %q", tt.input, s, tt.wantString)
		}
	}
}

func TestPgUUID(t *testing.T) {
	id := uuid.New()
	got := ToPgUUID(id.String())
	if !got.Valid {
		t.Fatalf("ToPgUUID(%q) invalid", id)
	}
	if s := PgUUIDToString(got); s != id.String() {
		t.Errorf("round trip = %q, want %q", s, id)
	}

	for _, in := range []string{"", "not-a-uuid"} {
		if ToPgUUID(in).Valid {
			t.Errorf("ToPgUUID(%q) should be invalid", in)
		}
	}
	if s := PgUUIDToString(pgtype.UUID{}); s != "" {
		t.Errorf("PgUUIDToString(NULL) = %q, want empty", s)
	}
}
