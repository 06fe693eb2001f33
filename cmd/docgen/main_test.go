package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/memberdesk/internal/pdfdoc"
)

func runWith(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestPDF_Stdout(t *testing.T) {
	out, _, err := runWith(t, "first line\r\nsecond line\n", "pdf", "-title", "Notice")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := pdfdoc.Assemble("Notice", []string{"first line", "second line"})
	if !bytes.Equal([]byte(out), want) {
		t.Error("output differs from Assemble")
	}
}

func TestPDF_File(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "lines.txt")
	out := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(in, []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := runWith(t, "", "pdf", "-title", "T", "-in", in, "-out", out, "-lang", "sw"); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("/Lang (sw)")) {
		t.Errorf("language missing from catalog:\n%s", data)
	}
}

func TestPDF_RefusesTerminal(t *testing.T) {
	prev := isTerminal
	isTerminal = func(io.Writer) bool { return true }
	t.Cleanup(func() { isTerminal = prev })

	_, _, err := runWith(t, "x\n", "pdf")
	if err == nil || !strings.Contains(err.Error(), "terminal") {
		t.Errorf("err = %v, want terminal refusal", err)
	}
}

func TestPDF_Overflow(t *testing.T) {
	lines := strings.Repeat("line\n", 5)

	_, stderr, err := runWith(t, lines, "pdf", "-max-lines", "2")
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if !strings.Contains(stderr, "3 lines did not fit") {
		t.Errorf("stderr = %q", stderr)
	}

	_, _, err = runWith(t, lines, "pdf", "-max-lines", "2", "-overflow", "reject")
	if !errors.Is(err, pdfdoc.ErrContentOverflow) {
		t.Errorf("reject err = %v", err)
	}
}

func TestCSV(t *testing.T) {
	in := "Full Name,E-mail,Sex,Status,Nickname\n" +
		"Wanjiru Kamau, WANJIRU@Example.org ,F,Active,Wawa\n" +
		"broken,row\n" +
		"Otieno Ouma,not-an-email,m,active,Oti\n"

	out, stderr, err := runWith(t, in, "csv")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "name,email,gender,status,nickname\n" +
		"Wanjiru Kamau,wanjiru@example.org,female,active,Wawa\n" +
		"Otieno Ouma,not-an-email,male,active,Oti\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	for _, w := range []string{"encoding: utf-8", "unknown columns: nickname", "line 3:", "rows: 2 kept, 1 skipped"} {
		if !strings.Contains(stderr, w) {
			t.Errorf("report missing %q:\n%s", w, stderr)
		}
	}

	out, stderr, err = runWith(t, in, "csv", "-validate")
	if err != nil {
		t.Fatalf("run -validate: %v", err)
	}
	if strings.Contains(out, "Otieno") {
		t.Errorf("invalid row kept:\n%s", out)
	}
	if !strings.Contains(stderr, "line 4: invalid email address") {
		t.Errorf("validation report missing:\n%s", stderr)
	}
}

func TestTemplate(t *testing.T) {
	out, _, err := runWith(t, "", "template")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out, "name,phone_number,email,role,status,join_date,") || !strings.HasSuffix(out, ",avatar_url\n") {
		t.Errorf("template = %q", out)
	}
}

func TestUsage(t *testing.T) {
	if _, _, err := runWith(t, ""); !errors.Is(err, errUsage) {
		t.Errorf("no args err = %v", err)
	}
	if _, stderr, err := runWith(t, "", "frobnicate"); !errors.Is(err, errUsage) || !strings.Contains(stderr, "unknown command") {
		t.Errorf("unknown command err = %v stderr = %q", err, stderr)
	}
	if _, _, err := runWith(t, "", "pdf", "-nope"); !errors.Is(err, errUsage) {
		t.Errorf("bad flag err = %v", err)
	}
}
