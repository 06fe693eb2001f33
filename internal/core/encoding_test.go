package core

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name         string
		input        []byte
		want         string
		wantEncoding string
	}{
		{
			name:         "plain ascii",
			input:        []byte("name,email\nJane,jane@example.org\n"),
			want:         "name,email\nJane,jane@example.org\n",
			wantEncoding: EncodingUTF8,
		},
		{
			name:         "utf-8 with bom",
			input:        append([]byte{0xEF, 0xBB, 0xBF}, []byte("name\nJosé\n")...),
			want:         "name\nJosé\n",
			wantEncoding: EncodingUTF8,
		},
		{
			name:         "only bom",
			input:        []byte{0xEF, 0xBB, 0xBF},
			want:         "",
			wantEncoding: EncodingUTF8,
		},
		{
			name:         "windows-1252 accents",
			input:        []byte("name\nJos\xe9 M\xfcller\n"),
			want:         "name\nJosé Müller\n",
			wantEncoding: EncodingWindows1252,
		},
		{
			name:         "windows-1252 smart quotes",
			input:        []byte("note\n\x93hi\x94\n"),
			want:         "note\n“hi”\n",
			wantEncoding: EncodingWindows1252,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc, err := DecodeText(tt.input)
			if err != nil {
				t.Fatalf("DecodeText: %v", err)
			}
			if got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
			if enc != tt.wantEncoding {
				t.Errorf("encoding = %q, want %q", enc, tt.wantEncoding)
			}
		})
	}
}

func TestReadLimited(t *testing.T) {
	data, err := ReadLimited(strings.NewReader("abcdef"), 6)
	if err != nil {
		t.Fatalf("at limit: %v", err)
	}
	if string(data) != "abcdef" {
		t.Errorf("data = %q", data)
	}

	_, err = ReadLimited(strings.NewReader("abcdefg"), 6)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("over limit err = %v, want ErrFileTooLarge", err)
	}
	if got := MapError(err).Code; got != "FILE001" {
		t.Errorf("MapError code = %q, want FILE001", got)
	}

	data, err = ReadLimited(strings.NewReader("unbounded"), 0)
	if err != nil || string(data) != "unbounded" {
		t.Errorf("no limit = %q, %v", data, err)
	}
}
