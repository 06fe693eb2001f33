package core

// encoding.go turns uploaded bytes into text for the CSV decoder.
//
// Spreadsheet exports arrive as UTF-8 (often with a BOM) or, from older
// Windows tools, as Windows-1252. Valid UTF-8 is used as is; anything else is
// decoded as Windows-1252, which maps every byte to a rune and so never fails.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrFileTooLarge is returned when an upload exceeds the configured size.
var ErrFileTooLarge = errors.New("file too large")

// Encoding names reported in ImportResult.Encoding.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText returns data as a string together with the encoding it was read
// in. A leading UTF-8 BOM is dropped.
func DecodeText(data []byte) (string, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), EncodingUTF8, nil
	}

	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return "", "", fmt.Errorf("encoding error: %w", err)
	}
	return string(out), EncodingWindows1252, nil
}

// ReadLimited reads all of r, failing with ErrFileTooLarge once more than
// limit bytes arrive. A non-positive limit disables the check.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, limit)
	}
	return data, nil
}
