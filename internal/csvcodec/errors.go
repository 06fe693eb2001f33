package csvcodec

import "errors"

// Decode failures. Per-row problems are never errors; they are counted in
// the Report instead.
var (
	// ErrEmptyInput means no non-blank line remained after normalization.
	ErrEmptyInput = errors.New("csvcodec: input is empty")

	// ErrMissingDataRows means the input has a header line and nothing else.
	ErrMissingDataRows = errors.New("csvcodec: header row has no data rows")

	// ErrInvalidHeader means no header cell produced a usable column name.
	ErrInvalidHeader = errors.New("csvcodec: header row has no usable column names")
)
