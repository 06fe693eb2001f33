package core

// validation.go provides record-level validation for decoded CSV data before
// it is written.
//
// Validation happens at two levels:
//  1. Header validation: required columns must be present after alias resolution
//  2. Record validation: each value is checked against its FieldSpec
//
// The RowValidator can return all errors (for preview UI) or just the first
// error (for import). Normalizers run first, so the record handed to the
// store holds normalized values.

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/JonMunkholm/memberdesk/internal/csvcodec"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string `json:"field"`   // Canonical column name
	Value   string `json:"value"`   // The invalid value
	Message string `json:"message"` // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationResult contains the result of validating a record.
type ValidationResult struct {
	Valid  bool              // True if all validations passed
	Errors []ValidationError // List of validation errors (empty if Valid)
}

// RowValidator validates records against a dataset's field specifications.
type RowValidator struct {
	specs []FieldSpec
}

// NewRowValidator creates a validator for the given field specs.
func NewRowValidator(specs []FieldSpec) *RowValidator {
	return &RowValidator{specs: specs}
}

// Normalize applies each field's normalizer to rec in place.
func (v *RowValidator) Normalize(rec csvcodec.Record) {
	for _, spec := range v.specs {
		raw, ok := rec[spec.Name]
		if !ok || raw == "" || spec.Normalizer == nil {
			continue
		}
		rec[spec.Name] = spec.Normalizer(raw)
	}
}

// ValidateRecord normalizes rec and returns every validation error.
// This is useful for preview UI that shows all problems at once.
func (v *RowValidator) ValidateRecord(rec csvcodec.Record) ValidationResult {
	v.Normalize(rec)
	result := ValidationResult{Valid: true}

	for _, spec := range v.specs {
		raw := rec[spec.Name]

		if raw == "" {
			if spec.Required {
				result.Valid = false
				result.Errors = append(result.Errors, ValidationError{
					Field:   spec.Name,
					Message: "required field is empty",
				})
			}
			continue
		}

		if err := ValidateCell(raw, spec); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   spec.Name,
				Value:   raw,
				Message: err.Error(),
			})
		}
	}

	return result
}

// ValidateRecordFirst normalizes rec and returns the first error only.
func (v *RowValidator) ValidateRecordFirst(rec csvcodec.Record) error {
	v.Normalize(rec)

	for _, spec := range v.specs {
		raw := rec[spec.Name]

		if raw == "" {
			if spec.Required {
				return fmt.Errorf("required field %q is empty", spec.Name)
			}
			continue
		}

		if err := ValidateCell(raw, spec); err != nil {
			return fmt.Errorf("%s for %q: %q", err.Error(), spec.Name, raw)
		}
	}
	return nil
}

// ValidateCell validates a single value against a field specification.
// Returns nil if valid, or an error describing the problem.
func ValidateCell(value string, spec FieldSpec) error {
	if value == "" {
		return nil // Empty values are allowed (will be NULL)
	}

	switch spec.Type {
	case FieldDate:
		if !ToPgDate(value).Valid {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD or similar)")
		}
	case FieldEmail:
		addr, err := mail.ParseAddress(value)
		if err != nil || addr.Address != value {
			return fmt.Errorf("invalid email address")
		}
	case FieldPhone:
		if !isPhoneNumber(value) {
			return fmt.Errorf("invalid phone number (use digits, spaces, + - ( ))")
		}
	case FieldURL:
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid url (must start with http:// or https://)")
		}
	case FieldEnum:
		if len(spec.EnumValues) > 0 {
			for _, ev := range spec.EnumValues {
				if strings.EqualFold(ev, value) {
					return nil
				}
			}
			return fmt.Errorf("invalid enum value, must be one of: %s", strings.Join(spec.EnumValues, ", "))
		}
	}
	return nil
}

// isPhoneNumber accepts 7 to 15 digits with optional formatting characters
// and a single leading plus sign.
func isPhoneNumber(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}

// ValidateHeader checks that every required column is present.
func ValidateHeader(header []string, specs []FieldSpec) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	var missing []string
	for _, spec := range specs {
		if spec.Required && !present[spec.Name] {
			missing = append(missing, spec.Name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// String returns a human-readable name for a field type.
func (ft FieldType) String() string {
	switch ft {
	case FieldText:
		return "text"
	case FieldEnum:
		return "one of a fixed list"
	case FieldDate:
		return "date"
	case FieldEmail:
		return "email"
	case FieldPhone:
		return "phone"
	case FieldURL:
		return "url"
	default:
		return "value"
	}
}
