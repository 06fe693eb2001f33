// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Database Errors (DB001-DB099)
//
// Errors related to database operations and constraints:
//
//	DB001 - Duplicate key: A record with this ID already exists
//	        Action: Download failed rows to review duplicates
//	        Patterns: "duplicate key"
//
//	DB002 - Unique constraint: This value must be unique but already exists
//	        Action: Check for duplicate entries in your CSV
//	        Patterns: "unique constraint", "violates unique"
//
//	DB003 - Foreign key: Referenced record does not exist
//	        Action: Ensure parent records are uploaded first
//	        Patterns: "foreign key constraint", "violates foreign key"
//
//	DB004 - Connection refused: Unable to connect to database
//	        Action: Please try again in a few moments
//	        Patterns: "connection refused"
//
//	DB005 - Connection reset: Database connection was interrupted
//	        Action: Please try again
//	        Patterns: "connection reset"
//
//	DB006 - Timeout: Operation timed out
//	        Action: Try importing a smaller file or try again later
//	        Patterns: "timeout"
//
//	DB007 - Deadlock: Database was busy with conflicting operations
//	        Action: Please try again
//	        Patterns: "deadlock"
//
// # Validation Errors (VAL001-VAL099)
//
// Errors related to data validation and format checking:
//
//	VAL001 - Invalid date: Invalid date format detected
//	         Action: Use YYYY-MM-DD, MM/DD/YYYY, or Jan 15, 2024
//	         Patterns: "invalid date"
//
//	VAL003 - Required field: Required field is empty
//	         Action: Ensure all required columns have values
//	         Patterns: "required field"
//
//	VAL004 - Missing column: Required column is missing from CSV
//	         Action: Check that all required columns are present in your file
//	         Patterns: "missing required column"
//
//	VAL006 - Invalid enum: Value is not in the allowed list
//	         Action: Check the allowed values for this field
//	         Patterns: "invalid enum"
//
//	VAL007 - Invalid email: Email address is not valid
//	         Action: Use the form name@example.org
//	         Patterns: "invalid email"
//
//	VAL008 - Invalid phone: Phone number is not valid
//	         Action: Use 7 to 15 digits, optionally starting with +
//	         Patterns: "invalid phone"
//
//	VAL009 - Invalid URL: Link is not a web address
//	         Action: Use a full address starting with http:// or https://
//	         Patterns: "invalid url"
//
// # File Errors (FILE001-FILE099)
//
// Errors related to file handling and parsing:
//
//	FILE001 - File too large: File exceeds maximum size limit
//	          Action: Split the file into smaller chunks
//	          Patterns: "file too large"
//
//	FILE002 - Invalid CSV: File is not a valid CSV
//	          Action: Ensure file is comma-separated with consistent columns
//	          Patterns: "invalid csv"
//
//	FILE003 - Encoding error: File contains invalid characters
//	          Action: Save file as UTF-8 encoding
//	          Patterns: "encoding error"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a CSV file to upload
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The uploaded file is empty
//	          Action: Please upload a CSV file with data rows
//	          Patterns: "empty file"
//
// # Import Errors (IMP001-IMP099)
//
// Errors related to the import process:
//
//	IMP001 - System busy: Too many imports in progress
//	         Action: Please wait a moment and try again
//	         Patterns: ErrTooManyImports, "too many concurrent imports"
//
//	IMP002 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	IMP003 - Request timeout: Request timed out
//	         Action: Try importing a smaller file or check your connection
//	         Patterns: "context deadline exceeded"
//
// # CSV Decode Errors (CSV001-CSV099)
//
// Errors raised by the CSV decoder before any row is looked at:
//
//	CSV001 - Empty input: The file has no content
//	         Action: Please upload a CSV file with a header row and data rows
//	         Patterns: csvcodec.ErrEmptyInput
//
//	CSV002 - Missing data rows: The file has a header but no data
//	         Action: Add at least one data row below the header
//	         Patterns: csvcodec.ErrMissingDataRows
//
//	CSV003 - Invalid header: No usable column names in the first row
//	         Action: Make sure the first row holds column names, or download the template
//	         Patterns: csvcodec.ErrInvalidHeader
//
// # Document Errors (DOC001-DOC099)
//
//	DOC001 - Content overflow: The document does not fit on one page
//	         Action: Shorten the content or ask for a truncated document
//	         Patterns: pdfdoc.ErrContentOverflow
//
// # Dataset Errors (DS001-DS099)
//
//	DS001 - Unknown dataset: The dataset is not configured
//	        Action: Verify the dataset name is correct
//	        Patterns: ErrUnknownDataset, "unknown dataset"
//
// # Rate Limiting (RATE001-RATE099)
//
// Errors related to request throttling:
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Request Errors (REQ001-REQ099)
//
// Malformed requests to the HTTP API:
//
//	REQ001 - Invalid form: The upload form could not be read
//	         Action: Please send the file as multipart form field "file"
//	         Patterns: "invalid form"
//
//	REQ002 - Invalid JSON: The request body is not valid JSON
//	         Action: Please send a JSON object with "title" and "lines"
//	         Patterns: "invalid json"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Sentinel errors are matched with errors.Is before any text pattern is
// tried. Text patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones. Multiple patterns can map to the same code
// (e.g., DB002 matches both "unique constraint" and "violates unique").
//
// # For Support Staff
//
// When a user reports an error code:
//  1. Look up the code in this reference
//  2. Check the associated patterns to understand what triggered it
//  3. Review the suggested action to guide the user
//  4. If ERR000, check application logs for the original technical error
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/memberdesk/internal/csvcodec"
	"github.com/JonMunkholm/memberdesk/internal/pdfdoc"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// sentinelMessage maps a sentinel error to its user message.
type sentinelMessage struct {
	target error
	msg    UserMessage
}

// sentinelMessages are checked with errors.Is before any text pattern.
var sentinelMessages = []sentinelMessage{
	{csvcodec.ErrEmptyInput, UserMessage{
		Message: "The file has no content",
		Action:  "Please upload a CSV file with a header row and data rows",
		Code:    "CSV001",
	}},
	{csvcodec.ErrMissingDataRows, UserMessage{
		Message: "The file has a header row but no data rows",
		Action:  "Add at least one data row below the header",
		Code:    "CSV002",
	}},
	{csvcodec.ErrInvalidHeader, UserMessage{
		Message: "The first row has no usable column names",
		Action:  "Make sure the first row holds column names, or download the template",
		Code:    "CSV003",
	}},
	{pdfdoc.ErrContentOverflow, UserMessage{
		Message: "The document does not fit on one page",
		Action:  "Shorten the content or ask for a truncated document",
		Code:    "DOC001",
	}},
	{ErrTooManyImports, UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}},
	{ErrUnknownDataset, UserMessage{
		Message: "Unknown dataset",
		Action:  "Verify the dataset name is correct",
		Code:    "DS001",
	}},
	{ErrFileTooLarge, UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Patterns are matched using strings.Contains, so partial matches work.
// The first matching pattern wins, so order matters:
//   - More specific patterns should come before general ones
//   - Multiple patterns can map to the same error code
//
// To add a new error pattern:
//  1. Choose the appropriate category and code range
//  2. Add the pattern in the correct position (specific before general)
//  3. Update the package documentation at the top of this file
var errorPatterns = []errorPattern{
	// =========================================================================
	// Database Constraint Errors (DB001-DB003)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Download failed rows to review duplicates",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate entries in your CSV",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Review your data for duplicate key values",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key constraint",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Ensure parent records are imported first",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB004-DB007)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try importing a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// =========================================================================
	// Validation Errors (VAL001-VAL009)
	// =========================================================================
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "Invalid date format detected",
			Action:  "Use YYYY-MM-DD, MM/DD/YYYY, or Jan 15, 2024",
			Code:    "VAL001",
		},
	},
	{
		pattern: "required field",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Ensure all required columns have values",
			Code:    "VAL003",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Required column is missing from CSV",
			Action:  "Check that all required columns are present in your file",
			Code:    "VAL004",
		},
	},
	{
		pattern: "invalid enum",
		msg: UserMessage{
			Message: "Value is not in the allowed list",
			Action:  "Check the allowed values for this field",
			Code:    "VAL006",
		},
	},
	{
		pattern: "invalid email",
		msg: UserMessage{
			Message: "Email address is not valid",
			Action:  "Use the form name@example.org",
			Code:    "VAL007",
		},
	},
	{
		pattern: "invalid phone",
		msg: UserMessage{
			Message: "Phone number is not valid",
			Action:  "Use 7 to 15 digits, optionally starting with +",
			Code:    "VAL008",
		},
	},
	{
		pattern: "invalid url",
		msg: UserMessage{
			Message: "Link is not a web address",
			Action:  "Use a full address starting with http:// or https://",
			Code:    "VAL009",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with consistent columns",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with data rows",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Import Errors (IMP001-IMP003)
	// =========================================================================
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try importing a smaller file or check your connection",
			Code:    "IMP003",
		},
	},

	// =========================================================================
	// Dataset Errors (DS001)
	// =========================================================================
	{
		pattern: "unknown dataset",
		msg: UserMessage{
			Message: "Unknown dataset",
			Action:  "Verify the dataset name is correct",
			Code:    "DS001",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ002)
	// =========================================================================
	{
		pattern: "invalid form",
		msg: UserMessage{
			Message: "The upload form could not be read",
			Action:  "Please send the file as multipart form field \"file\"",
			Code:    "REQ001",
		},
	},
	{
		pattern: "invalid json",
		msg: UserMessage{
			Message: "The request body is not valid JSON",
			Action:  "Please send a JSON object with \"title\" and \"lines\"",
			Code:    "REQ002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Known sentinel errors anywhere in the chain win; otherwise the error text
// is searched for known patterns (case-insensitive). If nothing matches, a
// generic fallback message with code ERR000 is returned.
//
// Example:
//
//	_, err := csvcodec.Parse("")
//	msg := MapError(fmt.Errorf("import members: %w", err))
//	// msg.Code == "CSV001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "The file has no content (Code: CSV001). Please upload a CSV file with a header row and data rows"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known sentinel or pattern and
// should be shown to users. Returns false for the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError pairs a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
