package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/memberdesk/internal/csvcodec"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// FieldType represents the expected data type for a CSV field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldDate
	FieldEmail
	FieldPhone
	FieldURL
)

// FieldSpec defines validation rules for a single canonical column.
type FieldSpec struct {
	Name       string              // Canonical column name, also the database column
	Type       FieldType           // Expected data type
	Required   bool                // Value must be non-empty
	EnumValues []string            // Valid values for FieldEnum type
	Normalizer func(string) string // Optional transformation applied before validation
}

// DatasetInfo contains display information about an interchange dataset.
type DatasetInfo struct {
	Key         string   `json:"key"`         // Unique identifier and URL segment: "members"
	Label       string   `json:"label"`       // Display name: "Members"
	Description string   `json:"description"` // One-line summary for the dashboard
	Table       string   `json:"-"`           // Database table name
	Columns     []string `json:"columns"`     // Canonical columns in export order
}

// RowKeyFunc derives the stable identity of a record, used to update an
// existing row instead of inserting a duplicate on re-import.
type RowKeyFunc func(rec csvcodec.Record) uuid.UUID

// Dataset contains everything needed to import, export and report on one
// kind of record.
type Dataset struct {
	Info     DatasetInfo
	Fields   []FieldSpec
	Resolver *csvcodec.Resolver
	RowKey   RowKeyFunc

	// SummaryColumns are counted by value in the summary report.
	SummaryColumns []string
}

// Field returns the spec for a canonical column.
func (d Dataset) Field(name string) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Row is a validated record ready to be written.
type Row struct {
	ID     uuid.UUID
	Line   int
	Values csvcodec.Record
}

// RowError reports a row the store refused, by index into the rows passed in.
type RowError struct {
	Index int
	Err   error
}

// GroupCount is the number of records sharing one column value.
type GroupCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// Store is the persistence the service needs. internal/store provides the
// PostgreSQL implementation.
type Store interface {
	// UpsertRows writes rows in one transaction. Rows the database rejects
	// are returned as RowErrors and do not abort the others.
	UpsertRows(ctx context.Context, ds Dataset, rows []Row) (int, []RowError, error)
	ListRows(ctx context.Context, ds Dataset) ([]csvcodec.Record, error)
	Count(ctx context.Context, ds Dataset) (int64, error)
	CountBy(ctx context.Context, ds Dataset, column string) ([]GroupCount, error)
	// ExistingIDs reports which of ids are already stored.
	ExistingIDs(ctx context.Context, ds Dataset, ids []uuid.UUID) (map[uuid.UUID]bool, error)
	RecordImport(ctx context.Context, run ImportRun) error
	ListImports(ctx context.Context, dataset string, limit int) ([]ImportRun, error)
	// PruneImports deletes history entries started before cutoff.
	PruneImports(ctx context.Context, cutoff time.Time) (int64, error)
}

// FailedRow contains information about a row that was not imported.
type FailedRow struct {
	Line   int             `json:"line"`
	Reason string          `json:"reason"`
	Values csvcodec.Record `json:"values,omitempty"`
}

// ImportResult contains the final result of an import.
type ImportResult struct {
	ImportID   string        `json:"import_id"`
	Dataset    string        `json:"dataset"`
	FileName   string        `json:"file_name"`
	Encoding   string        `json:"encoding"`
	TotalRows  int           `json:"total_rows"`
	Imported   int           `json:"imported"`
	Skipped    int           `json:"skipped"`
	Columns    []string      `json:"columns"`
	Unknown    []string      `json:"unknown_columns,omitempty"`
	Duplicate  []string      `json:"duplicate_columns,omitempty"`
	FailedRows []FailedRow   `json:"failed_rows,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// ImportRun is one entry of the import history.
type ImportRun struct {
	ID         uuid.UUID `json:"id"`
	Dataset    string    `json:"dataset"`
	FileName   string    `json:"file_name"`
	Imported   int       `json:"imported"`
	Skipped    int       `json:"skipped"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}
