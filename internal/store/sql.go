package store

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/memberdesk/internal/core"
)

const (
	importRunsDDL = `CREATE TABLE IF NOT EXISTS import_runs (
	id          UUID PRIMARY KEY,
	dataset     TEXT NOT NULL,
	file_name   TEXT NOT NULL,
	imported    INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	ip_address  TEXT,
	user_agent  TEXT,
	started_at  TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT NOT NULL
)`
	importRunsIndexDDL = `CREATE INDEX IF NOT EXISTS import_runs_dataset_started_idx ON import_runs (dataset, started_at DESC)`

	insertImportRunSQL = `INSERT INTO import_runs
	(id, dataset, file_name, imported, skipped, ip_address, user_agent, started_at, duration_ms)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	listImportRunsSQL = `SELECT id, dataset, file_name, imported, skipped, ip_address, user_agent, started_at, duration_ms
	FROM import_runs WHERE dataset = $1 ORDER BY started_at DESC LIMIT $2`

	pruneImportRunsSQL = `DELETE FROM import_runs WHERE started_at < $1`
)

// quoteIdentifier safely quotes a PostgreSQL identifier.
func quoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func quoteColumns(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = quoteIdentifier(c)
	}
	return out
}

func columnType(ft core.FieldType) string {
	if ft == core.FieldDate {
		return "DATE"
	}
	return "TEXT"
}

func createTableSQL(ds core.Dataset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n\tid UUID PRIMARY KEY", quoteIdentifier(ds.Info.Table))
	for _, f := range ds.Fields {
		fmt.Fprintf(&b, ",\n\t%s %s", quoteIdentifier(f.Name), columnType(f.Type))
	}
	b.WriteString(",\n\tcreated_at TIMESTAMPTZ NOT NULL DEFAULT now(),\n\tupdated_at TIMESTAMPTZ NOT NULL DEFAULT now()\n)")
	return b.String()
}

// addColumnsSQL adds fields introduced after the table was first created.
func addColumnsSQL(ds core.Dataset) []string {
	out := make([]string, len(ds.Fields))
	for i, f := range ds.Fields {
		out[i] = fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
			quoteIdentifier(ds.Info.Table), quoteIdentifier(f.Name), columnType(f.Type))
	}
	return out
}

func upsertSQL(ds core.Dataset) string {
	cols := make([]string, 0, len(ds.Fields)+1)
	cols = append(cols, "id")
	placeholders := []string{"$1"}
	sets := make([]string, 0, len(ds.Fields)+1)

	for i, f := range ds.Fields {
		q := quoteIdentifier(f.Name)
		cols = append(cols, f.Name)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", q, q))
	}
	sets = append(sets, "updated_at = now()")

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		quoteIdentifier(ds.Info.Table),
		strings.Join(quoteColumns(cols), ", "),
		strings.Join(placeholders, ", "),
		strings.Join(sets, ", "),
	)
}

// upsertArgs converts a row to query arguments in upsertSQL order.
func upsertArgs(ds core.Dataset, row core.Row) []any {
	args := make([]any, 0, len(ds.Fields)+1)
	args = append(args, pgtype.UUID{Bytes: row.ID, Valid: true})
	for _, f := range ds.Fields {
		v := row.Values[f.Name]
		if f.Type == core.FieldDate {
			args = append(args, core.ToPgDate(v))
		} else {
			args = append(args, core.ToPgText(v))
		}
	}
	return args
}

func selectRowsSQL(ds core.Dataset) string {
	names := make([]string, len(ds.Fields))
	for i, f := range ds.Fields {
		names[i] = f.Name
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at, id",
		strings.Join(quoteColumns(names), ", "), quoteIdentifier(ds.Info.Table))
}

func countSQL(ds core.Dataset) string {
	return "SELECT count(*) FROM " + quoteIdentifier(ds.Info.Table)
}

// countBySQL groups on column, which must be one of the dataset's fields.
func countBySQL(ds core.Dataset, column string) (string, error) {
	if _, ok := ds.Field(column); !ok {
		return "", fmt.Errorf("column %q is not a field of %s", column, ds.Info.Key)
	}
	q := quoteIdentifier(column)
	return fmt.Sprintf("SELECT COALESCE(%s::text, '') AS value, count(*) FROM %s GROUP BY 1 ORDER BY 2 DESC, 1",
		q, quoteIdentifier(ds.Info.Table)), nil
}

func existingIDsSQL(ds core.Dataset) string {
	return fmt.Sprintf("SELECT id FROM %s WHERE id = ANY($1)", quoteIdentifier(ds.Info.Table))
}
