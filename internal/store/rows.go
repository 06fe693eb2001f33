package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/memberdesk/internal/core"
	"github.com/JonMunkholm/memberdesk/internal/csvcodec"
)

// UpsertRows writes rows inside one transaction. Each row runs under its
// own savepoint so a row the database refuses is rolled back alone and
// reported, while the rest of the batch commits.
func (s *Store) UpsertRows(ctx context.Context, ds core.Dataset, rows []core.Row) (int, []core.RowError, error) {
	if len(rows) == 0 {
		return 0, nil, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	written, rowErrs, err := upsertInTx(ctx, tx, ds, rows)
	if err != nil {
		return 0, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, nil, fmt.Errorf("commit: %w", err)
	}
	return written, rowErrs, nil
}

func upsertInTx(ctx context.Context, tx core.DBTX, ds core.Dataset, rows []core.Row) (int, []core.RowError, error) {
	query := upsertSQL(ds)
	written := 0
	var rowErrs []core.RowError

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}

		savepointName := fmt.Sprintf("sp_%d", i)
		if _, err := tx.Exec(ctx, "SAVEPOINT "+savepointName); err != nil {
			return 0, nil, fmt.Errorf("create savepoint: %w", err)
		}

		if _, err := tx.Exec(ctx, query, upsertArgs(ds, row)...); err != nil {
			if _, rbErr := tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+savepointName); rbErr != nil {
				return 0, nil, fmt.Errorf("rollback savepoint: %w", rbErr)
			}
			rowErrs = append(rowErrs, core.RowError{Index: i, Err: rowError(err)})
			continue
		}

		if _, err := tx.Exec(ctx, "RELEASE SAVEPOINT "+savepointName); err != nil {
			return 0, nil, fmt.Errorf("release savepoint: %w", err)
		}
		written++
	}
	return written, rowErrs, nil
}

// rowError reduces a driver error to the server's message where there is one.
func rowError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("insert: %s", pgErr.Message)
	}
	return fmt.Errorf("insert: %w", err)
}

// ListRows returns every stored record in insertion order.
func (s *Store) ListRows(ctx context.Context, ds core.Dataset) ([]csvcodec.Record, error) {
	rows, err := s.pool.Query(ctx, selectRowsSQL(ds))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", ds.Info.Key, err)
	}
	defer rows.Close()

	var out []csvcodec.Record
	for rows.Next() {
		dest := make([]any, len(ds.Fields))
		for i, f := range ds.Fields {
			if f.Type == core.FieldDate {
				dest[i] = new(pgtype.Date)
			} else {
				dest[i] = new(pgtype.Text)
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", ds.Info.Key, err)
		}

		rec := make(csvcodec.Record, len(ds.Fields))
		for i, f := range ds.Fields {
			switch v := dest[i].(type) {
			case *pgtype.Date:
				rec[f.Name] = core.PgDateToString(*v)
			case *pgtype.Text:
				rec[f.Name] = core.PgTextToString(*v)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context, ds core.Dataset) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, countSQL(ds)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", ds.Info.Key, err)
	}
	return n, nil
}

// CountBy groups the stored records by one column, largest group first.
func (s *Store) CountBy(ctx context.Context, ds core.Dataset, column string) ([]core.GroupCount, error) {
	query, err := countBySQL(ds, column)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count %s by %s: %w", ds.Info.Key, column, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.GroupCount, error) {
		var gc core.GroupCount
		err := row.Scan(&gc.Value, &gc.Count)
		return gc, err
	})
}

// ExistingIDs reports which ids already have a stored row.
func (s *Store) ExistingIDs(ctx context.Context, ds core.Dataset, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	found := make(map[uuid.UUID]bool)
	if len(ids) == 0 {
		return found, nil
	}

	params := make([]pgtype.UUID, len(ids))
	for i, id := range ids {
		params[i] = pgtype.UUID{Bytes: id, Valid: true}
	}

	rows, err := s.pool.Query(ctx, existingIDsSQL(ds), params)
	if err != nil {
		return nil, fmt.Errorf("lookup %s ids: %w", ds.Info.Key, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[uuid.UUID(id.Bytes)] = true
	}
	return found, rows.Err()
}

// RecordImport appends an entry to the import history.
func (s *Store) RecordImport(ctx context.Context, run core.ImportRun) error {
	_, err := s.pool.Exec(ctx, insertImportRunSQL,
		pgtype.UUID{Bytes: run.ID, Valid: true},
		run.Dataset,
		run.FileName,
		run.Imported,
		run.Skipped,
		core.ToPgText(run.IPAddress),
		core.ToPgText(run.UserAgent),
		run.StartedAt,
		run.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	return nil
}

// ListImports returns the latest history entries for a dataset, newest first.
func (s *Store) ListImports(ctx context.Context, dataset string, limit int) ([]core.ImportRun, error) {
	rows, err := s.pool.Query(ctx, listImportRunsSQL, dataset, limit)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	return pgx.CollectRows(rows, scanImportRun)
}

func scanImportRun(row pgx.CollectableRow) (core.ImportRun, error) {
	var (
		run       core.ImportRun
		id        pgtype.UUID
		ip, agent pgtype.Text
	)
	err := row.Scan(&id, &run.Dataset, &run.FileName, &run.Imported, &run.Skipped,
		&ip, &agent, &run.StartedAt, &run.DurationMs)
	if err != nil {
		return run, err
	}
	run.ID = uuid.UUID(id.Bytes)
	run.IPAddress = core.PgTextToString(ip)
	run.UserAgent = core.PgTextToString(agent)
	return run, nil
}

// PruneImports deletes history entries older than cutoff.
func (s *Store) PruneImports(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, pruneImportRunsSQL, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune imports: %w", err)
	}
	return tag.RowsAffected(), nil
}
