// Package core provides the import, export and report logic of the member
// dashboard.
//
// Everything here is independent of HTTP and of PostgreSQL: the web handlers,
// the docgen CLI and the tests all drive the same [Service], and persistence
// sits behind the [Store] interface.
//
// # Datasets
//
// A [Dataset] describes one kind of interchange record: its canonical
// columns, the header aliases accepted on import, per-column validation and
// how a record's identity is derived. Datasets are registered at init time
// with [Register]:
//
//	core.Register(core.Dataset{
//	    Info:     core.DatasetInfo{Key: "members", Label: "Members"},
//	    Fields:   []core.FieldSpec{{Name: "name", Required: true}},
//	    Resolver: csvcodec.MemberResolver(),
//	})
//
// # Import
//
// [Service.ImportCSV] runs the whole pipeline synchronously:
//
//  1. Take a slot from the [ImportLimiter]
//  2. Decode the bytes as UTF-8, falling back to Windows-1252
//  3. Parse with the dataset's alias resolver, skipping unusable rows
//  4. Normalize and validate every record against its FieldSpecs
//  5. Upsert valid rows in one transaction and record the run
//
// Rows lost at any step end up in [ImportResult.FailedRows] with their
// source line, so callers can show "imported X, skipped Y" and offer the
// failures back as CSV via [Service.FailedRowsCSV].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB007: Database errors (duplicates, constraints, connections)
//   - VAL001-VAL009: Validation errors (formats, missing columns)
//   - FILE001-FILE005: File errors (size, encoding, format)
//   - IMP001-IMP003: Import errors (busy, cancelled, timeout)
//   - CSV001-CSV003, DOC001: Codec and document errors
package core
