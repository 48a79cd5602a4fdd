// Package database persists investigations in a SQLite file.
//
// SnapshotDB keeps every investigation as a JSON document together with a
// few summary columns for listing, plus the identifiers each investigation
// uncovered (LinkedIn URLs, GitHub login, portfolio, email) so that the
// same identifier can be traced across targets. Rows are only ever
// inserted; a later investigation of the same person adds a new row.
//
// The driver is modernc.org/sqlite, which needs no cgo.
package database
