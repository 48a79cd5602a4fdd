package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/harvey/internal/config"
	"github.com/nao1215/harvey/internal/model"
)

// Identifier kinds stored in the identifiers table.
const (
	KindLinkedIn  = "linkedin"
	KindGitHub    = "github"
	KindPortfolio = "portfolio"
	KindEmail     = "email"
)

// ErrDatabaseNotFound is returned by Open when the database file is missing
// and creation was not requested.
var ErrDatabaseNotFound = errors.New("database not found")

// SnapshotDB stores investigations.
type SnapshotDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures SnapshotDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if needed.
	CreateIfNotExists bool

	// EnableWAL enables write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the database file in dbDir.
func Open(dbDir string, opts Options) (*SnapshotDB, error) {
	dbPath := filepath.Join(dbDir, config.DatabaseFile)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &SnapshotDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Path returns the database file path.
func (s *SnapshotDB) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SnapshotDB) Close() error {
	return s.db.Close()
}

func (s *SnapshotDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS investigations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		investigation_id TEXT NOT NULL UNIQUE,
		target TEXT NOT NULL,
		target_key TEXT NOT NULL,
		started_at TEXT NOT NULL,
		validation_status TEXT NOT NULL,
		source_count INTEGER NOT NULL DEFAULT 0,
		portfolio_url TEXT,
		timed_out INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_investigations_target ON investigations(target_key);
	CREATE INDEX IF NOT EXISTS idx_investigations_started ON investigations(started_at);

	CREATE TABLE IF NOT EXISTS identifiers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		investigation INTEGER NOT NULL REFERENCES investigations(id),
		target TEXT NOT NULL,
		kind TEXT NOT NULL,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_identifiers_value ON identifiers(value);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// TargetKey folds a target name for lookups: case and whitespace runs are
// ignored.
func TargetKey(target string) string {
	return strings.ToLower(strings.Join(strings.Fields(target), " "))
}

// SaveInvestigation inserts inv with its identifiers and returns the row ID.
func (s *SnapshotDB) SaveInvestigation(ctx context.Context, inv *model.Investigation) (int64, error) {
	reportJSON, err := json.Marshal(inv)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize investigation: %w", err)
	}

	snap := inv.EnsureSnapshot()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx, `
	INSERT INTO investigations
		(investigation_id, target, target_key, started_at, validation_status, source_count, portfolio_url, timed_out, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		inv.ID,
		inv.Target,
		TargetKey(inv.Target),
		inv.StartedAt.UTC().Format(time.RFC3339Nano),
		string(snap.ValidationStatus),
		snap.SourceCount(),
		snap.PortfolioURL,
		inv.TimedOut,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save investigation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read investigation id: %w", err)
	}

	for _, ident := range identifiersOf(snap) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO identifiers (investigation, target, kind, value) VALUES (?, ?, ?, ?)`,
			id, inv.Target, ident.Kind, ident.Value,
		); err != nil {
			return 0, fmt.Errorf("failed to save identifier: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit investigation: %w", err)
	}
	return id, nil
}

// Identifier is a value that identifies a person on some platform.
type Identifier struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// identifiersOf lists the identifiers in snap. People-search links are not
// identifiers.
func identifiersOf(snap *model.Snapshot) []Identifier {
	fallback := make(map[string]bool)
	for _, r := range snap.LinkedInRecords {
		if r.Source == model.SourcePeopleSearchFallback {
			fallback[r.URL] = true
		}
	}

	ids := make([]Identifier, 0, len(snap.LinkedInCandidates)+3)
	for _, u := range snap.LinkedInCandidates {
		if !fallback[u] {
			ids = append(ids, Identifier{Kind: KindLinkedIn, Value: u})
		}
	}
	if gh := snap.GitHubProfile; gh != nil {
		ids = append(ids, Identifier{Kind: KindGitHub, Value: gh.Username})
		if gh.EmailFromBio != "" {
			ids = append(ids, Identifier{Kind: KindEmail, Value: gh.EmailFromBio})
		}
	}
	if snap.PortfolioURL != "" {
		ids = append(ids, Identifier{Kind: KindPortfolio, Value: snap.PortfolioURL})
	}
	return ids
}

// LatestInvestigation returns the most recent investigation of target, or
// of any target when target is empty. It returns nil when none exists.
func (s *SnapshotDB) LatestInvestigation(ctx context.Context, target string) (*model.Investigation, error) {
	query := `SELECT report_json FROM investigations`
	args := make([]any, 0, 1)
	if target != "" {
		query += ` WHERE target_key = ?`
		args = append(args, TargetKey(target))
	}
	query += ` ORDER BY started_at DESC, id DESC LIMIT 1`

	var reportJSON string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get investigation: %w", err)
	}
	return decodeInvestigation(reportJSON)
}

// GetInvestigation returns the investigation with row ID id, or nil.
func (s *SnapshotDB) GetInvestigation(ctx context.Context, id int64) (*model.Investigation, error) {
	var reportJSON string
	err := s.db.QueryRowContext(ctx, `SELECT report_json FROM investigations WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get investigation: %w", err)
	}
	return decodeInvestigation(reportJSON)
}

// History returns up to limit investigations of target, newest first.
// A non-positive limit returns all of them. Malformed rows are skipped.
func (s *SnapshotDB) History(ctx context.Context, target string, limit int) ([]*model.Investigation, error) {
	query := `
	SELECT report_json FROM investigations
	WHERE target_key = ?
	ORDER BY started_at DESC, id DESC
	`
	args := []any{TargetKey(target)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	invs := make([]*model.Investigation, 0)
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan investigation: %w", err)
		}
		inv, err := decodeInvestigation(reportJSON)
		if err != nil {
			continue
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

// InvestigationMetadata summarizes a stored investigation without loading
// the full document.
type InvestigationMetadata struct {
	ID               int64
	Target           string
	StartedAt        time.Time
	ValidationStatus model.ValidationStatus
	SourceCount      int
	PortfolioURL     string
	TimedOut         bool
}

// HistoryMetadata returns metadata of every investigation of target,
// newest first.
func (s *SnapshotDB) HistoryMetadata(ctx context.Context, target string) ([]InvestigationMetadata, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, target, started_at, validation_status, source_count, portfolio_url, timed_out
	FROM investigations
	WHERE target_key = ?
	ORDER BY started_at DESC, id DESC
	`, TargetKey(target))
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	results := make([]InvestigationMetadata, 0)
	for rows.Next() {
		var (
			meta      InvestigationMetadata
			startedAt string
			status    string
			portfolio sql.NullString
		)
		if err := rows.Scan(&meta.ID, &meta.Target, &startedAt, &status, &meta.SourceCount, &portfolio, &meta.TimedOut); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.StartedAt = parseTimestamp(startedAt)
		meta.ValidationStatus = model.ValidationStatus(status)
		meta.PortfolioURL = portfolio.String
		results = append(results, meta)
	}
	return results, rows.Err()
}

// ListTargets returns the distinct investigated targets in alphabetical
// order, using the most recent spelling of each.
func (s *SnapshotDB) ListTargets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT target FROM investigations i
	WHERE id = (SELECT MAX(id) FROM investigations WHERE target_key = i.target_key)
	ORDER BY target_key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	targets := make([]string, 0)
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, target)
	}
	return targets, rows.Err()
}

// IdentifierMatch is a stored identifier with the investigation it came from.
type IdentifierMatch struct {
	Identifier
	Target          string
	InvestigationID int64
}

// FindIdentifier returns every stored occurrence of value, newest first.
func (s *SnapshotDB) FindIdentifier(ctx context.Context, value string) ([]IdentifierMatch, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT kind, value, target, investigation FROM identifiers
	WHERE value = ?
	ORDER BY investigation DESC
	`, value)
	if err != nil {
		return nil, fmt.Errorf("failed to find identifier: %w", err)
	}
	defer rows.Close()

	matches := make([]IdentifierMatch, 0)
	for rows.Next() {
		var m IdentifierMatch
		if err := rows.Scan(&m.Kind, &m.Value, &m.Target, &m.InvestigationID); err != nil {
			return nil, fmt.Errorf("failed to scan identifier: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func decodeInvestigation(reportJSON string) (*model.Investigation, error) {
	var inv model.Investigation
	if err := json.Unmarshal([]byte(reportJSON), &inv); err != nil {
		return nil, fmt.Errorf("failed to parse investigation: %w", err)
	}
	return &inv, nil
}

// timestampFormats are the layouts a stored timestamp may use.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp returns the zero time when s matches no known layout.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
