package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"shelfguard-hq/shelfguard/pkg/policy/rules"
	"shelfguard-hq/shelfguard/pkg/suggest"
)

const defaultListLimit = 50

// SQLiteConfig contains configuration for the SQLite history backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig(path string) *SQLiteConfig {
	return &SQLiteConfig{
		Path:         path,
		MaxOpenConns: 10,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements Store using an embedded SQLite database.
// WAL mode is enabled for concurrent reads during writes.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the database and initializes the schema.
func NewSQLiteStore(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStore, error) {
	if config == nil {
		return nil, newStorageError("sqlite", "open", fmt.Errorf("nil config"))
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "history.sqlite")

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, newStorageError("sqlite", "open", err)
	}

	maxOpen := config.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)

	s := &SQLiteStore{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("history store initialized", "path", config.Path)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return newStorageError("sqlite", "enable_wal", err)
	}

	busy := s.config.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busy.Milliseconds())); err != nil {
		return newStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return newStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return newStorageError("sqlite", "insert_schema_version", err)
	}

	// Refuse to run against a database written by a newer schema.
	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return newStorageError("sqlite", "read_schema_version", err)
	}
	if version > SchemaVersion {
		return newStorageError("sqlite", "check_schema_version",
			fmt.Errorf("database schema version %d is newer than supported version %d", version, SchemaVersion))
	}

	return nil
}

// Save persists one run.
func (s *SQLiteStore) Save(ctx context.Context, run *Run) error {
	categories, err := json.Marshal(run.Categories)
	if err != nil {
		return newStorageError("sqlite", "marshal_categories", err)
	}
	findings, err := json.Marshal(run.Findings)
	if err != nil {
		return newStorageError("sqlite", "marshal_findings", err)
	}
	suggestions, err := json.Marshal(run.Suggestions)
	if err != nil {
		return newStorageError("sqlite", "marshal_suggestions", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, created_at, market, categories,
			client_sku, competitor_sku,
			errors, warnings, approved,
			findings, suggestions, report
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.Market, string(categories),
		run.ClientSKU, run.CompetitorSKU,
		run.Errors, run.Warnings, run.Approved,
		string(findings), string(suggestions), run.Report,
	)
	if err != nil {
		return newStorageError("sqlite", "insert_run", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, market, categories,
		       client_sku, competitor_sku,
		       errors, warnings, approved,
		       findings, suggestions, report
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, newStorageError("sqlite", "get_run", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, market, categories,
		       client_sku, competitor_sku,
		       errors, warnings, approved,
		       findings, suggestions, report
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, newStorageError("sqlite", "list_runs", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, newStorageError("sqlite", "scan_run", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, newStorageError("sqlite", "list_runs", err)
	}
	return runs, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run         Run
		categories  sql.NullString
		findings    sql.NullString
		suggestions sql.NullString
		report      sql.NullString
	)

	err := sc.Scan(
		&run.ID, &run.CreatedAt, &run.Market, &categories,
		&run.ClientSKU, &run.CompetitorSKU,
		&run.Errors, &run.Warnings, &run.Approved,
		&findings, &suggestions, &report,
	)
	if err != nil {
		return nil, err
	}

	if categories.Valid && categories.String != "" {
		if err := json.Unmarshal([]byte(categories.String), &run.Categories); err != nil {
			return nil, err
		}
	}
	if findings.Valid && findings.String != "" {
		var fs []rules.Finding
		if err := json.Unmarshal([]byte(findings.String), &fs); err != nil {
			return nil, err
		}
		run.Findings = fs
	}
	if suggestions.Valid && suggestions.String != "" {
		var recs []suggest.Recommendation
		if err := json.Unmarshal([]byte(suggestions.String), &recs); err != nil {
			return nil, err
		}
		run.Suggestions = recs
	}
	run.Report = report.String

	return &run, nil
}
