package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sectxt/internal/model"
)

// dbFileName is the database file inside the data directory.
const dbFileName = "sectxt.db"

// timestampLayout is fixed width so that stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// HistoryDB stores run records.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so that parallel batch runs
	// do not block readers.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a new file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := h.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return h, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		started_at TEXT NOT NULL,
		succeeded INTEGER NOT NULL,
		signed INTEGER NOT NULL DEFAULT 0,
		expires TEXT,
		key_fingerprint TEXT,
		warnings INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0,
		document TEXT,
		run_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores run, assigning run.ID when it is empty.
func (h *HistoryDB) SaveRun(ctx context.Context, run *model.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Error != nil {
		run.ErrorMessage = run.Error.Error()
	}

	runJSON, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	var (
		document, expires, fingerprint string
		warnings, errCount             int
	)
	if r := run.Result; r != nil {
		document = r.Document
		if !r.Expires.IsZero() {
			expires = r.Expires.UTC().Format(time.RFC3339)
		}
		fingerprint = r.KeyFingerprint
		warnings = r.Count(model.SeverityWarning)
		errCount = r.Count(model.SeverityError)
	}

	query := `
	INSERT INTO runs (id, source, started_at, succeeded, signed, expires, key_fingerprint, warnings, errors, document, run_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = h.db.ExecContext(ctx, query,
		run.ID,
		run.Source,
		run.StartedAt.UTC().Format(timestampLayout),
		boolToInt(!run.Failed()),
		boolToInt(len(run.Signed) > 0),
		expires,
		fingerprint,
		warnings,
		errCount,
		document,
		string(runJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// RunMetadata summarizes a stored run without loading the full record.
type RunMetadata struct {
	ID             string
	Source         string
	StartedAt      time.Time
	Succeeded      bool
	Signed         bool
	Expires        string
	KeyFingerprint string
	Warnings       int
	Errors         int
}

// ListRuns returns run metadata, newest first. An empty source lists
// every file; limit <= 0 means no limit.
func (h *HistoryDB) ListRuns(ctx context.Context, source string, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, source, started_at, succeeded, signed, COALESCE(expires, ''), COALESCE(key_fingerprint, ''), warnings, errors
	FROM runs
	WHERE 1=1
	`
	args := make([]any, 0, 2)
	if source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}
	query += " ORDER BY seq DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var (
			meta              RunMetadata
			startedAt         string
			succeeded, signed int
		)
		if err := rows.Scan(&meta.ID, &meta.Source, &startedAt, &succeeded, &signed,
			&meta.Expires, &meta.KeyFingerprint, &meta.Warnings, &meta.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.StartedAt = parseTimestamp(startedAt)
		meta.Succeeded = succeeded != 0
		meta.Signed = signed != 0
		results = append(results, meta)
	}
	return results, rows.Err()
}

// GetRun loads a run by ID or unique ID prefix.
func (h *HistoryDB) GetRun(ctx context.Context, idPrefix string) (*model.Run, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT run_json FROM runs WHERE id LIKE ? || '%' ORDER BY seq DESC LIMIT 2`, idPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	var payloads []string
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		payloads = append(payloads, payload)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(payloads) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, idPrefix)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, idPrefix)
	}

	var run model.Run
	if err := json.Unmarshal([]byte(payloads[0]), &run); err != nil {
		return nil, fmt.Errorf("failed to parse run: %w", err)
	}
	if run.Result != nil {
		run.Result.RestoreSeverities()
	}
	return &run, nil
}

// LatestDocuments returns the documents of the two most recent successful
// runs of source, newest first. Either may be empty when fewer runs exist.
func (h *HistoryDB) LatestDocuments(ctx context.Context, source string) (latest, previous string, err error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT document FROM runs WHERE source = ? AND succeeded = 1 ORDER BY seq DESC LIMIT 2`, source)
	if err != nil {
		return "", "", fmt.Errorf("failed to load documents: %w", err)
	}
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var doc sql.NullString
		if err := rows.Scan(&doc); err != nil {
			return "", "", fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc.String)
	}
	if err := rows.Err(); err != nil {
		return "", "", err
	}

	if len(docs) == 0 {
		return "", "", fmt.Errorf("%w: no successful run of %s", ErrRunNotFound, source)
	}
	latest = docs[0]
	if len(docs) > 1 {
		previous = docs[1]
	}
	return latest, previous, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that may be stored.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// parseTimestamp tries each known format and returns zero time if none
// matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
