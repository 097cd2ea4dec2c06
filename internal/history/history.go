// Package history provides SQLite storage for jiradates run records.
//
// Every completed operation leaves one row behind, so "what did the last
// bulk run touch" survives the terminal scrollback.
package history

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pmtools/jiradates/internal/types"
)

// Run is one recorded operation.
type Run struct {
	ID         string `json:"id"`
	StartedAt  string `json:"started_at"`
	Operation  string `json:"operation"`
	Source     string `json:"source,omitempty"`
	Target     string `json:"target,omitempty"`
	Project    string `json:"project,omitempty"`
	DryRun     bool   `json:"dry_run"`
	Outcome    string `json:"outcome"`
	Successful int    `json:"successful"`
	Skipped    int    `json:"skipped"`
	NoLinks    int    `json:"no_links"`
	Failed     int    `json:"failed"`
}

// DB wraps a SQLite connection for run-history operations.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (or creates) the history database at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if _, err := conn.Exec(Schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// genID generates a random 16-character hex ID.
func genID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// now returns the current time as an ISO 8601 string.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// RecordSync stores the result of a single-pair sync.
func (d *DB) RecordSync(result *types.SyncResult, operation string) error {
	run := Run{
		Operation:  operation,
		Source:     result.Source,
		Target:     result.Target,
		DryRun:     result.DryRun,
		Outcome:    string(result.Outcome),
		Successful: result.Updated(),
		Failed:     len(result.Fields) - result.Updated(),
	}
	return d.insert(run)
}

// RecordBulk stores the aggregate result of a bulk run.
func (d *DB) RecordBulk(result *types.BulkResult) error {
	outcome := string(types.OutcomeSkipped)
	if result.Succeeded() {
		outcome = string(types.OutcomeSuccess)
	} else if result.Failed > 0 {
		outcome = string(types.OutcomeFailed)
	}
	run := Run{
		Operation:  "bulk-sync",
		Project:    result.Project,
		DryRun:     result.DryRun,
		Outcome:    outcome,
		Successful: result.Successful,
		Skipped:    result.Skipped,
		NoLinks:    result.NoLinks,
		Failed:     result.Failed,
	}
	return d.insert(run)
}

func (d *DB) insert(run Run) error {
	if run.ID == "" {
		run.ID = genID()
	}
	if run.StartedAt == "" {
		run.StartedAt = now()
	}
	_, err := d.conn.Exec(`
		INSERT INTO runs
			(id, started_at, operation, source, target, project, dry_run, outcome, successful, skipped, no_links, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.Operation, run.Source, run.Target, run.Project,
		boolToInt(run.DryRun), run.Outcome, run.Successful, run.Skipped, run.NoLinks, run.Failed,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (d *DB) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(`
		SELECT id, started_at, operation, source, target, project, dry_run, outcome, successful, skipped, no_links, failed
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var dryRun int
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.Operation, &run.Source, &run.Target,
			&run.Project, &dryRun, &run.Outcome, &run.Successful, &run.Skipped, &run.NoLinks, &run.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.DryRun = dryRun != 0
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DefaultPath returns the history database path under the user config dir.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "jiradates", "history.db"), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
