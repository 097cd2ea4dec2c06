package history

// Schema is the DDL for the run-history database.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    started_at  TEXT NOT NULL,
    operation   TEXT NOT NULL,
    source      TEXT,
    target      TEXT,
    project     TEXT,
    dry_run     INTEGER DEFAULT 0,
    outcome     TEXT NOT NULL,
    successful  INTEGER DEFAULT 0,
    skipped     INTEGER DEFAULT 0,
    no_links    INTEGER DEFAULT 0,
    failed      INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_operation ON runs(operation);
`
