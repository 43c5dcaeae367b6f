package history

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the run history schema.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,

    market TEXT NOT NULL,
    categories TEXT,

    client_sku TEXT NOT NULL,
    competitor_sku TEXT NOT NULL,

    errors INTEGER NOT NULL,
    warnings INTEGER NOT NULL,
    approved BOOLEAN NOT NULL,

    findings TEXT,
    suggestions TEXT,
    report TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_client_sku ON runs(client_sku);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// insertSchemaVersion records the schema version, ignoring duplicates.
const insertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// getSchemaVersion reads the highest recorded schema version.
const getSchemaVersion = `SELECT MAX(version) FROM schema_version`
