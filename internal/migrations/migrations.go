package migrations

// Schema is applied in full at database open. Every statement is
// idempotent so re-running against an existing database is safe.
const Schema = `
CREATE TABLE IF NOT EXISTS api_keys (
	id TEXT PRIMARY KEY,
	secret TEXT NOT NULL,
	secret_lookup TEXT NOT NULL,
	name TEXT NOT NULL,
	account_id TEXT NOT NULL,
	permissions TEXT NOT NULL DEFAULT '[]',
	last_used DATETIME,
	expires_at DATETIME,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_api_keys_secret_lookup ON api_keys(secret_lookup);
CREATE INDEX IF NOT EXISTS idx_api_keys_account ON api_keys(account_id);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	template_id TEXT,
	type TEXT NOT NULL,
	sender TEXT NOT NULL,
	recipient TEXT NOT NULL,
	subject TEXT,
	content TEXT NOT NULL,
	status TEXT NOT NULL,
	error TEXT,
	metadata TEXT NOT NULL DEFAULT '{}',
	sent_at DATETIME,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_type ON messages(type);
CREATE INDEX IF NOT EXISTS idx_messages_status ON messages(status);
CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at);
`

// GetInitialSchema returns the initial database schema.
func GetInitialSchema() (string, error) {
	return Schema, nil
}
