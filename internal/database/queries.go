package database

// API key queries
const (
	InsertAPIKeyQuery = `
		INSERT INTO api_keys (
			id, secret, secret_lookup, name, account_id, permissions,
			last_used, expires_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	SelectAPIKeyBySecretQuery = `
		SELECT id, secret, name, account_id, permissions,
		       last_used, expires_at, created_at, updated_at
		FROM api_keys
		WHERE secret_lookup = ?
	`

	SelectAPIKeysByAccountQuery = `
		SELECT id, secret, name, account_id, permissions,
		       last_used, expires_at, created_at, updated_at
		FROM api_keys
		WHERE account_id = ?
		ORDER BY created_at DESC
	`

	TouchAPIKeyQuery = `
		UPDATE api_keys
		SET last_used = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	DeleteAPIKeyQuery = `
		DELETE FROM api_keys
		WHERE id = ?
	`
)

// Message queries. Messages are insert-only; there is no UPDATE
// statement on purpose.
const (
	InsertMessageQuery = `
		INSERT INTO messages (
			id, template_id, type, sender, recipient, subject,
			content, status, error, metadata, sent_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	SelectMessagesQuery = `
		SELECT id, template_id, type, sender, recipient, subject,
		       content, status, error, metadata, sent_at,
		       created_at, updated_at
		FROM messages
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	SelectMessageByIDQuery = `
		SELECT id, template_id, type, sender, recipient, subject,
		       content, status, error, metadata, sent_at,
		       created_at, updated_at
		FROM messages
		WHERE id = ?
	`

	DeleteOldMessagesQuery = `
		DELETE FROM messages
		WHERE created_at < datetime('now', '-' || ? || ' days')
	`
)
