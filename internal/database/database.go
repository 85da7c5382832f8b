package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"crmrelay/internal/migrations"
	"crmrelay/internal/models"
	"crmrelay/internal/security"

	_ "github.com/mattn/go-sqlite3"
)

type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

func New(dbPath string) (*Database, error) {
	if len(dbPath) == 0 || dbPath[0] == '\x00' {
		return nil, fmt.Errorf("invalid database path")
	}

	// Validate database path to prevent directory traversal
	if err := security.ValidateFilePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	schema, err := migrations.GetInitialSchema()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to read schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	encryptor, err := NewEncryptor()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize encryptor: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	return &Database{db: db, encryptor: encryptor}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// SaveAPIKey persists a new API key. The secret column is encrypted at
// rest when encryption is enabled; the deterministic lookup column
// carries the unique index used by GetAPIKeyBySecret.
func (d *Database) SaveAPIKey(ctx context.Context, key *models.APIKey) error {
	encryptedSecret, err := d.encryptor.EncryptIfEnabled(key.Secret)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret: %w", err)
	}

	lookup, err := d.encryptor.EncryptForLookupIfEnabled(key.Secret)
	if err != nil {
		return fmt.Errorf("failed to compute secret lookup: %w", err)
	}

	permissions, err := json.Marshal(key.Permissions)
	if err != nil {
		return fmt.Errorf("failed to marshal permissions: %w", err)
	}

	return withRetry(ctx, func() error {
		_, err := d.db.ExecContext(ctx, InsertAPIKeyQuery,
			key.ID,
			encryptedSecret,
			lookup,
			key.Name,
			key.AccountID,
			string(permissions),
			key.LastUsed,
			key.ExpiresAt,
		)
		return err
	}, "save api key")
}

// GetAPIKeyBySecret looks up a key by its plaintext secret. A missing
// secret yields (nil, nil), not an error.
func (d *Database) GetAPIKeyBySecret(ctx context.Context, secret string) (*models.APIKey, error) {
	lookup, err := d.encryptor.EncryptForLookupIfEnabled(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to compute secret lookup: %w", err)
	}

	row := d.db.QueryRowContext(ctx, SelectAPIKeyBySecretQuery, lookup)
	key, err := d.scanAPIKey(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return key, nil
}

// ListAPIKeysByAccount returns every key owned by the account,
// including plaintext secrets.
func (d *Database) ListAPIKeysByAccount(ctx context.Context, accountID string) ([]models.APIKey, error) {
	rows, err := d.db.QueryContext(ctx, SelectAPIKeysByAccountQuery, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var keys []models.APIKey
	for rows.Next() {
		key, err := d.scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		keys = append(keys, *key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate api keys: %w", err)
	}
	return keys, nil
}

// TouchAPIKey updates the advisory last-used timestamp. Concurrent
// touches race last-write-wins, which is acceptable for telemetry.
func (d *Database) TouchAPIKey(ctx context.Context, id string, usedAt time.Time) error {
	return withRetry(ctx, func() error {
		_, err := d.db.ExecContext(ctx, TouchAPIKeyQuery, usedAt, id)
		return err
	}, "touch api key")
}

// DeleteAPIKey hard-deletes a key. Deleting an id that does not exist
// is indistinguishable from success.
func (d *Database) DeleteAPIKey(ctx context.Context, id string) error {
	return withRetry(ctx, func() error {
		_, err := d.db.ExecContext(ctx, DeleteAPIKeyQuery, id)
		return err
	}, "delete api key")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (d *Database) scanAPIKey(row rowScanner) (*models.APIKey, error) {
	var key models.APIKey
	var encryptedSecret, permissions string
	var lastUsed, expiresAt sql.NullTime

	err := row.Scan(
		&key.ID,
		&encryptedSecret,
		&key.Name,
		&key.AccountID,
		&permissions,
		&lastUsed,
		&expiresAt,
		&key.CreatedAt,
		&key.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	secret, err := d.encryptor.DecryptIfEnabled(encryptedSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt secret: %w", err)
	}
	key.Secret = secret

	if err := json.Unmarshal([]byte(permissions), &key.Permissions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
	}

	if lastUsed.Valid {
		t := lastUsed.Time
		key.LastUsed = &t
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		key.ExpiresAt = &t
	}

	return &key, nil
}

// SaveMessage persists one communication attempt. Message records are
// insert-only; there is no corresponding update path.
func (d *Database) SaveMessage(ctx context.Context, msg *models.Message) error {
	metadata, err := json.Marshal(msg.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if msg.Metadata == nil {
		metadata = []byte("{}")
	}

	return withRetry(ctx, func() error {
		_, err := d.db.ExecContext(ctx, InsertMessageQuery,
			msg.ID,
			msg.TemplateID,
			msg.Type,
			msg.From,
			msg.To,
			msg.Subject,
			msg.Content,
			msg.Status,
			msg.Error,
			string(metadata),
			msg.SentAt,
		)
		return err
	}, "save message")
}

// GetMessage returns one message by id, or (nil, nil) when absent.
func (d *Database) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	row := d.db.QueryRowContext(ctx, SelectMessageByIDQuery, id)
	msg, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return msg, nil
}

// ListMessages returns message history, newest first.
func (d *Database) ListMessages(ctx context.Context, limit, offset int) ([]models.Message, error) {
	rows, err := d.db.QueryContext(ctx, SelectMessagesQuery, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var msgs []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return msgs, nil
}

// CleanupOldMessages removes message records older than retentionDays.
func (d *Database) CleanupOldMessages(ctx context.Context, retentionDays int) error {
	return withRetry(ctx, func() error {
		_, err := d.db.ExecContext(ctx, DeleteOldMessagesQuery, retentionDays)
		return err
	}, "cleanup old messages")
}

func scanMessage(row rowScanner) (*models.Message, error) {
	var msg models.Message
	var templateID, subject, errText sql.NullString
	var metadata string
	var sentAt sql.NullTime

	err := row.Scan(
		&msg.ID,
		&templateID,
		&msg.Type,
		&msg.From,
		&msg.To,
		&subject,
		&msg.Content,
		&msg.Status,
		&errText,
		&metadata,
		&sentAt,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if templateID.Valid {
		msg.TemplateID = &templateID.String
	}
	if subject.Valid {
		msg.Subject = &subject.String
	}
	if errText.Valid {
		msg.Error = &errText.String
	}
	if sentAt.Valid {
		t := sentAt.Time
		msg.SentAt = &t
	}
	if metadata != "" && metadata != "{}" {
		if err := json.Unmarshal([]byte(metadata), &msg.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &msg, nil
}
