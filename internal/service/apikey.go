package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"crmrelay/internal/constants"
	apperrors "crmrelay/internal/errors"
	"crmrelay/internal/models"
	"crmrelay/internal/privacy"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// KeyStore is the persistence surface the key service needs.
type KeyStore interface {
	SaveAPIKey(ctx context.Context, key *models.APIKey) error
	GetAPIKeyBySecret(ctx context.Context, secret string) (*models.APIKey, error)
	ListAPIKeysByAccount(ctx context.Context, accountID string) ([]models.APIKey, error)
	TouchAPIKey(ctx context.Context, id string, usedAt time.Time) error
	DeleteAPIKey(ctx context.Context, id string) error
}

// APIKeyService issues and validates opaque bearer tokens for the
// programmatic API surface.
type APIKeyService interface {
	CreateAPIKey(ctx context.Context, name, accountID string, permissions []string, expiresAt *time.Time) (*models.APIKey, error)
	ValidateAPIKey(ctx context.Context, secret string) (*models.APIKey, error)
	ListAPIKeys(ctx context.Context, accountID string) ([]models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id string) error
}

type apiKeyService struct {
	db     KeyStore
	logger *logrus.Logger
	now    func() time.Time
}

func NewAPIKeyService(db KeyStore, logger *logrus.Logger) APIKeyService {
	return &apiKeyService{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// CreateAPIKey generates a fresh secret and persists the record. The
// plaintext secret is present in the returned record; this is the one
// moment the caller is guaranteed to see it.
func (s *apiKeyService) CreateAPIKey(ctx context.Context, name, accountID string, permissions []string, expiresAt *time.Time) (*models.APIKey, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("name", "key name is required")
	}
	if len(name) > constants.MaxKeyNameLength {
		return nil, apperrors.NewValidationError("name", fmt.Sprintf("key name exceeds %d characters", constants.MaxKeyNameLength))
	}
	if accountID == "" {
		return nil, apperrors.NewValidationError("accountId", "account id is required")
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to generate key secret")
	}

	now := s.now().UTC()
	if permissions == nil {
		permissions = []string{}
	}

	key := &models.APIKey{
		ID:          uuid.NewString(),
		Secret:      secret,
		Name:        name,
		AccountID:   accountID,
		Permissions: permissions,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.SaveAPIKey(ctx, key); err != nil {
		return nil, apperrors.NewDatabaseError("save api key", err)
	}

	s.logger.WithFields(logrus.Fields{
		LogFieldKeyID:     key.ID,
		LogFieldAccountID: accountID,
		"secret":          privacy.MaskSecret(secret),
	}).Info("API key created")

	return key, nil
}

// ValidateAPIKey resolves a secret to its key record. Unknown and
// expired secrets both fail closed with (nil, nil) rather than an
// error; the error return is reserved for store failures.
func (s *apiKeyService) ValidateAPIKey(ctx context.Context, secret string) (*models.APIKey, error) {
	if secret == "" {
		return nil, nil
	}

	key, err := s.db.GetAPIKeyBySecret(ctx, secret)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get api key", err)
	}
	if key == nil {
		return nil, nil
	}

	now := s.now().UTC()
	if key.Expired(now) {
		return nil, nil
	}

	// Advisory telemetry; a lost update between concurrent validations
	// is acceptable.
	if err := s.db.TouchAPIKey(ctx, key.ID, now); err != nil {
		s.logger.WithError(err).WithField(LogFieldKeyID, key.ID).Warn("Failed to update key last-used timestamp")
	}
	key.LastUsed = &now
	key.UpdatedAt = now

	return key, nil
}

// ListAPIKeys returns every key for the account. Secrets come back in
// plaintext; whether to redisplay them is the caller's decision.
func (s *apiKeyService) ListAPIKeys(ctx context.Context, accountID string) ([]models.APIKey, error) {
	if accountID == "" {
		return nil, apperrors.NewValidationError("accountId", "account id is required")
	}

	keys, err := s.db.ListAPIKeysByAccount(ctx, accountID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list api keys", err)
	}
	return keys, nil
}

// RevokeAPIKey hard-deletes a key. Revoking an id that never existed
// reports success.
func (s *apiKeyService) RevokeAPIKey(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.NewValidationError("id", "key id is required")
	}

	if err := s.db.DeleteAPIKey(ctx, id); err != nil {
		return apperrors.NewDatabaseError("delete api key", err)
	}

	s.logger.WithField(LogFieldKeyID, id).Info("API key revoked")
	return nil
}

// generateSecret builds an opaque bearer token: 32 random bytes hex
// concatenated with a timestamp, hashed with SHA-256, truncated to a
// fixed-length hex prefix and tagged. Uniqueness rides on the random
// source; it is not re-checked against existing keys.
func generateSecret() (string, error) {
	random := make([]byte, constants.APIKeyRandomBytes)
	if _, err := rand.Read(random); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	seed := hex.EncodeToString(random) + strconv.FormatInt(time.Now().UnixNano(), 10)
	digest := sha256.Sum256([]byte(seed))

	return constants.APIKeySecretPrefix + hex.EncodeToString(digest[:])[:constants.APIKeySecretHexLen], nil
}
