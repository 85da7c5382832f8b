package database

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"

	"crmrelay/internal/constants"

	"golang.org/x/crypto/pbkdf2"
)

const (
	aesKeySize    = 32 // AES-256
	gcmNonceSize  = 12
	kdfIterations = 100000
)

// encryptor handles at-rest encryption of API key secrets. When the
// CRMRELAY_ENABLE_ENCRYPTION env var is not "true" every method is a
// pass-through and secrets are stored in plaintext.
type encryptor struct {
	gcm cipher.AEAD
}

func NewEncryptor() (*encryptor, error) {
	if !isEncryptionEnabled() {
		return &encryptor{}, nil
	}

	key, err := deriveKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &encryptor{gcm: gcm}, nil
}

func deriveKey() ([]byte, error) {
	secret := os.Getenv("CRMRELAY_ENCRYPTION_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("CRMRELAY_ENCRYPTION_SECRET environment variable is required when encryption is enabled")
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("encryption secret must be at least 32 characters long")
	}
	return pbkdf2.Key([]byte(secret), []byte(constants.EncryptionSalt), kdfIterations, aesKeySize, sha256.New), nil
}

func isEncryptionEnabled() bool {
	return os.Getenv("CRMRELAY_ENABLE_ENCRYPTION") == "true"
}

// EncryptIfEnabled seals plaintext with a random nonce. The output is
// base64(nonce || ciphertext).
func (e *encryptor) EncryptIfEnabled(plaintext string) (string, error) {
	if plaintext == "" || e.gcm == nil || !isEncryptionEnabled() {
		return plaintext, nil
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := e.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// EncryptForLookupIfEnabled seals plaintext with a nonce derived from the
// plaintext itself, so equal secrets produce equal ciphertexts. The
// secret_lookup column depends on this: it carries a unique index and is
// matched by equality during key validation.
func (e *encryptor) EncryptForLookupIfEnabled(plaintext string) (string, error) {
	if plaintext == "" || e.gcm == nil || !isEncryptionEnabled() {
		return plaintext, nil
	}

	hash := sha256.Sum256([]byte(plaintext + constants.EncryptionLookupSalt))
	nonce := hash[:gcmNonceSize]
	// #nosec G407 - deterministic nonce is required for equality lookups
	sealed := e.gcm.Seal(append([]byte(nil), nonce...), nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptIfEnabled reverses EncryptIfEnabled and EncryptForLookupIfEnabled.
func (e *encryptor) DecryptIfEnabled(ciphertext string) (string, error) {
	if ciphertext == "" || e.gcm == nil || !isEncryptionEnabled() {
		return ciphertext, nil
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}
	if len(data) < gcmNonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, sealed := data[:gcmNonceSize], data[gcmNonceSize:]
	plaintext, err := e.gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}
