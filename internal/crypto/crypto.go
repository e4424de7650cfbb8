package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

type Service interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// NoopService passes tokens through without encryption (dev/test mode).
type NoopService struct{}

func (NoopService) Encrypt(plaintext string) (string, error)  { return plaintext, nil }
func (NoopService) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }

// AesGcmCryptoService encrypts with a single AES-256-GCM key. Ciphertexts
// carry no version prefix, so rotating the key invalidates stored tokens.
type AesGcmCryptoService struct {
	gcm cipher.AEAD
}

func NewAesGcmCryptoService(hexKey string) (*AesGcmCryptoService, error) {
	gcm, err := newAEAD(hexKey)
	if err != nil {
		return nil, err
	}
	return &AesGcmCryptoService{gcm: gcm}, nil
}

func (c *AesGcmCryptoService) Encrypt(plaintext string) (string, error) {
	return seal(c.gcm, plaintext)
}

func (c *AesGcmCryptoService) Decrypt(ciphertext string) (string, error) {
	return open(c.gcm, ciphertext)
}

// VersionedCryptoService supports key rotation. Ciphertexts are prefixed
// with the key version ("v1:..."), new writes always use the current key,
// and reads fall back to legacy keys by version. Ciphertexts without a
// prefix predate versioning and decrypt with the current key.
type VersionedCryptoService struct {
	currentVersion string
	current        cipher.AEAD
	legacyKeys     map[string]cipher.AEAD
}

func NewVersionedCryptoService(keys map[string]string, currentVersion string) (*VersionedCryptoService, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("at least one key required")
	}
	if _, ok := keys[currentVersion]; !ok {
		return nil, fmt.Errorf("current version %s not found in key set", currentVersion)
	}

	aeads := make(map[string]cipher.AEAD, len(keys))
	for version, hexKey := range keys {
		gcm, err := newAEAD(hexKey)
		if err != nil {
			return nil, fmt.Errorf("invalid key for version %s: %w", version, err)
		}
		aeads[version] = gcm
	}

	current := aeads[currentVersion]
	delete(aeads, currentVersion)

	service := VersionedCryptoService{
		currentVersion: currentVersion,
		current:        current,
		legacyKeys:     aeads,
	}
	return &service, nil
}

func (c *VersionedCryptoService) Encrypt(plaintext string) (string, error) {
	sealed, err := seal(c.current, plaintext)
	if err != nil {
		return "", err
	}
	return c.currentVersion + ":" + sealed, nil
}

func (c *VersionedCryptoService) Decrypt(ciphertext string) (string, error) {
	version, payload, found := strings.Cut(ciphertext, ":")
	if !found {
		// Legacy format without version prefix
		return open(c.current, ciphertext)
	}

	if version == c.currentVersion {
		return open(c.current, payload)
	}

	gcm, ok := c.legacyKeys[version]
	if !ok {
		return "", fmt.Errorf("unknown key version: %s", version)
	}
	return open(gcm, payload)
}

func newAEAD(hexKey string) (cipher.AEAD, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key hex: %w", err)
	}

	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return gcm, nil
}

func seal(gcm cipher.AEAD, plaintext string) (string, error) {
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal appends the encrypted data to nonce, returning nonce || ciphertext || tag
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(ciphertext), nil
}

func open(gcm cipher.AEAD, ciphertext string) (string, error) {
	buffer, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode hex: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(buffer) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, cipherBytes := buffer[:nonceSize], buffer[nonceSize:]
	plainBytes, err := gcm.Open(nil, nonce, cipherBytes, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plainBytes), nil
}
