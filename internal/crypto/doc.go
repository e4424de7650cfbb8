// Package crypto provides encryption services for data at rest.
//
// Implements AES-256-GCM encryption for OAuth tokens before they reach the
// credential store (PostgreSQL or Redis). Three implementations:
// VersionedCryptoService (production, supports key rotation via version
// prefixes), AesGcmCryptoService (single-key, legacy ciphertext format),
// and NoopService (dev/test plaintext passthrough).
package crypto
