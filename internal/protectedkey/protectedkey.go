package protectedkey

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/wikisphere/userverify/internal/envelope"
	uverrors "github.com/wikisphere/userverify/internal/errors"

	"golang.org/x/crypto/argon2"
)

// Blob and key encodings carry a version prefix so the format can evolve
// without breaking stored rows or cookies.
const (
	blobPrefix = "uvpk1:"
	keyPrefix  = "uvk1:"

	saltSize     = 16
	checksumSize = 4
)

// Argon2id parameters used to derive the wrapping key from the password.
// The salt is stored in the blob, so these can only change with a new
// blob version.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// UserKey is the symmetric key recovered by unlocking a protected-key blob.
// It exists only for the duration of an administrator session and is never
// persisted server-side.
type UserKey []byte

// New creates a password-protected wrapper around a fresh random user key
// and returns its ASCII-safe encoding. Only the correct password can recover
// the wrapped key.
func New(password string) (string, error) {
	userKey := make([]byte, envelope.KeySize)
	if _, err := rand.Read(userKey); err != nil {
		return "", fmt.Errorf("failed to generate user key: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	wrapped, err := envelope.EncryptSymmetric(userKey, deriveKey(password, salt))
	if err != nil {
		return "", fmt.Errorf("failed to wrap user key: %w", err)
	}

	payload := make([]byte, 0, saltSize+len(wrapped))
	payload = append(payload, salt...)
	payload = append(payload, wrapped...)

	return blobPrefix + base64.RawStdEncoding.EncodeToString(payload), nil
}

// Unlock recovers the user key from a protected-key blob. A wrong password
// and a tampered or truncated blob both return ErrWrongKeyOrCorrupted; the
// caller cannot tell the causes apart.
func Unlock(blob, password string) (UserKey, error) {
	encoded, ok := strings.CutPrefix(blob, blobPrefix)
	if !ok {
		return nil, uverrors.ErrWrongKeyOrCorrupted
	}

	payload, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil || len(payload) <= saltSize {
		return nil, uverrors.ErrWrongKeyOrCorrupted
	}

	salt, wrapped := payload[:saltSize], payload[saltSize:]
	userKey, err := envelope.DecryptSymmetric(wrapped, deriveKey(password, salt))
	if err != nil || len(userKey) != envelope.KeySize {
		return nil, uverrors.ErrWrongKeyOrCorrupted
	}

	return UserKey(userKey), nil
}

// EncodeToString renders the key in an ASCII-safe portable form suitable for
// cookie storage. A short checksum lets DecodeUserKey reject mangled values.
func (k UserKey) EncodeToString() string {
	sum := sha256.Sum256(k)
	payload := make([]byte, 0, len(k)+checksumSize)
	payload = append(payload, k...)
	payload = append(payload, sum[:checksumSize]...)
	return keyPrefix + base64.RawURLEncoding.EncodeToString(payload)
}

// DecodeUserKey reverses EncodeToString. Any malformed or checksum-failing
// input is reported as ErrWrongKeyOrCorrupted.
func DecodeUserKey(s string) (UserKey, error) {
	encoded, ok := strings.CutPrefix(s, keyPrefix)
	if !ok {
		return nil, uverrors.ErrWrongKeyOrCorrupted
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || len(payload) != envelope.KeySize+checksumSize {
		return nil, uverrors.ErrWrongKeyOrCorrupted
	}

	key, check := payload[:envelope.KeySize], payload[envelope.KeySize:]
	sum := sha256.Sum256(key)
	if subtle.ConstantTimeCompare(check, sum[:checksumSize]) != 1 {
		return nil, uverrors.ErrWrongKeyOrCorrupted
	}
	return UserKey(key), nil
}

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, envelope.KeySize)
}
