package envelope

import (
	"crypto/rand"
	"fmt"
	"io"

	uverrors "github.com/wikisphere/userverify/internal/errors"

	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// KeySize is the length of both box keys and symmetric keys.
	KeySize = 32

	// nonceSize is the secretbox nonce length, stored as a ciphertext prefix.
	nonceSize = 24
)

// GenerateKeyPair creates a fresh public/secret key pair for sealed boxes.
func GenerateKeyPair() (publicKey, secretKey []byte, err error) {
	pub, sec, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate key pair: %w", err)
	}
	return pub[:], sec[:], nil
}

// Seal encrypts plaintext to the holder of the matching secret key. The
// ciphertext carries no sender identity (anonymous sealed box).
func Seal(plaintext, publicKey []byte) ([]byte, error) {
	pub, err := toKey(publicKey)
	if err != nil {
		return nil, uverrors.ErrInvalidPublicKey
	}
	sealed, err := box.SealAnonymous(nil, plaintext, pub, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to seal payload: %w", err)
	}
	return sealed, nil
}

// Open decrypts a sealed box using an externally supplied key pair. The pair
// is reconstructed from the stored public key and the secret key recovered at
// decrypt time; it need not come from GenerateKeyPair in this process.
//
// Empty ciphertext short-circuits to (nil, nil): absent data is not an error
// and never reaches the cipher.
func Open(ciphertext, publicKey, secretKey []byte) ([]byte, error) {
	if len(ciphertext) == 0 {
		return nil, nil
	}
	pub, err := toKey(publicKey)
	if err != nil {
		return nil, uverrors.ErrInvalidPublicKey
	}
	sec, err := toKey(secretKey)
	if err != nil {
		return nil, uverrors.ErrInvalidKeyLength
	}
	plaintext, ok := box.OpenAnonymous(nil, ciphertext, pub, sec)
	if !ok {
		return nil, uverrors.ErrWrongKeyOrCorrupted
	}
	return plaintext, nil
}

// EncryptSymmetric encrypts plaintext under a 32-byte key with an
// authenticated cipher. The random nonce is prepended to the ciphertext.
func EncryptSymmetric(plaintext, key []byte) ([]byte, error) {
	k, err := toKey(key)
	if err != nil {
		return nil, uverrors.ErrInvalidKeyLength
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return secretbox.Seal(nonce[:], plaintext, &nonce, k), nil
}

// DecryptSymmetric reverses EncryptSymmetric. An authentication failure is
// reported as ErrWrongKeyOrCorrupted; callers cannot tell a wrong key from a
// tampered ciphertext.
//
// Empty ciphertext short-circuits to (nil, nil) without invoking the cipher.
func DecryptSymmetric(ciphertext, key []byte) ([]byte, error) {
	if len(ciphertext) == 0 {
		return nil, nil
	}
	k, err := toKey(key)
	if err != nil {
		return nil, uverrors.ErrInvalidKeyLength
	}
	if len(ciphertext) < nonceSize {
		return nil, uverrors.ErrWrongKeyOrCorrupted
	}

	var nonce [nonceSize]byte
	copy(nonce[:], ciphertext[:nonceSize])

	plaintext, ok := secretbox.Open(nil, ciphertext[nonceSize:], &nonce, k)
	if !ok {
		return nil, uverrors.ErrWrongKeyOrCorrupted
	}
	return plaintext, nil
}

func toKey(b []byte) (*[KeySize]byte, error) {
	if len(b) != KeySize {
		return nil, fmt.Errorf("expected %d bytes, got %d", KeySize, len(b))
	}
	var k [KeySize]byte
	copy(k[:], b)
	return &k, nil
}
