package envelope

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	uverrors "github.com/wikisphere/userverify/internal/errors"
)

func TestSealOpen_RoundTrip(t *testing.T) {
	pub, sec, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}

	payloads := [][]byte{
		[]byte("x"),
		[]byte("identity document contents"),
		bytes.Repeat([]byte{0xAB}, 64*1024),
	}
	for _, plaintext := range payloads {
		sealed, err := Seal(plaintext, pub)
		if err != nil {
			t.Fatalf("Seal failed: %v", err)
		}
		if bytes.Contains(sealed, plaintext) {
			t.Errorf("Ciphertext contains the plaintext")
		}

		opened, err := Open(sealed, pub, sec)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if !bytes.Equal(opened, plaintext) {
			t.Errorf("Round trip mismatch: got %d bytes, want %d", len(opened), len(plaintext))
		}
	}
}

func TestOpen_ExternallySuppliedPair(t *testing.T) {
	pub, sec, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}

	sealed, err := Seal([]byte("payload"), pub)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	// Reconstruct the pair from plain byte slices, the way the decrypt path
	// does after recovering the secret key from storage.
	pubCopy := append([]byte(nil), pub...)
	secCopy := append([]byte(nil), sec...)
	opened, err := Open(sealed, pubCopy, secCopy)
	if err != nil {
		t.Fatalf("Open with reconstructed pair failed: %v", err)
	}
	if string(opened) != "payload" {
		t.Errorf("Expected %q, got %q", "payload", opened)
	}
}

func TestOpen_TamperedCiphertext(t *testing.T) {
	pub, sec, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}

	sealed, err := Seal([]byte("payload"), pub)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	sealed[len(sealed)/2] ^= 0x01

	if _, err := Open(sealed, pub, sec); !errors.Is(err, uverrors.ErrWrongKeyOrCorrupted) {
		t.Errorf("Expected ErrWrongKeyOrCorrupted, got: %v", err)
	}
}

func TestOpen_WrongSecretKey(t *testing.T) {
	pub, _, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}
	_, otherSec, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("Failed to generate second key pair: %v", err)
	}

	sealed, err := Seal([]byte("payload"), pub)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if _, err := Open(sealed, pub, otherSec); !errors.Is(err, uverrors.ErrWrongKeyOrCorrupted) {
		t.Errorf("Expected ErrWrongKeyOrCorrupted, got: %v", err)
	}
}

func TestOpen_EmptyInput(t *testing.T) {
	pub, sec, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}

	plaintext, err := Open(nil, pub, sec)
	if err != nil {
		t.Fatalf("Expected no error for empty input, got: %v", err)
	}
	if plaintext != nil {
		t.Errorf("Expected nil plaintext, got %v", plaintext)
	}
}

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	return key
}

func TestSymmetric_RoundTrip(t *testing.T) {
	key := testKey(t)

	plaintext := []byte("the asymmetric secret key at rest")
	ciphertext, err := EncryptSymmetric(plaintext, key)
	if err != nil {
		t.Fatalf("EncryptSymmetric failed: %v", err)
	}

	decrypted, err := DecryptSymmetric(ciphertext, key)
	if err != nil {
		t.Fatalf("DecryptSymmetric failed: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("Round trip mismatch")
	}
}

func TestSymmetric_WrongKeyAndTamperIndistinguishable(t *testing.T) {
	key := testKey(t)

	ciphertext, err := EncryptSymmetric([]byte("payload"), key)
	if err != nil {
		t.Fatalf("EncryptSymmetric failed: %v", err)
	}

	_, wrongKeyErr := DecryptSymmetric(ciphertext, testKey(t))

	tampered := append([]byte(nil), ciphertext...)
	tampered[len(tampered)-1] ^= 0x01
	_, tamperErr := DecryptSymmetric(tampered, key)

	if !errors.Is(wrongKeyErr, uverrors.ErrWrongKeyOrCorrupted) {
		t.Errorf("Wrong key: expected ErrWrongKeyOrCorrupted, got: %v", wrongKeyErr)
	}
	if !errors.Is(tamperErr, uverrors.ErrWrongKeyOrCorrupted) {
		t.Errorf("Tampered: expected ErrWrongKeyOrCorrupted, got: %v", tamperErr)
	}
}

func TestDecryptSymmetric_EmptyInput(t *testing.T) {
	plaintext, err := DecryptSymmetric(nil, testKey(t))
	if err != nil {
		t.Fatalf("Expected no error for empty input, got: %v", err)
	}
	if plaintext != nil {
		t.Errorf("Expected nil plaintext, got %v", plaintext)
	}
}

func TestSymmetric_InvalidKeyLength(t *testing.T) {
	if _, err := EncryptSymmetric([]byte("payload"), []byte("short")); !errors.Is(err, uverrors.ErrInvalidKeyLength) {
		t.Errorf("Expected ErrInvalidKeyLength, got: %v", err)
	}
	if _, err := DecryptSymmetric([]byte("some ciphertext bytes here..."), []byte("short")); !errors.Is(err, uverrors.ErrInvalidKeyLength) {
		t.Errorf("Expected ErrInvalidKeyLength, got: %v", err)
	}
}

func TestDecryptSymmetric_TruncatedCiphertext(t *testing.T) {
	// Shorter than a nonce but not empty: corrupt, not absent.
	if _, err := DecryptSymmetric([]byte{1, 2, 3}, testKey(t)); !errors.Is(err, uverrors.ErrWrongKeyOrCorrupted) {
		t.Errorf("Expected ErrWrongKeyOrCorrupted, got: %v", err)
	}
}
