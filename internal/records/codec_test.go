package records

import (
	"errors"
	"testing"

	"github.com/wikisphere/userverify/internal/envelope"
	uverrors "github.com/wikisphere/userverify/internal/errors"
)

func sampleFieldSet() FieldSet {
	return FieldSet{
		{Name: "full_name", Kind: KindText, Value: "Ada Lovelace"},
		{Name: "date_of_birth", Kind: KindText, Value: "1815-12-10"},
		{Name: "proof_of_identity", Kind: KindFile, Value: "passport.jpg"},
		{Name: "proof_of_address", Kind: KindFile, Value: "utility-bill.pdf"},
		{Name: "notes", Kind: KindText, Value: ""},
	}
}

func TestFieldSet_JSONRoundTripPreservesOrder(t *testing.T) {
	original := sampleFieldSet()

	data, err := original.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}

	var decoded FieldSet
	if err := decoded.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}

	if len(decoded) != len(original) {
		t.Fatalf("Expected %d fields, got %d", len(original), len(decoded))
	}
	for i := range original {
		if decoded[i] != original[i] {
			t.Errorf("Field %d mismatch: got %+v, want %+v", i, decoded[i], original[i])
		}
	}
}

func TestFieldSet_WireFormat(t *testing.T) {
	fs := FieldSet{{Name: "full_name", Kind: KindText, Value: "Ada"}}
	data, err := fs.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	expected := `{"full_name":["text","Ada"]}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, data)
	}
}

func TestFieldSet_FileKindCarriesFilenameNotContent(t *testing.T) {
	fs := sampleFieldSet()
	field, ok := fs.Get("proof_of_identity")
	if !ok {
		t.Fatalf("Expected proof_of_identity field")
	}
	if field.Kind != KindFile || field.Value != "passport.jpg" {
		t.Errorf("File field should carry the filename, got %+v", field)
	}
}

func TestEncodeDecodeSealed_RoundTrip(t *testing.T) {
	pub, sec, err := envelope.GenerateKeyPair()
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}

	original := sampleFieldSet()
	sealed, err := EncodeSealed(original, pub)
	if err != nil {
		t.Fatalf("EncodeSealed failed: %v", err)
	}

	decoded, err := DecodeSealed(sealed, pub, sec)
	if err != nil {
		t.Fatalf("DecodeSealed failed: %v", err)
	}
	for i := range original {
		if decoded[i] != original[i] {
			t.Errorf("Field %d mismatch after sealed round trip", i)
		}
	}
}

func TestDecodeSealed_EmptyBlob(t *testing.T) {
	pub, sec, err := envelope.GenerateKeyPair()
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}

	fs, err := DecodeSealed(nil, pub, sec)
	if err != nil {
		t.Fatalf("Expected no error for empty blob, got: %v", err)
	}
	if fs != nil {
		t.Errorf("Expected nil field set, got %+v", fs)
	}
}

func TestDecodeSealed_Tampered(t *testing.T) {
	pub, sec, err := envelope.GenerateKeyPair()
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}

	sealed, err := EncodeSealed(sampleFieldSet(), pub)
	if err != nil {
		t.Fatalf("EncodeSealed failed: %v", err)
	}
	sealed[0] ^= 0x01

	if _, err := DecodeSealed(sealed, pub, sec); !errors.Is(err, uverrors.ErrWrongKeyOrCorrupted) {
		t.Errorf("Expected ErrWrongKeyOrCorrupted, got: %v", err)
	}
}
