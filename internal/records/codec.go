package records

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/wikisphere/userverify/internal/envelope"
)

// FieldKind tags a submission field. Text fields carry the value inline; file
// fields carry a relative filename under the user's upload directory, never
// the file content.
type FieldKind string

const (
	KindText FieldKind = "text"
	KindFile FieldKind = "file"
)

// Field is one named entry of a verification submission.
type Field struct {
	Name  string
	Kind  FieldKind
	Value string
}

// FieldSet is an ordered list of fields. The wire format is a JSON object
// mapping name to a [kind, value] pair; the slice representation preserves
// insertion order across a round trip, which UI consumers rely on.
type FieldSet []Field

// Get returns the first field with the given name.
func (fs FieldSet) Get(name string) (Field, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// MarshalJSON renders the set as {"name":["kind","value"],...} in order.
func (fs FieldSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		pair, err := json.Marshal([2]string{string(f.Kind), f.Value})
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(pair)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses the object token by token so field order survives;
// encoding/json maps would shuffle it.
func (fs *FieldSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("field set must be a JSON object, got %v", tok)
	}

	var out FieldSet
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected field name token %v", tok)
		}

		var pair [2]string
		if err := dec.Decode(&pair); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		out = append(out, Field{Name: name, Kind: FieldKind(pair[0]), Value: pair[1]})
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}

	*fs = out
	return nil
}

// EncodeSealed serializes the field set and seals it under the public key,
// producing the blob stored in the verification record.
func EncodeSealed(fs FieldSet, publicKey []byte) ([]byte, error) {
	plain, err := json.Marshal(fs)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize field set: %w", err)
	}
	return envelope.Seal(plain, publicKey)
}

// DecodeSealed opens a sealed field-set blob and parses it. An empty blob
// yields a nil set without touching the cipher.
func DecodeSealed(blob, publicKey, secretKey []byte) (FieldSet, error) {
	plain, err := envelope.Open(blob, publicKey, secretKey)
	if err != nil {
		return nil, err
	}
	if plain == nil {
		return nil, nil
	}

	var fs FieldSet
	if err := json.Unmarshal(plain, &fs); err != nil {
		return nil, fmt.Errorf("failed to parse field set: %w", err)
	}
	return fs, nil
}
