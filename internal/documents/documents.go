package documents

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wikisphere/userverify/internal/envelope"
	uverrors "github.com/wikisphere/userverify/internal/errors"
)

// Vault stores uploaded documents, one directory per user id, with every
// file's contents sealed under the system public key at write time.
type Vault struct {
	root    string
	maxSize int64
}

// NewVault creates a vault rooted at root. maxSize bounds a single upload;
// zero or negative means unlimited.
func NewVault(root string, maxSize int64) *Vault {
	return &Vault{root: root, maxSize: maxSize}
}

// UserDir returns the directory holding the user's documents.
func (v *Vault) UserDir(userID int64) string {
	return filepath.Join(v.root, strconv.FormatInt(userID, 10))
}

// Save reads the upload, seals it under publicKey, and writes it to the
// user's directory keeping the original filename. A file with the same name
// is overwritten. Returns the stored relative filename.
func (v *Vault) Save(userID int64, filename string, contents io.Reader, publicKey []byte) (string, error) {
	name, err := cleanFilename(filename)
	if err != nil {
		return "", err
	}

	dir := v.UserDir(userID)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}

	reader := contents
	if v.maxSize > 0 {
		// Read one byte past the limit so oversized uploads are detected
		// without buffering the whole stream.
		reader = io.LimitReader(contents, v.maxSize+1)
	}
	plain, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read upload %s: %w", name, err)
	}
	if v.maxSize > 0 && int64(len(plain)) > v.maxSize {
		return "", uverrors.ErrFileTooLarge
	}

	sealed, err := envelope.Seal(plain, publicKey)
	if err != nil {
		return "", err
	}

	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, sealed, 0600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	return name, nil
}

// Open returns the decrypted contents of a stored document.
func (v *Vault) Open(userID int64, filename string, publicKey, secretKey []byte) ([]byte, error) {
	name, err := cleanFilename(filename)
	if err != nil {
		return nil, err
	}

	sealed, err := os.ReadFile(filepath.Join(v.UserDir(userID), name))
	if os.IsNotExist(err) {
		return nil, uverrors.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", name, err)
	}

	return envelope.Open(sealed, publicKey, secretKey)
}

// List returns the filenames stored for a user. A missing directory means no
// documents.
func (v *Vault) List(userID int64) ([]string, error) {
	entries, err := os.ReadDir(v.UserDir(userID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// cleanFilename keeps uploads confined to the user directory. Only the base
// name of the client-supplied path is kept.
func cleanFilename(filename string) (string, error) {
	name := filepath.Base(filepath.Clean(filename))
	if name == "." || name == ".." || name == string(filepath.Separator) || strings.ContainsRune(name, 0) {
		return "", uverrors.ErrInvalidFilename
	}
	return name, nil
}
