package keystore

import (
	"errors"
	"fmt"
	"time"

	"github.com/wikisphere/userverify/internal/envelope"
	uverrors "github.com/wikisphere/userverify/internal/errors"
	"github.com/wikisphere/userverify/internal/protectedkey"

	"gorm.io/gorm"
)

// KeyRecord is the single enabled key-pair row. All user data system-wide is
// encrypted under PublicKey; the matching secret key is only ever stored
// encrypted under the unlocked user key.
type KeyRecord struct {
	ID        uint   `gorm:"primaryKey"`
	PublicKey []byte `gorm:"column:public_key;not null"`

	// ProtectedKey is the ASCII-safe password-protected wrapper around the
	// user key (salt and KDF parameters embedded).
	ProtectedKey string `gorm:"column:protected_key;not null"`

	// EncryptedPrivateKey is the box secret key encrypted under the unlocked
	// user key.
	EncryptedPrivateKey []byte `gorm:"column:encrypted_private_key;not null"`

	// Enabled is always 1 on insert. The partial unique index makes a second
	// enabled row structurally impossible, not just filtered out.
	Enabled   int `gorm:"column:enabled;index:idx_verification_keys_enabled,unique,where:enabled = 1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (KeyRecord) TableName() string {
	return "verification_keys"
}

// Store persists key records.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ActiveKey returns the enabled key record. ErrKeysNotSet is a hard
// precondition failure for any encrypt or decrypt operation; callers must
// surface it, never silently skip the crypto.
func (s *Store) ActiveKey() (*KeyRecord, error) {
	var record KeyRecord
	err := s.db.Where("enabled = ?", 1).Limit(1).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, uverrors.ErrKeysNotSet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load key record: %w", err)
	}
	return &record, nil
}

// Provision performs the one-time administrative key setup:
//
//  1. validate the password against the policy
//  2. create the password-protected wrapper
//  3. generate a fresh box key pair
//  4. unlock the wrapper with the same password and encrypt the secret key
//     under the recovered user key
//  5. insert the enabled row
//
// Provisioning is insert-only. If any record already exists the call fails
// with ErrKeysExist and writes nothing.
func (s *Store) Provision(password string) (*KeyRecord, []Failure, error) {
	warnings, err := ValidatePassword(password)
	if err != nil {
		return nil, warnings, err
	}

	var count int64
	if err := s.db.Model(&KeyRecord{}).Count(&count).Error; err != nil {
		return nil, warnings, fmt.Errorf("failed to check for existing keys: %w", err)
	}
	if count > 0 {
		return nil, warnings, uverrors.ErrKeysExist
	}

	protected, err := protectedkey.New(password)
	if err != nil {
		return nil, warnings, fmt.Errorf("failed to create protected key: %w", err)
	}

	publicKey, secretKey, err := envelope.GenerateKeyPair()
	if err != nil {
		return nil, warnings, err
	}

	userKey, err := protectedkey.Unlock(protected, password)
	if err != nil {
		return nil, warnings, fmt.Errorf("failed to unlock freshly created key: %w", err)
	}

	encryptedPrivateKey, err := envelope.EncryptSymmetric(secretKey, userKey)
	if err != nil {
		return nil, warnings, fmt.Errorf("failed to encrypt secret key: %w", err)
	}

	record := &KeyRecord{
		PublicKey:           publicKey,
		ProtectedKey:        protected,
		EncryptedPrivateKey: encryptedPrivateKey,
		Enabled:             1,
	}
	if err := s.db.Create(record).Error; err != nil {
		// A concurrent provisioning can win the insert race; the unique index
		// rejects the loser.
		return nil, warnings, fmt.Errorf("%w: %v", uverrors.ErrKeysExist, err)
	}

	return record, warnings, nil
}
