package errors

import "errors"

// Configuration errors indicate the system is not ready to serve crypto operations.
var (
	// ErrKeysNotSet indicates no enabled key record has been provisioned.
	ErrKeysNotSet = errors.New("verification keys are not set")

	// ErrKeysExist indicates a key record already exists and provisioning was refused.
	ErrKeysExist = errors.New("verification keys already exist")
)

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrWrongKeyOrCorrupted indicates a wrong password, wrong key, or tampered
	// ciphertext. The causes are deliberately indistinguishable to the caller.
	ErrWrongKeyOrCorrupted = errors.New("wrong key or corrupted ciphertext")

	// ErrInvalidKeyLength indicates a symmetric key has an unexpected length.
	ErrInvalidKeyLength = errors.New("invalid symmetric key length")

	// ErrInvalidPublicKey indicates the stored public key is malformed.
	ErrInvalidPublicKey = errors.New("invalid public key")
)

// Session errors indicate issues with the per-session user key.
var (
	// ErrUserKeyNotSet indicates no unlocked user key is present in the session.
	ErrUserKeyNotSet = errors.New("user key is not set for this session")
)

// Record and document errors.
var (
	// ErrRecordNotFound indicates no verification record exists for the user.
	ErrRecordNotFound = errors.New("verification record not found")

	// ErrDocumentNotFound indicates the requested document could not be located.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrFileTooLarge indicates an uploaded file exceeds the configured limit.
	ErrFileTooLarge = errors.New("file exceeds the maximum upload size")

	// ErrInvalidStatus indicates an attempt to persist an unknown or synthetic status.
	ErrInvalidStatus = errors.New("invalid verification status")

	// ErrInvalidFilename indicates a document name that escapes the user directory.
	ErrInvalidFilename = errors.New("invalid document filename")
)

// Authorization errors.
var (
	// ErrNotAuthorized indicates the actor is not a privileged reviewer.
	ErrNotAuthorized = errors.New("user is not authorized to review verifications")
)
