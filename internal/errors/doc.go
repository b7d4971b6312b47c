// Package errors provides typed error values for the userverify application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. This makes
// error handling more robust and refactoring-safe.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Configuration errors: key provisioning state (ErrKeysNotSet, ErrKeysExist)
//   - Crypto errors: encryption/decryption failures (ErrWrongKeyOrCorrupted)
//   - Session errors: per-session user key state (ErrUserKeyNotSet)
//   - Record errors: verification record and document issues
//
// # Usage
//
// Return errors from internal packages:
//
//	if record == nil {
//	    return nil, errors.ErrKeysNotSet
//	}
//
// Handle errors at the surface layer:
//
//	data, err := svc.DecryptData(payload, userKey)
//	if errors.Is(err, uverrors.ErrWrongKeyOrCorrupted) {
//	    // Report failure without distinguishing the cause
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("decrypting record for user %d: %w", userID, errors.ErrWrongKeyOrCorrupted)
package errors
