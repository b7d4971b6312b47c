// Package protectedkey implements the password-protected key wrapper.
//
// A wrapper is an ASCII-safe blob embedding a key-derivation salt and an
// authenticated ciphertext of a random symmetric "user key". Unlocking the
// blob with the administrator's password recovers the user key, which in turn
// protects the system's asymmetric secret key at rest.
//
// There is no retry limiting on Unlock; callers that expose it to a network
// surface should meter attempts themselves (failed unlocks are audited).
package protectedkey
