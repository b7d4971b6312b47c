// Package verification composes the key store, record store, document vault
// and envelope crypto into the identity-verification workflows: submission,
// administrator review, the verified gate, and the password-unlocked decrypt
// path.
package verification
