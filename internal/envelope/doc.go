// Package envelope implements the two cryptographic primitives protecting
// verification data at rest.
//
// Sealed boxes (Seal/Open) provide anonymous asymmetric encryption: anyone
// holding the public key can produce a ciphertext, and only the holder of the
// matching secret key can open it. All stored verification payloads and
// uploaded documents use this form.
//
// Symmetric authenticated encryption (EncryptSymmetric/DecryptSymmetric)
// protects exactly one thing: the asymmetric secret key at rest, under the
// session-bound user key recovered from the administrator's password.
package envelope
