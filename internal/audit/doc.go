// Package audit provides an append-only trail of verification operations.
//
// Every significant operation (key provisioning, unlock attempts, record
// submission, review, decrypted views) is recorded as one JSON object per
// line. Failed unlock attempts are always recorded, giving an out-of-band
// rate limiter a signal to consume.
//
// Entries never contain key material or decrypted data, only event metadata.
package audit
