package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Entry represents a single audit log entry.
type Entry struct {
	ID        string `json:"id"`    // Unique entry identifier.
	Timestamp string `json:"ts"`    // RFC3339 with microseconds.
	Actor     string `json:"actor"` // Name of the actor performing the action.
	Operation string `json:"op"`    // Operation name.

	// Optional fields depending on operation.
	TargetUser int64  `json:"target_user,omitempty"` // For submit/review/decrypt.
	Status     string `json:"status,omitempty"`      // For review.
	Document   string `json:"document,omitempty"`    // For document decrypt.
	Outcome    string `json:"outcome,omitempty"`     // "ok" or "failed"; unlock attempts always record this.
	Detail     string `json:"detail,omitempty"`      // Short failure detail, never key material.
}

// Trail appends entries to a JSONL file. A zero path disables the trail.
type Trail struct {
	path string
}

func NewTrail(path string) *Trail {
	return &Trail{path: path}
}

// Log appends an entry to the audit log. If logging fails it is dropped;
// operations must not fail because audit logging failed.
func (t *Trail) Log(entry Entry) {
	if t == nil || t.path == "" {
		return
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0700); err != nil {
		return
	}

	// #nosec G306 -- the audit log holds no secrets, only event metadata.
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}
