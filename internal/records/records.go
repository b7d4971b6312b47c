package records

import (
	"errors"
	"fmt"
	"time"

	uverrors "github.com/wikisphere/userverify/internal/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Status of a user's verification. StatusNone is synthetic: it means "no
// record exists" and is only ever returned to callers, never persisted.
type Status string

const (
	StatusNone        Status = "none"
	StatusPending     Status = "pending"
	StatusVerified    Status = "verified"
	StatusNotRequired Status = "not_required"
)

// Storable reports whether the status may be written to the database.
func (s Status) Storable() bool {
	switch s {
	case StatusPending, StatusVerified, StatusNotRequired:
		return true
	}
	return false
}

// Verified reports whether the status gates as verified.
func (s Status) Verified() bool {
	return s == StatusVerified || s == StatusNotRequired
}

// VerificationRecord holds one user's sealed submission and its review state.
// Data is an opaque sealed blob; the store never inspects it.
type VerificationRecord struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    int64  `gorm:"column:user_id;uniqueIndex;not null"`
	Data      []byte `gorm:"column:data"`
	Status    string `gorm:"column:status;not null"`
	Comments  string `gorm:"column:comments"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (VerificationRecord) TableName() string {
	return "verification_records"
}

// Store persists verification records, one row per user.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get returns the record for userID, or ErrRecordNotFound.
func (s *Store) Get(userID int64) (*VerificationRecord, error) {
	var record VerificationRecord
	err := s.db.Where("user_id = ?", userID).Limit(1).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, uverrors.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load verification record: %w", err)
	}
	return &record, nil
}

// Status returns the user's status, StatusNone when no record exists.
func (s *Store) Status(userID int64) (Status, error) {
	record, err := s.Get(userID)
	if errors.Is(err, uverrors.ErrRecordNotFound) {
		return StatusNone, nil
	}
	if err != nil {
		return StatusNone, err
	}
	return Status(record.Status), nil
}

// SubmitData inserts or replaces the user's sealed submission and resets the
// status to pending. The write is a single atomic upsert keyed on user_id, so
// concurrent submissions cannot produce duplicate rows or lost updates.
func (s *Store) SubmitData(userID int64, data []byte) error {
	record := VerificationRecord{
		UserID: userID,
		Data:   data,
		Status: string(StatusPending),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"data":       data,
			"status":     string(StatusPending),
			"updated_at": time.Now(),
		}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to store verification data: %w", err)
	}
	return nil
}

// SetReview updates the review outcome for an existing record. The sealed
// data is left untouched.
func (s *Store) SetReview(userID int64, status Status, comments string) error {
	if !status.Storable() {
		return uverrors.ErrInvalidStatus
	}
	result := s.db.Model(&VerificationRecord{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"status":   string(status),
			"comments": comments,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return uverrors.ErrRecordNotFound
	}
	return nil
}
