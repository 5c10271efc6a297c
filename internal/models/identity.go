package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdentityStatus represents the outcome of an identity verification
type IdentityStatus string

const (
	IdentityStatusPending  IdentityStatus = "PENDING"
	IdentityStatusVerified IdentityStatus = "VERIFIED"
	IdentityStatusRejected IdentityStatus = "REJECTED"
)

// ValidIdentityStatus reports whether s is a recognized identity status
func ValidIdentityStatus(s IdentityStatus) bool {
	switch s {
	case IdentityStatusPending, IdentityStatusVerified, IdentityStatusRejected:
		return true
	}
	return false
}

// Decided reports whether s is a terminal identity status. A decided
// record is never re-opened; re-submission is a product decision we do
// not take here.
func (s IdentityStatus) Decided() bool {
	return s == IdentityStatusVerified || s == IdentityStatusRejected
}

// IdentityRecord tracks the proof-of-identity outcome for one applicant.
// At most one record exists per subject; the KYC number is assigned on
// first submission and never changes.
type IdentityRecord struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	KYCNumber    string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"kyc_number"`
	SubjectID    string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"subject_id"`
	Status       IdentityStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	DocumentRefs StringList     `gorm:"type:jsonb" json:"document_refs"`
	Notes        string         `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when none was provided
func (r *IdentityRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
