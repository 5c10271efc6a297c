// Package store defines the narrow persistence contract the lifecycle
// services depend on. Two logical collections exist: identity records
// keyed by a per-subject-unique KYC number, and loan applications keyed
// by request id. The services never see gorm; tests substitute the
// in-memory implementation.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/starfinance/backend/internal/models"
)

var (
	// ErrNotFound is returned when the requested entity does not exist
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint
	ErrDuplicate = errors.New("store: duplicate record")
	// ErrConflict is returned when an update lost a read-modify-write race
	ErrConflict = errors.New("store: version conflict")
)

// IdentityReader is the read-only view of the identity registry the loan
// lifecycle consults to enforce the verification precondition.
type IdentityReader interface {
	// GetBySubject returns nil, nil when the subject has not submitted yet
	GetBySubject(ctx context.Context, subjectID string) (*models.IdentityRecord, error)
	GetByKYCNumber(ctx context.Context, kycNumber string) (*models.IdentityRecord, error)
}

// IdentityStore persists identity verification records
type IdentityStore interface {
	IdentityReader

	// Create inserts the record; ErrDuplicate if the subject already has one.
	// The uniqueness check and insert are atomic.
	Create(ctx context.Context, rec *models.IdentityRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.IdentityRecord, error)
	// Update persists status and notes changes; ErrNotFound if the record vanished
	Update(ctx context.Context, rec *models.IdentityRecord) error
	ListByStatus(ctx context.Context, status models.IdentityStatus) ([]models.IdentityRecord, error)
}

// ApplicationStore persists loan applications
type ApplicationStore interface {
	// Create inserts the application; ErrDuplicate on a request id collision
	Create(ctx context.Context, app *models.LoanApplication) error
	GetByRequestID(ctx context.Context, requestID string) (*models.LoanApplication, error)
	// ListBySubject returns the subject's applications, newest first
	ListBySubject(ctx context.Context, subjectID string) ([]models.LoanApplication, error)
	ListByStatus(ctx context.Context, statuses ...models.ApplicationStatus) ([]models.LoanApplication, error)
	// Update performs an optimistic write: it succeeds only if the stored
	// Version still equals app.Version, then increments it. A stale writer
	// gets ErrConflict and must re-read.
	Update(ctx context.Context, app *models.LoanApplication) error
}
