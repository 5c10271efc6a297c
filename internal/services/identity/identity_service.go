// Package identity implements the identity verification registry: one
// record per applicant, created on first submission and decided exactly
// once by a reviewing officer.
package identity

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/starfinance/backend/internal/models"
	"github.com/starfinance/backend/internal/store"
	"github.com/starfinance/backend/internal/utils"
)

var (
	// ErrDuplicateIdentity is returned when the subject already has a record
	ErrDuplicateIdentity = errors.New("identity record already exists for subject")
	// ErrNotFound is returned when the identity record does not exist
	ErrNotFound = errors.New("identity record not found")
	// ErrAlreadyDecided is returned when deciding a record that is no longer
	// pending. VERIFIED and REJECTED are terminal.
	ErrAlreadyDecided = errors.New("identity record already decided")
	// ErrInvalidOutcome is returned for a decision outcome outside {VERIFIED, REJECTED}
	ErrInvalidOutcome = errors.New("invalid decision outcome")
	// ErrMissingDocuments is returned for a submission without document refs
	ErrMissingDocuments = errors.New("at least one document reference is required")
	// ErrMissingSubject is returned for a submission without a subject id
	ErrMissingSubject = errors.New("subject id is required")
)

// Enqueuer lets the registry hand submitted documents to the background
// pre-screen job without depending on the queue package.
type Enqueuer interface {
	Enqueue(queueName string, payload interface{}) (string, error)
}

// Service mediates identity verification submissions and decisions
type Service struct {
	identities store.IdentityStore
	enqueuer   Enqueuer
}

// NewService creates an identity registry service. enqueuer may be nil;
// pre-screening is then skipped.
func NewService(identities store.IdentityStore, enqueuer Enqueuer) *Service {
	return &Service{identities: identities, enqueuer: enqueuer}
}

// PrescreenPayload is the document pre-screen job payload
type PrescreenPayload struct {
	KYCNumber    string   `json:"kyc_number"`
	SubjectID    string   `json:"subject_id"`
	DocumentRefs []string `json:"document_refs"`
}

// QueueDocumentPrescreen is the queue the pre-screen job listens on
const QueueDocumentPrescreen = "identity_document_prescreen"

// Submit creates the subject's identity record with a fresh KYC number
// and status PENDING. A second submission for the same subject fails
// with ErrDuplicateIdentity and leaves the original untouched.
func (s *Service) Submit(ctx context.Context, subjectID string, documentRefs []string) (*models.IdentityRecord, error) {
	if subjectID == "" {
		return nil, ErrMissingSubject
	}
	if len(documentRefs) == 0 {
		return nil, ErrMissingDocuments
	}

	rec := &models.IdentityRecord{
		KYCNumber:    utils.GenerateReference("KYC"),
		SubjectID:    subjectID,
		Status:       models.IdentityStatusPending,
		DocumentRefs: models.StringList(documentRefs),
	}

	if err := s.identities.Create(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateIdentity
		}
		return nil, err
	}

	if s.enqueuer != nil {
		// Pre-screen runs out of band and only annotates the record;
		// failures here never fail the submission.
		if _, err := s.enqueuer.Enqueue(QueueDocumentPrescreen, PrescreenPayload{
			KYCNumber:    rec.KYCNumber,
			SubjectID:    rec.SubjectID,
			DocumentRefs: documentRefs,
		}); err != nil {
			log.Printf("failed to enqueue document prescreen for %s: %v", rec.KYCNumber, err)
		}
	}

	return rec, nil
}

// GetStatus returns the subject's record, or nil when the subject has
// not submitted yet. Absence is not an error.
func (s *Service) GetStatus(ctx context.Context, subjectID string) (*models.IdentityRecord, error) {
	return s.identities.GetBySubject(ctx, subjectID)
}

// Decide records the officer's verification outcome. A record can be
// decided once; VERIFIED and REJECTED do not transition further.
func (s *Service) Decide(ctx context.Context, identityID uuid.UUID, outcome models.IdentityStatus, notes string) (*models.IdentityRecord, error) {
	if outcome != models.IdentityStatusVerified && outcome != models.IdentityStatusRejected {
		return nil, ErrInvalidOutcome
	}

	rec, err := s.identities.GetByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if rec.Status.Decided() {
		return nil, ErrAlreadyDecided
	}

	rec.Status = outcome
	rec.Notes = notes
	if err := s.identities.Update(ctx, rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return rec, nil
}

// ListPending returns undecided records for the officer review queue,
// newest first.
func (s *Service) ListPending(ctx context.Context) ([]models.IdentityRecord, error) {
	return s.identities.ListByStatus(ctx, models.IdentityStatusPending)
}

// AppendNotes adds pre-screen findings to the record without touching
// its status. Used by the background job; decisions stay officer-only.
func (s *Service) AppendNotes(ctx context.Context, kycNumber, notes string) error {
	rec, err := s.identities.GetByKYCNumber(ctx, kycNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if rec.Notes == "" {
		rec.Notes = notes
	} else {
		rec.Notes = rec.Notes + "\n" + notes
	}
	return s.identities.Update(ctx, rec)
}
