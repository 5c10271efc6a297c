package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starfinance/backend/internal/models"
)

// MemoryIdentityStore is an in-process IdentityStore used by service
// tests. The mutex gives it the same atomicity the unique index gives
// the Postgres store.
type MemoryIdentityStore struct {
	mu        sync.RWMutex
	bySubject map[string]*models.IdentityRecord
}

// NewMemoryIdentityStore creates an empty in-memory identity store
func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{bySubject: make(map[string]*models.IdentityRecord)}
}

func (s *MemoryIdentityStore) Create(ctx context.Context, rec *models.IdentityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySubject[rec.SubjectID]; exists {
		return ErrDuplicate
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	cp := *rec
	s.bySubject[rec.SubjectID] = &cp
	return nil
}

func (s *MemoryIdentityStore) GetBySubject(ctx context.Context, subjectID string) (*models.IdentityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.bySubject[subjectID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryIdentityStore) GetByID(ctx context.Context, id uuid.UUID) (*models.IdentityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.bySubject {
		if rec.ID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryIdentityStore) GetByKYCNumber(ctx context.Context, kycNumber string) (*models.IdentityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.bySubject {
		if rec.KYCNumber == kycNumber {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryIdentityStore) Update(ctx context.Context, rec *models.IdentityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.bySubject[rec.SubjectID]
	if !ok || stored.ID != rec.ID {
		return ErrNotFound
	}
	stored.Status = rec.Status
	stored.Notes = rec.Notes
	stored.UpdatedAt = time.Now()
	rec.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *MemoryIdentityStore) ListByStatus(ctx context.Context, status models.IdentityStatus) ([]models.IdentityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var recs []models.IdentityRecord
	for _, rec := range s.bySubject {
		if rec.Status == status {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	return recs, nil
}

// MemoryApplicationStore is an in-process ApplicationStore used by
// service tests, with the same optimistic version semantics as the
// Postgres store.
type MemoryApplicationStore struct {
	mu          sync.RWMutex
	byRequestID map[string]*models.LoanApplication
}

// NewMemoryApplicationStore creates an empty in-memory application store
func NewMemoryApplicationStore() *MemoryApplicationStore {
	return &MemoryApplicationStore{byRequestID: make(map[string]*models.LoanApplication)}
}

func (s *MemoryApplicationStore) Create(ctx context.Context, app *models.LoanApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byRequestID[app.RequestID]; exists {
		return ErrDuplicate
	}
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	now := time.Now()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	if app.UpdatedAt.IsZero() {
		app.UpdatedAt = now
	}
	cp := *app
	s.byRequestID[app.RequestID] = &cp
	return nil
}

func (s *MemoryApplicationStore) GetByRequestID(ctx context.Context, requestID string) (*models.LoanApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.byRequestID[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *app
	return &cp, nil
}

func (s *MemoryApplicationStore) ListBySubject(ctx context.Context, subjectID string) ([]models.LoanApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var apps []models.LoanApplication
	for _, app := range s.byRequestID {
		if app.SubjectID == subjectID {
			apps = append(apps, *app)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].CreatedAt.After(apps[j].CreatedAt) })
	return apps, nil
}

func (s *MemoryApplicationStore) ListByStatus(ctx context.Context, statuses ...models.ApplicationStatus) ([]models.LoanApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[models.ApplicationStatus]bool, len(statuses))
	for _, st := range statuses {
		wanted[st] = true
	}

	var apps []models.LoanApplication
	for _, app := range s.byRequestID {
		if wanted[app.Status] {
			apps = append(apps, *app)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].CreatedAt.After(apps[j].CreatedAt) })
	return apps, nil
}

func (s *MemoryApplicationStore) Update(ctx context.Context, app *models.LoanApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byRequestID[app.RequestID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != app.Version {
		return ErrConflict
	}
	stored.Status = app.Status
	stored.ApprovedAmount = app.ApprovedAmount
	stored.QualityIndex = app.QualityIndex
	stored.EvaluationNotes = app.EvaluationNotes
	stored.RiskFlags = append(models.FlagList(nil), app.RiskFlags...)
	stored.Version++
	stored.UpdatedAt = time.Now()
	app.Version = stored.Version
	app.UpdatedAt = stored.UpdatedAt
	return nil
}
