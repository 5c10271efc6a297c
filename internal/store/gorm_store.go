package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/starfinance/backend/internal/models"
)

// GormIdentityStore is the Postgres-backed identity registry.
// Duplicate-submission races are resolved by the unique index on
// subject_id; gorm's error translation surfaces them as ErrDuplicatedKey.
type GormIdentityStore struct {
	db *gorm.DB
}

// NewGormIdentityStore creates a Postgres-backed identity store
func NewGormIdentityStore(db *gorm.DB) *GormIdentityStore {
	return &GormIdentityStore{db: db}
}

func (s *GormIdentityStore) Create(ctx context.Context, rec *models.IdentityRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("creating identity record: %w", err)
	}
	return nil
}

func (s *GormIdentityStore) GetBySubject(ctx context.Context, subjectID string) (*models.IdentityRecord, error) {
	var rec models.IdentityRecord
	err := s.db.WithContext(ctx).Where("subject_id = ?", subjectID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // absence is not an error here
		}
		return nil, fmt.Errorf("finding identity record: %w", err)
	}
	return &rec, nil
}

func (s *GormIdentityStore) GetByID(ctx context.Context, id uuid.UUID) (*models.IdentityRecord, error) {
	var rec models.IdentityRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("finding identity record: %w", err)
	}
	return &rec, nil
}

func (s *GormIdentityStore) GetByKYCNumber(ctx context.Context, kycNumber string) (*models.IdentityRecord, error) {
	var rec models.IdentityRecord
	err := s.db.WithContext(ctx).Where("kyc_number = ?", kycNumber).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("finding identity record: %w", err)
	}
	return &rec, nil
}

func (s *GormIdentityStore) Update(ctx context.Context, rec *models.IdentityRecord) error {
	rec.UpdatedAt = time.Now()
	result := s.db.WithContext(ctx).Model(&models.IdentityRecord{}).
		Where("id = ?", rec.ID).
		Updates(map[string]interface{}{
			"status":     rec.Status,
			"notes":      rec.Notes,
			"updated_at": rec.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("updating identity record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormIdentityStore) ListByStatus(ctx context.Context, status models.IdentityStatus) ([]models.IdentityRecord, error) {
	var recs []models.IdentityRecord
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("listing identity records: %w", err)
	}
	return recs, nil
}

// GormApplicationStore is the Postgres-backed application collection.
// Updates are guarded by the version column: the write succeeds only when
// the row still carries the version the caller read.
type GormApplicationStore struct {
	db *gorm.DB
}

// NewGormApplicationStore creates a Postgres-backed application store
func NewGormApplicationStore(db *gorm.DB) *GormApplicationStore {
	return &GormApplicationStore{db: db}
}

func (s *GormApplicationStore) Create(ctx context.Context, app *models.LoanApplication) error {
	if err := s.db.WithContext(ctx).Create(app).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("creating application: %w", err)
	}
	return nil
}

func (s *GormApplicationStore) GetByRequestID(ctx context.Context, requestID string) (*models.LoanApplication, error) {
	var app models.LoanApplication
	err := s.db.WithContext(ctx).Where("request_id = ?", requestID).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("finding application: %w", err)
	}
	return &app, nil
}

func (s *GormApplicationStore) ListBySubject(ctx context.Context, subjectID string) ([]models.LoanApplication, error) {
	var apps []models.LoanApplication
	err := s.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	return apps, nil
}

func (s *GormApplicationStore) ListByStatus(ctx context.Context, statuses ...models.ApplicationStatus) ([]models.LoanApplication, error) {
	var apps []models.LoanApplication
	err := s.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	return apps, nil
}

func (s *GormApplicationStore) Update(ctx context.Context, app *models.LoanApplication) error {
	app.UpdatedAt = time.Now()
	result := s.db.WithContext(ctx).Model(&models.LoanApplication{}).
		Where("id = ? AND version = ?", app.ID, app.Version).
		Updates(map[string]interface{}{
			"status":           app.Status,
			"approved_amount":  app.ApprovedAmount,
			"quality_index":    app.QualityIndex,
			"evaluation_notes": app.EvaluationNotes,
			"risk_flags":       app.RiskFlags,
			"version":          app.Version + 1,
			"updated_at":       app.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("updating application: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Either the row is gone or another writer got there first
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.LoanApplication{}).
			Where("id = ?", app.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("checking application existence: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	app.Version++
	return nil
}
