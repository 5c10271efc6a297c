package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplicationStatus represents a stage in the loan application lifecycle.
// The literal values are part of the API contract and must not change.
type ApplicationStatus string

const (
	StatusSubmitted            ApplicationStatus = "SUBMITTED"
	StatusUnderReview          ApplicationStatus = "UNDER_REVIEW"
	StatusDocumentVerification ApplicationStatus = "DOCUMENT_VERIFICATION"
	StatusPhysicalVerification ApplicationStatus = "PHYSICAL_VERIFICATION"
	StatusGoldEvaluation       ApplicationStatus = "GOLD_EVALUATION"
	StatusOfferMade            ApplicationStatus = "OFFER_MADE"
	StatusApproved             ApplicationStatus = "APPROVED"
	StatusRejected             ApplicationStatus = "REJECTED"
	StatusDisbursed            ApplicationStatus = "DISBURSED"
)

// statusRank orders the review stages. Terminal and branch states share
// the rank of the stage they follow.
var statusRank = map[ApplicationStatus]int{
	StatusSubmitted:            0,
	StatusUnderReview:          1,
	StatusDocumentVerification: 2,
	StatusPhysicalVerification: 3,
	StatusGoldEvaluation:       4,
	StatusOfferMade:            5,
	StatusApproved:             6,
	StatusRejected:             6,
	StatusDisbursed:            7,
}

// ValidApplicationStatus reports whether s is a recognized stage
func ValidApplicationStatus(s ApplicationStatus) bool {
	_, ok := statusRank[s]
	return ok
}

// Rank returns the progression order of the status
func (s ApplicationStatus) Rank() int {
	return statusRank[s]
}

// Terminal reports whether no further transition is permitted from s
func (s ApplicationStatus) Terminal() bool {
	return s == StatusRejected || s == StatusDisbursed
}

// PendingStatuses are the stages surfaced on the officer work queue
var PendingStatuses = []ApplicationStatus{
	StatusSubmitted,
	StatusUnderReview,
	StatusDocumentVerification,
}

// AssetType identifies the kind of pledged collateral
type AssetType string

const (
	AssetTypeGold     AssetType = "GOLD"
	AssetTypeSilver   AssetType = "SILVER"
	AssetTypePlatinum AssetType = "PLATINUM"
)

// ValidAssetType reports whether t is a recognized collateral type
func ValidAssetType(t AssetType) bool {
	switch t {
	case AssetTypeGold, AssetTypeSilver, AssetTypePlatinum:
		return true
	}
	return false
}

// AssetDetails describes the pledged item as declared by the customer
type AssetDetails struct {
	Type        AssetType  `gorm:"type:varchar(20);not null" json:"type"`
	WeightGrams float64    `gorm:"not null" json:"weight_grams"`
	Purity      string     `gorm:"type:varchar(10);not null" json:"purity"`
	Description string     `gorm:"type:text" json:"description"`
	ImageRefs   StringList `gorm:"type:jsonb" json:"image_refs"`
}

// PayoutAccount is the bank account the loan would be disbursed to
type PayoutAccount struct {
	AccountNumber   string `gorm:"type:varchar(34);not null" json:"account_number"`
	RoutingCode     string `gorm:"type:varchar(20);not null" json:"routing_code"`
	InstitutionName string `gorm:"type:varchar(255);not null" json:"institution_name"`
	BranchName      string `gorm:"type:varchar(255)" json:"branch_name"`
	HolderName      string `gorm:"type:varchar(255);not null" json:"holder_name"`
}

// LoanApplication is the central lifecycle entity. It is never deleted;
// REJECTED and DISBURSED applications are kept as historical records.
// Version backs the optimistic concurrency check in the store: every
// successful update increments it, and a writer holding a stale version
// is rejected.
type LoanApplication struct {
	ID              uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RequestID       string            `gorm:"type:varchar(32);uniqueIndex;not null" json:"request_id"`
	SubjectID       string            `gorm:"type:varchar(64);index;not null" json:"subject_id"`
	KYCNumber       string            `gorm:"type:varchar(32);not null" json:"kyc_number"`
	Status          ApplicationStatus `gorm:"type:varchar(30);not null;default:'SUBMITTED'" json:"status"`
	Asset           AssetDetails      `gorm:"embedded;embeddedPrefix:asset_" json:"asset"`
	Payout          PayoutAccount     `gorm:"embedded;embeddedPrefix:payout_" json:"payout"`
	RequestedAmount float64           `gorm:"not null" json:"requested_amount"`
	ApprovedAmount  *int64            `json:"approved_amount,omitempty"`
	QualityIndex    *int              `json:"quality_index,omitempty"`
	EvaluationNotes string            `gorm:"type:text" json:"evaluation_notes"`
	RiskFlags       FlagList          `gorm:"type:jsonb" json:"risk_flags"`
	Version         int64             `gorm:"not null;default:0" json:"version"`
	CreatedAt       time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate assigns a UUID when none was provided
func (a *LoanApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
