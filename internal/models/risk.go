package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// RiskFlag is an officer-asserted suspicious indicator. Any flag on an
// application vetoes the transition to APPROVED until cleared.
type RiskFlag string

const (
	RiskFlagAmountWeightMismatch    RiskFlag = "AMOUNT_INCONSISTENT_WITH_WEIGHT"
	RiskFlagDocumentInconsistency   RiskFlag = "DOCUMENT_INCONSISTENCY"
	RiskFlagPoorImageQuality        RiskFlag = "POOR_IMAGE_QUALITY"
	RiskFlagSuspiciousPayoutAccount RiskFlag = "SUSPICIOUS_PAYOUT_ACCOUNT"
	RiskFlagDuplicateApplicant      RiskFlag = "DUPLICATE_APPLICANT"
	RiskFlagAssetAuthenticity       RiskFlag = "ASSET_AUTHENTICITY_CONCERN"
)

// RiskFlagCatalog lists every flag an officer may set, with the
// descriptions shown on the review screen.
var RiskFlagCatalog = map[RiskFlag]string{
	RiskFlagAmountWeightMismatch:    "Unusually high loan amount for asset weight",
	RiskFlagDocumentInconsistency:   "Inconsistent document information",
	RiskFlagPoorImageQuality:        "Poor quality asset images",
	RiskFlagSuspiciousPayoutAccount: "Suspicious bank account details",
	RiskFlagDuplicateApplicant:      "Multiple applications from same user",
	RiskFlagAssetAuthenticity:       "Asset appears to be damaged or fake",
}

// ValidRiskFlag reports whether f is a catalog member
func ValidRiskFlag(f RiskFlag) bool {
	_, ok := RiskFlagCatalog[f]
	return ok
}

// FlagList stores the set of risk flags on an application as a jsonb column
type FlagList []RiskFlag

// Contains reports whether the list includes f
func (l FlagList) Contains(f RiskFlag) bool {
	for _, v := range l {
		if v == f {
			return true
		}
	}
	return false
}

// Value implements the driver.Valuer interface for FlagList
func (l FlagList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]RiskFlag{})
	}
	return json.Marshal([]RiskFlag(l))
}

// Scan implements the sql.Scanner interface for FlagList
func (l *FlagList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	var result []RiskFlag
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*l = result
	return nil
}
