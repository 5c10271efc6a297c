package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserType distinguishes customers from bank staff
type UserType string

const (
	UserTypeCustomer    UserType = "CUSTOMER"
	UserTypeBankOfficer UserType = "BANK_OFFICER"
	UserTypeAdmin       UserType = "ADMIN"
)

// User represents a user in the system
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Type         UserType       `gorm:"type:varchar(20);not null;default:'CUSTOMER'" json:"type"`
	EmployeeID   *string        `gorm:"type:varchar(20);uniqueIndex" json:"employee_id,omitempty"`
	TOTPSecret   *string        `gorm:"type:varchar(64)" json:"-"`
	TOTPEnabled  bool           `gorm:"default:false" json:"totp_enabled"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when none was provided
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsOfficer reports whether the user may perform review operations
func (u *User) IsOfficer() bool {
	return u.Type == UserTypeBankOfficer || u.Type == UserTypeAdmin
}
