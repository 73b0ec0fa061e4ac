package models

import (
	"github.com/google/uuid"
)

// User is an account. ADMIN users have no organization; MANAGER and MEMBER users must have one.
type User struct {
	BaseModel
	Username       string     `json:"username" gorm:"uniqueIndex;not null;size:100" validate:"required,min=3,max=100"`
	PasswordHash   string     `json:"-" gorm:"not null;size:255"`
	Role           Role       `json:"role" gorm:"type:varchar(20);not null;default:'MEMBER'"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty" gorm:"type:uuid;index" tenant:"owner"`

	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}
