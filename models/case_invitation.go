package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation status constants
const (
	InvitationPending  = "PENDING"
	InvitationAccepted = "ACCEPTED"
	InvitationExpired  = "EXPIRED"
)

// CaseInvitation invites a user (by email) into a case with a proposed role
// set. Acceptance creates the CaseUser row.
type CaseInvitation struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseID string `gorm:"type:uuid;not null;index" json:"case_id"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"-"`

	Email string `gorm:"not null;index" json:"email"`
	Roles string `gorm:"not null" json:"roles"`

	Token     string    `gorm:"uniqueIndex;not null;type:varchar(128)" json:"-"`
	Status    string    `gorm:"not null;default:PENDING" json:"status"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`

	InvitedByID string `gorm:"type:uuid;not null" json:"invited_by_id"`
	InvitedBy   *User  `gorm:"foreignKey:InvitedByID" json:"-"`
}

// BeforeCreate hook to generate UUID
func (i *CaseInvitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for CaseInvitation model
func (CaseInvitation) TableName() string {
	return "case_invitations"
}

// IsExpired checks if the invitation has expired
func (i *CaseInvitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
