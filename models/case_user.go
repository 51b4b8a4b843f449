package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case membership role constants. A member may hold several at once.
const (
	RoleDiscloser = "DISCLOSER" // Uploads and prepares documents for review
	RoleReviewer  = "REVIEWER"  // Reviews and signs off documents
	RoleDisclosee = "DISCLOSEE" // Opposing party; sees reviewed documents only
	RoleCaseAdmin = "CASEADMIN" // Full control over the case
)

// CaseUser links a user to a case with a set of roles.
// Roles are stored comma-joined (e.g. "DISCLOSER,CASEADMIN").
type CaseUser struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseID string `gorm:"type:uuid;not null;uniqueIndex:idx_case_member" json:"case_id"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"-"`

	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_case_member" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Roles string `gorm:"not null" json:"roles"`
}

// BeforeCreate hook to generate UUID
func (cu *CaseUser) BeforeCreate(tx *gorm.DB) error {
	if cu.ID == "" {
		cu.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for CaseUser model
func (CaseUser) TableName() string {
	return "case_users"
}

// RoleList returns the member's roles as a slice
func (cu *CaseUser) RoleList() []string {
	if cu.Roles == "" {
		return nil
	}
	parts := strings.Split(cu.Roles, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if r := strings.TrimSpace(p); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

// HasRole checks whether the member holds the given role
func (cu *CaseUser) HasRole(role string) bool {
	for _, r := range cu.RoleList() {
		if r == role {
			return true
		}
	}
	return false
}

// JoinRoles normalizes and joins a role slice for storage
func JoinRoles(roles []string) string {
	cleaned := make([]string, 0, len(roles))
	for _, r := range roles {
		if r = strings.ToUpper(strings.TrimSpace(r)); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	return strings.Join(cleaned, ",")
}

// IsValidRole checks if the role is a recognized case role
func IsValidRole(role string) bool {
	switch role {
	case RoleDiscloser, RoleReviewer, RoleDisclosee, RoleCaseAdmin:
		return true
	}
	return false
}
