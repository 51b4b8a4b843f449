package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case is a legal matter container owning documents and member roles
type Case struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Human-facing reference, e.g. CV-2026-00042
	CaseNumber string `gorm:"uniqueIndex;not null" json:"case_number"`
	Title      string `gorm:"not null" json:"title"`

	CreatedByID string `gorm:"type:uuid;not null" json:"created_by_id"`
	CreatedBy   *User  `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`

	// Relationships
	Documents []Document `gorm:"foreignKey:CaseID" json:"documents,omitempty"`
	Members   []CaseUser `gorm:"foreignKey:CaseID" json:"members,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}
