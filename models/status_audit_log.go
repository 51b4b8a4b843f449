package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusAuditLog is an append-only record of a document status transition
type StatusAuditLog struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_status_audit_created_at" json:"created_at"`

	CaseID     string `gorm:"type:uuid;not null;index:idx_status_audit_case" json:"case_id"`
	DocumentID uint   `gorm:"not null;index:idx_status_audit_document" json:"document_id"`

	// Actor identification (name denormalized for historical accuracy)
	ActorID   string `gorm:"type:uuid;not null" json:"actor_id"`
	ActorName string `gorm:"not null" json:"actor_name"`

	FromStatus string `gorm:"not null" json:"from_status"`
	ToStatus   string `gorm:"not null" json:"to_status"`

	// Relationships (for reading, not for data integrity)
	Actor *User `gorm:"foreignKey:ActorID" json:"-"`
}

// BeforeCreate generates UUID
func (a *StatusAuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// BeforeUpdate prevents modification of audit logs (immutability)
func (a *StatusAuditLog) BeforeUpdate(tx *gorm.DB) error {
	return gorm.ErrRecordNotFound // Prevent any updates
}

// BeforeDelete prevents deletion of audit logs (immutability)
func (a *StatusAuditLog) BeforeDelete(tx *gorm.DB) error {
	return gorm.ErrRecordNotFound // Prevent any deletes
}

// TableName specifies the table name
func (StatusAuditLog) TableName() string {
	return "status_audit_logs"
}
