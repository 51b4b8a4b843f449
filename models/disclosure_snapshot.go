package models

import (
	"time"
)

// Snapshot artifact format constants
const (
	SnapshotFormatPDF  = "pdf"
	SnapshotFormatXLSX = "xlsx"
)

// DisclosureSnapshot records a generated disclosure report. It is immutable
// and the most recent one per case is the diff baseline for the next report:
// documents created after GeneratedAt are flagged as new.
type DisclosureSnapshot struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CaseID string `gorm:"type:uuid;not null;index:idx_snapshot_case" json:"case_id"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"-"`

	GeneratedAt               time.Time `gorm:"not null;index:idx_snapshot_case" json:"generated_at"`
	DocumentCountAtGeneration int       `gorm:"not null" json:"document_count_at_generation"`

	// Rendered artifact
	Format     string `gorm:"not null;default:pdf" json:"format"`
	StorageKey string `json:"-"`

	GeneratedByID string `gorm:"type:uuid;not null" json:"generated_by_id"`
	GeneratedBy   *User  `gorm:"foreignKey:GeneratedByID" json:"generated_by,omitempty"`
}

// TableName specifies the table name for DisclosureSnapshot model
func (DisclosureSnapshot) TableName() string {
	return "disclosure_snapshots"
}
