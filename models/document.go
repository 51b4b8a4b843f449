package models

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

// Document category constants
const (
	CategoryRealProperty = "REAL_PROPERTY"
	CategoryBanking      = "BANKING"
)

// Document status constants. Lifecycle:
// UPLOADED -> READYFORREVIEW -> REVIEWED -> WITHDRAWN (-> REVIEWED)
const (
	StatusUploaded       = "UPLOADED"
	StatusReadyForReview = "READYFORREVIEW"
	StatusReviewed       = "REVIEWED"
	StatusWithdrawn      = "WITHDRAWN"
)

// Document is a disclosure document owned by a case.
// Numbering fields (AccountGroupNumber, DocumentNumber) are assigned once
// and immutable thereafter: immediately at upload for REAL_PROPERTY,
// at confirmation time for BANKING. Deletion is a soft delete so numbering
// computations still see historical assignments; numbers are never reused.
type Document struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseID string `gorm:"type:uuid;not null;index" json:"case_id"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"-"`

	Category string `gorm:"not null;index" json:"category"`
	Status   string `gorm:"not null;default:UPLOADED" json:"status"`

	// Banking metadata (from the extraction oracle, user-correctable)
	AccountHolderName    *string    `json:"account_holder_name,omitempty"`
	FinancialInstitution *string    `json:"financial_institution,omitempty"`
	AccountNumber        *string    `json:"account_number,omitempty"`
	BsbSortCode          *string    `json:"bsb_sort_code,omitempty"`
	TransactionDateFrom  *time.Time `json:"transaction_date_from,omitempty"`
	TransactionDateTo    *time.Time `json:"transaction_date_to,omitempty"`

	// Disclosure numbering, e.g. group "B1", number "B1.2"
	AccountGroupNumber *string `gorm:"index" json:"account_group_number,omitempty"`
	DocumentNumber     *string `json:"document_number,omitempty"`

	// File metadata
	FileName         string `gorm:"not null" json:"file_name"`
	FileOriginalName string `gorm:"not null" json:"file_original_name"`
	StorageKey       string `gorm:"not null" json:"-"` // Not exposed in JSON for security
	FileSize         int64  `gorm:"not null" json:"file_size"`
	MimeType         string `json:"mime_type,omitempty"`

	// Upload tracking
	UploadedByID string `gorm:"type:uuid;not null" json:"uploaded_by_id"`
	UploadedBy   *User  `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
}

// TableName specifies the table name for Document model
func (Document) TableName() string {
	return "documents"
}

// IsBanking checks if the document is a banking document
func (d *Document) IsBanking() bool {
	return d.Category == CategoryBanking
}

// IsNumbered checks if the document has been assigned a disclosure number
func (d *Document) IsNumbered() bool {
	return d.DocumentNumber != nil && *d.DocumentNumber != ""
}

// HolderName returns the account holder name or empty string
func (d *Document) HolderName() string {
	if d.AccountHolderName == nil {
		return ""
	}
	return *d.AccountHolderName
}

// GroupNumber returns the account group number or empty string
func (d *Document) GroupNumber() string {
	if d.AccountGroupNumber == nil {
		return ""
	}
	return *d.AccountGroupNumber
}

// Number returns the document number or empty string
func (d *Document) Number() string {
	if d.DocumentNumber == nil {
		return ""
	}
	return *d.DocumentNumber
}

// Institution returns the financial institution or empty string
func (d *Document) Institution() string {
	if d.FinancialInstitution == nil {
		return ""
	}
	return *d.FinancialInstitution
}

// GetDownloadURL returns a safe download URL for this document
func (d *Document) GetDownloadURL() string {
	return "/api/documents/" + strconv.FormatUint(uint64(d.ID), 10) + "/download"
}

// IsValidCategory checks if the category is recognized
func IsValidCategory(category string) bool {
	switch category {
	case CategoryRealProperty, CategoryBanking:
		return true
	}
	return false
}

// IsValidStatus checks if the status is a recognized lifecycle status
func IsValidStatus(status string) bool {
	switch status {
	case StatusUploaded, StatusReadyForReview, StatusReviewed, StatusWithdrawn:
		return true
	}
	return false
}

// GetStatusDisplayName returns human-readable status name
func GetStatusDisplayName(status string) string {
	names := map[string]string{
		StatusUploaded:       "Uploaded",
		StatusReadyForReview: "Ready for Review",
		StatusReviewed:       "Reviewed",
		StatusWithdrawn:      "Withdrawn",
	}
	if name, ok := names[status]; ok {
		return name
	}
	return status
}
