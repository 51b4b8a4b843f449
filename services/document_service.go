package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"casevault/models"

	"gorm.io/gorm"
)

// CreateDocumentInput carries the metadata for a new document record.
// The file itself has already been stored; StorageKey points at it.
type CreateDocumentInput struct {
	CaseID           string
	Category         string
	FileName         string
	FileOriginalName string
	StorageKey       string
	FileSize         int64
	MimeType         string
	UploadedByID     string

	// Banking metadata from the extraction oracle (unconfirmed)
	AccountHolderName    *string
	FinancialInstitution *string
	AccountNumber        *string
	BsbSortCode          *string
	TransactionDateFrom  *time.Time
	TransactionDateTo    *time.Time
}

// CreateDocument persists a new document with status UPLOADED. Non-banking
// documents are numbered immediately inside the case-locked transaction;
// banking documents stay unnumbered until ConfirmBankingDocument, once the
// holder name is confirmed.
func CreateDocument(db *gorm.DB, input CreateDocumentInput) (*models.Document, error) {
	if !models.IsValidCategory(input.Category) {
		return nil, NewValidationError("unknown document category %q", input.Category)
	}

	doc := &models.Document{
		CaseID:               input.CaseID,
		Category:             input.Category,
		Status:               models.StatusUploaded,
		FileName:             input.FileName,
		FileOriginalName:     input.FileOriginalName,
		StorageKey:           input.StorageKey,
		FileSize:             input.FileSize,
		MimeType:             input.MimeType,
		UploadedByID:         input.UploadedByID,
		AccountHolderName:    input.AccountHolderName,
		FinancialInstitution: input.FinancialInstitution,
		AccountNumber:        input.AccountNumber,
		BsbSortCode:          input.BsbSortCode,
		TransactionDateFrom:  input.TransactionDateFrom,
		TransactionDateTo:    input.TransactionDateTo,
	}

	err := RetryOnConflict(input.CaseID, func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			if doc.Category != models.CategoryBanking {
				prefix, err := CategoryPrefix(doc.Category)
				if err != nil {
					return err
				}
				existing, err := categoryDocuments(tx, input.CaseID, doc.Category)
				if err != nil {
					return err
				}
				number := NextStandardNumber(existing, prefix)
				doc.DocumentNumber = &number
			}
			if err := tx.Create(doc).Error; err != nil {
				return fmt.Errorf("failed to create document: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Document %d created in case %s (category %s, number %q)", doc.ID, doc.CaseID, doc.Category, doc.Number())
	return doc, nil
}

// ConfirmBankingDocument assigns the account group and document number to an
// uploaded banking document. holderName and institution override the
// extracted values when the user corrected them. The whole read-compute-write
// runs under the case lock so two confirmations cannot assign the same
// number or skip a group.
func ConfirmBankingDocument(db *gorm.DB, documentID uint, holderName, institution string) (*models.Document, error) {
	if strings.TrimSpace(holderName) == "" {
		return nil, NewValidationError("account holder name is required")
	}

	var doc models.Document
	if err := db.First(&doc, documentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("document %d not found", documentID)
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	if !doc.IsBanking() {
		return nil, NewValidationError("document %d is not a banking document", documentID)
	}
	if doc.IsNumbered() {
		return nil, NewConflictError("document %d is already numbered %s", documentID, doc.Number())
	}

	err := RetryOnConflict(doc.CaseID, func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			// Re-read inside the lock: the document set may have moved
			if err := tx.First(&doc, documentID).Error; err != nil {
				return fmt.Errorf("failed to reload document: %w", err)
			}
			if doc.IsNumbered() {
				return NewConflictError("document %d was numbered concurrently", documentID)
			}

			banking, err := categoryDocuments(tx, doc.CaseID, models.CategoryBanking)
			if err != nil {
				return err
			}

			group, err := ResolveAccountGroup(banking, holderName)
			if err != nil {
				return err
			}

			var groupDocs []models.Document
			for i := range banking {
				if banking[i].GroupNumber() == group {
					groupDocs = append(groupDocs, banking[i])
				}
			}
			number := NextDocumentNumber(groupDocs, group)

			updates := map[string]interface{}{
				"account_holder_name":  holderName,
				"account_group_number": group,
				"document_number":      number,
			}
			// Keep the display casing of the holder who created the group
			for i := range groupDocs {
				if existing := groupDocs[i].HolderName(); existing != "" {
					updates["account_holder_name"] = existing
					break
				}
			}
			if strings.TrimSpace(institution) != "" {
				updates["financial_institution"] = institution
			}

			if err := tx.Model(&doc).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to assign document number: %w", err)
			}
			return tx.First(&doc, documentID).Error
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Document %d confirmed as %s (group %s)", doc.ID, doc.Number(), doc.GroupNumber())
	return &doc, nil
}

// categoryDocuments fetches a case's documents of one category inside the
// current transaction. Includes soft-deleted rows: numbering derives from
// every historical assignment, so neither group nor sequence numbers are
// ever reused after a deletion.
func categoryDocuments(tx *gorm.DB, caseID, category string) ([]models.Document, error) {
	var docs []models.Document
	if err := tx.Unscoped().Where("case_id = ? AND category = ?", caseID, category).Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch %s documents: %w", category, err)
	}
	return docs, nil
}

// GetCaseDocuments retrieves all documents for a case ordered by creation
func GetCaseDocuments(db *gorm.DB, caseID string) ([]models.Document, error) {
	var documents []models.Document
	if err := db.Where("case_id = ?", caseID).
		Preload("UploadedBy").
		Order("created_at ASC").
		Find(&documents).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch case documents: %w", err)
	}
	return documents, nil
}

// GetDocument fetches a single document by id
func GetDocument(db *gorm.DB, documentID uint) (*models.Document, error) {
	var doc models.Document
	if err := db.First(&doc, documentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("document %d not found", documentID)
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	return &doc, nil
}

// DeleteDocument removes a document row and its stored file. Siblings are
// never renumbered: sequence numbers are not reused after deletion, and
// group numbers stay dense because they are derived from all historical
// assignments, not from live rows alone.
func DeleteDocument(db *gorm.DB, documentID uint, actorID string) error {
	var document models.Document
	if err := db.First(&document, documentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return NewNotFoundError("document %d not found", documentID)
		}
		return fmt.Errorf("failed to fetch document: %w", err)
	}

	// Delete physical file from storage
	if document.StorageKey != "" && Storage != nil {
		// Use background context for deletion as this is a cleanup task
		if err := Storage.Delete(context.Background(), document.StorageKey); err != nil {
			log.Printf("[WARNING] Failed to delete stored file %s: %v", document.StorageKey, err)
			// Continue with DB deletion even if file deletion fails
		}
	}

	if err := db.Delete(&document).Error; err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	log.Printf("Document %d deleted by user %s", documentID, actorID)
	return nil
}
