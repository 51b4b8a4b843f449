package services

import (
	"fmt"
	"log"

	"casevault/models"

	"gorm.io/gorm"
)

// statusTransition identifies a (from, to) edge in the lifecycle
type statusTransition struct {
	From string
	To   string
}

// allowedTransitions maps each permitted edge to the roles that may take it.
// CASEADMIN is handled as a wildcard in CanTransition and is not listed here.
var allowedTransitions = map[statusTransition][]string{
	{models.StatusUploaded, models.StatusReadyForReview}: {models.RoleDiscloser},
	{models.StatusReadyForReview, models.StatusReviewed}: {models.RoleDiscloser, models.RoleReviewer},
	{models.StatusReviewed, models.StatusWithdrawn}:      {models.RoleDiscloser, models.RoleReviewer},
	{models.StatusWithdrawn, models.StatusReviewed}:      {models.RoleDiscloser, models.RoleReviewer},
}

// CanTransition reports whether a caller holding the given roles may move a
// document from current to requested status. Any single qualifying role
// authorizes the transition; CASEADMIN may take any edge between valid
// statuses. Unknown statuses never authorize.
func CanTransition(current, requested string, roles []string) bool {
	if !models.IsValidStatus(current) || !models.IsValidStatus(requested) {
		return false
	}

	for _, role := range roles {
		if role == models.RoleCaseAdmin {
			return true
		}
	}

	allowed, ok := allowedTransitions[statusTransition{From: current, To: requested}]
	if !ok {
		return false
	}
	for _, role := range roles {
		for _, a := range allowed {
			if role == a {
				return true
			}
		}
	}
	return false
}

// ApplyTransition validates and persists a status transition, appending an
// immutable audit-log entry. The read-validate-write runs in one transaction
// so concurrent transitions on the same document serialize on the row.
// Fails with ForbiddenError (and changes nothing) when the role set does not
// authorize the edge, ValidationError for an unrecognized target status.
func ApplyTransition(db *gorm.DB, documentID uint, requested string, actor *models.User, roles []string) (*models.Document, error) {
	if !models.IsValidStatus(requested) {
		return nil, NewValidationError("unknown document status %q", requested)
	}

	var document models.Document
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&document, documentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return NewNotFoundError("document %d not found", documentID)
			}
			return fmt.Errorf("failed to fetch document: %w", err)
		}

		if !CanTransition(document.Status, requested, roles) {
			return NewForbiddenError("transition %s -> %s is not permitted for roles %v", document.Status, requested, roles)
		}

		previous := document.Status
		if err := tx.Model(&document).Update("status", requested).Error; err != nil {
			return fmt.Errorf("failed to update document status: %w", err)
		}
		document.Status = requested

		audit := models.StatusAuditLog{
			CaseID:     document.CaseID,
			DocumentID: document.ID,
			ActorID:    actor.ID,
			ActorName:  actor.Name,
			FromStatus: previous,
			ToStatus:   requested,
		}
		if err := tx.Create(&audit).Error; err != nil {
			return fmt.Errorf("failed to append status audit log: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Document %d status %s by user %s", document.ID, document.Status, actor.ID)
	return &document, nil
}

// CanViewAllStatuses reports whether the role set sees documents in every
// status. Holders of only DISCLOSEE see REVIEWED documents; this is a
// read-time projection, not a stored attribute.
func CanViewAllStatuses(roles []string) bool {
	for _, role := range roles {
		switch role {
		case models.RoleReviewer, models.RoleCaseAdmin, models.RoleDiscloser:
			return true
		}
	}
	return false
}

// FilterVisibleDocuments applies the read-time visibility projection for the
// given role set
func FilterVisibleDocuments(docs []models.Document, roles []string) []models.Document {
	if CanViewAllStatuses(roles) {
		return docs
	}
	visible := make([]models.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.Status == models.StatusReviewed {
			visible = append(visible, doc)
		}
	}
	return visible
}

// GetDocumentAuditHistory retrieves the status transition history for a document
func GetDocumentAuditHistory(db *gorm.DB, documentID uint) ([]models.StatusAuditLog, error) {
	var logs []models.StatusAuditLog
	err := db.Where("document_id = ?", documentID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// GetCaseAuditHistory retrieves the status transition history for a case
func GetCaseAuditHistory(db *gorm.DB, caseID string) ([]models.StatusAuditLog, error) {
	var logs []models.StatusAuditLog
	err := db.Where("case_id = ?", caseID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
