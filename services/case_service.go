package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"casevault/models"

	"gorm.io/gorm"
)

// DefaultInvitationDuration is how long a case invitation stays valid
const DefaultInvitationDuration = 14 * 24 * time.Hour

// GenerateCaseNumber generates a unique case number.
// Format: CV-{YEAR}-{SEQUENCE}, e.g. CV-2026-00042
func GenerateCaseNumber(db *gorm.DB) (string, error) {
	currentYear := time.Now().Year()
	prefix := fmt.Sprintf("CV-%d-", currentYear)

	// Find the highest sequence number for this year
	var maxCase models.Case
	err := db.Where("case_number LIKE ?", prefix+"%").
		Order("case_number DESC").
		First(&maxCase).Error

	sequence := 1
	if err == nil {
		var parsedSeq int
		_, scanErr := fmt.Sscanf(maxCase.CaseNumber, prefix+"%d", &parsedSeq)
		if scanErr == nil {
			sequence = parsedSeq + 1
		}
	} else if err != gorm.ErrRecordNotFound {
		return "", fmt.Errorf("failed to query max case number: %w", err)
	}

	return fmt.Sprintf("%s%05d", prefix, sequence), nil
}

// CreateCase creates a case and makes the creator a CASEADMIN member
func CreateCase(db *gorm.DB, title string, creator *models.User) (*models.Case, error) {
	if strings.TrimSpace(title) == "" {
		return nil, NewValidationError("case title is required")
	}

	var created models.Case
	err := db.Transaction(func(tx *gorm.DB) error {
		caseNumber, err := GenerateCaseNumber(tx)
		if err != nil {
			return err
		}

		created = models.Case{
			CaseNumber:  caseNumber,
			Title:       strings.TrimSpace(title),
			CreatedByID: creator.ID,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create case: %w", err)
		}

		membership := models.CaseUser{
			CaseID: created.ID,
			UserID: creator.ID,
			Roles:  models.RoleCaseAdmin,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return fmt.Errorf("failed to create case membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Case %s created by user %s", created.CaseNumber, creator.ID)
	return &created, nil
}

// GetCaseMembership returns the membership row for a user in a case, or a
// ForbiddenError when the user is not a member
func GetCaseMembership(db *gorm.DB, caseID, userID string) (*models.CaseUser, error) {
	var membership models.CaseUser
	err := db.Where("case_id = ? AND user_id = ?", caseID, userID).First(&membership).Error
	if err == gorm.ErrRecordNotFound {
		return nil, NewForbiddenError("user is not a member of this case")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch case membership: %w", err)
	}
	return &membership, nil
}

// UpdateMemberRoles replaces a member's role set. Only a CASEADMIN may edit
// roles; validated by the caller.
func UpdateMemberRoles(db *gorm.DB, caseID, userID string, roles []string) (*models.CaseUser, error) {
	for _, r := range roles {
		if !models.IsValidRole(strings.ToUpper(strings.TrimSpace(r))) {
			return nil, NewValidationError("unknown role %q", r)
		}
	}
	if len(roles) == 0 {
		return nil, NewValidationError("at least one role is required")
	}

	membership, err := GetCaseMembership(db, caseID, userID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(membership).Update("roles", models.JoinRoles(roles)).Error; err != nil {
		return nil, fmt.Errorf("failed to update member roles: %w", err)
	}
	return membership, nil
}

// InviteToCase creates a pending invitation and sends the invite email
func InviteToCase(db *gorm.DB, caseID, email string, roles []string, invitedBy *models.User) (*models.CaseInvitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, NewValidationError("invitation email is required")
	}
	if len(roles) == 0 {
		return nil, NewValidationError("at least one role is required")
	}
	for _, r := range roles {
		if !models.IsValidRole(strings.ToUpper(strings.TrimSpace(r))) {
			return nil, NewValidationError("unknown role %q", r)
		}
	}

	token, err := generateInvitationToken()
	if err != nil {
		return nil, err
	}

	invitation := &models.CaseInvitation{
		CaseID:      caseID,
		Email:       email,
		Roles:       models.JoinRoles(roles),
		Token:       token,
		Status:      models.InvitationPending,
		ExpiresAt:   time.Now().Add(DefaultInvitationDuration),
		InvitedByID: invitedBy.ID,
	}
	if err := db.Create(invitation).Error; err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	var kase models.Case
	if err := db.First(&kase, "id = ?", caseID).Error; err == nil {
		SendCaseInvitationEmail(email, kase.CaseNumber, invitedBy.Name, token)
	}

	return invitation, nil
}

// AcceptInvitation redeems an invitation token for the given user, creating
// the CaseUser membership with the proposed roles
func AcceptInvitation(db *gorm.DB, token string, user *models.User) (*models.CaseUser, error) {
	var invitation models.CaseInvitation
	err := db.Where("token = ?", token).First(&invitation).Error
	if err == gorm.ErrRecordNotFound {
		return nil, NewNotFoundError("invitation not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invitation: %w", err)
	}

	if invitation.Status != models.InvitationPending {
		return nil, NewValidationError("invitation has already been used")
	}
	if invitation.IsExpired() {
		db.Model(&invitation).Update("status", models.InvitationExpired)
		return nil, NewValidationError("invitation has expired")
	}

	var membership models.CaseUser
	err = db.Transaction(func(tx *gorm.DB) error {
		membership = models.CaseUser{
			CaseID: invitation.CaseID,
			UserID: user.ID,
			Roles:  invitation.Roles,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return fmt.Errorf("failed to create case membership: %w", err)
		}
		if err := tx.Model(&invitation).Update("status", models.InvitationAccepted).Error; err != nil {
			return fmt.Errorf("failed to mark invitation accepted: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("User %s joined case %s with roles %s", user.ID, invitation.CaseID, invitation.Roles)
	return &membership, nil
}

// generateInvitationToken generates a cryptographically secure random token
func generateInvitationToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate invitation token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
