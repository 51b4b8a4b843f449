package services

import (
	"fmt"
	"testing"

	"casevault/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLifecycleTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	err = db.AutoMigrate(&models.User{}, &models.Case{}, &models.CaseUser{}, &models.Document{}, &models.StatusAuditLog{})
	assert.NoError(t, err)
	return db
}

func TestCanTransition_Matrix(t *testing.T) {
	statuses := []string{
		models.StatusUploaded,
		models.StatusReadyForReview,
		models.StatusReviewed,
		models.StatusWithdrawn,
	}

	type edge struct{ from, to string }
	permitted := map[edge][]string{
		{models.StatusUploaded, models.StatusReadyForReview}: {models.RoleDiscloser},
		{models.StatusReadyForReview, models.StatusReviewed}: {models.RoleDiscloser, models.RoleReviewer},
		{models.StatusReviewed, models.StatusWithdrawn}:      {models.RoleDiscloser, models.RoleReviewer},
		{models.StatusWithdrawn, models.StatusReviewed}:      {models.RoleDiscloser, models.RoleReviewer},
	}

	singleRoles := []string{models.RoleDiscloser, models.RoleReviewer, models.RoleDisclosee}

	for _, from := range statuses {
		for _, to := range statuses {
			// A case admin may take any edge
			assert.True(t, CanTransition(from, to, []string{models.RoleCaseAdmin}),
				fmt.Sprintf("CASEADMIN should be allowed %s -> %s", from, to))

			allowed := permitted[edge{from, to}]
			for _, role := range singleRoles {
				expected := false
				for _, a := range allowed {
					if a == role {
						expected = true
					}
				}
				got := CanTransition(from, to, []string{role})
				assert.Equal(t, expected, got,
					fmt.Sprintf("%s: %s -> %s", role, from, to))
			}
		}
	}
}

func TestCanTransition_DiscloseeCanTransitionNothing(t *testing.T) {
	statuses := []string{
		models.StatusUploaded,
		models.StatusReadyForReview,
		models.StatusReviewed,
		models.StatusWithdrawn,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			assert.False(t, CanTransition(from, to, []string{models.RoleDisclosee}))
		}
	}
}

func TestCanTransition_AnyQualifyingRoleSuffices(t *testing.T) {
	roles := []string{models.RoleDisclosee, models.RoleReviewer}
	assert.True(t, CanTransition(models.StatusReadyForReview, models.StatusReviewed, roles))
}

func TestCanTransition_DiscloserCannotWithdrawDirectly(t *testing.T) {
	assert.False(t, CanTransition(models.StatusReadyForReview, models.StatusWithdrawn, []string{models.RoleDiscloser}))
	assert.False(t, CanTransition(models.StatusUploaded, models.StatusReviewed, []string{models.RoleDiscloser}))
}

func TestCanTransition_UnknownStatusRejected(t *testing.T) {
	assert.False(t, CanTransition(models.StatusUploaded, "ARCHIVED", []string{models.RoleCaseAdmin}))
	assert.False(t, CanTransition("BOGUS", models.StatusReviewed, []string{models.RoleCaseAdmin}))
}

func TestApplyTransition_PersistsAndAudits(t *testing.T) {
	db := setupLifecycleTestDB(t)

	actor := models.User{Name: "Alice Attorney", Email: "alice@example.com", Password: "x"}
	assert.NoError(t, db.Create(&actor).Error)
	kase := models.Case{CaseNumber: "CV-2026-00001", Title: "Doe v Doe", CreatedByID: actor.ID}
	assert.NoError(t, db.Create(&kase).Error)
	doc := models.Document{
		CaseID:           kase.ID,
		Category:         models.CategoryRealProperty,
		Status:           models.StatusUploaded,
		FileName:         "a.pdf",
		FileOriginalName: "deed.pdf",
		StorageKey:       "k",
		UploadedByID:     actor.ID,
	}
	assert.NoError(t, db.Create(&doc).Error)

	updated, err := ApplyTransition(db, doc.ID, models.StatusReadyForReview, &actor, []string{models.RoleDiscloser})
	assert.NoError(t, err)
	assert.Equal(t, models.StatusReadyForReview, updated.Status)

	var logs []models.StatusAuditLog
	assert.NoError(t, db.Find(&logs).Error)
	assert.Len(t, logs, 1)
	assert.Equal(t, models.StatusUploaded, logs[0].FromStatus)
	assert.Equal(t, models.StatusReadyForReview, logs[0].ToStatus)
	assert.Equal(t, actor.ID, logs[0].ActorID)
	assert.Equal(t, doc.ID, logs[0].DocumentID)
	assert.Equal(t, kase.ID, logs[0].CaseID)
}

func TestApplyTransition_ForbiddenIsNoOp(t *testing.T) {
	db := setupLifecycleTestDB(t)

	actor := models.User{Name: "Dana Disclosee", Email: "dana@example.com", Password: "x"}
	assert.NoError(t, db.Create(&actor).Error)
	kase := models.Case{CaseNumber: "CV-2026-00002", Title: "Roe v Roe", CreatedByID: actor.ID}
	assert.NoError(t, db.Create(&kase).Error)
	doc := models.Document{
		CaseID:           kase.ID,
		Category:         models.CategoryRealProperty,
		Status:           models.StatusUploaded,
		FileName:         "a.pdf",
		FileOriginalName: "deed.pdf",
		StorageKey:       "k",
		UploadedByID:     actor.ID,
	}
	assert.NoError(t, db.Create(&doc).Error)

	_, err := ApplyTransition(db, doc.ID, models.StatusReadyForReview, &actor, []string{models.RoleDisclosee})
	assert.Error(t, err)
	assert.True(t, IsForbidden(err))

	// Nothing changed, nothing logged
	var reloaded models.Document
	assert.NoError(t, db.First(&reloaded, doc.ID).Error)
	assert.Equal(t, models.StatusUploaded, reloaded.Status)

	var count int64
	assert.NoError(t, db.Model(&models.StatusAuditLog{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestApplyTransition_UnknownStatusIsValidationError(t *testing.T) {
	db := setupLifecycleTestDB(t)
	actor := models.User{Name: "Alice", Email: "a@example.com", Password: "x"}
	assert.NoError(t, db.Create(&actor).Error)

	_, err := ApplyTransition(db, 999, "ARCHIVED", &actor, []string{models.RoleCaseAdmin})
	assert.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestApplyTransition_NotFound(t *testing.T) {
	db := setupLifecycleTestDB(t)
	actor := models.User{Name: "Alice", Email: "a@example.com", Password: "x"}
	assert.NoError(t, db.Create(&actor).Error)

	_, err := ApplyTransition(db, 999, models.StatusReviewed, &actor, []string{models.RoleCaseAdmin})
	assert.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestFilterVisibleDocuments(t *testing.T) {
	docs := []models.Document{
		{Status: models.StatusUploaded},
		{Status: models.StatusReadyForReview},
		{Status: models.StatusReviewed},
		{Status: models.StatusWithdrawn},
	}

	// A pure disclosee sees reviewed documents only
	visible := FilterVisibleDocuments(docs, []string{models.RoleDisclosee})
	assert.Len(t, visible, 1)
	assert.Equal(t, models.StatusReviewed, visible[0].Status)

	// Reviewers and case admins see everything
	assert.Len(t, FilterVisibleDocuments(docs, []string{models.RoleReviewer}), 4)
	assert.Len(t, FilterVisibleDocuments(docs, []string{models.RoleCaseAdmin}), 4)

	// A disclosee who is also a reviewer sees everything
	assert.Len(t, FilterVisibleDocuments(docs, []string{models.RoleDisclosee, models.RoleReviewer}), 4)
}
