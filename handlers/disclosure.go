package handlers

import (
	"bytes"
	"net/http"

	"casevault/db"
	"casevault/middleware"
	"casevault/models"
	"casevault/services"

	"github.com/labstack/echo/v4"
)

// GenerateDisclosurePDFHandler builds the disclosure row list, renders the
// PDF, stores the artifact and records the snapshot. The row computation and
// the snapshot write run under the case lock; the render itself does not.
// A failed render leaves the diff baseline untouched.
func GenerateDisclosurePDFHandler(c echo.Context) error {
	return generateDisclosure(c, models.SnapshotFormatPDF)
}

// GenerateDisclosureXLSXHandler generates the XLSX variant of the
// disclosure index from the same row model
func GenerateDisclosureXLSXHandler(c echo.Context) error {
	return generateDisclosure(c, models.SnapshotFormatXLSX)
}

func generateDisclosure(c echo.Context, format string) error {
	caseID := c.Param("id")
	currentUser := middleware.GetCurrentUser(c)

	membership, err := services.GetCaseMembership(db.DB, caseID, currentUser.ID)
	if err != nil {
		return httpError(err)
	}
	if !membership.HasRole(models.RoleDiscloser) && !membership.HasRole(models.RoleCaseAdmin) {
		return echo.NewHTTPError(http.StatusForbidden, "Only a discloser can generate disclosure reports")
	}

	var kase models.Case
	if err := db.DB.First(&kase, "id = ?", caseID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Case not found")
	}

	// Compute the ordered, flagged rows under the case lock
	var result *services.DisclosureResult
	err = services.WithCaseLock(caseID, func() error {
		var buildErr error
		result, buildErr = services.BuildCaseDisclosure(db.DB, caseID)
		return buildErr
	})
	if err != nil {
		return httpError(err)
	}

	// Render outside the lock; a failure here must not advance the baseline
	var artifact []byte
	switch format {
	case models.SnapshotFormatXLSX:
		artifact, err = services.RenderDisclosureXLSX(result, kase.CaseNumber)
	default:
		artifact, err = services.RenderDisclosurePDF(result, kase.CaseNumber)
	}
	if err != nil {
		c.Logger().Errorf("Disclosure render failed for case %s: %v", caseID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render disclosure report")
	}

	key := services.GenerateDisclosureKey(caseID, format)
	contentType := "application/pdf"
	if format == models.SnapshotFormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if _, err := services.Storage.UploadReader(c.Request().Context(), bytes.NewReader(artifact), key, contentType, int64(len(artifact))); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store disclosure report")
	}

	// Only now, with the artifact rendered and stored, advance the baseline
	var snapshot *models.DisclosureSnapshot
	err = services.WithCaseLock(caseID, func() error {
		var saveErr error
		snapshot, saveErr = services.SaveDisclosureSnapshot(db.DB, result, format, key, currentUser.ID)
		return saveErr
	})
	if err != nil {
		return httpError(err)
	}

	notifyCaseMembers(kase, result)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"snapshot":  snapshot,
		"new_count": result.NewCount,
		"rows":      len(result.Rows),
	})
}

// notifyCaseMembers emails the case's reviewers and disclosees that a new
// disclosure report exists
func notifyCaseMembers(kase models.Case, result *services.DisclosureResult) {
	var members []models.CaseUser
	if err := db.DB.Preload("User").Where("case_id = ?", kase.ID).Find(&members).Error; err != nil {
		return
	}
	for _, m := range members {
		if m.User == nil {
			continue
		}
		if m.HasRole(models.RoleReviewer) || m.HasRole(models.RoleDisclosee) {
			services.SendDisclosureGeneratedEmail(m.User.Email, kase.CaseNumber, result.DocumentCount, result.NewCount)
		}
	}
}

// GetSnapshotsHandler lists a case's disclosure snapshots, newest first
func GetSnapshotsHandler(c echo.Context) error {
	caseID := c.Param("id")
	currentUser := middleware.GetCurrentUser(c)

	if _, err := services.GetCaseMembership(db.DB, caseID, currentUser.ID); err != nil {
		return httpError(err)
	}

	var snapshots []models.DisclosureSnapshot
	if err := db.DB.Where("case_id = ?", caseID).Order("generated_at DESC").Find(&snapshots).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch snapshots")
	}

	return c.JSON(http.StatusOK, snapshots)
}
