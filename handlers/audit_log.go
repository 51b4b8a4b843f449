package handlers

import (
	"net/http"

	"casevault/db"
	"casevault/middleware"
	"casevault/models"
	"casevault/services"

	"github.com/labstack/echo/v4"
)

// GetCaseAuditLogHandler returns the case's status transition history
// (REVIEWER or CASEADMIN only)
func GetCaseAuditLogHandler(c echo.Context) error {
	caseID := c.Param("id")
	currentUser := middleware.GetCurrentUser(c)

	membership, err := services.GetCaseMembership(db.DB, caseID, currentUser.ID)
	if err != nil {
		return httpError(err)
	}
	if !membership.HasRole(models.RoleReviewer) && !membership.HasRole(models.RoleCaseAdmin) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	logs, err := services.GetCaseAuditHistory(db.DB, caseID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch audit log")
	}

	return c.JSON(http.StatusOK, logs)
}
