package handlers

import (
	"net/http"

	"casevault/db"
	"casevault/middleware"
	"casevault/models"
	"casevault/services"

	"github.com/labstack/echo/v4"
)

// CreateCaseRequest is the payload for creating a case
type CreateCaseRequest struct {
	Title string `json:"title"`
}

// CreateCaseHandler creates a case; the creator becomes CASEADMIN
func CreateCaseHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	var req CreateCaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	created, err := services.CreateCase(db.DB, req.Title, currentUser)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, created)
}

// GetCasesHandler lists the cases the current user is a member of
func GetCasesHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	var cases []models.Case
	err := db.DB.
		Joins("JOIN case_users ON case_users.case_id = cases.id").
		Where("case_users.user_id = ?", currentUser.ID).
		Order("cases.created_at DESC").
		Find(&cases).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch cases")
	}

	return c.JSON(http.StatusOK, cases)
}

// InviteRequest is the payload for inviting a member to a case
type InviteRequest struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// InviteToCaseHandler creates a case invitation (CASEADMIN only)
func InviteToCaseHandler(c echo.Context) error {
	caseID := c.Param("id")
	currentUser := middleware.GetCurrentUser(c)

	membership, err := services.GetCaseMembership(db.DB, caseID, currentUser.ID)
	if err != nil {
		return httpError(err)
	}
	if !membership.HasRole(models.RoleCaseAdmin) {
		return echo.NewHTTPError(http.StatusForbidden, "Only a case admin can invite members")
	}

	var req InviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	invitation, err := services.InviteToCase(db.DB, caseID, req.Email, req.Roles, currentUser)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, invitation)
}

// AcceptInvitationHandler redeems an invitation token for the current user
func AcceptInvitationHandler(c echo.Context) error {
	token := c.Param("token")
	currentUser := middleware.GetCurrentUser(c)

	membership, err := services.AcceptInvitation(db.DB, token, currentUser)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, membership)
}

// UpdateMemberRolesRequest is the payload for editing a member's role set
type UpdateMemberRolesRequest struct {
	Roles []string `json:"roles"`
}

// UpdateMemberRolesHandler edits a member's roles (CASEADMIN only)
func UpdateMemberRolesHandler(c echo.Context) error {
	caseID := c.Param("id")
	userID := c.Param("userId")
	currentUser := middleware.GetCurrentUser(c)

	membership, err := services.GetCaseMembership(db.DB, caseID, currentUser.ID)
	if err != nil {
		return httpError(err)
	}
	if !membership.HasRole(models.RoleCaseAdmin) {
		return echo.NewHTTPError(http.StatusForbidden, "Only a case admin can edit roles")
	}

	var req UpdateMemberRolesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	updated, err := services.UpdateMemberRoles(db.DB, caseID, userID, req.Roles)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, updated)
}
