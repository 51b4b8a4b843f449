package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"casevault/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestCreateCaseHandler(t *testing.T) {
	database := setupTestDB(t)

	user := &models.User{Name: "Alice", Email: "alice-cc1@test.com", Password: "x", IsActive: true}
	assert.NoError(t, database.Create(user).Error)

	t.Run("Success", func(t *testing.T) {
		c, rec := jsonContext(t, http.MethodPost, "/api/cases", `{"title":"Doe v Doe"}`)
		c.Set("user", user)

		err := CreateCaseHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var created models.Case
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "Doe v Doe", created.Title)
		assert.NotEmpty(t, created.CaseNumber)

		// Creator is a case admin
		var membership models.CaseUser
		assert.NoError(t, database.Where("case_id = ? AND user_id = ?", created.ID, user.ID).First(&membership).Error)
		assert.True(t, membership.HasRole(models.RoleCaseAdmin))
	})

	t.Run("Blank title", func(t *testing.T) {
		c, _ := jsonContext(t, http.MethodPost, "/api/cases", `{"title":"  "}`)
		c.Set("user", user)

		err := CreateCaseHandler(c)
		assert.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestGetCasesHandler(t *testing.T) {
	database := setupTestDB(t)

	member, kase := createTestCase(t, database, "member-gc1@test.com", models.RoleDiscloser)
	outsider, _ := createTestCase(t, database, "outsider-gc1@test.com", models.RoleDiscloser)

	t.Run("Member sees own cases only", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/cases", nil)
		c.Set("user", member)

		err := GetCasesHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var cases []models.Case
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cases))
		assert.Len(t, cases, 1)
		assert.Equal(t, kase.ID, cases[0].ID)
	})

	t.Run("Other member does not see it", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/cases", nil)
		c.Set("user", outsider)

		err := GetCasesHandler(c)
		assert.NoError(t, err)

		var cases []models.Case
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cases))
		assert.Len(t, cases, 1)
		assert.NotEqual(t, kase.ID, cases[0].ID)
	})
}

func TestInviteToCaseHandler(t *testing.T) {
	database := setupTestDB(t)

	admin, kase := createTestCase(t, database, "admin-iv1@test.com", models.RoleCaseAdmin)
	discloser := addTestMember(t, database, kase, "discloser-iv1@test.com", models.RoleDiscloser)

	t.Run("Case admin invites", func(t *testing.T) {
		c, rec := jsonContext(t, http.MethodPost, "/api/cases/:id/invitations",
			`{"email":"Bob@Example.com","roles":["REVIEWER"]}`)
		c.SetParamNames("id")
		c.SetParamValues(kase.ID)
		c.Set("user", admin)

		err := InviteToCaseHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var invitation models.CaseInvitation
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invitation))
		assert.Equal(t, "bob@example.com", invitation.Email)
		assert.Equal(t, models.InvitationPending, invitation.Status)
	})

	t.Run("Non-admin cannot invite", func(t *testing.T) {
		c, _ := jsonContext(t, http.MethodPost, "/api/cases/:id/invitations",
			`{"email":"carol@example.com","roles":["REVIEWER"]}`)
		c.SetParamNames("id")
		c.SetParamValues(kase.ID)
		c.Set("user", discloser)

		err := InviteToCaseHandler(c)
		assert.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusForbidden, he.Code)
	})

	t.Run("Unknown role rejected", func(t *testing.T) {
		c, _ := jsonContext(t, http.MethodPost, "/api/cases/:id/invitations",
			`{"email":"carol@example.com","roles":["JANITOR"]}`)
		c.SetParamNames("id")
		c.SetParamValues(kase.ID)
		c.Set("user", admin)

		err := InviteToCaseHandler(c)
		assert.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestAcceptInvitationHandler(t *testing.T) {
	database := setupTestDB(t)

	admin, kase := createTestCase(t, database, "admin-ai1@test.com", models.RoleCaseAdmin)

	invitation := &models.CaseInvitation{
		CaseID:      kase.ID,
		Email:       "bob-ai1@test.com",
		Roles:       models.RoleDisclosee,
		Token:       "test-token-ai1",
		Status:      models.InvitationPending,
		ExpiresAt:   timeInFuture(),
		InvitedByID: admin.ID,
	}
	assert.NoError(t, database.Create(invitation).Error)

	invitee := &models.User{Name: "Bob", Email: "bob-ai1@test.com", Password: "x", IsActive: true}
	assert.NoError(t, database.Create(invitee).Error)

	t.Run("Accept", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/invitations/:token/accept", nil)
		c.SetParamNames("token")
		c.SetParamValues(invitation.Token)
		c.Set("user", invitee)

		err := AcceptInvitationHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var membership models.CaseUser
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &membership))
		assert.Equal(t, kase.ID, membership.CaseID)
		assert.True(t, membership.HasRole(models.RoleDisclosee))
	})

	t.Run("Unknown token", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodPost, "/api/invitations/:token/accept", nil)
		c.SetParamNames("token")
		c.SetParamValues("nope")
		c.Set("user", invitee)

		err := AcceptInvitationHandler(c)
		assert.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestUpdateMemberRolesHandler(t *testing.T) {
	database := setupTestDB(t)

	admin, kase := createTestCase(t, database, "admin-ur1@test.com", models.RoleCaseAdmin)
	member := addTestMember(t, database, kase, "member-ur1@test.com", models.RoleDisclosee)

	t.Run("Admin edits roles", func(t *testing.T) {
		c, rec := jsonContext(t, http.MethodPut, "/api/cases/:id/members/:userId/roles",
			`{"roles":["DISCLOSEE","REVIEWER"]}`)
		c.SetParamNames("id", "userId")
		c.SetParamValues(kase.ID, member.ID)
		c.Set("user", admin)

		err := UpdateMemberRolesHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var membership models.CaseUser
		assert.NoError(t, database.Where("case_id = ? AND user_id = ?", kase.ID, member.ID).First(&membership).Error)
		assert.True(t, membership.HasRole(models.RoleReviewer))
	})

	t.Run("Non-admin cannot edit roles", func(t *testing.T) {
		c, _ := jsonContext(t, http.MethodPut, "/api/cases/:id/members/:userId/roles",
			`{"roles":["CASEADMIN"]}`)
		c.SetParamNames("id", "userId")
		c.SetParamValues(kase.ID, member.ID)
		c.Set("user", member)

		err := UpdateMemberRolesHandler(c)
		assert.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusForbidden, he.Code)
	})
}
