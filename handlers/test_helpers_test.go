package handlers

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"casevault/config"
	"casevault/db"
	"casevault/models"
	"casevault/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Unique shared memory name isolates tests while keeping the cache shared
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	if services.Storage == nil {
		services.Storage = services.NewLocalStorage("tmp/test_uploads")
	}

	err = testDB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Case{},
		&models.CaseUser{},
		&models.CaseInvitation{},
		&models.Document{},
		&models.DisclosureSnapshot{},
		&models.StatusAuditLog{},
	)
	assert.NoError(t, err)

	// Set global DB
	db.DB = testDB

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	c.Set("config", &config.Config{
		Environment: "test",
	})

	return e, c, rec
}

// createTestCase seeds a user, a case, and a membership with the given roles
func createTestCase(t *testing.T, database *gorm.DB, email, roles string) (*models.User, *models.Case) {
	user := &models.User{Name: "Test User", Email: email, Password: "x", IsActive: true}
	assert.NoError(t, database.Create(user).Error)

	kase := &models.Case{CaseNumber: "CV-2026-" + uuid.New().String()[:5], Title: "Test Case", CreatedByID: user.ID}
	assert.NoError(t, database.Create(kase).Error)

	assert.NoError(t, database.Create(&models.CaseUser{
		CaseID: kase.ID,
		UserID: user.ID,
		Roles:  roles,
	}).Error)

	return user, kase
}

// addTestMember seeds a user and joins them to a case with the given roles
func addTestMember(t *testing.T, database *gorm.DB, kase *models.Case, email, roles string) *models.User {
	user := &models.User{Name: "Member", Email: email, Password: "x", IsActive: true}
	assert.NoError(t, database.Create(user).Error)
	assert.NoError(t, database.Create(&models.CaseUser{
		CaseID: kase.ID,
		UserID: user.ID,
		Roles:  roles,
	}).Error)
	return user
}

func stringToPtr(s string) *string {
	return &s
}

func timeInFuture() time.Time {
	return time.Now().Add(24 * time.Hour)
}
