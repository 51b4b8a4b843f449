package services

import (
	"testing"
	"time"

	"casevault/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	err = db.AutoMigrate(&models.User{}, &models.Session{})
	assert.NoError(t, err)
	return db
}

func TestPasswordHashing(t *testing.T) {
	password := "SecretPass123!"

	hash, err := HashPassword(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	assert.True(t, CheckPassword(password, hash))
	assert.False(t, CheckPassword("WrongPass", hash))
}

func TestSessionLifecycle(t *testing.T) {
	db := setupAuthTestDB(t)
	userID := "user-123"

	session, err := CreateSession(db, userID, "127.0.0.1", "TestAgent")
	assert.NoError(t, err)
	assert.NotNil(t, session)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, userID, session.UserID)
	assert.WithinDuration(t, time.Now().Add(DefaultSessionDuration), session.ExpiresAt, 10*time.Second)

	validSession, err := ValidateSession(db, session.Token)
	assert.NoError(t, err)
	assert.NotNil(t, validSession)
	assert.Equal(t, session.ID, validSession.ID)

	invalidSession, err := ValidateSession(db, "invalid-token")
	assert.Error(t, err)
	assert.Nil(t, invalidSession)
	assert.Contains(t, err.Error(), "session not found")

	err = DeleteSession(db, session.Token)
	assert.NoError(t, err)

	deletedSession, err := ValidateSession(db, session.Token)
	assert.Error(t, err)
	assert.Nil(t, deletedSession)
}

func TestSessionExpiry(t *testing.T) {
	db := setupAuthTestDB(t)

	token := "expired-token"
	expiredSession := models.Session{
		ID:        "sess-expired",
		UserID:    "user-exp",
		Token:     token,
		ExpiresAt: time.Now().Add(-1 * time.Hour),
	}
	db.Create(&expiredSession)

	// Validation deletes the expired row
	sess, err := ValidateSession(db, token)
	assert.Error(t, err)
	assert.Equal(t, "session expired", err.Error())
	assert.Nil(t, sess)

	var count int64
	db.Model(&models.Session{}).Where("token = ?", token).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCleanupExpiredSessions(t *testing.T) {
	db := setupAuthTestDB(t)

	db.Create(&models.Session{ID: "sess-valid", Token: "valid", ExpiresAt: time.Now().Add(1 * time.Hour)})
	db.Create(&models.Session{ID: "sess-expired-1", Token: "exp1", ExpiresAt: time.Now().Add(-1 * time.Hour)})
	db.Create(&models.Session{ID: "sess-expired-2", Token: "exp2", ExpiresAt: time.Now().Add(-2 * time.Hour)})

	err := CleanupExpiredSessions(db)
	assert.NoError(t, err)

	var count int64
	db.Model(&models.Session{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var remaining models.Session
	db.First(&remaining)
	assert.Equal(t, "sess-valid", remaining.ID)
}

func TestAuthenticateUser(t *testing.T) {
	db := setupAuthTestDB(t)

	hash, err := HashPassword("CorrectHorse1!")
	assert.NoError(t, err)

	user := models.User{Name: "Alice", Email: "alice@example.com", Password: hash, IsActive: true}
	assert.NoError(t, db.Create(&user).Error)

	authenticated, err := AuthenticateUser(db, "alice@example.com", "CorrectHorse1!")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, authenticated.ID)
	assert.NotNil(t, authenticated.LastLoginAt)

	_, err = AuthenticateUser(db, "alice@example.com", "wrong")
	assert.Error(t, err)

	_, err = AuthenticateUser(db, "nobody@example.com", "whatever")
	assert.Error(t, err)

	// Deactivated accounts cannot log in
	assert.NoError(t, db.Model(&user).Update("is_active", false).Error)
	_, err = AuthenticateUser(db, "alice@example.com", "CorrectHorse1!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "deactivated")
}
