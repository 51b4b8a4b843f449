package main

import (
	"log"
	"time"

	"casevault/config"
	"casevault/db"
	"casevault/handlers"
	"casevault/middleware"
	"casevault/models"
	"casevault/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Case{},
		&models.CaseUser{},
		&models.CaseInvitation{},
		&models.Document{},
		&models.DisclosureSnapshot{},
		&models.StatusAuditLog{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize external boundaries
	services.InitializeStorage(cfg)
	services.InitializeExtractor(cfg)
	services.InitializeEmail(cfg)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Public routes
	e.POST("/login", handlers.LoginHandler)

	// Protected routes
	protected := e.Group("")
	protected.Use(middleware.RequireAuth())
	{
		protected.POST("/logout", handlers.LogoutHandler)
		protected.GET("/api/me", handlers.GetCurrentUserHandler)

		// Cases and membership
		protected.POST("/api/cases", handlers.CreateCaseHandler)
		protected.GET("/api/cases", handlers.GetCasesHandler)
		protected.POST("/api/cases/:id/invitations", handlers.InviteToCaseHandler)
		protected.POST("/invitations/:token/accept", handlers.AcceptInvitationHandler)
		protected.PUT("/api/cases/:id/members/:userId/roles", handlers.UpdateMemberRolesHandler)

		// Documents
		protected.GET("/api/cases/:id/documents", handlers.GetCaseDocumentsHandler)
		protected.POST("/api/cases/:id/documents", handlers.UploadDocumentHandler)
		protected.POST("/api/documents/:id/confirm", handlers.ConfirmDocumentHandler)
		protected.PATCH("/api/documents/:id/status", handlers.UpdateDocumentStatusHandler)
		protected.DELETE("/api/documents/:id", handlers.DeleteDocumentHandler)
		protected.GET("/api/documents/:id/download", handlers.DownloadDocumentHandler)

		// Disclosure
		protected.POST("/api/cases/:id/generate-disclosure-pdf", handlers.GenerateDisclosurePDFHandler)
		protected.POST("/api/cases/:id/generate-disclosure-xlsx", handlers.GenerateDisclosureXLSXHandler)
		protected.GET("/api/cases/:id/snapshots", handlers.GetSnapshotsHandler)
		protected.GET("/api/cases/:id/audit-log", handlers.GetCaseAuditLogHandler)
	}

	// Start background cleanup job (runs every hour)
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := services.CleanupExpiredSessions(db.DB); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
