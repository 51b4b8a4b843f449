package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"casevault/db"
	"casevault/middleware"
	"casevault/models"
	"casevault/services"

	"github.com/labstack/echo/v4"
)

// GetCaseDocumentsHandler lists a case's documents with the role-based
// visibility projection applied: a member holding only DISCLOSEE sees
// REVIEWED documents only.
func GetCaseDocumentsHandler(c echo.Context) error {
	caseID := c.Param("id")
	currentUser := middleware.GetCurrentUser(c)

	membership, err := services.GetCaseMembership(db.DB, caseID, currentUser.ID)
	if err != nil {
		return httpError(err)
	}

	documents, err := services.GetCaseDocuments(db.DB, caseID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch documents")
	}

	visible := services.FilterVisibleDocuments(documents, membership.RoleList())
	return c.JSON(http.StatusOK, visible)
}

// UploadDocumentResponse wraps the created document with the extraction
// result a banking upload needs confirming against
type UploadDocumentResponse struct {
	Document   *models.Document           `json:"document"`
	Extraction *services.ExtractionResult `json:"extraction,omitempty"`
}

// UploadDocumentHandler stores an uploaded file and creates the document
// record. REAL_PROPERTY documents are numbered immediately; BANKING
// documents run through the extraction oracle (outside the case lock) and
// stay unnumbered until confirmed.
func UploadDocumentHandler(c echo.Context) error {
	caseID := c.Param("id")
	currentUser := middleware.GetCurrentUser(c)

	membership, err := services.GetCaseMembership(db.DB, caseID, currentUser.ID)
	if err != nil {
		return httpError(err)
	}
	if !membership.HasRole(models.RoleDiscloser) && !membership.HasRole(models.RoleCaseAdmin) {
		return echo.NewHTTPError(http.StatusForbidden, "Only a discloser can upload documents")
	}

	category := strings.ToUpper(strings.TrimSpace(c.FormValue("category")))
	if !models.IsValidCategory(category) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown document category")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file")
	}
	if err := services.ValidatePDFUpload(fileHeader); err != nil {
		return httpError(err)
	}

	key := services.GenerateCaseDocumentKey(caseID, fileHeader.Filename)
	stored, err := services.Storage.Upload(c.Request().Context(), fileHeader, key)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store file")
	}

	input := services.CreateDocumentInput{
		CaseID:           caseID,
		Category:         category,
		FileName:         stored.FileName,
		FileOriginalName: fileHeader.Filename,
		StorageKey:       stored.Key,
		FileSize:         stored.FileSize,
		MimeType:         stored.MimeType,
		UploadedByID:     currentUser.ID,
	}

	// Run extraction before any lock is taken; numbering never blocks on it
	var extraction *services.ExtractionResult
	if category == models.CategoryBanking && services.DocumentExtractor != nil {
		if src, openErr := fileHeader.Open(); openErr == nil {
			extraction, err = services.DocumentExtractor.ExtractBankingMetadata(c.Request().Context(), src)
			src.Close()
			if err != nil {
				// Extraction failure is not fatal: the user confirms manually
				c.Logger().Warnf("Extraction failed for upload in case %s: %v", caseID, err)
				extraction = nil
			}
		}
		if extraction != nil {
			if extraction.AccountHolderName != "" {
				input.AccountHolderName = &extraction.AccountHolderName
			}
			if extraction.FinancialInstitution != "" {
				input.FinancialInstitution = &extraction.FinancialInstitution
			}
			if extraction.AccountNumber != "" {
				input.AccountNumber = &extraction.AccountNumber
			}
			if extraction.BsbSortCode != "" {
				input.BsbSortCode = &extraction.BsbSortCode
			}
			input.TransactionDateFrom = extraction.DateFrom
			input.TransactionDateTo = extraction.DateTo
		}
	}

	document, err := services.CreateDocument(db.DB, input)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, UploadDocumentResponse{Document: document, Extraction: extraction})
}

// ConfirmDocumentRequest is the payload confirming a banking document's
// extracted (or corrected) metadata
type ConfirmDocumentRequest struct {
	AccountHolderName    string `json:"account_holder_name"`
	FinancialInstitution string `json:"financial_institution"`
}

// ConfirmDocumentHandler assigns account group and document number to an
// uploaded banking document
func ConfirmDocumentHandler(c echo.Context) error {
	documentID, err := parseDocumentID(c)
	if err != nil {
		return err
	}
	currentUser := middleware.GetCurrentUser(c)

	document, err := services.GetDocument(db.DB, documentID)
	if err != nil {
		return httpError(err)
	}

	membership, err := services.GetCaseMembership(db.DB, document.CaseID, currentUser.ID)
	if err != nil {
		return httpError(err)
	}
	if !membership.HasRole(models.RoleDiscloser) && !membership.HasRole(models.RoleCaseAdmin) {
		return echo.NewHTTPError(http.StatusForbidden, "Only a discloser can confirm documents")
	}

	var req ConfirmDocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	// Fall back to the extracted holder name when the user did not correct it
	holderName := strings.TrimSpace(req.AccountHolderName)
	if holderName == "" {
		holderName = document.HolderName()
	}

	confirmed, err := services.ConfirmBankingDocument(db.DB, documentID, holderName, req.FinancialInstitution)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, confirmed)
}

// UpdateStatusRequest is the payload for a status transition
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateDocumentStatusHandler applies a role-gated status transition.
// Returns 200 on success, 403 when the role set does not authorize the
// transition, 400 when the target status is not recognized.
func UpdateDocumentStatusHandler(c echo.Context) error {
	documentID, err := parseDocumentID(c)
	if err != nil {
		return err
	}
	currentUser := middleware.GetCurrentUser(c)

	document, err := services.GetDocument(db.DB, documentID)
	if err != nil {
		return httpError(err)
	}

	membership, err := services.GetCaseMembership(db.DB, document.CaseID, currentUser.ID)
	if err != nil {
		return httpError(err)
	}

	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	updated, err := services.ApplyTransition(db.DB, documentID, strings.ToUpper(strings.TrimSpace(req.Status)), currentUser, membership.RoleList())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteDocumentHandler removes a document (uploader or CASEADMIN).
// Siblings keep their numbers; sequence numbers are never reassigned.
func DeleteDocumentHandler(c echo.Context) error {
	documentID, err := parseDocumentID(c)
	if err != nil {
		return err
	}
	currentUser := middleware.GetCurrentUser(c)

	document, err := services.GetDocument(db.DB, documentID)
	if err != nil {
		return httpError(err)
	}

	membership, err := services.GetCaseMembership(db.DB, document.CaseID, currentUser.ID)
	if err != nil {
		return httpError(err)
	}
	if !membership.HasRole(models.RoleCaseAdmin) && document.UploadedByID != currentUser.ID {
		return echo.NewHTTPError(http.StatusForbidden, "Only the uploader or a case admin can delete a document")
	}

	if err := services.DeleteDocument(db.DB, documentID, currentUser.ID); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// DownloadDocumentHandler streams the stored file, honoring the same
// visibility projection as the listing
func DownloadDocumentHandler(c echo.Context) error {
	documentID, err := parseDocumentID(c)
	if err != nil {
		return err
	}
	currentUser := middleware.GetCurrentUser(c)

	document, err := services.GetDocument(db.DB, documentID)
	if err != nil {
		return httpError(err)
	}

	membership, err := services.GetCaseMembership(db.DB, document.CaseID, currentUser.ID)
	if err != nil {
		return httpError(err)
	}
	if !services.CanViewAllStatuses(membership.RoleList()) && document.Status != models.StatusReviewed {
		return echo.NewHTTPError(http.StatusForbidden, "Document is not available for disclosure yet")
	}

	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	reader, contentType, err := services.Storage.Get(ctx, document.StorageKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Stored file not found")
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+document.FileOriginalName+`"`)
	return c.Stream(http.StatusOK, contentType, reader)
}

func parseDocumentID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid document id")
	}
	return uint(id), nil
}

func contextWithTimeout(c echo.Context) (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 30*time.Second)
}
