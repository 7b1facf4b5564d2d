package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"samvaad.app/intake/internal/http/dto"
	"samvaad.app/intake/internal/service"
)

type RecordsHandler struct {
	fieldWorkers service.FieldWorkerService
	contractors  service.ContractorService
}

func NewRecordsHandler(fieldWorkers service.FieldWorkerService, contractors service.ContractorService) *RecordsHandler {
	return &RecordsHandler{
		fieldWorkers: fieldWorkers,
		contractors:  contractors,
	}
}

func (h *RecordsHandler) GetReport(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	} else if _, perr := time.Parse("2006-01-02", date); perr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	rec, err := h.fieldWorkers.Report(ctx, userID, date)
	if err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to fetch report", "user_id", userID, "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch report"})
		return
	}

	c.JSON(http.StatusOK, dto.DailyReportResponse{
		ID:                rec.ID,
		UserID:            rec.UserID,
		ReportDate:        rec.ReportDate,
		Description:       rec.Description,
		Site:              rec.Site,
		Hours:             rec.Hours,
		Blockers:          rec.Blockers,
		ProofURLs:         rec.ProofURLs,
		ProductivityScore: rec.ProductivityScore,
		CreatedAt:         rec.CreatedAt,
	})
}

func (h *RecordsHandler) GetContractorProfile(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	rec, err := h.contractors.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to fetch contractor profile", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, dto.ContractorProfileResponse{
		ID:                 rec.ID,
		UserID:             rec.UserID,
		CompanyName:        rec.CompanyName,
		LicenseNumber:      rec.LicenseNumber,
		GST:                rec.GST,
		Category:           rec.Category,
		DocumentURLs:       rec.DocumentURLs,
		VerificationStatus: string(rec.VerificationStatus),
		CreatedAt:          rec.CreatedAt,
	})
}
