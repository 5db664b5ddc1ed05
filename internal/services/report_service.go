package services

import (
	"strings"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/dto"
	"github.com/cinetalkapp/cinetalk-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportService handles user-filed content reports and the admin review
// queue.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

func (s *ReportService) Create(reporterID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, error) {
	validTypes := map[string]bool{"review": true, "user": true}
	if !validTypes[req.ContentType] {
		return nil, apperr.Invalid("content_type must be review or user")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, apperr.Invalid("reason is required")
	}

	report := models.Report{
		ID:          uuid.New(),
		ReporterID:  reporterID,
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		Reason:      req.Reason,
		Status:      "pending",
	}
	if err := s.db.Create(&report).Error; err != nil {
		return nil, apperr.Internal("failed to create report", err)
	}
	return &report, nil
}

func (s *ReportService) List(status string, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, apperr.Internal("failed to list reports", err)
	}
	return reports, total, nil
}

func (s *ReportService) Action(reportID uuid.UUID, req *dto.ActionReportRequest) error {
	validStatuses := map[string]bool{"reviewed": true, "actioned": true, "dismissed": true}
	if !validStatuses[req.Status] {
		return apperr.Invalid("status must be reviewed, actioned, or dismissed")
	}

	result := s.db.Model(&models.Report{}).
		Where("id = ?", reportID).
		Updates(map[string]interface{}{
			"status":     req.Status,
			"admin_note": req.AdminNote,
		})
	if result.Error != nil {
		return apperr.Internal("failed to action report", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("report not found")
	}
	return nil
}
