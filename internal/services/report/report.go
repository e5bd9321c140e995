// Package report composes read-only views across gages, calibration records,
// measurements, and issue logs.
package report

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"gagetrack/internal/apperr"
	"gagetrack/internal/models"
)

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CalibrationDetail struct {
	models.CalibrationRecord
	Measurements []models.CalibrationMeasurement `json:"measurements"`
}

type CalibrationReport struct {
	models.Gage
	CalibrationRecords []CalibrationDetail `json:"calibration_records"`
}

// Calibration returns the gage with every calibration record, each annotated
// with its full measurement list. A gage with no records yields an empty list.
func (s *Service) Calibration(ctx context.Context, gageID uint) (CalibrationReport, error) {
	var out CalibrationReport
	gage, err := s.loadGage(ctx, gageID)
	if err != nil {
		return out, err
	}
	out.Gage = gage
	out.CalibrationRecords = []CalibrationDetail{}

	var recs []models.CalibrationRecord
	if err := s.db.WithContext(ctx).Where("gage_id = ?", gageID).Find(&recs).Error; err != nil {
		return out, apperr.Server(err, "list calibration records")
	}
	for _, rec := range recs {
		measurements := []models.CalibrationMeasurement{}
		if err := s.db.WithContext(ctx).
			Where("calibration_id = ?", rec.CalibrationID).
			Find(&measurements).Error; err != nil {
			return out, apperr.Server(err, "list measurements")
		}
		out.CalibrationRecords = append(out.CalibrationRecords, CalibrationDetail{
			CalibrationRecord: rec,
			Measurements:      measurements,
		})
	}
	return out, nil
}

// IssueEntry is an issue row with missing optional fields replaced by "N/A"
// sentinels, the shape the report consumers expect.
type IssueEntry struct {
	IssueID           uint       `json:"issue_id"`
	GageID            uint       `json:"gage_id"`
	IssueDate         *time.Time `json:"issue_date"`
	IssuedFrom        string     `json:"issued_from"`
	IssuedTo          string     `json:"issued_to"`
	HandledBy         string     `json:"handled_by"`
	ReturnDate        *time.Time `json:"return_date,omitempty"`
	ReturnedBy        string     `json:"returned_by"`
	ConditionOnReturn string     `json:"condition_on_return"`
}

type IssueReport struct {
	models.Gage
	IssueLogs []IssueEntry `json:"issue_logs"`
}

func (s *Service) Issues(ctx context.Context, gageID uint) (IssueReport, error) {
	var out IssueReport
	gage, err := s.loadGage(ctx, gageID)
	if err != nil {
		return out, err
	}
	out.Gage = gage
	out.IssueLogs = []IssueEntry{}

	var logs []models.IssueLog
	if err := s.db.WithContext(ctx).Where("gage_id = ?", gageID).Find(&logs).Error; err != nil {
		return out, apperr.Server(err, "list issue logs")
	}
	for _, log := range logs {
		out.IssueLogs = append(out.IssueLogs, IssueEntry{
			IssueID:           log.IssueID,
			GageID:            log.GageID,
			IssueDate:         log.IssueDate,
			IssuedFrom:        orNA(log.IssuedFrom),
			IssuedTo:          orNA(log.IssuedTo),
			HandledBy:         idOrNA(log.HandledBy),
			ReturnDate:        log.ReturnDate,
			ReturnedBy:        idPtrOrNA(log.ReturnedBy),
			ConditionOnReturn: orNA(log.ConditionOnReturn),
		})
	}
	return out, nil
}

func (s *Service) loadGage(ctx context.Context, gageID uint) (models.Gage, error) {
	var gage models.Gage
	if err := s.db.WithContext(ctx).First(&gage, "gage_id = ?", gageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gage, apperr.NotFound("gage %d not found", gageID)
		}
		return gage, apperr.Server(err, "load gage")
	}
	return gage, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func idOrNA(id uint) string {
	if id == 0 {
		return "N/A"
	}
	return strconv.FormatUint(uint64(id), 10)
}

func idPtrOrNA(id *uint) string {
	if id == nil || *id == 0 {
		return "N/A"
	}
	return strconv.FormatUint(uint64(*id), 10)
}
