package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gagetrack/internal/models"
)

// ListCalibrations supports ?gage_id=, ?limit= and ?order_by=calibration_date
// (append "desc" for descending). Without an order_by the listing is stable by
// primary key.
func ListCalibrations(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := db.Model(&models.CalibrationRecord{})
		if s := r.URL.Query().Get("gage_id"); s != "" {
			id, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				http.Error(w, "invalid gage_id", http.StatusBadRequest)
				return
			}
			q = q.Where("gage_id = ?", id)
		}
		if orderBy := r.URL.Query().Get("order_by"); strings.Contains(orderBy, "calibration_date") {
			if strings.Contains(strings.ToLower(orderBy), "desc") {
				q = q.Order("calibration_date desc")
			} else {
				q = q.Order("calibration_date")
			}
		} else {
			q = q.Order("calibration_id")
		}
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			q = q.Limit(n)
		}
		recs := []models.CalibrationRecord{}
		if err := q.Find(&recs).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, recs)
	}
}

type calibrationReq struct {
	GageID            *uint      `json:"gage_id"`
	CalibrationDate   *time.Time `json:"calibration_date"`
	CalibratedBy      *uint      `json:"calibrated_by"`
	CalibrationMethod *string    `json:"calibration_method"`
	CalibrationResult *string    `json:"calibration_result"`
	DeviationRecorded *string    `json:"deviation_recorded"`
	AdjustmentsMade   *bool      `json:"adjustments_made"`
	CertificateNumber *string    `json:"certificate_number"`
	NextDueDate       *time.Time `json:"next_due_date"`
	Comments          *string    `json:"comments"`
	DocumentPath      *string    `json:"calibration_document_path"`
}

// apply copies the fields present in the payload; the notification sub-state
// is never writable through create or update.
func (req calibrationReq) apply(rec *models.CalibrationRecord) {
	if req.GageID != nil {
		rec.GageID = *req.GageID
	}
	if req.CalibrationDate != nil {
		rec.CalibrationDate = req.CalibrationDate
	}
	if req.CalibratedBy != nil {
		rec.CalibratedBy = *req.CalibratedBy
	}
	if req.CalibrationMethod != nil {
		rec.CalibrationMethod = *req.CalibrationMethod
	}
	if req.CalibrationResult != nil {
		rec.CalibrationResult = *req.CalibrationResult
	}
	if req.DeviationRecorded != nil {
		rec.DeviationRecorded = *req.DeviationRecorded
	}
	if req.AdjustmentsMade != nil {
		rec.AdjustmentsMade = *req.AdjustmentsMade
	}
	if req.CertificateNumber != nil {
		rec.CertificateNumber = *req.CertificateNumber
	}
	if req.NextDueDate != nil {
		rec.NextDueDate = req.NextDueDate
	}
	if req.Comments != nil {
		rec.Comments = *req.Comments
	}
	if req.DocumentPath != nil {
		rec.DocumentPath = *req.DocumentPath
	}
}

func CreateCalibration(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req calibrationReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.GageID == nil {
			http.Error(w, "gage_id required", http.StatusBadRequest)
			return
		}
		var rec models.CalibrationRecord
		req.apply(&rec)
		// A new record always starts UNSENT no matter what the caller sent.
		rec.NotificationSent = false
		rec.NotificationSentDate = nil
		rec.NotificationRead = false
		rec.NotificationReadDate = nil
		if err := db.Create(&rec).Error; err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondJSON(w, rec)
	}
}

func GetCalibration(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "calibration_id")
		if err != nil {
			respondError(w, err)
			return
		}
		var rec models.CalibrationRecord
		if err := db.First(&rec, "calibration_id = ?", id).Error; err != nil {
			http.Error(w, "calibration record not found", http.StatusNotFound)
			return
		}
		respondJSON(w, rec)
	}
}

func UpdateCalibration(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "calibration_id")
		if err != nil {
			respondError(w, err)
			return
		}
		var req calibrationReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var rec models.CalibrationRecord
		if err := db.First(&rec, "calibration_id = ?", id).Error; err != nil {
			http.Error(w, "calibration record not found", http.StatusNotFound)
			return
		}
		req.apply(&rec)
		if err := db.Save(&rec).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, rec)
	}
}

// DeleteCalibration removes the record only; measurement rows under it are
// left in place and must be deleted separately.
func DeleteCalibration(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "calibration_id")
		if err != nil {
			respondError(w, err)
			return
		}
		res := db.Delete(&models.CalibrationRecord{}, "calibration_id = ?", id)
		if res.Error != nil {
			http.Error(w, res.Error.Error(), http.StatusInternalServerError)
			return
		}
		if res.RowsAffected == 0 {
			http.Error(w, "calibration record not found", http.StatusNotFound)
			return
		}
		respondJSON(w, map[string]any{"deleted": true})
	}
}
