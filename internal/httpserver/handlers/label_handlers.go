package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gagetrack/internal/models"
)

type labelReq struct {
	GageID              uint    `json:"gage_id"`
	CalibrationRecordID *uint   `json:"calibration_record_id"`
	TemplateUsed        string  `json:"template_used"`
	LabelSize           string  `json:"label_size"`
	LogoFilename        *string `json:"logo_filename"`
}

func CreateLabel(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req labelReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.GageID == 0 || req.TemplateUsed == "" || req.LabelSize == "" {
			http.Error(w, "gage_id, template_used and label_size required", http.StatusBadRequest)
			return
		}
		l := models.Label{
			GageID:              req.GageID,
			CalibrationRecordID: req.CalibrationRecordID,
			TemplateUsed:        req.TemplateUsed,
			LabelSize:           req.LabelSize,
			LogoFilename:        req.LogoFilename,
			GeneratedAt:         time.Now(),
		}
		if err := db.Create(&l).Error; err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondJSON(w, l)
	}
}

// ListLabels filters by ?gage_id= and ?calibration_record_id=, with
// ?skip=/?limit= paging (limit defaults to 100).
func ListLabels(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := db.Model(&models.Label{})
		if s := r.URL.Query().Get("gage_id"); s != "" {
			id, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				http.Error(w, "invalid gage_id", http.StatusBadRequest)
				return
			}
			q = q.Where("gage_id = ?", id)
		}
		if s := r.URL.Query().Get("calibration_record_id"); s != "" {
			id, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				http.Error(w, "invalid calibration_record_id", http.StatusBadRequest)
				return
			}
			q = q.Where("calibration_record_id = ?", id)
		}
		skip := 0
		if s := r.URL.Query().Get("skip"); s != "" {
			skip, _ = strconv.Atoi(s)
		}
		limit := 100
		if s := r.URL.Query().Get("limit"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				limit = n
			}
		}
		labels := []models.Label{}
		if err := q.Order("id").Offset(skip).Limit(limit).Find(&labels).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, labels)
	}
}

func GetLabel(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "label_id")
		if err != nil {
			respondError(w, err)
			return
		}
		var l models.Label
		if err := db.First(&l, "id = ?", id).Error; err != nil {
			http.Error(w, "label not found", http.StatusNotFound)
			return
		}
		respondJSON(w, l)
	}
}

func DeleteLabel(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "label_id")
		if err != nil {
			respondError(w, err)
			return
		}
		res := db.Delete(&models.Label{}, "id = ?", id)
		if res.Error != nil {
			http.Error(w, res.Error.Error(), http.StatusInternalServerError)
			return
		}
		if res.RowsAffected == 0 {
			http.Error(w, "label not found", http.StatusNotFound)
			return
		}
		respondJSON(w, map[string]any{"deleted": true})
	}
}
