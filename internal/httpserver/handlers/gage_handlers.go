package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gagetrack/internal/models"
)

func ListGages(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gages := []models.Gage{}
		_ = db.Order("gage_id").Find(&gages).Error
		respondJSON(w, gages)
	}
}

type gageReq struct {
	Name                 *string    `json:"name"`
	Description          *string    `json:"description"`
	SerialNumber         *string    `json:"serial_number"`
	ModelNumber          *string    `json:"model_number"`
	Manufacturer         *string    `json:"manufacturer"`
	PurchaseDate         *time.Time `json:"purchase_date"`
	Location             *string    `json:"location"`
	Status               *string    `json:"status"`
	CalibrationFrequency *int       `json:"calibration_frequency"`
	LastCalibrationDate  *time.Time `json:"last_calibration_date"`
	NextCalibrationDue   *time.Time `json:"next_calibration_due"`
	GageType             *string    `json:"gage_type"`
	CalCategory          *string    `json:"cal_category"`
}

func (req gageReq) apply(g *models.Gage) {
	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.Description != nil {
		g.Description = *req.Description
	}
	if req.SerialNumber != nil {
		g.SerialNumber = *req.SerialNumber
	}
	if req.ModelNumber != nil {
		g.ModelNumber = *req.ModelNumber
	}
	if req.Manufacturer != nil {
		g.Manufacturer = *req.Manufacturer
	}
	if req.PurchaseDate != nil {
		g.PurchaseDate = req.PurchaseDate
	}
	if req.Location != nil {
		g.Location = *req.Location
	}
	if req.Status != nil {
		g.Status = *req.Status
	}
	if req.CalibrationFrequency != nil {
		g.CalibrationFrequency = *req.CalibrationFrequency
	}
	if req.LastCalibrationDate != nil {
		g.LastCalibrationDate = req.LastCalibrationDate
	}
	if req.NextCalibrationDue != nil {
		g.NextCalibrationDue = req.NextCalibrationDue
	}
	if req.GageType != nil {
		g.GageType = *req.GageType
	}
	if req.CalCategory != nil {
		g.CalCategory = *req.CalCategory
	}
}

func CreateGage(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gageReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.SerialNumber == nil || strings.TrimSpace(*req.SerialNumber) == "" {
			http.Error(w, "serial_number required", http.StatusBadRequest)
			return
		}
		var count int64
		db.Model(&models.Gage{}).Where("serial_number = ?", *req.SerialNumber).Count(&count)
		if count > 0 {
			http.Error(w, "a gage with this serial number already exists", http.StatusConflict)
			return
		}
		var g models.Gage
		req.apply(&g)
		if err := db.Create(&g).Error; err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondJSON(w, g)
	}
}

func GetGage(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "gage_id")
		if err != nil {
			respondError(w, err)
			return
		}
		var g models.Gage
		if err := db.First(&g, "gage_id = ?", id).Error; err != nil {
			http.Error(w, "gage not found", http.StatusNotFound)
			return
		}
		respondJSON(w, g)
	}
}

func UpdateGage(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "gage_id")
		if err != nil {
			respondError(w, err)
			return
		}
		var req gageReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var g models.Gage
		if err := db.First(&g, "gage_id = ?", id).Error; err != nil {
			http.Error(w, "gage not found", http.StatusNotFound)
			return
		}
		req.apply(&g)
		if err := db.Save(&g).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, g)
	}
}

func DeleteGage(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "gage_id")
		if err != nil {
			respondError(w, err)
			return
		}
		res := db.Delete(&models.Gage{}, "gage_id = ?", id)
		if res.Error != nil {
			http.Error(w, res.Error.Error(), http.StatusInternalServerError)
			return
		}
		if res.RowsAffected == 0 {
			http.Error(w, "gage not found", http.StatusNotFound)
			return
		}
		respondJSON(w, map[string]any{"deleted": true})
	}
}
