package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gagetrack/internal/models"
	"gagetrack/internal/services/measurement"
)

// ListMeasurements filters by ?gage_id= and/or ?calibration_id=; with neither
// it returns everything.
func ListMeasurements(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := db.Model(&models.CalibrationMeasurement{})
		if s := r.URL.Query().Get("gage_id"); s != "" {
			id, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				http.Error(w, "invalid gage_id", http.StatusBadRequest)
				return
			}
			q = q.Where("gage_id = ?", id)
		}
		if s := r.URL.Query().Get("calibration_id"); s != "" {
			id, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				http.Error(w, "invalid calibration_id", http.StatusBadRequest)
				return
			}
			q = q.Where("calibration_id = ?", id)
		}
		rows := []models.CalibrationMeasurement{}
		if err := q.Order("measurement_id").Find(&rows).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, rows)
	}
}

type measurementReq struct {
	CalibrationID     *uint            `json:"calibration_id"`
	GageID            *uint            `json:"gage_id"`
	FunctionPoint     *string          `json:"function_point"`
	NominalValue      *decimal.Decimal `json:"nominal_value"`
	TolerancePlus     *decimal.Decimal `json:"tolerance_plus"`
	ToleranceMinus    *decimal.Decimal `json:"tolerance_minus"`
	BeforeMeasurement *decimal.Decimal `json:"before_measurement"`
	AfterMeasurement  *decimal.Decimal `json:"after_measurement"`
	MasterGageID      *uint            `json:"master_gage_id"`
	Temperature       *decimal.Decimal `json:"temperature"`
	Humidity          *decimal.Decimal `json:"humidity"`
}

func (req measurementReq) apply(m *models.CalibrationMeasurement) {
	if req.CalibrationID != nil {
		m.CalibrationID = *req.CalibrationID
	}
	if req.GageID != nil {
		m.GageID = *req.GageID
	}
	if req.FunctionPoint != nil {
		m.FunctionPoint = *req.FunctionPoint
	}
	if req.NominalValue != nil {
		m.NominalValue = *req.NominalValue
	}
	if req.TolerancePlus != nil {
		m.TolerancePlus = *req.TolerancePlus
	}
	if req.ToleranceMinus != nil {
		m.ToleranceMinus = *req.ToleranceMinus
	}
	if req.BeforeMeasurement != nil {
		m.BeforeMeasurement = *req.BeforeMeasurement
	}
	if req.AfterMeasurement != nil {
		m.AfterMeasurement = *req.AfterMeasurement
	}
	if req.MasterGageID != nil {
		m.MasterGageID = req.MasterGageID
	}
	if req.Temperature != nil {
		m.Temperature = req.Temperature
	}
	if req.Humidity != nil {
		m.Humidity = req.Humidity
	}
}

func CreateMeasurement(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req measurementReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.GageID == nil || req.CalibrationID == nil {
			http.Error(w, "gage_id and calibration_id required", http.StatusBadRequest)
			return
		}
		var m models.CalibrationMeasurement
		req.apply(&m)
		if err := db.Create(&m).Error; err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondJSON(w, m)
	}
}

func UpdateMeasurement(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "measurement_id")
		if err != nil {
			respondError(w, err)
			return
		}
		var req measurementReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var m models.CalibrationMeasurement
		if err := db.First(&m, "measurement_id = ?", id).Error; err != nil {
			http.Error(w, "measurement record not found", http.StatusNotFound)
			return
		}
		req.apply(&m)
		if err := db.Save(&m).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, m)
	}
}

func DeleteMeasurement(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "measurement_id")
		if err != nil {
			respondError(w, err)
			return
		}
		res := db.Delete(&models.CalibrationMeasurement{}, "measurement_id = ?", id)
		if res.Error != nil {
			http.Error(w, res.Error.Error(), http.StatusInternalServerError)
			return
		}
		if res.RowsAffected == 0 {
			http.Error(w, "measurement record not found", http.StatusNotFound)
			return
		}
		respondJSON(w, map[string]any{"deleted": true})
	}
}

func UniqueGageCalibrations(svc *measurement.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pairs, err := svc.UniquePairs(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, pairs)
	}
}
