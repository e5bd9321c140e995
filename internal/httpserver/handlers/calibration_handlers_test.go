package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gagetrack/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Gage{}, &models.CalibrationRecord{},
		&models.CalibrationMeasurement{}, &models.IssueLog{},
		&models.Label{}, &models.LabelTemplate{},
	))
	return db
}

func calibrationRouter(db *gorm.DB) http.Handler {
	lg := zap.NewNop().Sugar()
	r := chi.NewRouter()
	r.Get("/api/calibrations", ListCalibrations(db, lg))
	r.Post("/api/calibrations", CreateCalibration(db, lg))
	r.Get("/api/calibrations/{calibration_id}", GetCalibration(db, lg))
	r.Put("/api/calibrations/{calibration_id}", UpdateCalibration(db, lg))
	r.Delete("/api/calibrations/{calibration_id}", DeleteCalibration(db, lg))
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCreateCalibrationForcesUnsent(t *testing.T) {
	db := newTestDB(t)
	h := calibrationRouter(db)

	rr := doJSON(t, h, http.MethodPost, "/api/calibrations", map[string]any{
		"gage_id":                1,
		"calibration_result":     "Pass",
		"notification_sent":      true,
		"notification_read":      true,
		"notification_sent_date": "2025-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var rec models.CalibrationRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.False(t, rec.NotificationSent)
	assert.False(t, rec.NotificationRead)
	assert.Nil(t, rec.NotificationSentDate)
	assert.Nil(t, rec.NotificationReadDate)
}

func TestListCalibrationsFilterOrderLimit(t *testing.T) {
	db := newTestDB(t)
	h := calibrationRouter(db)

	mk := func(gageID uint, day int) {
		d := time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC)
		require.NoError(t, db.Create(&models.CalibrationRecord{GageID: gageID, CalibrationDate: &d}).Error)
	}
	mk(1, 20)
	mk(1, 5)
	mk(2, 10)

	rr := doJSON(t, h, http.MethodGet, "/api/calibrations?gage_id=1&order_by=calibration_date", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var recs []models.CalibrationRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	require.Len(t, recs, 2)
	assert.True(t, recs[0].CalibrationDate.Before(*recs[1].CalibrationDate))

	rr = doJSON(t, h, http.MethodGet, "/api/calibrations?gage_id=1&order_by=calibration_date+desc&limit=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	recs = nil
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, 20, recs[0].CalibrationDate.Day())
}

func TestGetCalibrationNotFound(t *testing.T) {
	db := newTestDB(t)
	h := calibrationRouter(db)
	rr := doJSON(t, h, http.MethodGet, "/api/calibrations/42", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateCalibrationPartial(t *testing.T) {
	db := newTestDB(t)
	h := calibrationRouter(db)

	rec := models.CalibrationRecord{
		GageID:            1,
		CalibrationResult: "Pass",
		CertificateNumber: "CERT-1",
		Comments:          "initial",
	}
	require.NoError(t, db.Create(&rec).Error)

	rr := doJSON(t, h, http.MethodPut,
		fmt.Sprintf("/api/calibrations/%d", rec.CalibrationID),
		map[string]any{"calibration_result": "Fail"})
	require.Equal(t, http.StatusOK, rr.Code)

	var got models.CalibrationRecord
	require.NoError(t, db.First(&got, "calibration_id = ?", rec.CalibrationID).Error)
	assert.Equal(t, "Fail", got.CalibrationResult)
	// untouched fields keep their values
	assert.Equal(t, "CERT-1", got.CertificateNumber)
	assert.Equal(t, "initial", got.Comments)
}

func TestUpdateCalibrationNotFound(t *testing.T) {
	db := newTestDB(t)
	h := calibrationRouter(db)
	rr := doJSON(t, h, http.MethodPut, "/api/calibrations/42", map[string]any{"comments": "x"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteCalibrationOrphansMeasurements(t *testing.T) {
	db := newTestDB(t)
	h := calibrationRouter(db)

	rec := models.CalibrationRecord{GageID: 1}
	require.NoError(t, db.Create(&rec).Error)
	require.NoError(t, db.Create(&models.CalibrationMeasurement{
		GageID: 1, CalibrationID: rec.CalibrationID, FunctionPoint: "a",
	}).Error)

	rr := doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/calibrations/%d", rec.CalibrationID), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var recCount, measCount int64
	db.Model(&models.CalibrationRecord{}).Count(&recCount)
	db.Model(&models.CalibrationMeasurement{}).Where("calibration_id = ?", rec.CalibrationID).Count(&measCount)
	assert.Zero(t, recCount)
	assert.Equal(t, int64(1), measCount, "measurement rows survive their parent record")

	rr = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/calibrations/%d", rec.CalibrationID), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
