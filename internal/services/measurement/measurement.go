// Package measurement holds queries over calibration measurement rows that go
// beyond row-level CRUD.
package measurement

import (
	"context"
	"time"

	"gorm.io/gorm"

	"gagetrack/internal/apperr"
)

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

type GageCalibrationPair struct {
	GageID            uint       `json:"gage_id"`
	CalibrationID     uint       `json:"calibration_id"`
	CalibrationDate   *time.Time `json:"calibration_date"`
	CalibrationResult string     `json:"calibration_result"`
	PerformedBy       uint       `json:"performed_by"`
	PerformedByName   *string    `json:"performed_by_name"`
}

// UniquePairs returns one row per distinct (gage_id, calibration_id) pair that
// has at least one measurement, joined with the parent record's date/result
// and the performer's username. The user join is a left join: the name is null
// when the performer's account no longer exists.
func (s *Service) UniquePairs(ctx context.Context) ([]GageCalibrationPair, error) {
	rows := []GageCalibrationPair{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT m.gage_id,
		       m.calibration_id,
		       c.calibration_date,
		       c.calibration_result,
		       c.calibrated_by AS performed_by,
		       u.username      AS performed_by_name
		FROM calibration_measurements m
		JOIN calibration_records c ON c.calibration_id = m.calibration_id
		LEFT JOIN users u ON u.id = c.calibrated_by
		GROUP BY m.gage_id, m.calibration_id,
		         c.calibration_date, c.calibration_result, c.calibrated_by, u.username
		ORDER BY m.gage_id, m.calibration_id`).
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Server(err, "unique gage/calibration pairs")
	}
	return rows, nil
}
