// Package notification implements the one-shot calibration email workflow.
// Each calibration record carries a notification state that only moves
// forward: UNSENT -> SENT -> READ. A re-send while SENT or READ is allowed and
// resets the read flag.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gagetrack/internal/apperr"
	"gagetrack/internal/config"
	"gagetrack/internal/mail"
	"gagetrack/internal/models"
)

type State string

const (
	StateUnsent State = "UNSENT"
	StateSent   State = "SENT"
	StateRead   State = "READ"
)

// StateOf derives the tagged state from the persisted flag pair. A row with
// read set but sent clear is treated as UNSENT; the dispatcher never writes
// that combination.
func StateOf(rec models.CalibrationRecord) State {
	switch {
	case rec.NotificationSent && rec.NotificationRead:
		return StateRead
	case rec.NotificationSent:
		return StateSent
	default:
		return StateUnsent
	}
}

type Dispatcher struct {
	db     *gorm.DB
	mailer mail.Mailer
	smtp   config.SMTP
	lg     *zap.SugaredLogger
	now    func() time.Time
}

func NewDispatcher(db *gorm.DB, mailer mail.Mailer, smtp config.SMTP, lg *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{db: db, mailer: mailer, smtp: smtp, lg: lg, now: time.Now}
}

// Send dispatches the email for one calibration record and, on transport
// success only, flips the record to SENT and clears any earlier read mark.
// Pre-dispatch failures surface as typed errors; transport and auth failures
// surface as (false, nil) with no state change. The persist happens after the
// send, so delivery is at-least-once: a crash between the two leaves the row
// UNSENT and a retry will mail again.
func (d *Dispatcher) Send(ctx context.Context, calibrationID uint) (bool, error) {
	var rec models.CalibrationRecord
	if err := d.db.WithContext(ctx).First(&rec, "calibration_id = ?", calibrationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.NotFound("calibration record %d not found", calibrationID)
		}
		return false, apperr.Server(err, "load calibration record")
	}
	var gage models.Gage
	if err := d.db.WithContext(ctx).First(&gage, "gage_id = ?", rec.GageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.NotFound("gage %d not found", rec.GageID)
		}
		return false, apperr.Server(err, "load gage")
	}
	var performer models.User
	err := d.db.WithContext(ctx).First(&performer, "id = ?", rec.CalibratedBy).Error
	if err != nil || performer.Email == "" {
		return false, apperr.Validation("no email on file for user %d", rec.CalibratedBy)
	}
	if !d.smtp.Complete() {
		return false, apperr.Configuration("mail transport is not fully configured")
	}

	subject := fmt.Sprintf("Calibration Notification - Gage %s", gage.Name)
	body := composeBody(gage, rec)

	if err := d.mailer.Send(ctx, d.smtp.From, performer.Email, subject, body); err != nil {
		if errors.Is(err, mail.ErrAuth) {
			d.lg.Errorw("smtp authentication failed", "calibration_id", calibrationID, "error", err)
		} else {
			d.lg.Errorw("notification dispatch failed", "calibration_id", calibrationID, "error", err)
		}
		return false, nil
	}

	now := d.now()
	updates := map[string]any{
		"notification_sent":      true,
		"notification_sent_date": &now,
		"notification_read":      false,
		"notification_read_date": nil,
	}
	if err := d.db.WithContext(ctx).Model(&models.CalibrationRecord{}).
		Where("calibration_id = ?", calibrationID).
		Updates(updates).Error; err != nil {
		return false, apperr.Server(err, "persist notification state")
	}
	d.lg.Infow("calibration notification sent",
		"calibration_id", calibrationID, "gage_id", gage.GageID, "to", performer.Email)
	return true, nil
}

// MarkRead transitions SENT -> READ. A record that was never sent stays put
// and the caller gets a conflict; read without sent is not a reachable state.
func (d *Dispatcher) MarkRead(ctx context.Context, calibrationID uint) (models.CalibrationRecord, error) {
	var rec models.CalibrationRecord
	if err := d.db.WithContext(ctx).First(&rec, "calibration_id = ?", calibrationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rec, apperr.NotFound("calibration record %d not found", calibrationID)
		}
		return rec, apperr.Server(err, "load calibration record")
	}
	if StateOf(rec) == StateUnsent {
		return rec, apperr.Conflict("notification for calibration %d has not been sent", calibrationID)
	}
	now := d.now()
	rec.NotificationRead = true
	rec.NotificationReadDate = &now
	if err := d.db.WithContext(ctx).Model(&models.CalibrationRecord{}).
		Where("calibration_id = ?", calibrationID).
		Updates(map[string]any{"notification_read": true, "notification_read_date": &now}).Error; err != nil {
		return rec, apperr.Server(err, "persist read state")
	}
	return rec, nil
}

// Inbox lists a user's dispatched notifications, newest first.
func (d *Dispatcher) Inbox(ctx context.Context, userID uint) ([]models.CalibrationRecord, error) {
	var recs []models.CalibrationRecord
	err := d.db.WithContext(ctx).
		Where("calibrated_by = ? AND notification_sent = ?", userID, true).
		Order("notification_sent_date desc").
		Find(&recs).Error
	if err != nil {
		return nil, apperr.Server(err, "list notifications")
	}
	return recs, nil
}

func composeBody(gage models.Gage, rec models.CalibrationRecord) string {
	return fmt.Sprintf(`Hello,

This is a notification regarding the calibration of gage %s (ID: %d).

Calibration Details:
- Gage Name: %s
- Serial Number: %s
- Calibration Date: %s
- Next Due Date: %s
- Calibration Result: %s

Please ensure all calibration procedures were followed correctly.

Best regards,
Gage Calibration System
`, gage.Name, gage.GageID, gage.Name, gage.SerialNumber,
		fmtDate(rec.CalibrationDate), fmtDate(rec.NextDueDate), rec.CalibrationResult)
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format("2006-01-02")
}
