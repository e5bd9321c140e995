package notification

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gagetrack/internal/apperr"
	"gagetrack/internal/config"
	"gagetrack/internal/mail"
	"gagetrack/internal/models"
)

type sentMail struct {
	from, to, subject, body string
}

type fakeMailer struct {
	err  error
	sent []sentMail
}

func (f *fakeMailer) Send(ctx context.Context, from, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{from, to, subject, body})
	return nil
}

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
	))
	return db
}

var smtpOK = config.SMTP{
	Server:   "smtp.example.com",
	Port:     587,
	Username: "mailer",
	Password: "secret",
	From:     "noreply@example.com",
}

func seedCalibration(t *testing.T, db *gorm.DB) models.CalibrationRecord {
	t.Helper()
	user := models.User{Username: "jdoe", Email: "jdoe@example.com", PasswordHash: "x", Role: "user"}
	require.NoError(t, db.Create(&user).Error)
	gage := models.Gage{Name: "Micrometer", SerialNumber: "SN-001", Status: models.GageStatusActive}
	require.NoError(t, db.Create(&gage).Error)
	calDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	due := calDate.AddDate(0, 6, 0)
	rec := models.CalibrationRecord{
		GageID:            gage.GageID,
		CalibrationDate:   &calDate,
		CalibratedBy:      user.ID,
		CalibrationResult: "Pass",
		NextDueDate:       &due,
	}
	require.NoError(t, db.Create(&rec).Error)
	return rec
}

func newDispatcher(db *gorm.DB, m mail.Mailer, smtp config.SMTP, now time.Time) *Dispatcher {
	d := NewDispatcher(db, m, smtp, zap.NewNop().Sugar())
	d.now = func() time.Time { return now }
	return d
}

func TestSendSuccess(t *testing.T) {
	db := newTestDB(t)
	rec := seedCalibration(t, db)
	mailer := &fakeMailer{}
	now := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	d := newDispatcher(db, mailer, smtpOK, now)

	sent, err := d.Send(context.Background(), rec.CalibrationID)
	require.NoError(t, err)
	assert.True(t, sent)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "noreply@example.com", msg.from)
	assert.Equal(t, "jdoe@example.com", msg.to)
	assert.Contains(t, msg.subject, "Micrometer")
	assert.Contains(t, msg.body, "SN-001")
	assert.Contains(t, msg.body, "2025-03-10")
	assert.Contains(t, msg.body, "Pass")

	var got models.CalibrationRecord
	require.NoError(t, db.First(&got, "calibration_id = ?", rec.CalibrationID).Error)
	assert.True(t, got.NotificationSent)
	require.NotNil(t, got.NotificationSentDate)
	assert.WithinDuration(t, now, *got.NotificationSentDate, time.Second)
	assert.False(t, got.NotificationRead)
	assert.Nil(t, got.NotificationReadDate)
	assert.Equal(t, StateSent, StateOf(got))
}

func TestSendResendClearsRead(t *testing.T) {
	db := newTestDB(t)
	rec := seedCalibration(t, db)
	earlier := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&models.CalibrationRecord{}).
		Where("calibration_id = ?", rec.CalibrationID).
		Updates(map[string]any{
			"notification_sent":      true,
			"notification_sent_date": &earlier,
			"notification_read":      true,
			"notification_read_date": &earlier,
		}).Error)

	now := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	d := newDispatcher(db, &fakeMailer{}, smtpOK, now)
	sent, err := d.Send(context.Background(), rec.CalibrationID)
	require.NoError(t, err)
	assert.True(t, sent)

	var got models.CalibrationRecord
	require.NoError(t, db.First(&got, "calibration_id = ?", rec.CalibrationID).Error)
	assert.True(t, got.NotificationSent)
	assert.WithinDuration(t, now, *got.NotificationSentDate, time.Second)
	assert.False(t, got.NotificationRead)
	assert.Nil(t, got.NotificationReadDate)
}

func TestSendRecordNotFound(t *testing.T) {
	db := newTestDB(t)
	d := newDispatcher(db, &fakeMailer{}, smtpOK, time.Now())
	_, err := d.Send(context.Background(), 42)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSendGageNotFound(t *testing.T) {
	db := newTestDB(t)
	rec := models.CalibrationRecord{GageID: 999, CalibratedBy: 1}
	require.NoError(t, db.Create(&rec).Error)
	d := newDispatcher(db, &fakeMailer{}, smtpOK, time.Now())
	_, err := d.Send(context.Background(), rec.CalibrationID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSendNoEmailOnFile(t *testing.T) {
	db := newTestDB(t)
	rec := seedCalibration(t, db)
	require.NoError(t, db.Model(&models.CalibrationRecord{}).
		Where("calibration_id = ?", rec.CalibrationID).
		Update("calibrated_by", 777).Error)

	mailer := &fakeMailer{}
	d := newDispatcher(db, mailer, smtpOK, time.Now())
	_, err := d.Send(context.Background(), rec.CalibrationID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, mailer.sent)

	var got models.CalibrationRecord
	require.NoError(t, db.First(&got, "calibration_id = ?", rec.CalibrationID).Error)
	assert.False(t, got.NotificationSent)
}

func TestSendIncompleteMailConfig(t *testing.T) {
	db := newTestDB(t)
	rec := seedCalibration(t, db)
	mailer := &fakeMailer{}
	incomplete := smtpOK
	incomplete.Password = ""
	d := newDispatcher(db, mailer, incomplete, time.Now())

	_, err := d.Send(context.Background(), rec.CalibrationID)
	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
	assert.Empty(t, mailer.sent)

	var got models.CalibrationRecord
	require.NoError(t, db.First(&got, "calibration_id = ?", rec.CalibrationID).Error)
	assert.False(t, got.NotificationSent)
	assert.Equal(t, StateUnsent, StateOf(got))
}

func TestSendTransportFailureLeavesStateUntouched(t *testing.T) {
	db := newTestDB(t)
	rec := seedCalibration(t, db)
	d := newDispatcher(db, &fakeMailer{err: errors.New("connection refused")}, smtpOK, time.Now())

	sent, err := d.Send(context.Background(), rec.CalibrationID)
	require.NoError(t, err)
	assert.False(t, sent)

	var got models.CalibrationRecord
	require.NoError(t, db.First(&got, "calibration_id = ?", rec.CalibrationID).Error)
	assert.False(t, got.NotificationSent)
	assert.Nil(t, got.NotificationSentDate)
}

func TestSendAuthFailureReportsDispatchFailure(t *testing.T) {
	db := newTestDB(t)
	rec := seedCalibration(t, db)
	authErr := fmt.Errorf("%w: 535 bad credentials", mail.ErrAuth)
	d := newDispatcher(db, &fakeMailer{err: authErr}, smtpOK, time.Now())

	sent, err := d.Send(context.Background(), rec.CalibrationID)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestMarkReadRejectsUnsent(t *testing.T) {
	db := newTestDB(t)
	rec := seedCalibration(t, db)
	d := newDispatcher(db, &fakeMailer{}, smtpOK, time.Now())

	_, err := d.MarkRead(context.Background(), rec.CalibrationID)
	assert.True(t, apperr.IsConflict(err))

	var got models.CalibrationRecord
	require.NoError(t, db.First(&got, "calibration_id = ?", rec.CalibrationID).Error)
	assert.False(t, got.NotificationRead)
	assert.Equal(t, StateUnsent, StateOf(got))
}

func TestMarkReadAfterSend(t *testing.T) {
	db := newTestDB(t)
	rec := seedCalibration(t, db)
	now := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	d := newDispatcher(db, &fakeMailer{}, smtpOK, now)

	sent, err := d.Send(context.Background(), rec.CalibrationID)
	require.NoError(t, err)
	require.True(t, sent)

	got, err := d.MarkRead(context.Background(), rec.CalibrationID)
	require.NoError(t, err)
	assert.True(t, got.NotificationRead)
	require.NotNil(t, got.NotificationReadDate)

	// read implies sent after any correct send/markRead sequence
	var stored models.CalibrationRecord
	require.NoError(t, db.First(&stored, "calibration_id = ?", rec.CalibrationID).Error)
	assert.True(t, !stored.NotificationRead || stored.NotificationSent)
	assert.Equal(t, StateRead, StateOf(stored))
}

func TestMarkReadNotFound(t *testing.T) {
	db := newTestDB(t)
	d := newDispatcher(db, &fakeMailer{}, smtpOK, time.Now())
	_, err := d.MarkRead(context.Background(), 42)
	assert.True(t, apperr.IsNotFound(err))
}

func TestInboxOrdersBySentDateDesc(t *testing.T) {
	db := newTestDB(t)
	user := models.User{Username: "inbox", Email: "inbox@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	gage := models.Gage{Name: "Caliper", SerialNumber: "SN-777"}
	require.NoError(t, db.Create(&gage).Error)

	mk := func(sent bool, at time.Time) models.CalibrationRecord {
		rec := models.CalibrationRecord{GageID: gage.GageID, CalibratedBy: user.ID}
		require.NoError(t, db.Create(&rec).Error)
		if sent {
			require.NoError(t, db.Model(&models.CalibrationRecord{}).
				Where("calibration_id = ?", rec.CalibrationID).
				Updates(map[string]any{"notification_sent": true, "notification_sent_date": &at}).Error)
		}
		return rec
	}
	older := mk(true, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := mk(true, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	mk(false, time.Time{})

	d := newDispatcher(db, &fakeMailer{}, smtpOK, time.Now())
	recs, err := d.Inbox(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, newer.CalibrationID, recs[0].CalibrationID)
	assert.Equal(t, older.CalibrationID, recs[1].CalibrationID)
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, StateUnsent, StateOf(models.CalibrationRecord{}))
	assert.Equal(t, StateSent, StateOf(models.CalibrationRecord{NotificationSent: true}))
	assert.Equal(t, StateRead, StateOf(models.CalibrationRecord{NotificationSent: true, NotificationRead: true}))
	// the invalid flag pair never comes out of the dispatcher; it degrades to UNSENT
	assert.Equal(t, StateUnsent, StateOf(models.CalibrationRecord{NotificationRead: true}))
}
