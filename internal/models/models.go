package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:128;not null" json:"-"`
	Role         string     `gorm:"size:20;not null;default:user" json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// Gage status is free text in the store; these two are the values the issue
// ledger writes.
const (
	GageStatusActive = "Active"
	GageStatusIssued = "Issued"
)

type Gage struct {
	GageID               uint       `gorm:"primaryKey;autoIncrement" json:"gage_id"`
	Name                 string     `gorm:"size:100" json:"name"`
	Description          string     `gorm:"type:text" json:"description"`
	SerialNumber         string     `gorm:"size:100;uniqueIndex" json:"serial_number"`
	ModelNumber          string     `gorm:"size:100" json:"model_number"`
	Manufacturer         string     `gorm:"size:100" json:"manufacturer"`
	PurchaseDate         *time.Time `gorm:"type:date" json:"purchase_date,omitempty"`
	Location             string     `gorm:"size:100" json:"location"`
	Status               string     `gorm:"size:50" json:"status"`
	CalibrationFrequency int        `json:"calibration_frequency"`
	LastCalibrationDate  *time.Time `gorm:"type:date" json:"last_calibration_date,omitempty"`
	NextCalibrationDue   *time.Time `gorm:"type:date" json:"next_calibration_due,omitempty"`
	GageType             string     `gorm:"size:50" json:"gage_type"`
	CalCategory          string     `gorm:"size:50" json:"cal_category"`
}

type CalibrationRecord struct {
	CalibrationID     uint       `gorm:"primaryKey;autoIncrement" json:"calibration_id"`
	GageID            uint       `gorm:"index;not null" json:"gage_id"`
	CalibrationDate   *time.Time `gorm:"type:date" json:"calibration_date,omitempty"`
	CalibratedBy      uint       `json:"calibrated_by"`
	CalibrationMethod string     `gorm:"type:text" json:"calibration_method"`
	CalibrationResult string     `gorm:"size:100" json:"calibration_result"`
	DeviationRecorded string     `gorm:"type:text" json:"deviation_recorded"`
	AdjustmentsMade   bool       `json:"adjustments_made"`
	CertificateNumber string     `gorm:"size:100" json:"certificate_number"`
	NextDueDate       *time.Time `gorm:"type:date" json:"next_due_date,omitempty"`
	Comments          string     `gorm:"type:text" json:"comments"`
	DocumentPath      string     `gorm:"type:text" json:"calibration_document_path"`

	// Notification sub-state. read=true implies sent=true; sent_date is set on
	// each successful dispatch and never cleared.
	NotificationSent     bool       `gorm:"not null;default:false" json:"notification_sent"`
	NotificationSentDate *time.Time `json:"notification_sent_date,omitempty"`
	NotificationRead     bool       `gorm:"not null;default:false" json:"notification_read"`
	NotificationReadDate *time.Time `json:"notification_read_date,omitempty"`
}

type CalibrationMeasurement struct {
	MeasurementID     uint             `gorm:"primaryKey;autoIncrement" json:"measurement_id"`
	CalibrationID     uint             `gorm:"index;not null" json:"calibration_id"`
	GageID            uint             `gorm:"index;not null" json:"gage_id"`
	FunctionPoint     string           `gorm:"size:50" json:"function_point"`
	NominalValue      decimal.Decimal  `gorm:"type:decimal(10,6)" json:"nominal_value"`
	TolerancePlus     decimal.Decimal  `gorm:"type:decimal(10,6)" json:"tolerance_plus"`
	ToleranceMinus    decimal.Decimal  `gorm:"type:decimal(10,6)" json:"tolerance_minus"`
	BeforeMeasurement decimal.Decimal  `gorm:"type:decimal(10,6)" json:"before_measurement"`
	AfterMeasurement  decimal.Decimal  `gorm:"type:decimal(10,6)" json:"after_measurement"`
	MasterGageID      *uint            `json:"master_gage_id,omitempty"`
	Temperature       *decimal.Decimal `gorm:"type:decimal(5,2)" json:"temperature,omitempty"`
	Humidity          *decimal.Decimal `gorm:"type:decimal(5,2)" json:"humidity,omitempty"`
}

// An IssueLog row with a nil ReturnDate is an open custody handoff.
type IssueLog struct {
	IssueID           uint       `gorm:"primaryKey;autoIncrement" json:"issue_id"`
	GageID            uint       `gorm:"index;not null" json:"gage_id"`
	IssueDate         *time.Time `json:"issue_date,omitempty"`
	IssuedFrom        string     `gorm:"size:100" json:"issued_from"`
	IssuedTo          string     `gorm:"size:100" json:"issued_to"`
	HandledBy         uint       `json:"handled_by"`
	ReturnDate        *time.Time `json:"return_date,omitempty"`
	ReturnedBy        *uint      `json:"returned_by,omitempty"`
	ConditionOnReturn string     `gorm:"type:text" json:"condition_on_return"`
}

type Label struct {
	ID                  uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	GageID              uint      `gorm:"index;not null" json:"gage_id"`
	CalibrationRecordID *uint     `gorm:"index" json:"calibration_record_id,omitempty"`
	TemplateUsed        string    `gorm:"index;not null" json:"template_used"`
	LabelSize           string    `gorm:"not null" json:"label_size"`
	LogoFilename        *string   `json:"logo_filename,omitempty"`
	GeneratedAt         time.Time `json:"generated_at"`
}

type LabelTemplate struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	GageID       uint      `gorm:"index;not null" json:"gage_id"`
	TemplateName string    `gorm:"size:100;not null" json:"template_name"`
	TemplateData JSONB     `gorm:"type:jsonb;not null" json:"template_data"`
	CreatedBy    uint      `gorm:"not null" json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Session struct {
	JTI       string     `gorm:"primaryKey;size:64" json:"jti"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
