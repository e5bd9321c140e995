// Package issuance owns custody transitions: checking a gage out flips its
// status to "Issued", recording a return date flips it back to "Active". Both
// writes happen in one transaction with the issue row.
package issuance

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"gagetrack/internal/apperr"
	"gagetrack/internal/models"
)

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

type CheckoutInput struct {
	GageID     uint       `json:"gage_id"`
	IssueDate  *time.Time `json:"issue_date"`
	IssuedFrom string     `json:"issued_from"`
	IssuedTo   string     `json:"issued_to"`
	HandledBy  uint       `json:"handled_by"`
}

// Checkout opens an issue row and marks the gage "Issued". A gage that is
// already issued can be checked out again; the business rule for rejecting
// that was never settled, so the permissive behavior stands.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (models.IssueLog, error) {
	var row models.IssueLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var gage models.Gage
		if err := tx.First(&gage, "gage_id = ?", in.GageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("gage %d not found", in.GageID)
			}
			return apperr.Server(err, "load gage")
		}
		issueDate := in.IssueDate
		if issueDate == nil {
			t := s.now()
			issueDate = &t
		}
		row = models.IssueLog{
			GageID:     in.GageID,
			IssueDate:  issueDate,
			IssuedFrom: in.IssuedFrom,
			IssuedTo:   in.IssuedTo,
			HandledBy:  in.HandledBy,
		}
		if err := tx.Create(&row).Error; err != nil {
			return apperr.Server(err, "create issue log")
		}
		if err := tx.Model(&models.Gage{}).
			Where("gage_id = ?", in.GageID).
			Update("status", models.GageStatusIssued).Error; err != nil {
			return apperr.Server(err, "update gage status")
		}
		return nil
	})
	return row, err
}

type ReturnInput struct {
	IssuedFrom        *string    `json:"issued_from"`
	IssuedTo          *string    `json:"issued_to"`
	ReturnDate        *time.Time `json:"return_date"`
	ReturnedBy        *uint      `json:"returned_by"`
	ConditionOnReturn *string    `json:"condition_on_return"`
}

// Return applies a partial update to an issue row. If and only if a return
// date is supplied, the owning gage goes back to "Active" — without checking
// for other open rows on the same gage.
func (s *Service) Return(ctx context.Context, issueID uint, in ReturnInput) (models.IssueLog, error) {
	var row models.IssueLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, "issue_id = ?", issueID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("issue log %d not found", issueID)
			}
			return apperr.Server(err, "load issue log")
		}
		if in.IssuedFrom != nil {
			row.IssuedFrom = *in.IssuedFrom
		}
		if in.IssuedTo != nil {
			row.IssuedTo = *in.IssuedTo
		}
		if in.ReturnDate != nil {
			row.ReturnDate = in.ReturnDate
		}
		if in.ReturnedBy != nil {
			row.ReturnedBy = in.ReturnedBy
		}
		if in.ConditionOnReturn != nil {
			row.ConditionOnReturn = *in.ConditionOnReturn
		}
		if err := tx.Save(&row).Error; err != nil {
			return apperr.Server(err, "update issue log")
		}
		if in.ReturnDate != nil {
			if err := tx.Model(&models.Gage{}).
				Where("gage_id = ?", row.GageID).
				Update("status", models.GageStatusActive).Error; err != nil {
				return apperr.Server(err, "update gage status")
			}
		}
		return nil
	})
	return row, err
}

type UserActivity struct {
	Handled  []models.IssueLog `json:"handled_gages"`
	Returned []models.IssueLog `json:"returned_gages"`
}

// Activity returns the rows a user currently holds open and the rows they
// have ever returned. The two lists are independent of each other.
func (s *Service) Activity(ctx context.Context, userID uint) (UserActivity, error) {
	out := UserActivity{Handled: []models.IssueLog{}, Returned: []models.IssueLog{}}
	if err := s.db.WithContext(ctx).
		Where("handled_by = ? AND return_date IS NULL", userID).
		Find(&out.Handled).Error; err != nil {
		return out, apperr.Server(err, "list handled gages")
	}
	if err := s.db.WithContext(ctx).
		Where("returned_by = ?", userID).
		Find(&out.Returned).Error; err != nil {
		return out, apperr.Server(err, "list returned gages")
	}
	return out, nil
}
