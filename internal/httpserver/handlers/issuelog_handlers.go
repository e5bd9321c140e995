package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gagetrack/internal/models"
	"gagetrack/internal/services/issuance"
)

func CreateIssueLog(svc *issuance.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req issuance.CheckoutInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		row, err := svc.Checkout(r.Context(), req)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, row)
	}
}

func ListIssueLogs(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs := []models.IssueLog{}
		_ = db.Order("issue_id").Find(&logs).Error
		respondJSON(w, logs)
	}
}

func GetIssueLog(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "issue_id")
		if err != nil {
			respondError(w, err)
			return
		}
		var row models.IssueLog
		if err := db.First(&row, "issue_id = ?", id).Error; err != nil {
			http.Error(w, "issue log not found", http.StatusNotFound)
			return
		}
		respondJSON(w, row)
	}
}

func UpdateIssueLog(svc *issuance.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "issue_id")
		if err != nil {
			respondError(w, err)
			return
		}
		var req issuance.ReturnInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		row, err := svc.Return(r.Context(), id, req)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, row)
	}
}

func DeleteIssueLog(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "issue_id")
		if err != nil {
			respondError(w, err)
			return
		}
		res := db.Delete(&models.IssueLog{}, "issue_id = ?", id)
		if res.Error != nil {
			http.Error(w, res.Error.Error(), http.StatusInternalServerError)
			return
		}
		if res.RowsAffected == 0 {
			http.Error(w, "issue log not found", http.StatusNotFound)
			return
		}
		respondJSON(w, map[string]any{"deleted": true})
	}
}

// UserIssueActivity returns the gages a user currently holds and the ones they
// have returned, as two separate lists.
func UserIssueActivity(svc *issuance.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := urlID(r, "user_id")
		if err != nil {
			respondError(w, err)
			return
		}
		activity, err := svc.Activity(r.Context(), userID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, activity)
	}
}
