package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gagetrack/internal/auth"
	"gagetrack/internal/models"
)

// Admin-only user directory management. The notification dispatcher resolves
// performer emails from this table.

func ListUsers(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users := []models.User{}
		_ = db.Order("id").Find(&users).Error
		respondJSON(w, users)
	}
}

func UpdateUser(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			respondError(w, err)
			return
		}
		var req struct {
			Email    *string `json:"email"`
			Role     *string `json:"role"`
			Password *string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var u models.User
		if err := db.First(&u, "id = ?", id).Error; err != nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if req.Email != nil {
			u.Email = strings.TrimSpace(strings.ToLower(*req.Email))
		}
		if req.Role != nil {
			if *req.Role != auth.RoleAdmin && *req.Role != auth.RoleUser {
				http.Error(w, "role must be admin or user", http.StatusBadRequest)
				return
			}
			u.Role = *req.Role
		}
		if req.Password != nil && *req.Password != "" {
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				http.Error(w, "hash error", http.StatusInternalServerError)
				return
			}
			u.PasswordHash = hash
		}
		if err := db.Save(&u).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, u)
	}
}

func DeleteUser(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			respondError(w, err)
			return
		}
		res := db.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			http.Error(w, res.Error.Error(), http.StatusInternalServerError)
			return
		}
		if res.RowsAffected == 0 {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		now := time.Now()
		_ = db.Model(&models.Session{}).Where("user_id = ?", id).Update("revoked_at", &now).Error
		respondJSON(w, map[string]any{"deleted": true})
	}
}
