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

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"` // optional; default "user"
}

func Register(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Username == "" || req.Email == "" || req.Password == "" {
			http.Error(w, "username, email and password required", http.StatusBadRequest)
			return
		}
		if len(req.Password) < 8 {
			http.Error(w, "password must be at least 8 characters long", http.StatusBadRequest)
			return
		}
		if req.Role == "" {
			req.Role = auth.RoleUser
		}
		var count int64
		db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
		if count > 0 {
			http.Error(w, "username already registered", http.StatusConflict)
			return
		}
		db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
		if count > 0 {
			http.Error(w, "email already registered", http.StatusConflict)
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			http.Error(w, "hash error", http.StatusInternalServerError)
			return
		}
		u := models.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         req.Role,
			CreatedAt:    time.Now(),
		}
		if err := db.Create(&u).Error; err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondJSON(w, u)
	}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func Login(db *gorm.DB, signer *auth.Signer, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var u models.User
		if err := db.First(&u, "username = ?", req.Username).Error; err != nil {
			http.Error(w, "incorrect username or password", http.StatusUnauthorized)
			return
		}
		if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
			http.Error(w, "incorrect username or password", http.StatusUnauthorized)
			return
		}
		now := time.Now()
		u.LastLogin = &now
		_ = db.Model(&u).Update("last_login", &now).Error

		tok, jti, err := signer.Sign(u.ID, u.Role)
		if err != nil {
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}
		sess := models.Session{
			JTI:       jti,
			UserID:    u.ID,
			ExpiresAt: now.Add(signer.TTL()),
			CreatedAt: now,
		}
		if err := db.Create(&sess).Error; err != nil {
			http.Error(w, "session error", http.StatusInternalServerError)
			return
		}
		lg.Infow("login", "user_id", u.ID, "username", u.Username)
		respondJSON(w, map[string]any{
			"access_token": tok,
			"token_type":   "bearer",
			"user":         u,
		})
	}
}

func Me(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u models.User
		if err := db.First(&u, "id = ?", auth.UserID(r.Context())).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		respondJSON(w, u)
	}
}

func Logout(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jti := auth.FromContext(r.Context()).JWTID
		now := time.Now()
		_ = db.Model(&models.Session{}).Where("jti = ?", jti).Update("revoked_at", &now).Error
		respondJSON(w, map[string]any{"logged_out": true})
	}
}
