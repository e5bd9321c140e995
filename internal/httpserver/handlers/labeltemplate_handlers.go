package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gagetrack/internal/auth"
	"gagetrack/internal/models"
)

// Template writes are admin-only; the router wires RequireRole around these.

type labelTemplateReq struct {
	GageID       *uint         `json:"gage_id"`
	TemplateName *string       `json:"template_name"`
	TemplateData *models.JSONB `json:"template_data"`
}

func CreateLabelTemplate(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req labelTemplateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.GageID == nil || req.TemplateName == nil || req.TemplateData == nil {
			http.Error(w, "gage_id, template_name and template_data required", http.StatusBadRequest)
			return
		}
		t := models.LabelTemplate{
			GageID:       *req.GageID,
			TemplateName: *req.TemplateName,
			TemplateData: *req.TemplateData,
			CreatedBy:    auth.UserID(r.Context()),
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := db.Create(&t).Error; err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondJSON(w, t)
	}
}

func ListLabelTemplates(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := db.Model(&models.LabelTemplate{})
		if s := r.URL.Query().Get("gage_id"); s != "" {
			id, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				http.Error(w, "invalid gage_id", http.StatusBadRequest)
				return
			}
			q = q.Where("gage_id = ?", id)
		}
		templates := []models.LabelTemplate{}
		if err := q.Order("id").Find(&templates).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, templates)
	}
}

func GetLabelTemplate(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "template_id")
		if err != nil {
			respondError(w, err)
			return
		}
		var t models.LabelTemplate
		if err := db.First(&t, "id = ?", id).Error; err != nil {
			http.Error(w, "label template not found", http.StatusNotFound)
			return
		}
		respondJSON(w, t)
	}
}

func UpdateLabelTemplate(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "template_id")
		if err != nil {
			respondError(w, err)
			return
		}
		var req labelTemplateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var t models.LabelTemplate
		if err := db.First(&t, "id = ?", id).Error; err != nil {
			http.Error(w, "label template not found", http.StatusNotFound)
			return
		}
		if req.TemplateName != nil {
			t.TemplateName = *req.TemplateName
		}
		if req.TemplateData != nil {
			t.TemplateData = *req.TemplateData
		}
		t.UpdatedAt = time.Now()
		if err := db.Save(&t).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, t)
	}
}

func DeleteLabelTemplate(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "template_id")
		if err != nil {
			respondError(w, err)
			return
		}
		res := db.Delete(&models.LabelTemplate{}, "id = ?", id)
		if res.Error != nil {
			http.Error(w, res.Error.Error(), http.StatusInternalServerError)
			return
		}
		if res.RowsAffected == 0 {
			http.Error(w, "label template not found", http.StatusNotFound)
			return
		}
		respondJSON(w, map[string]any{"deleted": true})
	}
}
