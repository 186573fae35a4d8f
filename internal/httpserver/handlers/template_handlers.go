package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dealdesk/internal/auth"
	"dealdesk/internal/models"
	"dealdesk/internal/template"
)

func CreateTemplate(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name      string `json:"name"`
			Content   string `json:"content"`
			IsDefault bool   `json:"is_default"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		uid := auth.Subject(r.Context())
		t := models.ContractTemplate{
			UserID:    uid,
			Name:      strings.TrimSpace(req.Name),
			Content:   req.Content,
			IsDefault: req.IsDefault,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		// At most one tenant-wide default: demoting the previous one happens
		// in the same transaction as the insert.
		err := db.Transaction(func(tx *gorm.DB) error {
			if t.IsDefault {
				if err := tx.Model(&models.ContractTemplate{}).
					Where("user_id = ? AND is_default = TRUE", uid).
					Update("is_default", false).Error; err != nil {
					return err
				}
			}
			return tx.Create(&t).Error
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		respondJSON(w, t)
	}
}

func ListTemplates(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ts []models.ContractTemplate
		_ = db.Where("user_id = ?", auth.Subject(r.Context())).Order("created_at desc").Find(&ts).Error
		if ts == nil {
			ts = make([]models.ContractTemplate, 0)
		}
		respondJSON(w, ts)
	}
}

// GetTemplate also reports the placeholder keys found in the content, which
// the editor UI uses for its variable picker.
func GetTemplate(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t models.ContractTemplate
		if err := db.First(&t, "id = ? AND user_id = ?", chi.URLParam(r, "id"), auth.Subject(r.Context())).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		respondJSON(w, map[string]any{"template": t, "placeholders": template.Keys(t.Content)})
	}
}

func UpdateTemplate(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := auth.Subject(r.Context())
		var t models.ContractTemplate
		if err := db.First(&t, "id = ? AND user_id = ?", chi.URLParam(r, "id"), uid).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		var req struct {
			Name      *string `json:"name"`
			Content   *string `json:"content"`
			IsDefault *bool   `json:"is_default"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Name != nil {
			t.Name = strings.TrimSpace(*req.Name)
		}
		if req.Content != nil {
			t.Content = *req.Content
		}
		if req.IsDefault != nil {
			t.IsDefault = *req.IsDefault
		}
		t.UpdatedAt = time.Now()
		err := db.Transaction(func(tx *gorm.DB) error {
			if t.IsDefault {
				if err := tx.Model(&models.ContractTemplate{}).
					Where("user_id = ? AND is_default = TRUE AND id <> ?", uid, t.ID).
					Update("is_default", false).Error; err != nil {
					return err
				}
			}
			return tx.Save(&t).Error
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, t)
	}
}

func DeleteTemplate(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := db.Where("id = ? AND user_id = ?", chi.URLParam(r, "id"), auth.Subject(r.Context())).
			Delete(&models.ContractTemplate{})
		if res.Error != nil {
			http.Error(w, res.Error.Error(), http.StatusInternalServerError)
			return
		}
		if res.RowsAffected == 0 {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		respondJSON(w, map[string]any{"deleted": true})
	}
}
