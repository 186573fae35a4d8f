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
)

func CreateProposal(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title         string `json:"title"`
			ClientName    string `json:"client_name"`
			ClientCompany string `json:"client_company"`
			ClientEmail   string `json:"client_email"`
			ClientAddress string `json:"client_address"`
			Term          string `json:"term"`
			Items         []struct {
				Name        string  `json:"name"`
				Description string  `json:"description"`
				Price       float64 `json:"price"`
				PriceType   string  `json:"price_type"`
			} `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		p := models.Proposal{
			UserID:        auth.Subject(r.Context()),
			Title:         strings.TrimSpace(req.Title),
			ClientName:    req.ClientName,
			ClientCompany: req.ClientCompany,
			ClientEmail:   req.ClientEmail,
			ClientAddress: req.ClientAddress,
			Term:          req.Term,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		for i, it := range req.Items {
			pt := it.PriceType
			if pt == "" {
				pt = models.PriceOneTime
			}
			p.Items = append(p.Items, models.ProposalItem{
				Position:    i,
				Name:        it.Name,
				Description: it.Description,
				Price:       it.Price,
				PriceType:   pt,
			})
		}
		if err := db.Create(&p).Error; err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		respondJSON(w, p)
	}
}

func ListProposals(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ps []models.Proposal
		_ = db.Preload("Items").
			Where("user_id = ?", auth.Subject(r.Context())).
			Order("created_at desc").Find(&ps).Error
		if ps == nil {
			ps = make([]models.Proposal, 0)
		}
		respondJSON(w, ps)
	}
}

func GetProposal(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p models.Proposal
		err := db.Preload("Items").
			First(&p, "id = ? AND user_id = ?", chi.URLParam(r, "id"), auth.Subject(r.Context())).Error
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		respondJSON(w, p)
	}
}
