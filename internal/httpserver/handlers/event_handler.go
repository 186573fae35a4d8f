package handlers

import (
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dealdesk/internal/auth"
	"dealdesk/internal/models"
)

// MyEvents returns the owner's recent contract lifecycle events, optionally
// narrowed to one contract via ?contract_id=.
func MyEvents(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := db.Where("user_id = ?", auth.Subject(r.Context()))
		if cid := r.URL.Query().Get("contract_id"); cid != "" {
			q = q.Where("contract_id = ?", cid)
		}
		var events []models.ContractEvent
		_ = q.Order("created_at desc").Limit(200).Find(&events).Error
		if events == nil {
			events = make([]models.ContractEvent, 0)
		}
		respondJSON(w, events)
	}
}
