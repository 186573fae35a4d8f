package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dealdesk/internal/contracts"
)

// ViewPublicContract is the unauthenticated read side of the share link.
// The token in the path is the whole credential; the response never echoes
// it back.
func ViewPublicContract(svc *contracts.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.ViewByToken(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, view)
	}
}

// SignPublicContract is the one guarded write the token authorizes.
func SignPublicContract(svc *contracts.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SignerName  string `json:"signer_name"`
			SignerEmail string `json:"signer_email"`
			ImageData   string `json:"image_data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		view, err := svc.SignByToken(r.Context(), chi.URLParam(r, "token"), contracts.SignInput{
			SignerName:  req.SignerName,
			SignerEmail: req.SignerEmail,
			ImageData:   req.ImageData,
			RemoteAddr:  r.RemoteAddr,
			UserAgent:   r.UserAgent(),
		})
		if err != nil {
			respondErr(w, err)
			return
		}
		lg.Infow("contract signed by client", "signer_name", req.SignerName)
		respondJSON(w, view)
	}
}
