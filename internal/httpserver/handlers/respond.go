package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"dealdesk/internal/contracts"
)

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// respondErr maps the workflow error taxonomy onto HTTP statuses. The public
// UI tells "link expired" from "already signed" from "not found" by status,
// so the distinctions must survive the trip.
func respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contracts.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, contracts.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, contracts.ErrExpired):
		http.Error(w, "link expired", http.StatusGone)
	case errors.Is(err, contracts.ErrRevoked):
		http.Error(w, "link revoked", http.StatusGone)
	case errors.Is(err, contracts.ErrAlreadySigned):
		http.Error(w, "already signed", http.StatusConflict)
	case errors.Is(err, contracts.ErrClientNotYetSigned):
		http.Error(w, "client has not signed yet", http.StatusConflict)
	case errors.Is(err, contracts.ErrNotDraft):
		http.Error(w, "contract is no longer a draft", http.StatusConflict)
	case errors.Is(err, contracts.ErrNotCompleted):
		http.Error(w, "contract is not completed", http.StatusConflict)
	case errors.Is(err, contracts.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, contracts.ErrRenderFailed):
		http.Error(w, "document render failed", http.StatusBadGateway)
	case errors.Is(err, contracts.ErrStorageUnavailable):
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
