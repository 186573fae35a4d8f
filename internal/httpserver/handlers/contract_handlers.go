package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dealdesk/internal/auth"
	"dealdesk/internal/contracts"
	"dealdesk/internal/models"
)

func contractID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// ownerContract is the owner-scoped serialization: the raw contract plus the
// ready-to-share signing link.
type ownerContract struct {
	*models.Contract
	SignURL string `json:"sign_url"`
}

func ownerPayload(svc *contracts.Service, c *models.Contract) ownerContract {
	return ownerContract{Contract: c, SignURL: svc.SignURL(c.AccessToken)}
}

func CreateContract(svc *contracts.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in contracts.CreateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c, err := svc.Create(r.Context(), auth.Subject(r.Context()), in)
		if err != nil {
			respondErr(w, err)
			return
		}
		lg.Infow("contract created", "contract_id", c.ID)
		w.WriteHeader(http.StatusCreated)
		respondJSON(w, ownerPayload(svc, c))
	}
}

func GenerateContract(svc *contracts.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProposalID uint  `json:"proposal_id"`
			TemplateID *uint `json:"template_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.ProposalID == 0 {
			http.Error(w, "proposal_id required", http.StatusBadRequest)
			return
		}
		c, err := svc.GenerateFromProposal(r.Context(), auth.Subject(r.Context()), req.ProposalID, req.TemplateID)
		if err != nil {
			respondErr(w, err)
			return
		}
		lg.Infow("contract generated", "contract_id", c.ID, "proposal_id", req.ProposalID)
		w.WriteHeader(http.StatusCreated)
		respondJSON(w, ownerPayload(svc, c))
	}
}

func ListContracts(svc *contracts.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := contracts.ContractFilter{
			Status: r.URL.Query().Get("status"),
			Search: r.URL.Query().Get("search"),
		}
		cs, err := svc.List(r.Context(), auth.Subject(r.Context()), f)
		if err != nil {
			respondErr(w, err)
			return
		}
		out := make([]ownerContract, 0, len(cs))
		for i := range cs {
			out = append(out, ownerPayload(svc, &cs[i]))
		}
		respondJSON(w, out)
	}
}

func GetContract(svc *contracts.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := contractID(r)
		if !ok {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		c, err := svc.Get(r.Context(), auth.Subject(r.Context()), id)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, ownerPayload(svc, c))
	}
}

// UpdateContract accepts only the draft-mutable fields. Unknown keys are a
// 400, so nothing can smuggle a write to the token or signing timestamps.
func UpdateContract(svc *contracts.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := contractID(r)
		if !ok {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		var req struct {
			Title         *string                      `json:"title"`
			Content       *string                      `json:"content"`
			ClientName    *string                      `json:"client_name"`
			ClientCompany *string                      `json:"client_company"`
			ClientEmail   *string                      `json:"client_email"`
			ClientAddress *string                      `json:"client_address"`
			Term          *string                      `json:"term"`
			TotalValue    *float64                     `json:"total_value"`
			ExpiresAt     *time.Time                   `json:"expires_at"`
			Deliverables  *[]contracts.DeliverableInput `json:"deliverables"`
		}
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		patch := contracts.DraftPatch{
			Title:         req.Title,
			Content:       req.Content,
			ClientName:    req.ClientName,
			ClientCompany: req.ClientCompany,
			ClientEmail:   req.ClientEmail,
			ClientAddress: req.ClientAddress,
			Term:          req.Term,
			TotalValue:    req.TotalValue,
			ExpiresAt:     req.ExpiresAt,
		}
		if req.Deliverables != nil {
			dels := make([]models.Deliverable, 0, len(*req.Deliverables))
			for i, d := range *req.Deliverables {
				pt := d.PriceType
				if pt == "" {
					pt = models.PriceOneTime
				}
				dels = append(dels, models.Deliverable{
					Position:    i,
					Name:        d.Name,
					Description: d.Description,
					Price:       d.Price,
					PriceType:   pt,
				})
			}
			patch.Deliverables = &dels
		}
		c, err := svc.UpdateDraft(r.Context(), auth.Subject(r.Context()), id, patch)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, ownerPayload(svc, c))
	}
}

func SendContract(svc *contracts.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := contractID(r)
		if !ok {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		c, err := svc.Send(r.Context(), auth.Subject(r.Context()), id)
		if err != nil {
			respondErr(w, err)
			return
		}
		lg.Infow("contract sent", "contract_id", id)
		respondJSON(w, ownerPayload(svc, c))
	}
}

func CounterSignContract(svc *contracts.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := contractID(r)
		if !ok {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		var req struct {
			SignerName string `json:"signer_name"`
			ImageData  string `json:"image_data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c, err := svc.CounterSign(r.Context(), auth.Subject(r.Context()), id, req.SignerName, req.ImageData)
		if err != nil {
			respondErr(w, err)
			return
		}
		lg.Infow("contract countersigned", "contract_id", id)
		respondJSON(w, ownerPayload(svc, c))
	}
}

func RevokeContract(svc *contracts.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := contractID(r)
		if !ok {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		if err := svc.Revoke(r.Context(), auth.Subject(r.Context()), id); err != nil {
			respondErr(w, err)
			return
		}
		lg.Infow("contract revoked", "contract_id", id)
		respondJSON(w, map[string]any{"revoked": true})
	}
}

func DownloadContractPDF(svc *contracts.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := contractID(r)
		if !ok {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		data, err := svc.RenderPDF(r.Context(), auth.Subject(r.Context()), id)
		if err != nil {
			respondErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="contract-`+strconv.FormatUint(uint64(id), 10)+`.pdf"`)
		_, _ = w.Write(data)
	}
}

func DeriveInvoice(svc *contracts.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := contractID(r)
		if !ok {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		inv, err := svc.DeriveInvoice(r.Context(), auth.Subject(r.Context()), id)
		if err != nil {
			respondErr(w, err)
			return
		}
		lg.Infow("invoice derived", "contract_id", id, "invoice_id", inv.ID)
		w.WriteHeader(http.StatusCreated)
		respondJSON(w, inv)
	}
}
