package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dealdesk/internal/contracts"
	"dealdesk/internal/models"
	"dealdesk/internal/notify"
)

// stubStore serves a single contract by token; everything else 404s. Enough
// surface for the public routes.
type stubStore struct {
	contract *models.Contract
	sigs     []models.Signature
	viewed   bool
}

func (s *stubStore) CreateContract(context.Context, *models.Contract) error { return nil }

func (s *stubStore) ContractByID(_ context.Context, ownerID string, id uint) (*models.Contract, error) {
	if s.contract != nil && s.contract.ID == id && s.contract.UserID == ownerID {
		cp := *s.contract
		return &cp, nil
	}
	return nil, contracts.ErrNotFound
}

func (s *stubStore) ContractByToken(_ context.Context, tok string) (*models.Contract, error) {
	if s.contract != nil && s.contract.AccessToken == tok {
		cp := *s.contract
		return &cp, nil
	}
	return nil, contracts.ErrNotFound
}

func (s *stubStore) ListContracts(_ context.Context, ownerID string, _ contracts.ContractFilter) ([]models.Contract, error) {
	if s.contract != nil && s.contract.UserID == ownerID {
		return []models.Contract{*s.contract}, nil
	}
	return nil, nil
}

func (s *stubStore) UpdateDraft(context.Context, string, uint, contracts.DraftPatch) (*models.Contract, error) {
	return nil, contracts.ErrNotFound
}

func (s *stubStore) MarkSent(context.Context, string, uint, time.Time) (*models.Contract, error) {
	return nil, contracts.ErrNotFound
}

func (s *stubStore) MarkViewed(_ context.Context, id uint, _ time.Time) error {
	if s.contract == nil || s.contract.ID != id {
		return contracts.ErrNotFound
	}
	if s.contract.Status == models.StatusSent {
		s.contract.Status = models.StatusViewed
		s.viewed = true
	}
	return nil
}

func (s *stubStore) SignClient(_ context.Context, id uint, sig *models.Signature, at time.Time) error {
	if s.contract == nil || s.contract.ID != id {
		return contracts.ErrNotFound
	}
	if s.contract.ClientSignedAt != nil {
		return contracts.ErrAlreadySigned
	}
	s.contract.ClientSignedAt = &at
	s.contract.Status = models.StatusSigned
	s.sigs = append(s.sigs, *sig)
	return nil
}

func (s *stubStore) SignProvider(context.Context, string, uint, *models.Signature, time.Time) error {
	return contracts.ErrNotFound
}

func (s *stubStore) Revoke(context.Context, string, uint, time.Time) error {
	return contracts.ErrNotFound
}

func (s *stubStore) SignaturesByContract(context.Context, uint) ([]models.Signature, error) {
	return s.sigs, nil
}

func (s *stubStore) TemplateByID(context.Context, string, uint) (*models.ContractTemplate, error) {
	return nil, contracts.ErrNotFound
}

func (s *stubStore) DefaultTemplate(context.Context, string) (*models.ContractTemplate, error) {
	return nil, contracts.ErrNotFound
}

func (s *stubStore) ProposalByID(context.Context, string, uint) (*models.Proposal, error) {
	return nil, contracts.ErrNotFound
}

func (s *stubStore) CreateInvoice(context.Context, *models.Invoice) error { return nil }

func (s *stubStore) InvoiceByContract(context.Context, string, uint) (*models.Invoice, error) {
	return nil, contracts.ErrNotFound
}

func (s *stubStore) AppendEvent(context.Context, *models.ContractEvent) error { return nil }

const testToken = "sQ3vR8xK1mP5nW9yB2cF6hJ0dL4gT7aZ-UqEiOuMsNw"

func publicRouter(st *stubStore) http.Handler {
	lg := zap.NewNop().Sugar()
	svc := contracts.NewService(st, notify.Nop{}, nil, lg, "http://app.local")
	r := chi.NewRouter()
	r.Get("/v1/public/contracts/{token}", ViewPublicContract(svc, lg))
	r.Post("/v1/public/contracts/{token}/sign", SignPublicContract(svc, lg))
	return r
}

func sentContract() *models.Contract {
	at := time.Now().Add(-time.Hour)
	return &models.Contract{
		ID:          7,
		UserID:      testOwner,
		ClientName:  "Jane Roe",
		Title:       "Retainer",
		AccessToken: testToken,
		Status:      models.StatusSent,
		SentAt:      &at,
	}
}

func TestViewPublicContract(t *testing.T) {
	st := &stubStore{contract: sentContract()}
	srv := publicRouter(st)

	req := httptest.NewRequest(http.MethodGet, "/v1/public/contracts/"+testToken, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"status":"viewed"`)
	assert.Contains(t, body, "Jane Roe")
	assert.NotContains(t, body, testToken)
	assert.NotContains(t, body, st.contract.UserID)
	assert.True(t, st.viewed)
}

func TestViewPublicContractUnknownToken(t *testing.T) {
	srv := publicRouter(&stubStore{contract: sentContract()})

	req := httptest.NewRequest(http.MethodGet, "/v1/public/contracts/bogus", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViewPublicContractRevoked(t *testing.T) {
	c := sentContract()
	now := time.Now()
	c.RevokedAt = &now
	srv := publicRouter(&stubStore{contract: c})

	req := httptest.NewRequest(http.MethodGet, "/v1/public/contracts/"+testToken, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestSignPublicContract(t *testing.T) {
	st := &stubStore{contract: sentContract()}
	srv := publicRouter(st)

	body := `{"signer_name":"Jane Roe","image_data":"data:image/png;base64,AAAA"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/public/contracts/"+testToken+"/sign", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"signed"`)
	require.Len(t, st.sigs, 1)
	assert.Equal(t, models.SignerClient, st.sigs[0].SignerType)
}

func TestSignPublicContractTwice(t *testing.T) {
	st := &stubStore{contract: sentContract()}
	srv := publicRouter(st)

	body := `{"signer_name":"Jane Roe","image_data":"data:image/png;base64,AAAA"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/public/contracts/"+testToken+"/sign", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/public/contracts/"+testToken+"/sign", strings.NewReader(body))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, st.sigs, 1)
}

func TestSignPublicContractValidation(t *testing.T) {
	srv := publicRouter(&stubStore{contract: sentContract()})

	req := httptest.NewRequest(http.MethodPost, "/v1/public/contracts/"+testToken+"/sign", strings.NewReader(`{"signer_name":""}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/public/contracts/"+testToken+"/sign", strings.NewReader(`{not json`))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
