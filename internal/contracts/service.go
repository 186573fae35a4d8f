package contracts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dealdesk/internal/models"
	"dealdesk/internal/notify"
	"dealdesk/internal/template"
	"dealdesk/internal/token"
)

// PDFRenderer materializes committed contract state into a paginated
// document. It must not mutate anything.
type PDFRenderer interface {
	Render(ctx context.Context, c *models.Contract, sigs []models.Signature) ([]byte, error)
}

// Service owns the contract lifecycle. All persistence goes through the
// injected Store; the service itself is stateless and safe for concurrent
// use across processes.
type Service struct {
	store     Store
	notifier  notify.Sender
	pdf       PDFRenderer
	lg        *zap.SugaredLogger
	publicURL string
	now       func() time.Time
}

func NewService(store Store, notifier notify.Sender, pdf PDFRenderer, lg *zap.SugaredLogger, publicURL string) *Service {
	return &Service{
		store:     store,
		notifier:  notifier,
		pdf:       pdf,
		lg:        lg,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

type DeliverableInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	PriceType   string  `json:"price_type"`
}

type CreateInput struct {
	ClientName    string             `json:"client_name"`
	ClientCompany string             `json:"client_company"`
	ClientEmail   string             `json:"client_email"`
	ClientAddress string             `json:"client_address"`
	Title         string             `json:"title"`
	Content       string             `json:"content"`
	Term          string             `json:"term"`
	TotalValue    float64            `json:"total_value"`
	ExpiresAt     *time.Time         `json:"expires_at"`
	Deliverables  []DeliverableInput `json:"deliverables"`
}

// SignInput carries what the public sign endpoint captured.
type SignInput struct {
	SignerName  string
	SignerEmail string
	ImageData   string
	RemoteAddr  string
	UserAgent   string
}

func buildDeliverables(items []DeliverableInput) ([]models.Deliverable, error) {
	out := make([]models.Deliverable, 0, len(items))
	for i, d := range items {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: deliverable %d: name required", ErrValidation, i)
		}
		pt := d.PriceType
		if pt == "" {
			pt = models.PriceOneTime
		}
		if pt != models.PriceMonthly && pt != models.PriceOneTime {
			return nil, fmt.Errorf("%w: deliverable %d: unknown price type %q", ErrValidation, i, d.PriceType)
		}
		out = append(out, models.Deliverable{
			Position:    i,
			Name:        name,
			Description: d.Description,
			Price:       d.Price,
			PriceType:   pt,
		})
	}
	return out, nil
}

// Create builds a draft contract for the owner. The access token is issued
// here, once, and never rotated afterwards.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*models.Contract, error) {
	if strings.TrimSpace(in.ClientName) == "" {
		return nil, fmt.Errorf("%w: client_name required", ErrValidation)
	}
	dels, err := buildDeliverables(in.Deliverables)
	if err != nil {
		return nil, err
	}
	tok, err := token.New()
	if err != nil {
		return nil, err
	}
	total := in.TotalValue
	if total == 0 {
		for _, d := range dels {
			total += d.Price
		}
	}
	c := &models.Contract{
		UserID:        ownerID,
		ClientName:    strings.TrimSpace(in.ClientName),
		ClientCompany: in.ClientCompany,
		ClientEmail:   strings.TrimSpace(in.ClientEmail),
		ClientAddress: in.ClientAddress,
		Title:         in.Title,
		Content:       in.Content,
		Term:          in.Term,
		TotalValue:    total,
		AccessToken:   tok,
		Status:        models.StatusDraft,
		ExpiresAt:     in.ExpiresAt,
		Deliverables:  dels,
	}
	if err := s.store.CreateContract(ctx, c); err != nil {
		return nil, err
	}
	s.event(ctx, ownerID, c.ID, "created", nil)
	return c, nil
}

// GenerateFromProposal renders a contract body out of a template and a
// proposal. The render is a one-time snapshot: later template edits never
// reach the contract.
func (s *Service) GenerateFromProposal(ctx context.Context, ownerID string, proposalID uint, templateID *uint) (*models.Contract, error) {
	p, err := s.store.ProposalByID(ctx, ownerID, proposalID)
	if err != nil {
		return nil, err
	}

	var tpl *models.ContractTemplate
	if templateID != nil {
		tpl, err = s.store.TemplateByID(ctx, ownerID, *templateID)
	} else {
		tpl, err = s.store.DefaultTemplate(ctx, ownerID)
	}
	if err != nil {
		return nil, err
	}

	var total float64
	items := make([]DeliverableInput, 0, len(p.Items))
	for _, it := range p.Items {
		total += it.Price
		items = append(items, DeliverableInput{
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
			PriceType:   it.PriceType,
		})
	}

	content := template.Render(tpl.Content, map[string]string{
		"client_name":    p.ClientName,
		"client_company": p.ClientCompany,
		"client_email":   p.ClientEmail,
		"client_address": p.ClientAddress,
		"title":          p.Title,
		"term":           p.Term,
		"total_value":    fmt.Sprintf("%.2f", total),
		"date":           s.now().Format("January 2, 2006"),
	})

	return s.Create(ctx, ownerID, CreateInput{
		ClientName:    p.ClientName,
		ClientCompany: p.ClientCompany,
		ClientEmail:   p.ClientEmail,
		ClientAddress: p.ClientAddress,
		Title:         p.Title,
		Content:       content,
		Term:          p.Term,
		TotalValue:    total,
		Deliverables:  items,
	})
}

func (s *Service) Get(ctx context.Context, ownerID string, id uint) (*models.Contract, error) {
	return s.store.ContractByID(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID string, f ContractFilter) ([]models.Contract, error) {
	return s.store.ListContracts(ctx, ownerID, f)
}

// UpdateDraft applies an explicit patch while the contract is still a draft.
// Once a client signature lands the content is the binding record; the store
// guard makes late writes impossible, not merely unlikely.
func (s *Service) UpdateDraft(ctx context.Context, ownerID string, id uint, patch DraftPatch) (*models.Contract, error) {
	if patch.ClientName != nil && strings.TrimSpace(*patch.ClientName) == "" {
		return nil, fmt.Errorf("%w: client_name cannot be blank", ErrValidation)
	}
	if patch.Deliverables != nil {
		for i, d := range *patch.Deliverables {
			if strings.TrimSpace(d.Name) == "" {
				return nil, fmt.Errorf("%w: deliverable %d: name required", ErrValidation, i)
			}
			if d.PriceType != models.PriceMonthly && d.PriceType != models.PriceOneTime {
				return nil, fmt.Errorf("%w: deliverable %d: unknown price type %q", ErrValidation, i, d.PriceType)
			}
		}
	}
	return s.store.UpdateDraft(ctx, ownerID, id, patch)
}

// Send moves a draft to sent and fires the outbound notification. The
// notification is best-effort: a dead mail bridge never rolls the
// transition back.
func (s *Service) Send(ctx context.Context, ownerID string, id uint) (*models.Contract, error) {
	existing, err := s.store.ContractByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate(existing); err != nil {
		return nil, err
	}
	c, err := s.store.MarkSent(ctx, ownerID, id, s.now())
	if err != nil {
		return nil, err
	}
	s.event(ctx, ownerID, id, "sent", nil)
	if c.ClientEmail != "" {
		sum := notify.Summary{
			ClientName:  c.ClientName,
			ClientEmail: c.ClientEmail,
			Title:       c.Title,
			TotalValue:  c.TotalValue,
			SignURL:     s.SignURL(c.AccessToken),
		}
		if err := s.notifier.Send(ctx, sum); err != nil {
			s.lg.Warnw("contract notification failed", "contract_id", id, "error", err)
		}
	}
	return c, nil
}

// ViewByToken resolves a public link. The first successful fetch while the
// contract is exactly sent flips it to viewed; every later fetch is a plain
// read.
func (s *Service) ViewByToken(ctx context.Context, tok string) (*PublicView, error) {
	c, err := s.store.ContractByToken(ctx, tok)
	if err != nil {
		return nil, err
	}
	if err := s.gate(c); err != nil {
		return nil, err
	}
	if c.Status == models.StatusSent {
		if err := s.store.MarkViewed(ctx, c.ID, s.now()); err != nil {
			return nil, err
		}
		c.Status = models.StatusViewed
		s.event(ctx, c.UserID, c.ID, "viewed", nil)
	}
	sigs, err := s.store.SignaturesByContract(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return publicView(c, sigs), nil
}

// SignByToken is the single guarded write the access token authorizes.
// Preconditions run in order: token resolves, not already signed, not
// expired; then the ledger append and the status change commit atomically.
func (s *Service) SignByToken(ctx context.Context, tok string, in SignInput) (*PublicView, error) {
	c, err := s.store.ContractByToken(ctx, tok)
	if err != nil {
		return nil, err
	}
	if c.ClientSignedAt != nil {
		return nil, ErrAlreadySigned
	}
	if err := s.gate(c); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.SignerName)
	if name == "" {
		return nil, fmt.Errorf("%w: signer name required", ErrValidation)
	}
	if strings.TrimSpace(in.ImageData) == "" {
		return nil, fmt.Errorf("%w: signature image required", ErrValidation)
	}
	sig := &models.Signature{
		ContractID:  c.ID,
		SignerType:  models.SignerClient,
		SignerName:  name,
		SignerEmail: strings.TrimSpace(in.SignerEmail),
		ImageData:   in.ImageData,
		Metadata:    models.Meta(map[string]any{"remote_addr": in.RemoteAddr, "user_agent": in.UserAgent}),
	}
	if err := s.store.SignClient(ctx, c.ID, sig, s.now()); err != nil {
		return nil, err
	}
	s.event(ctx, c.UserID, c.ID, "client_signed", map[string]any{"signer_name": name})

	c, err = s.store.ContractByToken(ctx, tok)
	if err != nil {
		return nil, err
	}
	sigs, err := s.store.SignaturesByContract(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return publicView(c, sigs), nil
}

// CounterSign completes the contract. The client must have signed first;
// counter-signing an unsigned contract is rejected, not queued.
func (s *Service) CounterSign(ctx context.Context, ownerID string, id uint, signerName, imageData string) (*models.Contract, error) {
	c, err := s.store.ContractByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate(c); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(signerName)
	if name == "" {
		return nil, fmt.Errorf("%w: signer name required", ErrValidation)
	}
	if strings.TrimSpace(imageData) == "" {
		return nil, fmt.Errorf("%w: signature image required", ErrValidation)
	}
	sig := &models.Signature{
		ContractID: id,
		SignerType: models.SignerProvider,
		SignerName: name,
		ImageData:  imageData,
		Metadata:   models.Meta(map[string]any{"owner_id": ownerID}),
	}
	if err := s.store.SignProvider(ctx, ownerID, id, sig, s.now()); err != nil {
		return nil, err
	}
	s.event(ctx, ownerID, id, "countersigned", nil)
	return s.store.ContractByID(ctx, ownerID, id)
}

// Revoke flags the contract so the public link stops resolving. Completed
// contracts are a closed record and stay untouched.
func (s *Service) Revoke(ctx context.Context, ownerID string, id uint) error {
	c, err := s.store.ContractByID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if c.Status == models.StatusCompleted {
		return fmt.Errorf("%w: completed contracts cannot be revoked", ErrValidation)
	}
	if c.RevokedAt != nil {
		return nil
	}
	if err := s.store.Revoke(ctx, ownerID, id, s.now()); err != nil {
		return err
	}
	s.event(ctx, ownerID, id, "revoked", nil)
	return nil
}

// RenderPDF materializes the committed snapshot. Strictly read-only.
func (s *Service) RenderPDF(ctx context.Context, ownerID string, id uint) ([]byte, error) {
	c, err := s.store.ContractByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	sigs, err := s.store.SignaturesByContract(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.pdf.Render(ctx, c, sigs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return out, nil
}

// DeriveInvoice projects deliverables into invoice line items, 1:1. The
// unique contract_id column makes retries return the same invoice.
func (s *Service) DeriveInvoice(ctx context.Context, ownerID string, id uint) (*models.Invoice, error) {
	c, err := s.store.ContractByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if c.Status != models.StatusCompleted {
		return nil, ErrNotCompleted
	}
	if inv, err := s.store.InvoiceByContract(ctx, ownerID, id); err == nil {
		return inv, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	items := make([]models.InvoiceItem, 0, len(c.Deliverables))
	var total float64
	for _, d := range c.Deliverables {
		items = append(items, models.InvoiceItem{
			Name:        d.Name,
			Description: d.Description,
			Quantity:    1,
			UnitPrice:   d.Price,
			Amount:      d.Price,
		})
		total += d.Price
	}
	inv := &models.Invoice{
		UserID:     ownerID,
		ContractID: c.ID,
		Number:     "INV-" + strings.ToUpper(uuid.NewString()[:8]),
		ClientName: c.ClientName,
		Total:      total,
		Status:     "open",
		Items:      items,
	}
	if err := s.store.CreateInvoice(ctx, inv); err != nil {
		// Lost a derivation race; the winner's invoice is the answer.
		if existing, lookupErr := s.store.InvoiceByContract(ctx, ownerID, id); lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}
	s.event(ctx, ownerID, id, "invoice_derived", map[string]any{"invoice_number": inv.Number})
	return inv, nil
}

// gate enforces the lazy expiry/revocation policy: no transition or public
// read proceeds on a dead link, and nothing is auto-transitioned.
func (s *Service) gate(c *models.Contract) error {
	if c.RevokedAt != nil {
		return ErrRevoked
	}
	if c.ExpiresAt != nil && s.now().After(*c.ExpiresAt) {
		return ErrExpired
	}
	return nil
}

// SignURL is the public link for a contract's access token. Handlers attach
// it to owner responses so the owner can pass it on.
func (s *Service) SignURL(tok string) string {
	return s.publicURL + "/contracts/" + tok
}

func (s *Service) event(ctx context.Context, ownerID string, contractID uint, action string, meta map[string]any) {
	ev := &models.ContractEvent{
		UserID:     ownerID,
		ContractID: contractID,
		Action:     action,
		Metadata:   models.Meta(meta),
	}
	if err := s.store.AppendEvent(ctx, ev); err != nil {
		s.lg.Warnw("event append failed", "contract_id", contractID, "action", action, "error", err)
	}
}
