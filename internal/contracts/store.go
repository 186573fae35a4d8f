package contracts

import (
	"context"
	"time"

	"dealdesk/internal/models"
)

// ContractFilter narrows owner-side listings.
type ContractFilter struct {
	Status string
	Search string
}

// DraftPatch enumerates exactly the fields an owner may change while a
// contract is still a draft. Unknown request keys are rejected at decode
// time; nothing here can touch the access token or signing timestamps.
type DraftPatch struct {
	Title         *string
	Content       *string
	ClientName    *string
	ClientCompany *string
	ClientEmail   *string
	ClientAddress *string
	Term          *string
	TotalValue    *float64
	ExpiresAt     *time.Time
	Deliverables  *[]models.Deliverable
}

// Store is the storage collaborator. Implementations must make the signing
// methods atomic: precondition check, timestamp/status update and signature
// insert commit together or not at all. The conditional update on the
// signed-at column is the sole synchronization mechanism; callers hold no
// in-process locks.
type Store interface {
	CreateContract(ctx context.Context, c *models.Contract) error
	ContractByID(ctx context.Context, ownerID string, id uint) (*models.Contract, error)
	ContractByToken(ctx context.Context, token string) (*models.Contract, error)
	ListContracts(ctx context.Context, ownerID string, f ContractFilter) ([]models.Contract, error)
	UpdateDraft(ctx context.Context, ownerID string, id uint, patch DraftPatch) (*models.Contract, error)

	// MarkSent moves draft → sent, stamping sent_at. ErrNotDraft when the
	// contract has already left draft.
	MarkSent(ctx context.Context, ownerID string, id uint, at time.Time) (*models.Contract, error)
	// MarkViewed moves sent → viewed. Losing the race to another viewer is
	// not an error; the transition fires at most once.
	MarkViewed(ctx context.Context, id uint, at time.Time) error
	// SignClient appends the client signature and stamps client_signed_at,
	// guarded by client_signed_at IS NULL. ErrAlreadySigned when the guard
	// fails.
	SignClient(ctx context.Context, id uint, sig *models.Signature, at time.Time) error
	// SignProvider appends the counter-signature and stamps user_signed_at,
	// guarded by client_signed_at IS NOT NULL and user_signed_at IS NULL.
	SignProvider(ctx context.Context, ownerID string, id uint, sig *models.Signature, at time.Time) error
	Revoke(ctx context.Context, ownerID string, id uint, at time.Time) error

	SignaturesByContract(ctx context.Context, contractID uint) ([]models.Signature, error)

	TemplateByID(ctx context.Context, ownerID string, id uint) (*models.ContractTemplate, error)
	DefaultTemplate(ctx context.Context, ownerID string) (*models.ContractTemplate, error)
	ProposalByID(ctx context.Context, ownerID string, id uint) (*models.Proposal, error)

	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	InvoiceByContract(ctx context.Context, ownerID string, contractID uint) (*models.Invoice, error)

	AppendEvent(ctx context.Context, ev *models.ContractEvent) error
}
