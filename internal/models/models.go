package models

import "time"

// Contract statuses, in lifecycle order. Transitions never move backwards.
const (
	StatusDraft     = "draft"
	StatusSent      = "sent"
	StatusViewed    = "viewed"
	StatusSigned    = "signed"
	StatusCompleted = "completed"
)

// Signer types for signature rows.
const (
	SignerClient   = "client"
	SignerProvider = "provider"
)

// Deliverable price types.
const (
	PriceMonthly = "monthly"
	PriceOneTime = "one-time"
)

type User struct {
	ID           string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `json:"full_name"`
	CompanyName  string    `json:"company_name"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Session struct {
	JTI       string     `gorm:"primaryKey;size:64" json:"jti"`
	UserID    string     `gorm:"type:uuid;index;not null" json:"user_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type Contract struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID string `gorm:"type:uuid;index;not null" json:"user_id"`

	ClientName    string `gorm:"not null" json:"client_name"`
	ClientCompany string `json:"client_company"`
	ClientEmail   string `json:"client_email"`
	ClientAddress string `json:"client_address"`

	Title      string  `json:"title"`
	Content    string  `gorm:"type:text" json:"content"`
	TotalValue float64 `json:"total_value"`
	Term       string  `json:"term"`

	// AccessToken is set once at creation and never rotated. Owner payloads
	// carry it (the owner hands the link to the client); the public surface
	// serializes through PublicView, which does not.
	AccessToken string `gorm:"uniqueIndex;size:64;not null" json:"access_token"`

	Status         string     `gorm:"not null;default:draft;index" json:"status"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ClientSignedAt *time.Time `json:"client_signed_at,omitempty"`
	UserSignedAt   *time.Time `json:"user_signed_at,omitempty"`

	Deliverables []Deliverable `gorm:"constraint:OnDelete:CASCADE" json:"deliverables"`
	Signatures   []Signature   `gorm:"constraint:OnDelete:CASCADE" json:"signatures,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Deliverable struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	ContractID  uint    `gorm:"index;not null" json:"-"`
	Position    int     `gorm:"not null;default:0" json:"position"`
	Name        string  `gorm:"not null" json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	PriceType   string  `gorm:"not null;default:one-time" json:"price_type"`
}

// Signature is an immutable signing event. There is no update or delete path;
// the unique index on (contract_id, signer_type) caps the ledger at one row
// per signer type.
type Signature struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ContractID  uint      `gorm:"not null;uniqueIndex:idx_contract_signer,priority:1" json:"contract_id"`
	SignerType  string    `gorm:"not null;uniqueIndex:idx_contract_signer,priority:2" json:"signer_type"`
	SignerName  string    `gorm:"not null" json:"signer_name"`
	SignerEmail string    `json:"signer_email,omitempty"`
	ImageData   string    `gorm:"type:text;not null" json:"-"`
	Metadata    JSONB     `gorm:"type:jsonb;default:'{}'::jsonb" json:"metadata"`
	CreatedAt   time.Time `json:"created_at"`
}

type ContractTemplate struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	Content   string    `gorm:"type:text" json:"content"`
	IsDefault bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Proposal struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        string         `gorm:"type:uuid;index;not null" json:"user_id"`
	Title         string         `gorm:"not null" json:"title"`
	ClientName    string         `json:"client_name"`
	ClientCompany string         `json:"client_company"`
	ClientEmail   string         `json:"client_email"`
	ClientAddress string         `json:"client_address"`
	Term          string         `json:"term"`
	Items         []ProposalItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type ProposalItem struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProposalID  uint    `gorm:"index;not null" json:"-"`
	Position    int     `gorm:"not null;default:0" json:"position"`
	Name        string  `gorm:"not null" json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	PriceType   string  `gorm:"not null;default:one-time" json:"price_type"`
}

// Invoice rows are derived from completed contracts. ContractID is unique so
// a repeated derivation returns the existing invoice instead of minting twins.
type Invoice struct {
	ID         uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string        `gorm:"type:uuid;index;not null" json:"user_id"`
	ContractID uint          `gorm:"uniqueIndex;not null" json:"contract_id"`
	Number     string        `gorm:"uniqueIndex;not null" json:"number"`
	ClientName string        `json:"client_name"`
	Total      float64       `json:"total"`
	Status     string        `gorm:"not null;default:open" json:"status"`
	Items      []InvoiceItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type InvoiceItem struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceID   uint    `gorm:"index;not null" json:"-"`
	Name        string  `gorm:"not null" json:"name"`
	Description string  `json:"description"`
	Quantity    int     `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// ContractEvent is an append-only trail of lifecycle activity, one row per
// transition or derived side effect.
type ContractEvent struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string    `gorm:"type:uuid;index;not null" json:"user_id"`
	ContractID uint      `gorm:"index;not null" json:"contract_id"`
	Action     string    `gorm:"not null" json:"action"`
	Metadata   JSONB     `gorm:"type:jsonb;default:'{}'::jsonb" json:"metadata"`
	CreatedAt  time.Time `json:"created_at"`
}
