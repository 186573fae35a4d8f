package contracts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"dealdesk/internal/models"
)

// GormStore is the postgres-backed Store. The signing guards lean on
// conditional UPDATEs (RowsAffected checks) inside transactions, so two
// processes racing the same contract resolve at the database, not here.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

func (s *GormStore) CreateContract(ctx context.Context, c *models.Contract) error {
	return storeErr(s.db.WithContext(ctx).Create(c).Error)
}

func (s *GormStore) ContractByID(ctx context.Context, ownerID string, id uint) (*models.Contract, error) {
	var c models.Contract
	err := s.db.WithContext(ctx).
		Preload("Deliverables", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&c, "id = ? AND user_id = ?", id, ownerID).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return &c, nil
}

func (s *GormStore) ContractByToken(ctx context.Context, tok string) (*models.Contract, error) {
	var c models.Contract
	err := s.db.WithContext(ctx).
		Preload("Deliverables", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&c, "access_token = ?", tok).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return &c, nil
}

func (s *GormStore) ListContracts(ctx context.Context, ownerID string, f ContractFilter) ([]models.Contract, error) {
	q := s.db.WithContext(ctx).
		Preload("Deliverables", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("user_id = ?", ownerID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(client_name) LIKE ? OR LOWER(title) LIKE ?", pattern, pattern)
	}
	var cs []models.Contract
	if err := q.Order("created_at desc").Find(&cs).Error; err != nil {
		return nil, storeErr(err)
	}
	if cs == nil {
		cs = make([]models.Contract, 0)
	}
	return cs, nil
}

func (s *GormStore) UpdateDraft(ctx context.Context, ownerID string, id uint, patch DraftPatch) (*models.Contract, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"updated_at": time.Now()}
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.Content != nil {
			updates["content"] = *patch.Content
		}
		if patch.ClientName != nil {
			updates["client_name"] = strings.TrimSpace(*patch.ClientName)
		}
		if patch.ClientCompany != nil {
			updates["client_company"] = *patch.ClientCompany
		}
		if patch.ClientEmail != nil {
			updates["client_email"] = strings.TrimSpace(*patch.ClientEmail)
		}
		if patch.ClientAddress != nil {
			updates["client_address"] = *patch.ClientAddress
		}
		if patch.Term != nil {
			updates["term"] = *patch.Term
		}
		if patch.TotalValue != nil {
			updates["total_value"] = *patch.TotalValue
		}
		if patch.ExpiresAt != nil {
			updates["expires_at"] = *patch.ExpiresAt
		}

		res := tx.Model(&models.Contract{}).
			Where("id = ? AND user_id = ? AND status = ?", id, ownerID, models.StatusDraft).
			Updates(updates)
		if res.Error != nil {
			return storeErr(res.Error)
		}
		if res.RowsAffected == 0 {
			var c models.Contract
			if err := tx.First(&c, "id = ? AND user_id = ?", id, ownerID).Error; err != nil {
				return storeErr(err)
			}
			return ErrNotDraft
		}

		if patch.Deliverables != nil {
			if err := tx.Where("contract_id = ?", id).Delete(&models.Deliverable{}).Error; err != nil {
				return storeErr(err)
			}
			dels := *patch.Deliverables
			for i := range dels {
				dels[i].ID = 0
				dels[i].ContractID = id
				dels[i].Position = i
			}
			if len(dels) > 0 {
				if err := tx.Create(&dels).Error; err != nil {
					return storeErr(err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ContractByID(ctx, ownerID, id)
}

func (s *GormStore) MarkSent(ctx context.Context, ownerID string, id uint, at time.Time) (*models.Contract, error) {
	res := s.db.WithContext(ctx).Model(&models.Contract{}).
		Where("id = ? AND user_id = ? AND status = ?", id, ownerID, models.StatusDraft).
		Updates(map[string]any{"status": models.StatusSent, "sent_at": at, "updated_at": at})
	if res.Error != nil {
		return nil, storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		var c models.Contract
		if err := s.db.WithContext(ctx).First(&c, "id = ? AND user_id = ?", id, ownerID).Error; err != nil {
			return nil, storeErr(err)
		}
		return nil, ErrNotDraft
	}
	return s.ContractByID(ctx, ownerID, id)
}

func (s *GormStore) MarkViewed(ctx context.Context, id uint, at time.Time) error {
	// Zero rows means another viewer got there first, which is the same
	// idempotent outcome.
	res := s.db.WithContext(ctx).Model(&models.Contract{}).
		Where("id = ? AND status = ?", id, models.StatusSent).
		Updates(map[string]any{"status": models.StatusViewed, "updated_at": at})
	return storeErr(res.Error)
}

func (s *GormStore) SignClient(ctx context.Context, id uint, sig *models.Signature, at time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Contract{}).
			Where("id = ? AND client_signed_at IS NULL", id).
			Updates(map[string]any{
				"status":           models.StatusSigned,
				"client_signed_at": at,
				"updated_at":       at,
			})
		if res.Error != nil {
			return storeErr(res.Error)
		}
		if res.RowsAffected == 0 {
			var c models.Contract
			if err := tx.First(&c, "id = ?", id).Error; err != nil {
				return storeErr(err)
			}
			return ErrAlreadySigned
		}
		sig.ContractID = id
		sig.CreatedAt = at
		return storeErr(tx.Create(sig).Error)
	})
}

func (s *GormStore) SignProvider(ctx context.Context, ownerID string, id uint, sig *models.Signature, at time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Contract{}).
			Where("id = ? AND user_id = ? AND client_signed_at IS NOT NULL AND user_signed_at IS NULL", id, ownerID).
			Updates(map[string]any{
				"status":         models.StatusCompleted,
				"user_signed_at": at,
				"updated_at":     at,
			})
		if res.Error != nil {
			return storeErr(res.Error)
		}
		if res.RowsAffected == 0 {
			var c models.Contract
			if err := tx.First(&c, "id = ? AND user_id = ?", id, ownerID).Error; err != nil {
				return storeErr(err)
			}
			if c.UserSignedAt != nil {
				return ErrAlreadySigned
			}
			return ErrClientNotYetSigned
		}
		sig.ContractID = id
		sig.CreatedAt = at
		return storeErr(tx.Create(sig).Error)
	})
}

func (s *GormStore) Revoke(ctx context.Context, ownerID string, id uint, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Contract{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", id, ownerID).
		Updates(map[string]any{"revoked_at": at, "updated_at": at})
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		var c models.Contract
		if err := s.db.WithContext(ctx).First(&c, "id = ? AND user_id = ?", id, ownerID).Error; err != nil {
			return storeErr(err)
		}
	}
	return nil
}

func (s *GormStore) SignaturesByContract(ctx context.Context, contractID uint) ([]models.Signature, error) {
	var sigs []models.Signature
	err := s.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at asc").
		Find(&sigs).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return sigs, nil
}

func (s *GormStore) TemplateByID(ctx context.Context, ownerID string, id uint) (*models.ContractTemplate, error) {
	var t models.ContractTemplate
	err := s.db.WithContext(ctx).First(&t, "id = ? AND user_id = ?", id, ownerID).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return &t, nil
}

func (s *GormStore) DefaultTemplate(ctx context.Context, ownerID string) (*models.ContractTemplate, error) {
	var t models.ContractTemplate
	err := s.db.WithContext(ctx).First(&t, "user_id = ? AND is_default = TRUE", ownerID).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return &t, nil
}

func (s *GormStore) ProposalByID(ctx context.Context, ownerID string, id uint) (*models.Proposal, error) {
	var p models.Proposal
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&p, "id = ? AND user_id = ?", id, ownerID).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return &p, nil
}

func (s *GormStore) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	return storeErr(s.db.WithContext(ctx).Create(inv).Error)
}

func (s *GormStore) InvoiceByContract(ctx context.Context, ownerID string, contractID uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items").
		First(&inv, "contract_id = ? AND user_id = ?", contractID, ownerID).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return &inv, nil
}

func (s *GormStore) AppendEvent(ctx context.Context, ev *models.ContractEvent) error {
	return storeErr(s.db.WithContext(ctx).Create(ev).Error)
}
