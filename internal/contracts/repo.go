package contracts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khidmaty/khidmaty-backend/pkg/db/models"
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	"github.com/khidmaty/khidmaty-backend/pkg/pagination"
)

var pendingStatuses = []enums.ContractStatus{
	enums.ContractStatusPendingBuyer,
	enums.ContractStatusPendingSeller,
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a contracts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, contract *models.Contract) (*models.Contract, error) {
	if err := r.db.WithContext(ctx).Create(contract).Error; err != nil {
		return nil, err
	}
	return contract, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Preload("Terms").
		Preload("Signatures").
		Where("id = ?", id).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *repository) FindByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Contract, error) {
	return r.findByEngagement(ctx, "booking_id = ?", bookingID)
}

func (r *repository) FindByQuote(ctx context.Context, quoteID uuid.UUID) (*models.Contract, error) {
	return r.findByEngagement(ctx, "quote_id = ?", quoteID)
}

func (r *repository) findByEngagement(ctx context.Context, cond string, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Where(cond, id).
		Order("created_at DESC").
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *repository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListByParty(ctx context.Context, userID uuid.UUID, role enums.PartyRole, params pagination.Params, filters ListFilters) (*ContractList, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Contract{})
	if role == enums.PartyRoleBuyer {
		query = query.Where("buyer_id = ?", userID)
	} else {
		query = query.Where("seller_id = ?", userID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Kind != nil {
		switch *filters.Kind {
		case EngagementKindBooking:
			query = query.Where("booking_id IS NOT NULL")
		case EngagementKindQuote:
			query = query.Where("quote_id IS NOT NULL")
		}
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Contract
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &ContractList{Contracts: make([]ContractSummary, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		counterparty := row.SellerID
		if role == enums.PartyRoleSeller {
			counterparty = row.BuyerID
		}
		list.Contracts = append(list.Contracts, ContractSummary{
			ID:             row.ID,
			Status:         row.Status,
			Version:        row.Version,
			CounterpartyID: counterparty,
			BookingID:      row.BookingID,
			QuoteID:        row.QuoteID,
			ExecutedAt:     row.ExecutedAt,
			CreatedAt:      row.CreatedAt,
		})
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func signedColumn(role enums.PartyRole) string {
	if role == enums.PartyRoleBuyer {
		return "signed_at_buyer"
	}
	return "signed_at_seller"
}

func (r *repository) SetSigned(ctx context.Context, id uuid.UUID, role enums.PartyRole, signedAt time.Time, nextStatus enums.ContractStatus) (bool, error) {
	column := signedColumn(role)
	res := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("id = ? AND "+column+" IS NULL AND status IN ?", id, pendingStatuses).
		Updates(map[string]any{
			column:       signedAt,
			"status":     nextStatus,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) MarkExecuted(ctx context.Context, id uuid.UUID, executedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("id = ? AND status IN ? AND signed_at_buyer IS NOT NULL AND signed_at_seller IS NOT NULL", id, pendingStatuses).
		Updates(map[string]any{
			"status":      enums.ContractStatusExecuted,
			"executed_at": executedAt,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.ContractStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ResetForNewVersion(ctx context.Context, id uuid.UUID, fromVersion int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("id = ? AND version = ? AND status IN ?", id, fromVersion, pendingStatuses).
		Updates(map[string]any{
			"version":          fromVersion + 1,
			"status":           enums.ContractStatusPendingBuyer,
			"signed_at_buyer":  nil,
			"signed_at_seller": nil,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) DeleteIfSoleSigner(ctx context.Context, id uuid.UUID, expected enums.ContractStatus, signer enums.PartyRole) (bool, error) {
	counterpart := signedColumn(signer.Counterparty())
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ? AND "+counterpart+" IS NULL", id, expected).
		Delete(&models.Contract{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Contract{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) InsertSignature(ctx context.Context, signature *models.ContractSignature) error {
	return r.db.WithContext(ctx).Create(signature).Error
}

func (r *repository) FindSignatures(ctx context.Context, contractID uuid.UUID) ([]models.ContractSignature, error) {
	var signatures []models.ContractSignature
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("signed_at ASC").
		Find(&signatures).Error
	if err != nil {
		return nil, err
	}
	return signatures, nil
}

func (r *repository) DeleteSignaturesByContract(ctx context.Context, contractID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Delete(&models.ContractSignature{}).Error
}

func (r *repository) UpsertTerms(ctx context.Context, terms *models.BindingTerms) error {
	var existing models.BindingTerms
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", terms.ContractID).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(terms).Error
	}
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.BindingTerms{}).
		Where("contract_id = ?", terms.ContractID).
		Updates(map[string]any{
			"start_date":       terms.StartDate,
			"completion_date":  terms.CompletionDate,
			"warranty_days":    terms.WarrantyDays,
			"payment_schedule": terms.PaymentSchedule,
			"updated_at":       time.Now(),
		}).Error
}

func (r *repository) FindTerms(ctx context.Context, contractID uuid.UUID) (*models.BindingTerms, error) {
	var terms models.BindingTerms
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		First(&terms).Error
	if err != nil {
		return nil, err
	}
	return &terms, nil
}

func (r *repository) DeleteTermsByContract(ctx context.Context, contractID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Delete(&models.BindingTerms{}).Error
}
