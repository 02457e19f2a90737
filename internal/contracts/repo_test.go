package contracts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/khidmaty/khidmaty-backend/pkg/db/models"
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	"github.com/khidmaty/khidmaty-backend/pkg/pagination"
	"github.com/khidmaty/khidmaty-backend/pkg/types"
)

func setupContractsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	contracts := `
CREATE TABLE IF NOT EXISTS contracts (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  booking_id TEXT,
  quote_id TEXT,
  status TEXT NOT NULL,
  version INTEGER NOT NULL DEFAULT 1,
  metadata TEXT NOT NULL,
  signed_at_buyer DATETIME,
  signed_at_seller DATETIME,
  executed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	bindingTerms := `
CREATE TABLE IF NOT EXISTS binding_terms (
  id TEXT PRIMARY KEY,
  contract_id TEXT NOT NULL UNIQUE,
  start_date DATETIME NOT NULL,
  completion_date DATETIME NOT NULL,
  warranty_days INTEGER NOT NULL DEFAULT 0,
  payment_schedule TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	signatures := `
CREATE TABLE IF NOT EXISTS contract_signatures (
  id TEXT PRIMARY KEY,
  contract_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  role TEXT NOT NULL,
  version INTEGER NOT NULL,
  signature_hash TEXT NOT NULL,
  method TEXT NOT NULL,
  signed_at DATETIME NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(contracts).Error)
	require.NoError(t, db.Exec(bindingTerms).Error)
	require.NoError(t, db.Exec(signatures).Error)
	return db
}

func newPendingContract(t *testing.T, db *gorm.DB) *models.Contract {
	t.Helper()

	bookingID := uuid.New()
	contract := &models.Contract{
		ID:        uuid.New(),
		BuyerID:   uuid.New(),
		SellerID:  uuid.New(),
		BookingID: &bookingID,
		Status:    enums.ContractStatusPendingBuyer,
		Version:   1,
		Metadata:  types.JSONMap{"final_price": "500"},
	}
	require.NoError(t, db.Create(contract).Error)
	return contract
}

func TestSetSignedIsConditional(t *testing.T) {
	db := setupContractsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	contract := newPendingContract(t, db)

	now := time.Now().UTC()
	updated, err := repo.SetSigned(ctx, contract.ID, enums.PartyRoleBuyer, now, enums.ContractStatusPendingSeller)
	require.NoError(t, err)
	assert.True(t, updated)

	// Second attempt hits signed_at_buyer IS NULL and affects nothing.
	updated, err = repo.SetSigned(ctx, contract.ID, enums.PartyRoleBuyer, now, enums.ContractStatusPendingSeller)
	require.NoError(t, err)
	assert.False(t, updated)

	reloaded, err := repo.FindByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ContractStatusPendingSeller, reloaded.Status)
	require.NotNil(t, reloaded.SignedAtBuyer)
	assert.Nil(t, reloaded.SignedAtSeller)
}

func TestMarkExecutedRequiresBothStamps(t *testing.T) {
	db := setupContractsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	contract := newPendingContract(t, db)

	now := time.Now().UTC()
	flipped, err := repo.MarkExecuted(ctx, contract.ID, now)
	require.NoError(t, err)
	assert.False(t, flipped, "no signatures collected yet")

	_, err = repo.SetSigned(ctx, contract.ID, enums.PartyRoleBuyer, now, enums.ContractStatusPendingSeller)
	require.NoError(t, err)
	_, err = repo.SetSigned(ctx, contract.ID, enums.PartyRoleSeller, now, enums.ContractStatusPendingBuyer)
	require.NoError(t, err)

	flipped, err = repo.MarkExecuted(ctx, contract.ID, now)
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = repo.MarkExecuted(ctx, contract.ID, now)
	require.NoError(t, err)
	assert.False(t, flipped, "already executed")
}

func TestDeleteIfSoleSignerGuardsCounterparty(t *testing.T) {
	db := setupContractsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	contract := newPendingContract(t, db)
	now := time.Now().UTC()
	_, err := repo.SetSigned(ctx, contract.ID, enums.PartyRoleBuyer, now, enums.ContractStatusPendingSeller)
	require.NoError(t, err)
	_, err = repo.SetSigned(ctx, contract.ID, enums.PartyRoleSeller, now, enums.ContractStatusPendingBuyer)
	require.NoError(t, err)

	deleted, err := repo.DeleteIfSoleSigner(ctx, contract.ID, enums.ContractStatusPendingBuyer, enums.PartyRoleBuyer)
	require.NoError(t, err)
	assert.False(t, deleted, "counterparty already signed")

	sole := newPendingContract(t, db)
	_, err = repo.SetSigned(ctx, sole.ID, enums.PartyRoleBuyer, now, enums.ContractStatusPendingSeller)
	require.NoError(t, err)

	deleted, err = repo.DeleteIfSoleSigner(ctx, sole.ID, enums.ContractStatusPendingSeller, enums.PartyRoleBuyer)
	require.NoError(t, err)
	assert.True(t, deleted)

	exists, err := repo.ExistsByID(ctx, sole.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestChildRowsDeleteBeforeContract(t *testing.T) {
	db := setupContractsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	contract := newPendingContract(t, db)

	require.NoError(t, repo.UpsertTerms(ctx, &models.BindingTerms{
		ID:              uuid.New(),
		ContractID:      contract.ID,
		StartDate:       time.Now(),
		CompletionDate:  time.Now().AddDate(0, 0, 7),
		PaymentSchedule: types.JSONMap{},
	}))
	require.NoError(t, repo.InsertSignature(ctx, &models.ContractSignature{
		ID:            uuid.New(),
		ContractID:    contract.ID,
		UserID:        contract.BuyerID,
		Role:          enums.PartyRoleBuyer,
		Version:       1,
		SignatureHash: "abc",
		Method:        enums.SignatureMethodDrawn,
		SignedAt:      time.Now(),
	}))

	require.NoError(t, repo.DeleteTermsByContract(ctx, contract.ID))
	require.NoError(t, repo.DeleteSignaturesByContract(ctx, contract.ID))

	_, err := repo.FindTerms(ctx, contract.ID)
	assert.Equal(t, gorm.ErrRecordNotFound, err)
	signatures, err := repo.FindSignatures(ctx, contract.ID)
	require.NoError(t, err)
	assert.Empty(t, signatures)

	deleted, err := repo.DeleteByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestResetForNewVersionClearsStamps(t *testing.T) {
	db := setupContractsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	contract := newPendingContract(t, db)

	now := time.Now().UTC()
	_, err := repo.SetSigned(ctx, contract.ID, enums.PartyRoleBuyer, now, enums.ContractStatusPendingSeller)
	require.NoError(t, err)

	bumped, err := repo.ResetForNewVersion(ctx, contract.ID, 1)
	require.NoError(t, err)
	assert.True(t, bumped)

	// Stale version loses the race.
	bumped, err = repo.ResetForNewVersion(ctx, contract.ID, 1)
	require.NoError(t, err)
	assert.False(t, bumped)

	reloaded, err := repo.FindByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Version)
	assert.Equal(t, enums.ContractStatusPendingBuyer, reloaded.Status)
	assert.Nil(t, reloaded.SignedAtBuyer)
	assert.Nil(t, reloaded.SignedAtSeller)
}

func TestUpsertTermsReplacesExistingRow(t *testing.T) {
	db := setupContractsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	contract := newPendingContract(t, db)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertTerms(ctx, &models.BindingTerms{
		ID:              uuid.New(),
		ContractID:      contract.ID,
		StartDate:       start,
		CompletionDate:  start.AddDate(0, 0, 5),
		WarrantyDays:    30,
		PaymentSchedule: types.JSONMap{},
	}))
	require.NoError(t, repo.UpsertTerms(ctx, &models.BindingTerms{
		ContractID:      contract.ID,
		StartDate:       start.AddDate(0, 0, 10),
		CompletionDate:  start.AddDate(0, 0, 20),
		WarrantyDays:    90,
		PaymentSchedule: types.JSONMap{"upfront": "half"},
	}))

	terms, err := repo.FindTerms(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, terms.WarrantyDays)

	var count int64
	require.NoError(t, db.Model(&models.BindingTerms{}).Where("contract_id = ?", contract.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestListByPartyPaginates(t *testing.T) {
	db := setupContractsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	buyerID := uuid.New()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		bookingID := uuid.New()
		contract := &models.Contract{
			ID:        uuid.New(),
			BuyerID:   buyerID,
			SellerID:  uuid.New(),
			BookingID: &bookingID,
			Status:    enums.ContractStatusPendingBuyer,
			Version:   1,
			Metadata:  types.JSONMap{},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(contract).Error)
	}

	page, err := repo.ListByParty(ctx, buyerID, enums.PartyRoleBuyer, pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, page.Contracts, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := repo.ListByParty(ctx, buyerID, enums.PartyRoleBuyer, pagination.Params{Limit: 2, Cursor: page.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, rest.Contracts, 1)
	assert.Empty(t, rest.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, row := range append(page.Contracts, rest.Contracts...) {
		assert.False(t, seen[row.ID], "duplicate row across pages")
		seen[row.ID] = true
	}
}
