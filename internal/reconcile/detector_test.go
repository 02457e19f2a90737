package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/khidmaty/khidmaty-backend/pkg/db/models"
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	"github.com/khidmaty/khidmaty-backend/pkg/metrics"
)

func setupReconcileTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	contracts := `
CREATE TABLE IF NOT EXISTS contracts (
  id TEXT PRIMARY KEY,
  booking_id TEXT,
  quote_id TEXT,
  buyer_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending_buyer',
  version INTEGER NOT NULL DEFAULT 1,
  metadata TEXT NOT NULL DEFAULT '{}',
  signed_at_buyer DATETIME,
  signed_at_seller DATETIME,
  executed_at DATETIME,
  rejection_reason TEXT,
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
	require.NoError(t, db.Exec(signatures).Error)
	require.NoError(t, db.Exec("DELETE FROM contracts").Error)
	require.NoError(t, db.Exec("DELETE FROM contract_signatures").Error)
	return db
}

func seedSignature(t *testing.T, db *gorm.DB, contractID uuid.UUID, role enums.PartyRole, createdAt time.Time) *models.ContractSignature {
	t.Helper()

	signature := &models.ContractSignature{
		ID:            uuid.New(),
		ContractID:    contractID,
		UserID:        uuid.New(),
		Role:          role,
		Version:       1,
		SignatureHash: "deadbeef",
		Method:        enums.SignatureMethodDrawn,
		SignedAt:      createdAt,
	}
	require.NoError(t, db.Create(signature).Error)
	require.NoError(t, db.Model(signature).UpdateColumn("created_at", createdAt).Error)
	return signature
}

func TestSweepReportsOnlyAgedOrphans(t *testing.T) {
	db := setupReconcileTestDB(t)

	old := time.Now().UTC().Add(-time.Hour)
	contract := &models.Contract{
		ID:            uuid.New(),
		BuyerID:       uuid.New(),
		SellerID:      uuid.New(),
		Status:        enums.ContractStatusPendingSeller,
		Version:       1,
		SignedAtBuyer: &old,
	}
	require.NoError(t, db.Create(contract).Error)

	orphan := seedSignature(t, db, uuid.New(), enums.PartyRoleBuyer, old)
	seedSignature(t, db, contract.ID, enums.PartyRoleBuyer, old)
	seedSignature(t, db, uuid.New(), enums.PartyRoleBuyer, time.Now().UTC())

	reg := prometheus.NewRegistry()
	detector, err := NewDetector(db, 5*time.Minute, metrics.NewContractMetrics(reg), nil)
	require.NoError(t, err)

	report, err := detector.Sweep(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Orphans, 1)
	assert.Equal(t, orphan.ID, report.Orphans[0].SignatureID)
	assert.Equal(t, orphan.ContractID, report.Orphans[0].ContractID)
	assert.Equal(t, ReasonMissingContract, report.Orphans[0].Reason)

	families, err := reg.Gather()
	require.NoError(t, err)
	var gauge float64
	for _, family := range families {
		if family.GetName() == "contract_orphaned_signatures" {
			gauge = family.GetMetric()[0].GetGauge().GetValue()
		}
	}
	assert.Equal(t, float64(1), gauge)
}

func TestSweepReportsUnsetSignedAtFlag(t *testing.T) {
	db := setupReconcileTestDB(t)

	// Signature row landed but the crash hit before signed_at_buyer was set.
	contract := &models.Contract{
		ID:       uuid.New(),
		BuyerID:  uuid.New(),
		SellerID: uuid.New(),
		Status:   enums.ContractStatusPendingBuyer,
		Version:  1,
	}
	require.NoError(t, db.Create(contract).Error)
	stale := seedSignature(t, db, contract.ID, enums.PartyRoleBuyer, time.Now().UTC().Add(-48*time.Hour))

	detector, err := NewDetector(db, 5*time.Minute, nil, nil)
	require.NoError(t, err)

	report, err := detector.Sweep(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Orphans, 1)
	assert.Equal(t, stale.ID, report.Orphans[0].SignatureID)
	assert.Equal(t, contract.ID, report.Orphans[0].ContractID)
	assert.Equal(t, ReasonUnsetSignedAt, report.Orphans[0].Reason)
}

func TestSweepReportsStampWithoutSignatureRow(t *testing.T) {
	db := setupReconcileTestDB(t)

	// A withdrawal deleted the children but lost the guarded contract delete.
	signedAt := time.Now().UTC().Add(-time.Hour)
	contract := &models.Contract{
		ID:            uuid.New(),
		BuyerID:       uuid.New(),
		SellerID:      uuid.New(),
		Status:        enums.ContractStatusPendingSeller,
		Version:       1,
		SignedAtBuyer: &signedAt,
	}
	require.NoError(t, db.Create(contract).Error)

	detector, err := NewDetector(db, 5*time.Minute, nil, nil)
	require.NoError(t, err)

	report, err := detector.Sweep(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Orphans, 1)
	assert.Equal(t, uuid.Nil, report.Orphans[0].SignatureID)
	assert.Equal(t, contract.ID, report.Orphans[0].ContractID)
	assert.Equal(t, contract.BuyerID, report.Orphans[0].UserID)
	assert.Equal(t, enums.PartyRoleBuyer, report.Orphans[0].Role)
	assert.Equal(t, ReasonMissingSignatureRow, report.Orphans[0].Reason)
}

func TestSweepEmptyWhenHealthy(t *testing.T) {
	db := setupReconcileTestDB(t)

	signedAt := time.Now().UTC().Add(-time.Hour)
	contract := &models.Contract{
		ID:             uuid.New(),
		BuyerID:        uuid.New(),
		SellerID:       uuid.New(),
		Status:         enums.ContractStatusExecuted,
		Version:        1,
		SignedAtBuyer:  &signedAt,
		SignedAtSeller: &signedAt,
	}
	require.NoError(t, db.Create(contract).Error)
	seedSignature(t, db, contract.ID, enums.PartyRoleBuyer, signedAt)
	seedSignature(t, db, contract.ID, enums.PartyRoleSeller, signedAt)

	detector, err := NewDetector(db, 5*time.Minute, nil, nil)
	require.NoError(t, err)

	report, err := detector.Sweep(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Orphans)
}
