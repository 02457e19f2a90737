package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khidmaty/khidmaty-backend/pkg/db/models"
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	pkgerrors "github.com/khidmaty/khidmaty-backend/pkg/errors"
	"github.com/khidmaty/khidmaty-backend/pkg/logger"
	"github.com/khidmaty/khidmaty-backend/pkg/metrics"
)

// Orphan reasons. A missing contract comes from a crash between the signature
// delete and the contract delete during withdrawal; an unset signed_at flag
// comes from a crash between the signature insert and the contract update
// while signing; a missing signature row comes from a withdrawal whose child
// deletes landed but whose guarded contract delete did not.
const (
	ReasonMissingContract     = "missing_contract"
	ReasonUnsetSignedAt       = "unset_signed_at"
	ReasonMissingSignatureRow = "missing_signature_row"
)

// OrphanedSignature is a disagreement between the signature rows and the
// contract: a row whose contract is gone, a row whose signed_at column was
// never set, or a signed_at stamp with no row behind it (SignatureID is the
// zero UUID for that class). They are surfaced, never silently repaired.
type OrphanedSignature struct {
	SignatureID uuid.UUID             `json:"signature_id"`
	ContractID  uuid.UUID             `json:"contract_id"`
	UserID      uuid.UUID             `json:"user_id"`
	Role        enums.PartyRole       `json:"role"`
	Method      enums.SignatureMethod `json:"method"`
	SignedAt    time.Time             `json:"signed_at"`
	Reason      string                `json:"reason"`
}

// Report is the outcome of one detector sweep.
type Report struct {
	Orphans   []OrphanedSignature `json:"orphans"`
	CheckedAt time.Time           `json:"checked_at"`
}

// Detector sweeps for signature rows and contracts that disagree.
type Detector struct {
	db          *gorm.DB
	gracePeriod time.Duration
	metrics     *metrics.ContractMetrics
	logg        *logger.Logger
	now         func() time.Time
}

// NewDetector wires the orphan sweep. The grace period keeps in-flight
// withdrawals, which delete signatures before the contract row, out of the
// report.
func NewDetector(db *gorm.DB, gracePeriod time.Duration, contractMetrics *metrics.ContractMetrics, logg *logger.Logger) (*Detector, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle required")
	}
	if gracePeriod < 0 {
		return nil, fmt.Errorf("grace period must be non-negative")
	}
	return &Detector{
		db:          db,
		gracePeriod: gracePeriod,
		metrics:     contractMetrics,
		logg:        logg,
		now:         time.Now,
	}, nil
}

// Sweep lists disagreements older than the grace period: signature rows
// pointing at a deleted contract, rows whose contract never got its signed_at
// column set, and contracts stamped signed without a matching row. Publishes
// the count as a gauge.
func (d *Detector) Sweep(ctx context.Context) (*Report, error) {
	cutoff := d.now().UTC().Add(-d.gracePeriod)

	var missing []models.ContractSignature
	err := d.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Where("contract_id NOT IN (?)", d.db.Model(&models.Contract{}).Select("id")).
		Order("created_at ASC").
		Find(&missing).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan for orphaned signatures")
	}

	var unset []models.ContractSignature
	err = d.db.WithContext(ctx).
		Select("contract_signatures.*").
		Joins("JOIN contracts ON contracts.id = contract_signatures.contract_id").
		Where("contract_signatures.created_at < ?", cutoff).
		Where("(contract_signatures.role = ? AND contracts.signed_at_buyer IS NULL) OR (contract_signatures.role = ? AND contracts.signed_at_seller IS NULL)",
			enums.PartyRoleBuyer, enums.PartyRoleSeller).
		Order("contract_signatures.created_at ASC").
		Find(&unset).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan for half-recorded signatures")
	}

	orphans := make([]OrphanedSignature, 0, len(missing)+len(unset))
	for _, row := range missing {
		orphans = append(orphans, newOrphan(row, ReasonMissingContract))
	}
	for _, row := range unset {
		orphans = append(orphans, newOrphan(row, ReasonUnsetSignedAt))
	}

	for _, role := range []enums.PartyRole{enums.PartyRoleBuyer, enums.PartyRoleSeller} {
		unbacked, err := d.stampsWithoutRows(ctx, cutoff, role)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan for unbacked signature stamps")
		}
		for _, contract := range unbacked {
			userID := contract.BuyerID
			stamp := contract.SignedAtBuyer
			if role == enums.PartyRoleSeller {
				userID = contract.SellerID
				stamp = contract.SignedAtSeller
			}
			orphans = append(orphans, OrphanedSignature{
				ContractID: contract.ID,
				UserID:     userID,
				Role:       role,
				SignedAt:   *stamp,
				Reason:     ReasonMissingSignatureRow,
			})
		}
	}

	d.metrics.SetOrphanedSignatures(len(orphans))
	if len(orphans) > 0 && d.logg != nil {
		d.logg.Warn(d.logg.WithField(ctx, "orphan_count", len(orphans)), "orphaned signatures detected")
	}

	return &Report{
		Orphans:   orphans,
		CheckedAt: d.now().UTC(),
	}, nil
}

func (d *Detector) stampsWithoutRows(ctx context.Context, cutoff time.Time, role enums.PartyRole) ([]models.Contract, error) {
	column := "signed_at_buyer"
	if role == enums.PartyRoleSeller {
		column = "signed_at_seller"
	}
	var rows []models.Contract
	err := d.db.WithContext(ctx).
		Where(column+" IS NOT NULL AND "+column+" < ?", cutoff).
		Where("id NOT IN (?)", d.db.Model(&models.ContractSignature{}).
			Select("contract_id").Where("role = ?", role)).
		Order(column + " ASC").
		Find(&rows).Error
	return rows, err
}

func newOrphan(row models.ContractSignature, reason string) OrphanedSignature {
	return OrphanedSignature{
		SignatureID: row.ID,
		ContractID:  row.ContractID,
		UserID:      row.UserID,
		Role:        row.Role,
		Method:      row.Method,
		SignedAt:    row.SignedAt,
		Reason:      reason,
	}
}
