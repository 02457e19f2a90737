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

// Repository defines persistence operations for contracts and their children.
// The conditional mutators return false when zero rows matched, which the
// service maps onto STATE_CONFLICT or ALREADY_RESOLVED.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, contract *models.Contract) (*models.Contract, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	FindByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Contract, error)
	FindByQuote(ctx context.Context, quoteID uuid.UUID) (*models.Contract, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	ListByParty(ctx context.Context, userID uuid.UUID, role enums.PartyRole, params pagination.Params, filters ListFilters) (*ContractList, error)

	SetSigned(ctx context.Context, id uuid.UUID, role enums.PartyRole, signedAt time.Time, nextStatus enums.ContractStatus) (bool, error)
	MarkExecuted(ctx context.Context, id uuid.UUID, executedAt time.Time) (bool, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.ContractStatus) (bool, error)
	ResetForNewVersion(ctx context.Context, id uuid.UUID, fromVersion int) (bool, error)
	DeleteIfSoleSigner(ctx context.Context, id uuid.UUID, expected enums.ContractStatus, signer enums.PartyRole) (bool, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)

	InsertSignature(ctx context.Context, signature *models.ContractSignature) error
	FindSignatures(ctx context.Context, contractID uuid.UUID) ([]models.ContractSignature, error)
	DeleteSignaturesByContract(ctx context.Context, contractID uuid.UUID) error

	UpsertTerms(ctx context.Context, terms *models.BindingTerms) error
	FindTerms(ctx context.Context, contractID uuid.UUID) (*models.BindingTerms, error)
	DeleteTermsByContract(ctx context.Context, contractID uuid.UUID) error
}

// EngagementReader loads the source engagement a contract snapshots.
type EngagementReader interface {
	FindBooking(ctx context.Context, id uuid.UUID) (*models.BookingRequest, error)
	FindQuote(ctx context.Context, id uuid.UUID) (*models.QuoteSubmission, error)
	FindRequest(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error)
}

// EngagementPropagator projects contract transitions back onto the
// originating booking or quote.
type EngagementPropagator interface {
	OnExecuted(ctx context.Context, contract *models.Contract) error
	OnWithdrawn(ctx context.Context, contract *models.Contract) error
	OnRejected(ctx context.Context, contract *models.Contract) error
}

// SignatureProfiles loads a user's stored signature artifact.
type SignatureProfiles interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.SignatureProfile, error)
	Upsert(ctx context.Context, profile *models.SignatureProfile) error
}
