package contracts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	"github.com/khidmaty/khidmaty-backend/pkg/types"
)

// EngagementKind distinguishes the two contract sources.
type EngagementKind string

const (
	EngagementKindBooking EngagementKind = "booking"
	EngagementKindQuote   EngagementKind = "quote"
)

// CreateInput carries the buyer's acceptance of an engagement.
type CreateInput struct {
	ActorUserID  uuid.UUID
	Kind         EngagementKind
	EngagementID uuid.UUID
	Terms        *TermsInput
}

// TermsInput is the optional binding terms document supplied at creation or
// via UpdateTerms.
type TermsInput struct {
	StartDate       time.Time
	CompletionDate  time.Time
	WarrantyDays    int
	PaymentSchedule types.JSONMap
}

// SignInput records one party's act of signing.
type SignInput struct {
	ContractID  uuid.UUID
	ActorUserID uuid.UUID
	Method      enums.SignatureMethod
}

// WithdrawInput retracts a lone signature before the counterparty signs.
type WithdrawInput struct {
	ContractID  uuid.UUID
	ActorUserID uuid.UUID
}

// RejectInput declines a pending contract terminally.
type RejectInput struct {
	ContractID  uuid.UUID
	ActorUserID uuid.UUID
	Reason      string
}

// UpdateTermsInput replaces the binding terms before execution.
type UpdateTermsInput struct {
	ContractID  uuid.UUID
	ActorUserID uuid.UUID
	Terms       TermsInput
}

// MetadataSnapshot is the engagement state frozen into contract metadata at
// creation time. Later engagement edits do not touch it.
type MetadataSnapshot struct {
	FinalPrice      decimal.Decimal       `json:"final_price"`
	ScheduledDate   *time.Time            `json:"scheduled_date,omitempty"`
	TimePreference  enums.TimePreference  `json:"time_preference,omitempty"`
	ServiceCategory enums.ServiceCategory `json:"service_category"`
	Location        *types.Location       `json:"location,omitempty"`
}

// ListFilters narrows the contract list endpoints.
type ListFilters struct {
	Status *enums.ContractStatus
	Kind   *EngagementKind
}

// ContractSummary is one row of a party's contract list.
type ContractSummary struct {
	ID             uuid.UUID            `json:"id"`
	Status         enums.ContractStatus `json:"status"`
	Version        int                  `json:"version"`
	CounterpartyID uuid.UUID            `json:"counterparty_id"`
	BookingID      *uuid.UUID           `json:"booking_id,omitempty"`
	QuoteID        *uuid.UUID           `json:"quote_id,omitempty"`
	ExecutedAt     *time.Time           `json:"executed_at,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// ContractList wraps paginated summaries plus the next page cursor.
type ContractList struct {
	Contracts  []ContractSummary `json:"contracts"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// SignatureView exposes one signature row on the detail endpoint.
type SignatureView struct {
	UserID   uuid.UUID             `json:"user_id"`
	Role     enums.PartyRole       `json:"role"`
	Version  int                   `json:"version"`
	Method   enums.SignatureMethod `json:"method"`
	SignedAt time.Time             `json:"signed_at"`
}

// TermsView exposes the binding terms on the detail endpoint.
type TermsView struct {
	StartDate       time.Time     `json:"start_date"`
	CompletionDate  time.Time     `json:"completion_date"`
	WarrantyDays    int           `json:"warranty_days"`
	PaymentSchedule types.JSONMap `json:"payment_schedule"`
}

// ContractDetail is the full view returned to either party.
type ContractDetail struct {
	ID             uuid.UUID            `json:"id"`
	BuyerID        uuid.UUID            `json:"buyer_id"`
	SellerID       uuid.UUID            `json:"seller_id"`
	BookingID      *uuid.UUID           `json:"booking_id,omitempty"`
	QuoteID        *uuid.UUID           `json:"quote_id,omitempty"`
	Status         enums.ContractStatus `json:"status"`
	Version        int                  `json:"version"`
	Metadata       types.JSONMap        `json:"metadata"`
	SignedAtBuyer  *time.Time           `json:"signed_at_buyer,omitempty"`
	SignedAtSeller *time.Time           `json:"signed_at_seller,omitempty"`
	ExecutedAt     *time.Time           `json:"executed_at,omitempty"`
	Terms          *TermsView           `json:"terms,omitempty"`
	Signatures     []SignatureView      `json:"signatures"`
	CreatedAt      time.Time            `json:"created_at"`
}
