package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/khidmaty/khidmaty-backend/pkg/enums"
)

// ContractCreatedEvent signals a new contract awaiting its first signature.
type ContractCreatedEvent struct {
	ContractID uuid.UUID            `json:"contract_id"`
	BuyerID    uuid.UUID            `json:"buyer_id"`
	SellerID   uuid.UUID            `json:"seller_id"`
	BookingID  *uuid.UUID           `json:"booking_id,omitempty"`
	QuoteID    *uuid.UUID           `json:"quote_id,omitempty"`
	Status     enums.ContractStatus `json:"status"`
	Version    int                  `json:"version"`
	FinalPrice decimal.Decimal      `json:"final_price"`
}

// ContractSignedEvent is emitted after one party's signature lands.
type ContractSignedEvent struct {
	ContractID uuid.UUID            `json:"contract_id"`
	SignerID   uuid.UUID            `json:"signer_id"`
	SignerRole enums.PartyRole      `json:"signer_role"`
	Status     enums.ContractStatus `json:"status"`
	Version    int                  `json:"version"`
	SignedAt   time.Time            `json:"signed_at"`
}

// ContractExecutedEvent fires when both signatures are collected.
type ContractExecutedEvent struct {
	ContractID uuid.UUID  `json:"contract_id"`
	BuyerID    uuid.UUID  `json:"buyer_id"`
	SellerID   uuid.UUID  `json:"seller_id"`
	BookingID  *uuid.UUID `json:"booking_id,omitempty"`
	QuoteID    *uuid.UUID `json:"quote_id,omitempty"`
	ExecutedAt time.Time  `json:"executed_at"`
}

// ContractWithdrawnEvent reports a sole-signer withdrawal and deletion.
type ContractWithdrawnEvent struct {
	ContractID  uuid.UUID       `json:"contract_id"`
	WithdrawnBy uuid.UUID       `json:"withdrawn_by"`
	Role        enums.PartyRole `json:"role"`
	BookingID   *uuid.UUID      `json:"booking_id,omitempty"`
	QuoteID     *uuid.UUID      `json:"quote_id,omitempty"`
	WithdrawnAt time.Time       `json:"withdrawn_at"`
}

// ContractRejectedEvent reports a terminal rejection; the row is retained.
type ContractRejectedEvent struct {
	ContractID uuid.UUID       `json:"contract_id"`
	RejectedBy uuid.UUID       `json:"rejected_by"`
	Role       enums.PartyRole `json:"role"`
	Reason     string          `json:"reason,omitempty"`
	RejectedAt time.Time       `json:"rejected_at"`
}

// ContractTermsUpdatedEvent is emitted when the buyer edits binding terms and
// the contract version advances.
type ContractTermsUpdatedEvent struct {
	ContractID  uuid.UUID `json:"contract_id"`
	UpdatedBy   uuid.UUID `json:"updated_by"`
	FromVersion int       `json:"from_version"`
	ToVersion   int       `json:"to_version"`
}

// BookingCounteredEvent tells the buyer their booking got a counter-offer.
type BookingCounteredEvent struct {
	BookingID    uuid.UUID        `json:"booking_id"`
	BuyerID      uuid.UUID        `json:"buyer_id"`
	SellerID     uuid.UUID        `json:"seller_id"`
	CounterPrice *decimal.Decimal `json:"counter_price,omitempty"`
	CounterDate  *time.Time       `json:"counter_date,omitempty"`
}

// QuoteSubmittedEvent tells the buyer a new quote arrived on their request.
type QuoteSubmittedEvent struct {
	QuoteID   uuid.UUID       `json:"quote_id"`
	RequestID uuid.UUID       `json:"request_id"`
	BuyerID   uuid.UUID       `json:"buyer_id"`
	SellerID  uuid.UUID       `json:"seller_id"`
	Price     decimal.Decimal `json:"price"`
}

// NotificationRequestedEvent asks the worker to fan a notification out.
type NotificationRequestedEvent struct {
	UserID uuid.UUID              `json:"user_id"`
	Type   enums.NotificationType `json:"type"`
	Link   string                 `json:"link,omitempty"`
}
