package engagements

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	"github.com/khidmaty/khidmaty-backend/pkg/types"
)

// CreateBookingInput opens a direct booking against a seller.
type CreateBookingInput struct {
	BuyerID         uuid.UUID
	SellerID        uuid.UUID
	ServiceCategory enums.ServiceCategory
	ScheduledDate   time.Time
	TimePreference  enums.TimePreference
	Location        types.Location
	OfferedPrice    decimal.Decimal
}

// RespondBookingInput records the seller's counter-offer.
type RespondBookingInput struct {
	BookingID    uuid.UUID
	SellerID     uuid.UUID
	CounterPrice *decimal.Decimal
	CounterDate  *time.Time
	CounterNotes *string
}

// CreateRequestInput posts a maintenance request sellers can quote on.
type CreateRequestInput struct {
	BuyerID         uuid.UUID
	Title           string
	Description     string
	ServiceCategory enums.ServiceCategory
	Location        types.Location
	PreferredDate   *time.Time
	TimePreference  enums.TimePreference
}

// SubmitQuoteInput is a seller's priced offer on an open request.
type SubmitQuoteInput struct {
	RequestID     uuid.UUID
	SellerID      uuid.UUID
	Price         decimal.Decimal
	EstimatedDays int
	Notes         *string
}

// BookingSummary is one row of the role-scoped engagement list.
type BookingSummary struct {
	ID              uuid.UUID             `json:"id"`
	BuyerID         uuid.UUID             `json:"buyer_id"`
	SellerID        uuid.UUID             `json:"seller_id"`
	ServiceCategory enums.ServiceCategory `json:"service_category"`
	ScheduledDate   time.Time             `json:"scheduled_date"`
	OfferedPrice    decimal.Decimal       `json:"offered_price"`
	CounterPrice    *decimal.Decimal      `json:"counter_price,omitempty"`
	Status          enums.BookingStatus   `json:"status"`
	CreatedAt       time.Time             `json:"created_at"`
}

// RequestSummary is one maintenance request row plus its quote count.
type RequestSummary struct {
	ID              uuid.UUID               `json:"id"`
	Title           string                  `json:"title"`
	ServiceCategory enums.ServiceCategory   `json:"service_category"`
	Status          enums.MaintenanceStatus `json:"status"`
	QuoteCount      int                     `json:"quote_count"`
	CreatedAt       time.Time               `json:"created_at"`
}

// QuoteSummary is one quote row as seen by buyer or seller.
type QuoteSummary struct {
	ID            uuid.UUID         `json:"id"`
	RequestID     uuid.UUID         `json:"request_id"`
	SellerID      uuid.UUID         `json:"seller_id"`
	Price         decimal.Decimal   `json:"price"`
	EstimatedDays int               `json:"estimated_days"`
	Notes         *string           `json:"notes,omitempty"`
	Status        enums.QuoteStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}

// EngagementList is the combined role-scoped view.
type EngagementList struct {
	Bookings []BookingSummary `json:"bookings"`
	Requests []RequestSummary `json:"requests"`
	Quotes   []QuoteSummary   `json:"quotes"`
}
