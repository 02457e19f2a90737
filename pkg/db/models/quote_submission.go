package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/khidmaty/khidmaty-backend/pkg/enums"
)

// QuoteSubmission is a seller's priced offer against a maintenance request.
// BuyerID is denormalized from the request so contract creation never needs a
// join.
type QuoteSubmission struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID     uuid.UUID         `gorm:"column:request_id;type:uuid;not null"`
	SellerID      uuid.UUID         `gorm:"column:seller_id;type:uuid;not null"`
	BuyerID       uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null"`
	Price         decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	EstimatedDays int               `gorm:"column:estimated_days;not null"`
	Notes         *string           `gorm:"column:notes;type:text"`
	Status        enums.QuoteStatus `gorm:"column:status;type:quote_status;not null;default:'pending'"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
