package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	"github.com/khidmaty/khidmaty-backend/pkg/types"
)

// BookingRequest is a direct buyer-to-seller booking. The counter fields hold
// the seller's response when they adjust price or date before acceptance.
type BookingRequest struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID         uuid.UUID             `gorm:"column:buyer_id;type:uuid;not null"`
	SellerID        uuid.UUID             `gorm:"column:seller_id;type:uuid;not null"`
	ServiceCategory enums.ServiceCategory `gorm:"column:service_category;type:service_category;not null"`
	ScheduledDate   time.Time             `gorm:"column:scheduled_date;not null"`
	TimePreference  enums.TimePreference  `gorm:"column:time_preference;type:time_preference;not null;default:'any'"`
	Location        types.Location        `gorm:"column:location;type:jsonb;not null"`
	OfferedPrice    decimal.Decimal       `gorm:"column:offered_price;type:numeric(12,2);not null"`
	CounterPrice    *decimal.Decimal      `gorm:"column:counter_price;type:numeric(12,2)"`
	CounterDate     *time.Time            `gorm:"column:counter_date"`
	CounterNotes    *string               `gorm:"column:counter_notes;type:text"`
	Status          enums.BookingStatus   `gorm:"column:status;type:booking_status;not null;default:'pending'"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
