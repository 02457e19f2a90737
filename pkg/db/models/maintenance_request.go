package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	"github.com/khidmaty/khidmaty-backend/pkg/types"
)

// MaintenanceRequest is a buyer-posted job that sellers quote against.
type MaintenanceRequest struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID         uuid.UUID               `gorm:"column:buyer_id;type:uuid;not null"`
	Title           string                  `gorm:"column:title;type:text;not null"`
	Description     string                  `gorm:"column:description;type:text;not null"`
	ServiceCategory enums.ServiceCategory   `gorm:"column:service_category;type:service_category;not null"`
	Location        types.Location          `gorm:"column:location;type:jsonb;not null"`
	PreferredDate   *time.Time              `gorm:"column:preferred_date"`
	TimePreference  enums.TimePreference    `gorm:"column:time_preference;type:time_preference;not null;default:'any'"`
	Status          enums.MaintenanceStatus `gorm:"column:status;type:maintenance_status;not null;default:'open'"`
	Quotes          []QuoteSubmission       `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
