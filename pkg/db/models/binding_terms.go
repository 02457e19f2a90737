package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/khidmaty/khidmaty-backend/pkg/types"
)

// BindingTerms is the 1:1 child document of a contract holding the terms the
// parties sign. The buyer may edit it until the contract executes.
type BindingTerms struct {
	ID              uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ContractID      uuid.UUID     `gorm:"column:contract_id;type:uuid;not null;uniqueIndex"`
	StartDate       time.Time     `gorm:"column:start_date;not null"`
	CompletionDate  time.Time     `gorm:"column:completion_date;not null"`
	WarrantyDays    int           `gorm:"column:warranty_days;not null;default:0"`
	PaymentSchedule types.JSONMap `gorm:"column:payment_schedule;type:jsonb;not null"`
	CreatedAt       time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps GORM from mangling the already-plural name.
func (BindingTerms) TableName() string {
	return "binding_terms"
}
