package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/khidmaty/khidmaty-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email           string          `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash    string          `gorm:"column:password_hash;not null"`
	FullName        string          `gorm:"column:full_name;not null"`
	Phone           *string         `gorm:"column:phone"`
	Role            enums.PartyRole `gorm:"column:role;type:party_role;not null"`
	PreferredLocale enums.Locale    `gorm:"column:preferred_locale;type:locale;not null;default:'ar'"`
	IsActive        bool            `gorm:"column:is_active;not null;default:true"`
	LastLoginAt     *time.Time      `gorm:"column:last_login_at"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
