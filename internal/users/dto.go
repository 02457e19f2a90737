package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/khidmaty/khidmaty-backend/pkg/db/models"
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID              uuid.UUID       `json:"id"`
	Email           string          `json:"email"`
	FullName        string          `json:"full_name"`
	Phone           *string         `json:"phone,omitempty"`
	Role            enums.PartyRole `json:"role"`
	PreferredLocale enums.Locale    `json:"preferred_locale"`
	IsActive        bool            `json:"is_active"`
	LastLoginAt     *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email           string
	PasswordHash    string
	FullName        string
	Phone           *string
	Role            enums.PartyRole
	PreferredLocale enums.Locale
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:              u.ID,
		Email:           u.Email,
		FullName:        u.FullName,
		Phone:           u.Phone,
		Role:            u.Role,
		PreferredLocale: u.PreferredLocale,
		IsActive:        u.IsActive,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	locale := c.PreferredLocale
	if !locale.IsValid() {
		locale = enums.LocaleArabic
	}
	return &models.User{
		Email:           c.Email,
		PasswordHash:    c.PasswordHash,
		FullName:        c.FullName,
		Phone:           c.Phone,
		Role:            c.Role,
		PreferredLocale: locale,
		IsActive:        true,
	}
}
