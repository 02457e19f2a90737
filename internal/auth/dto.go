package auth

import (
	"github.com/khidmaty/khidmaty-backend/internal/users"
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
)

// RegisterRequest contains the payload for onboarding a marketplace user.
type RegisterRequest struct {
	FullName        string          `json:"full_name" validate:"required"`
	Email           string          `json:"email" validate:"required,email"`
	Password        string          `json:"password" validate:"required,min=8"`
	Phone           *string         `json:"phone,omitempty"`
	Role            enums.PartyRole `json:"role" validate:"required"`
	PreferredLocale enums.Locale    `json:"preferred_locale,omitempty"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the token pair and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// RefreshRequest rotates a refresh token against the expired access token's session.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse carries the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
