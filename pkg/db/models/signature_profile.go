package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/khidmaty/khidmaty-backend/pkg/enums"
)

// SignatureProfile is a user's stored signature artifact, the raw input that
// gets hashed into each contract signature.
type SignatureProfile struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID             `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Method    enums.SignatureMethod `gorm:"column:method;type:signature_method;not null"`
	Artifact  string                `gorm:"column:artifact;type:text;not null"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
