package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/khidmaty/khidmaty-backend/pkg/enums"
)

// ContractSignature is an append-only record of one party signing one version
// of a contract. The hash binds the signature to the exact document content.
type ContractSignature struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ContractID    uuid.UUID             `gorm:"column:contract_id;type:uuid;not null;index"`
	UserID        uuid.UUID             `gorm:"column:user_id;type:uuid;not null"`
	Role          enums.PartyRole       `gorm:"column:role;type:party_role;not null"`
	Version       int                   `gorm:"column:version;not null"`
	SignatureHash string                `gorm:"column:signature_hash;type:text;not null"`
	Method        enums.SignatureMethod `gorm:"column:method;type:signature_method;not null"`
	SignedAt      time.Time             `gorm:"column:signed_at;not null"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
}
