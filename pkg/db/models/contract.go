package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	"github.com/khidmaty/khidmaty-backend/pkg/types"
)

// Contract binds a buyer and a seller over exactly one engagement, either a
// booking or an accepted quote. Metadata is a snapshot frozen at creation so
// the signed document cannot drift with later engagement edits.
type Contract struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID        uuid.UUID            `gorm:"column:buyer_id;type:uuid;not null"`
	SellerID       uuid.UUID            `gorm:"column:seller_id;type:uuid;not null"`
	BookingID      *uuid.UUID           `gorm:"column:booking_id;type:uuid"`
	QuoteID        *uuid.UUID           `gorm:"column:quote_id;type:uuid"`
	Status         enums.ContractStatus `gorm:"column:status;type:contract_status;not null;default:'pending_buyer'"`
	Version        int                  `gorm:"column:version;not null;default:1"`
	Metadata       types.JSONMap        `gorm:"column:metadata;type:jsonb;not null"`
	SignedAtBuyer  *time.Time           `gorm:"column:signed_at_buyer"`
	SignedAtSeller *time.Time           `gorm:"column:signed_at_seller"`
	ExecutedAt     *time.Time           `gorm:"column:executed_at"`
	Terms          *BindingTerms        `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
	Signatures     []ContractSignature  `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// EngagementID returns whichever engagement reference is set.
func (c Contract) EngagementID() uuid.UUID {
	if c.BookingID != nil {
		return *c.BookingID
	}
	if c.QuoteID != nil {
		return *c.QuoteID
	}
	return uuid.Nil
}

// SignedAt returns the signature stamp for the given role.
func (c Contract) SignedAt(role enums.PartyRole) *time.Time {
	if role == enums.PartyRoleBuyer {
		return c.SignedAtBuyer
	}
	return c.SignedAtSeller
}

// RoleOf maps a user id onto their side of the contract. The boolean is false
// when the user is not a party.
func (c Contract) RoleOf(userID uuid.UUID) (enums.PartyRole, bool) {
	switch userID {
	case c.BuyerID:
		return enums.PartyRoleBuyer, true
	case c.SellerID:
		return enums.PartyRoleSeller, true
	default:
		return "", false
	}
}
