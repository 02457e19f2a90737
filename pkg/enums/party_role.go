package enums

import "fmt"

// PartyRole identifies which side of a contract a user stands on.
type PartyRole string

const (
	PartyRoleBuyer  PartyRole = "buyer"
	PartyRoleSeller PartyRole = "seller"
)

var validPartyRoles = []PartyRole{
	PartyRoleBuyer,
	PartyRoleSeller,
}

// String implements fmt.Stringer.
func (p PartyRole) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PartyRole.
func (p PartyRole) IsValid() bool {
	for _, candidate := range validPartyRoles {
		if candidate == p {
			return true
		}
	}
	return false
}

// Counterparty returns the opposite side of the contract.
func (p PartyRole) Counterparty() PartyRole {
	if p == PartyRoleBuyer {
		return PartyRoleSeller
	}
	return PartyRoleBuyer
}

// ParsePartyRole converts raw input into a PartyRole.
func ParsePartyRole(value string) (PartyRole, error) {
	for _, candidate := range validPartyRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid party role %q", value)
}
