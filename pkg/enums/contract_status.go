package enums

import "fmt"

// ContractStatus tracks the lifecycle of a service contract. The pending
// states name the party whose signature is still outstanding.
type ContractStatus string

const (
	ContractStatusPendingBuyer  ContractStatus = "pending_buyer"
	ContractStatusPendingSeller ContractStatus = "pending_seller"
	ContractStatusExecuted      ContractStatus = "executed"
	ContractStatusRejected      ContractStatus = "rejected"
)

var validContractStatuses = []ContractStatus{
	ContractStatusPendingBuyer,
	ContractStatusPendingSeller,
	ContractStatusExecuted,
	ContractStatusRejected,
}

// String implements fmt.Stringer.
func (c ContractStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ContractStatus.
func (c ContractStatus) IsValid() bool {
	for _, candidate := range validContractStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsPending reports whether the contract is still collecting signatures.
func (c ContractStatus) IsPending() bool {
	return c == ContractStatusPendingBuyer || c == ContractStatusPendingSeller
}

// IsTerminal reports whether no further transitions are allowed.
func (c ContractStatus) IsTerminal() bool {
	return c == ContractStatusExecuted || c == ContractStatusRejected
}

// ParseContractStatus converts raw input into a ContractStatus.
func ParseContractStatus(value string) (ContractStatus, error) {
	for _, candidate := range validContractStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contract status %q", value)
}
