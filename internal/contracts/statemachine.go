package contracts

import (
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
)

// operation names a lifecycle action for transition checks.
type operation string

const (
	opSign        operation = "sign"
	opWithdraw    operation = "withdraw"
	opReject      operation = "reject"
	opUpdateTerms operation = "update_terms"
)

// allowedFrom is the single source of truth for which statuses permit which
// operations. Anything not listed is disallowed.
var allowedFrom = map[operation][]enums.ContractStatus{
	opSign:        {enums.ContractStatusPendingBuyer, enums.ContractStatusPendingSeller},
	opWithdraw:    {enums.ContractStatusPendingBuyer, enums.ContractStatusPendingSeller},
	opReject:      {enums.ContractStatusPendingBuyer, enums.ContractStatusPendingSeller},
	opUpdateTerms: {enums.ContractStatusPendingBuyer, enums.ContractStatusPendingSeller},
}

func allows(op operation, current enums.ContractStatus) bool {
	for _, status := range allowedFrom[op] {
		if status == current {
			return true
		}
	}
	return false
}

// statusAfterSignature returns the label carried while one signature is still
// outstanding. The status names the party whose turn it is, not the party who
// just signed.
func statusAfterSignature(signer enums.PartyRole) enums.ContractStatus {
	if signer == enums.PartyRoleBuyer {
		return enums.ContractStatusPendingSeller
	}
	return enums.ContractStatusPendingBuyer
}
