package engagements

import (
	"context"
	"fmt"

	"github.com/khidmaty/khidmaty-backend/pkg/db/models"
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	"github.com/khidmaty/khidmaty-backend/pkg/logger"
)

// Propagator projects contract lifecycle transitions back onto the
// originating booking or quote. UI surfaces read the engagement status, not
// the contract's, so these writes are load-bearing.
type Propagator struct {
	repo Repository
	logg *logger.Logger
}

// NewPropagator wires the status projection onto the engagement tables.
func NewPropagator(repo Repository, logg *logger.Logger) (*Propagator, error) {
	if repo == nil {
		return nil, fmt.Errorf("engagements repository required")
	}
	return &Propagator{repo: repo, logg: logg}, nil
}

// OnExecuted marks the engagement as won: booking accepted, or quote accepted
// with its maintenance request assigned.
func (p *Propagator) OnExecuted(ctx context.Context, contract *models.Contract) error {
	if contract.BookingID != nil {
		if err := p.repo.UpdateBookingStatus(ctx, *contract.BookingID, enums.BookingStatusAccepted); err != nil {
			return fmt.Errorf("accept booking: %w", err)
		}
		if p.logg != nil {
			p.logg.Info(p.logg.WithContractID(ctx, contract.ID.String()), "booking accepted on contract execution")
		}
		return nil
	}
	if contract.QuoteID != nil {
		quote, err := p.repo.FindQuote(ctx, *contract.QuoteID)
		if err != nil {
			return fmt.Errorf("load quote for execution: %w", err)
		}
		if err := p.repo.UpdateQuoteStatus(ctx, quote.ID, enums.QuoteStatusAccepted); err != nil {
			return fmt.Errorf("accept quote: %w", err)
		}
		if err := p.repo.UpdateRequestStatus(ctx, quote.RequestID, enums.MaintenanceStatusAssigned); err != nil {
			return fmt.Errorf("assign maintenance request: %w", err)
		}
		return nil
	}
	return fmt.Errorf("contract %s has no engagement reference", contract.ID)
}

// OnWithdrawn reverts the engagement to its pre-contract negotiation state so
// the parties can resume or re-accept.
func (p *Propagator) OnWithdrawn(ctx context.Context, contract *models.Contract) error {
	if contract.BookingID != nil {
		return p.repo.UpdateBookingStatus(ctx, *contract.BookingID, enums.BookingStatusSellerResponded)
	}
	if contract.QuoteID != nil {
		return p.repo.UpdateQuoteStatus(ctx, *contract.QuoteID, enums.QuoteStatusPending)
	}
	return fmt.Errorf("contract %s has no engagement reference", contract.ID)
}

// OnRejected marks the engagement rejected. The maintenance request stays
// open so other quotes remain actionable.
func (p *Propagator) OnRejected(ctx context.Context, contract *models.Contract) error {
	if contract.BookingID != nil {
		return p.repo.UpdateBookingStatus(ctx, *contract.BookingID, enums.BookingStatusRejected)
	}
	if contract.QuoteID != nil {
		return p.repo.UpdateQuoteStatus(ctx, *contract.QuoteID, enums.QuoteStatusRejected)
	}
	return fmt.Errorf("contract %s has no engagement reference", contract.ID)
}
