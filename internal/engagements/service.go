package engagements

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khidmaty/khidmaty-backend/pkg/db/models"
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	pkgerrors "github.com/khidmaty/khidmaty-backend/pkg/errors"
	"github.com/khidmaty/khidmaty-backend/pkg/logger"
	"github.com/khidmaty/khidmaty-backend/pkg/outbox"
	"github.com/khidmaty/khidmaty-backend/pkg/outbox/payloads"
)

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes the pre-contract negotiation flows.
type Service interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (uuid.UUID, error)
	RespondBooking(ctx context.Context, input RespondBookingInput) error
	CreateRequest(ctx context.Context, input CreateRequestInput) (uuid.UUID, error)
	SubmitQuote(ctx context.Context, input SubmitQuoteInput) (uuid.UUID, error)
	List(ctx context.Context, userID uuid.UUID, role enums.PartyRole) (*EngagementList, error)
}

type service struct {
	repo   Repository
	outbox outboxPublisher
	db     *gorm.DB
	logg   *logger.Logger
}

// NewService builds the engagement negotiation service.
func NewService(repo Repository, publisher outboxPublisher, db *gorm.DB, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("engagements repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, outbox: publisher, db: db, logg: logg}, nil
}

func (s *service) CreateBooking(ctx context.Context, input CreateBookingInput) (uuid.UUID, error) {
	if input.BuyerID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.SellerID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if input.BuyerID == input.SellerID {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer cannot book themselves")
	}
	if !input.ServiceCategory.IsValid() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid service category")
	}
	if input.ScheduledDate.IsZero() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "scheduled date required")
	}
	if input.OfferedPrice.IsNegative() || input.OfferedPrice.IsZero() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "offered price must be positive")
	}

	timePreference := input.TimePreference
	if timePreference == "" {
		timePreference = enums.TimePreferenceAny
	}
	booking := &models.BookingRequest{
		BuyerID:         input.BuyerID,
		SellerID:        input.SellerID,
		ServiceCategory: input.ServiceCategory,
		ScheduledDate:   input.ScheduledDate,
		TimePreference:  timePreference,
		Location:        input.Location,
		OfferedPrice:    input.OfferedPrice,
		Status:          enums.BookingStatusPending,
	}
	created, err := s.repo.CreateBooking(ctx, booking)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
	}
	return created.ID, nil
}

func (s *service) RespondBooking(ctx context.Context, input RespondBookingInput) error {
	if input.BookingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if input.SellerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.CounterPrice == nil && input.CounterDate == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "counter price or counter date required")
	}
	if input.CounterPrice != nil && !input.CounterPrice.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "counter price must be positive")
	}
	if input.CounterNotes != nil && strings.TrimSpace(*input.CounterNotes) == "" {
		input.CounterNotes = nil
	}

	booking, err := s.repo.FindBooking(ctx, input.BookingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking.SellerID != input.SellerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "booking does not belong to seller")
	}
	if booking.Status != enums.BookingStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is not awaiting a seller response")
	}

	updates := map[string]any{
		"status":     enums.BookingStatusSellerResponded,
		"updated_at": time.Now(),
	}
	if input.CounterPrice != nil {
		updates["counter_price"] = *input.CounterPrice
	}
	if input.CounterDate != nil {
		updates["counter_date"] = *input.CounterDate
	}
	if input.CounterNotes != nil {
		updates["counter_notes"] = *input.CounterNotes
	}
	countered, err := s.repo.SetBookingCounter(ctx, booking.ID, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save counter offer")
	}
	if !countered {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "booking state changed before counter offer")
	}

	s.emitBestEffort(ctx, outbox.DomainEvent{
		EventType:     enums.EventBookingCountered,
		AggregateType: enums.AggregateBookingRequest,
		AggregateID:   booking.ID,
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: input.SellerID, Role: enums.PartyRoleSeller.String()},
		Data: payloads.BookingCounteredEvent{
			BookingID:    booking.ID,
			BuyerID:      booking.BuyerID,
			SellerID:     booking.SellerID,
			CounterPrice: input.CounterPrice,
			CounterDate:  input.CounterDate,
		},
	})
	s.emitBestEffort(ctx, outbox.DomainEvent{
		EventType:     enums.EventNotificationRequested,
		AggregateType: enums.AggregateNotification,
		AggregateID:   booking.BuyerID,
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: input.SellerID, Role: enums.PartyRoleSeller.String()},
		Data: payloads.NotificationRequestedEvent{
			UserID: booking.BuyerID,
			Type:   enums.NotificationTypeBookingResponse,
			Link:   "/bookings/" + booking.ID.String(),
		},
	})
	return nil
}

func (s *service) CreateRequest(ctx context.Context, input CreateRequestInput) (uuid.UUID, error) {
	if input.BuyerID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.Title) == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "description required")
	}
	if !input.ServiceCategory.IsValid() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid service category")
	}

	timePreference := input.TimePreference
	if timePreference == "" {
		timePreference = enums.TimePreferenceAny
	}
	request := &models.MaintenanceRequest{
		BuyerID:         input.BuyerID,
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		ServiceCategory: input.ServiceCategory,
		Location:        input.Location,
		PreferredDate:   input.PreferredDate,
		TimePreference:  timePreference,
		Status:          enums.MaintenanceStatusOpen,
	}
	created, err := s.repo.CreateRequest(ctx, request)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create maintenance request")
	}
	return created.ID, nil
}

func (s *service) SubmitQuote(ctx context.Context, input SubmitQuoteInput) (uuid.UUID, error) {
	if input.SellerID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.RequestID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if !input.Price.IsPositive() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.EstimatedDays <= 0 {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "estimated days must be positive")
	}

	request, err := s.repo.FindRequest(ctx, input.RequestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "maintenance request not found")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load maintenance request")
	}
	if request.BuyerID == input.SellerID {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "buyer cannot quote their own request")
	}
	if request.Status != enums.MaintenanceStatusOpen && request.Status != enums.MaintenanceStatusQuoted {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request is no longer open for quotes")
	}

	quote := &models.QuoteSubmission{
		RequestID:     request.ID,
		SellerID:      input.SellerID,
		BuyerID:       request.BuyerID,
		Price:         input.Price,
		EstimatedDays: input.EstimatedDays,
		Notes:         input.Notes,
		Status:        enums.QuoteStatusPending,
	}
	created, err := s.repo.CreateQuote(ctx, quote)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote")
	}

	if request.Status == enums.MaintenanceStatusOpen {
		if err := s.repo.UpdateRequestStatus(ctx, request.ID, enums.MaintenanceStatusQuoted); err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark request quoted")
		}
	}

	s.emitBestEffort(ctx, outbox.DomainEvent{
		EventType:     enums.EventQuoteSubmitted,
		AggregateType: enums.AggregateQuoteSubmission,
		AggregateID:   created.ID,
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: input.SellerID, Role: enums.PartyRoleSeller.String()},
		Data: payloads.QuoteSubmittedEvent{
			QuoteID:   created.ID,
			RequestID: request.ID,
			BuyerID:   request.BuyerID,
			SellerID:  input.SellerID,
			Price:     input.Price,
		},
	})
	s.emitBestEffort(ctx, outbox.DomainEvent{
		EventType:     enums.EventNotificationRequested,
		AggregateType: enums.AggregateNotification,
		AggregateID:   request.BuyerID,
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: input.SellerID, Role: enums.PartyRoleSeller.String()},
		Data: payloads.NotificationRequestedEvent{
			UserID: request.BuyerID,
			Type:   enums.NotificationTypeQuoteReceived,
			Link:   "/requests/" + request.ID.String(),
		},
	})
	return created.ID, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, role enums.PartyRole) (*EngagementList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid party role")
	}

	list := &EngagementList{}

	bookings, err := s.repo.ListBookingsByParty(ctx, userID, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	for _, booking := range bookings {
		list.Bookings = append(list.Bookings, BookingSummary{
			ID:              booking.ID,
			BuyerID:         booking.BuyerID,
			SellerID:        booking.SellerID,
			ServiceCategory: booking.ServiceCategory,
			ScheduledDate:   booking.ScheduledDate,
			OfferedPrice:    booking.OfferedPrice,
			CounterPrice:    booking.CounterPrice,
			Status:          booking.Status,
			CreatedAt:       booking.CreatedAt,
		})
	}

	if role == enums.PartyRoleBuyer {
		requests, err := s.repo.ListRequestsByBuyer(ctx, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
		}
		for _, request := range requests {
			list.Requests = append(list.Requests, RequestSummary{
				ID:              request.ID,
				Title:           request.Title,
				ServiceCategory: request.ServiceCategory,
				Status:          request.Status,
				QuoteCount:      len(request.Quotes),
				CreatedAt:       request.CreatedAt,
			})
			for _, quote := range request.Quotes {
				list.Quotes = append(list.Quotes, quoteSummary(quote))
			}
		}
		return list, nil
	}

	quotes, err := s.repo.ListQuotesBySeller(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotes")
	}
	for _, quote := range quotes {
		list.Quotes = append(list.Quotes, quoteSummary(quote))
	}
	return list, nil
}

func quoteSummary(quote models.QuoteSubmission) QuoteSummary {
	return QuoteSummary{
		ID:            quote.ID,
		RequestID:     quote.RequestID,
		SellerID:      quote.SellerID,
		Price:         quote.Price,
		EstimatedDays: quote.EstimatedDays,
		Notes:         quote.Notes,
		Status:        quote.Status,
		CreatedAt:     quote.CreatedAt,
	}
}

func (s *service) emitBestEffort(ctx context.Context, event outbox.DomainEvent) {
	if err := s.outbox.Emit(ctx, s.db, event); err != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event_type":   event.EventType,
			"aggregate_id": event.AggregateID.String(),
		})
		s.logg.Error(logCtx, "emit engagement event failed", err)
	}
}
