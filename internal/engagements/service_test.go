package engagements

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	pkgerrors "github.com/khidmaty/khidmaty-backend/pkg/errors"
	"github.com/khidmaty/khidmaty-backend/pkg/outbox"
	"github.com/khidmaty/khidmaty-backend/pkg/types"
)

type captureOutbox struct {
	events []outbox.DomainEvent
}

func (c *captureOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	c.events = append(c.events, event)
	return nil
}

func newTestService(t *testing.T) (Service, Repository, *captureOutbox, *gorm.DB) {
	t.Helper()

	db := setupEngagementsTestDB(t)
	repo := NewRepository(db)
	publisher := &captureOutbox{}
	svc, err := NewService(repo, publisher, db, nil)
	require.NoError(t, err)
	return svc, repo, publisher, db
}

func assertServiceCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()

	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected coded error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestCreateBookingValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	buyerID := uuid.New()

	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		BuyerID:         buyerID,
		SellerID:        buyerID,
		ServiceCategory: enums.ServiceCategoryPlumbing,
		ScheduledDate:   time.Now().AddDate(0, 0, 2),
		OfferedPrice:    decimal.NewFromInt(100),
	})
	assertServiceCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.CreateBooking(context.Background(), CreateBookingInput{
		BuyerID:         buyerID,
		SellerID:        uuid.New(),
		ServiceCategory: "landscaping-drones",
		ScheduledDate:   time.Now().AddDate(0, 0, 2),
		OfferedPrice:    decimal.NewFromInt(100),
	})
	assertServiceCode(t, err, pkgerrors.CodeValidation)
}

func TestRespondBookingCounterOfferFlow(t *testing.T) {
	svc, repo, publisher, _ := newTestService(t)

	buyerID := uuid.New()
	sellerID := uuid.New()
	bookingID, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		BuyerID:         buyerID,
		SellerID:        sellerID,
		ServiceCategory: enums.ServiceCategoryPainting,
		ScheduledDate:   time.Now().AddDate(0, 0, 5),
		Location:        types.Location{City: "Riyadh"},
		OfferedPrice:    decimal.NewFromInt(400),
	})
	require.NoError(t, err)

	counter := decimal.NewFromInt(500)
	require.NoError(t, svc.RespondBooking(context.Background(), RespondBookingInput{
		BookingID:    bookingID,
		SellerID:     sellerID,
		CounterPrice: &counter,
	}))

	booking, err := repo.FindBooking(context.Background(), bookingID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusSellerResponded, booking.Status)
	require.NotNil(t, booking.CounterPrice)
	assert.True(t, counter.Equal(*booking.CounterPrice))

	var sawCounterEvent, sawNotification bool
	for _, event := range publisher.events {
		if event.EventType == enums.EventBookingCountered {
			sawCounterEvent = true
		}
		if event.EventType == enums.EventNotificationRequested {
			sawNotification = true
		}
	}
	assert.True(t, sawCounterEvent)
	assert.True(t, sawNotification)

	// Counter-offering twice hits the status guard.
	err = svc.RespondBooking(context.Background(), RespondBookingInput{
		BookingID:    bookingID,
		SellerID:     sellerID,
		CounterPrice: &counter,
	})
	assertServiceCode(t, err, pkgerrors.CodeStateConflict)
}

func TestRespondBookingWrongSellerForbidden(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	bookingID, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		BuyerID:         uuid.New(),
		SellerID:        uuid.New(),
		ServiceCategory: enums.ServiceCategoryCleaning,
		ScheduledDate:   time.Now().AddDate(0, 0, 1),
		Location:        types.Location{City: "Jeddah"},
		OfferedPrice:    decimal.NewFromInt(150),
	})
	require.NoError(t, err)

	counter := decimal.NewFromInt(200)
	err = svc.RespondBooking(context.Background(), RespondBookingInput{
		BookingID:    bookingID,
		SellerID:     uuid.New(),
		CounterPrice: &counter,
	})
	assertServiceCode(t, err, pkgerrors.CodeForbidden)
}

func TestSubmitQuoteMarksRequestQuoted(t *testing.T) {
	svc, repo, publisher, _ := newTestService(t)

	buyerID := uuid.New()
	requestID, err := svc.CreateRequest(context.Background(), CreateRequestInput{
		BuyerID:         buyerID,
		Title:           "ac not cooling",
		Description:     "split unit blows warm air",
		ServiceCategory: enums.ServiceCategoryHVAC,
		Location:        types.Location{City: "Dammam"},
	})
	require.NoError(t, err)

	quoteID, err := svc.SubmitQuote(context.Background(), SubmitQuoteInput{
		RequestID:     requestID,
		SellerID:      uuid.New(),
		Price:         decimal.NewFromInt(600),
		EstimatedDays: 2,
	})
	require.NoError(t, err)

	request, err := repo.FindRequest(context.Background(), requestID)
	require.NoError(t, err)
	assert.Equal(t, enums.MaintenanceStatusQuoted, request.Status)

	quote, err := repo.FindQuote(context.Background(), quoteID)
	require.NoError(t, err)
	assert.Equal(t, buyerID, quote.BuyerID, "buyer id denormalized from request")
	assert.Equal(t, enums.QuoteStatusPending, quote.Status)

	var sawQuoteEvent bool
	for _, event := range publisher.events {
		if event.EventType == enums.EventQuoteSubmitted {
			sawQuoteEvent = true
		}
	}
	assert.True(t, sawQuoteEvent)
}

func TestSubmitQuoteOnAssignedRequestConflicts(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	requestID, err := svc.CreateRequest(context.Background(), CreateRequestInput{
		BuyerID:         uuid.New(),
		Title:           "garden cleanup",
		Description:     "overgrown backyard",
		ServiceCategory: enums.ServiceCategoryGardening,
		Location:        types.Location{City: "Riyadh"},
	})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateRequestStatus(context.Background(), requestID, enums.MaintenanceStatusAssigned))

	_, err = svc.SubmitQuote(context.Background(), SubmitQuoteInput{
		RequestID:     requestID,
		SellerID:      uuid.New(),
		Price:         decimal.NewFromInt(100),
		EstimatedDays: 1,
	})
	assertServiceCode(t, err, pkgerrors.CodeStateConflict)
}

func TestListScopesByRole(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	buyerID := uuid.New()
	sellerID := uuid.New()
	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		BuyerID:         buyerID,
		SellerID:        sellerID,
		ServiceCategory: enums.ServiceCategoryCarpentry,
		ScheduledDate:   time.Now().AddDate(0, 0, 4),
		Location:        types.Location{City: "Riyadh"},
		OfferedPrice:    decimal.NewFromInt(250),
	})
	require.NoError(t, err)

	requestID, err := svc.CreateRequest(context.Background(), CreateRequestInput{
		BuyerID:         buyerID,
		Title:           "door repair",
		Description:     "front door hinge broken",
		ServiceCategory: enums.ServiceCategoryCarpentry,
		Location:        types.Location{City: "Riyadh"},
	})
	require.NoError(t, err)
	_, err = svc.SubmitQuote(context.Background(), SubmitQuoteInput{
		RequestID:     requestID,
		SellerID:      sellerID,
		Price:         decimal.NewFromInt(120),
		EstimatedDays: 1,
	})
	require.NoError(t, err)

	buyerList, err := svc.List(context.Background(), buyerID, enums.PartyRoleBuyer)
	require.NoError(t, err)
	assert.Len(t, buyerList.Bookings, 1)
	assert.Len(t, buyerList.Requests, 1)
	assert.Len(t, buyerList.Quotes, 1)

	sellerList, err := svc.List(context.Background(), sellerID, enums.PartyRoleSeller)
	require.NoError(t, err)
	assert.Len(t, sellerList.Bookings, 1)
	assert.Empty(t, sellerList.Requests)
	assert.Len(t, sellerList.Quotes, 1)
}
