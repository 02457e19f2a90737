package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/khidmaty/khidmaty-backend/api/responses"
	"github.com/khidmaty/khidmaty-backend/api/validators"
	"github.com/khidmaty/khidmaty-backend/internal/engagements"
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	pkgerrors "github.com/khidmaty/khidmaty-backend/pkg/errors"
	"github.com/khidmaty/khidmaty-backend/pkg/logger"
	"github.com/khidmaty/khidmaty-backend/pkg/types"
)

type createBookingRequest struct {
	SellerID        string          `json:"seller_id" validate:"required,uuid"`
	ServiceCategory string          `json:"service_category" validate:"required"`
	ScheduledDate   time.Time       `json:"scheduled_date" validate:"required"`
	TimePreference  string          `json:"time_preference,omitempty"`
	Location        types.Location  `json:"location" validate:"required"`
	OfferedPrice    decimal.Decimal `json:"offered_price" validate:"required"`
}

type respondBookingRequest struct {
	CounterPrice *decimal.Decimal `json:"counter_price,omitempty"`
	CounterDate  *time.Time       `json:"counter_date,omitempty"`
	CounterNotes *string          `json:"counter_notes,omitempty"`
}

// CreateBooking opens a direct booking against a seller.
func CreateBooking(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createBookingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sellerID, err := validators.ParsePathUUID(body.SellerID, "seller_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := enums.ParseServiceCategory(body.ServiceCategory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid service category"))
			return
		}
		timePref := enums.TimePreferenceAny
		if body.TimePreference != "" {
			timePref, err = enums.ParseTimePreference(body.TimePreference)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid time preference"))
				return
			}
		}

		bookingID, err := svc.CreateBooking(r.Context(), engagements.CreateBookingInput{
			BuyerID:         buyerID,
			SellerID:        sellerID,
			ServiceCategory: category,
			ScheduledDate:   body.ScheduledDate,
			TimePreference:  timePref,
			Location:        body.Location,
			OfferedPrice:    body.OfferedPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"booking_id": bookingID.String()})
	}
}

// RespondBooking records the seller's response, optionally with a counter-offer.
func RespondBooking(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body respondBookingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RespondBooking(r.Context(), engagements.RespondBookingInput{
			BookingID:    bookingID,
			SellerID:     sellerID,
			CounterPrice: body.CounterPrice,
			CounterDate:  body.CounterDate,
			CounterNotes: body.CounterNotes,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "responded"})
	}
}

// ListEngagements returns the caller's role-scoped bookings, requests, and quotes.
func ListEngagements(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), userID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
