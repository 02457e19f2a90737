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

type createRequestRequest struct {
	Title           string         `json:"title" validate:"required,min=3"`
	Description     string         `json:"description" validate:"required"`
	ServiceCategory string         `json:"service_category" validate:"required"`
	Location        types.Location `json:"location" validate:"required"`
	PreferredDate   *time.Time     `json:"preferred_date,omitempty"`
	TimePreference  string         `json:"time_preference,omitempty"`
}

type submitQuoteRequest struct {
	Price         decimal.Decimal `json:"price" validate:"required"`
	EstimatedDays int             `json:"estimated_days" validate:"required,min=1"`
	Notes         *string         `json:"notes,omitempty"`
}

// CreateRequest posts a maintenance request sellers can quote on.
func CreateRequest(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createRequestRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
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

		requestID, err := svc.CreateRequest(r.Context(), engagements.CreateRequestInput{
			BuyerID:         buyerID,
			Title:           body.Title,
			Description:     body.Description,
			ServiceCategory: category,
			Location:        body.Location,
			PreferredDate:   body.PreferredDate,
			TimePreference:  timePref,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"request_id": requestID.String()})
	}
}

// SubmitQuote records a seller's priced offer on an open request.
func SubmitQuote(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		requestID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitQuoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quoteID, err := svc.SubmitQuote(r.Context(), engagements.SubmitQuoteInput{
			RequestID:     requestID,
			SellerID:      sellerID,
			Price:         body.Price,
			EstimatedDays: body.EstimatedDays,
			Notes:         body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"quote_id": quoteID.String()})
	}
}
