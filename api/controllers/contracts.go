package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/khidmaty/khidmaty-backend/api/responses"
	"github.com/khidmaty/khidmaty-backend/api/validators"
	"github.com/khidmaty/khidmaty-backend/internal/contracts"
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	pkgerrors "github.com/khidmaty/khidmaty-backend/pkg/errors"
	"github.com/khidmaty/khidmaty-backend/pkg/logger"
	"github.com/khidmaty/khidmaty-backend/pkg/pagination"
	"github.com/khidmaty/khidmaty-backend/pkg/types"
)

type contractTermsBody struct {
	StartDate       time.Time     `json:"start_date" validate:"required"`
	CompletionDate  time.Time     `json:"completion_date" validate:"required"`
	WarrantyDays    int           `json:"warranty_days" validate:"min=0"`
	PaymentSchedule types.JSONMap `json:"payment_schedule,omitempty"`
}

type createContractRequest struct {
	Kind         string             `json:"kind" validate:"required,oneof=booking quote"`
	EngagementID string             `json:"engagement_id" validate:"required,uuid"`
	Terms        *contractTermsBody `json:"terms,omitempty"`
}

type signContractRequest struct {
	Method string `json:"method" validate:"required"`
}

type rejectContractRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type signatureProfileRequest struct {
	Method   string `json:"method" validate:"required"`
	Artifact string `json:"artifact" validate:"required"`
}

func termsInput(body *contractTermsBody) *contracts.TermsInput {
	if body == nil {
		return nil
	}
	return &contracts.TermsInput{
		StartDate:       body.StartDate,
		CompletionDate:  body.CompletionDate,
		WarrantyDays:    body.WarrantyDays,
		PaymentSchedule: body.PaymentSchedule,
	}
}

// CreateContract accepts an engagement on the buyer's behalf and opens the
// pending contract for signing.
func CreateContract(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createContractRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		engagementID, err := validators.ParsePathUUID(body.EngagementID, "engagement_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contractID, err := svc.Create(r.Context(), contracts.CreateInput{
			ActorUserID:  actorID,
			Kind:         contracts.EngagementKind(body.Kind),
			EngagementID: engagementID,
			Terms:        termsInput(body.Terms),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"contract_id": contractID.String()})
	}
}

// SignContract records the caller's signature, executing the contract when
// both parties have signed.
func SignContract(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contractID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body signContractRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParseSignatureMethod(body.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid signature method"))
			return
		}

		if err := svc.Sign(r.Context(), contracts.SignInput{
			ContractID:  contractID,
			ActorUserID: actorID,
			Method:      method,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "signed"})
	}
}

// WithdrawContract retracts the caller's lone signature and dissolves the
// pending contract.
func WithdrawContract(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contractID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Withdraw(r.Context(), contracts.WithdrawInput{
			ContractID:  contractID,
			ActorUserID: actorID,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "withdrawn"})
	}
}

// RejectContract declines a pending contract without deleting it.
func RejectContract(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contractID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rejectContractRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Reject(r.Context(), contracts.RejectInput{
			ContractID:  contractID,
			ActorUserID: actorID,
			Reason:      body.Reason,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "rejected"})
	}
}

// UpdateContractTerms replaces the binding terms on a not-yet-signed contract.
func UpdateContractTerms(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contractID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body contractTermsBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateTerms(r.Context(), contracts.UpdateTermsInput{
			ContractID:  contractID,
			ActorUserID: actorID,
			Terms:       *termsInput(&body),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "terms_updated"})
	}
}

// GetContract returns the full contract view for one of its parties.
func GetContract(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contractID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), contractID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ListContracts pages through the caller's contracts, newest first.
func ListContracts(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters contracts.ListFilters
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseContractStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if raw := r.URL.Query().Get("kind"); raw != "" {
			kind := contracts.EngagementKind(raw)
			if kind != contracts.EngagementKindBooking && kind != contracts.EngagementKindQuote {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid kind filter"))
				return
			}
			filters.Kind = &kind
		}

		list, err := svc.List(r.Context(), actorID, role, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// SaveSignatureProfile stores the caller's reusable signature artifact.
func SaveSignatureProfile(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body signatureProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParseSignatureMethod(body.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid signature method"))
			return
		}

		if err := svc.SaveSignatureProfile(r.Context(), actorID, method, body.Artifact); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "saved"})
	}
}
