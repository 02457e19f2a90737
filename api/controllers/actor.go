package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/khidmaty/khidmaty-backend/api/middleware"
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	pkgerrors "github.com/khidmaty/khidmaty-backend/pkg/errors"
)

// actor resolves the authenticated caller's identity from the request context.
func actor(r *http.Request) (uuid.UUID, enums.PartyRole, error) {
	userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}
	role, err := enums.ParsePartyRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing role context")
	}
	return userID, role, nil
}

// preferredLocale resolves the response language: explicit query param first,
// then the locale claim, defaulting to Arabic.
func preferredLocale(r *http.Request) enums.Locale {
	if raw := r.URL.Query().Get("locale"); raw != "" {
		if locale, err := enums.ParseLocale(raw); err == nil {
			return locale
		}
	}
	if locale, err := enums.ParseLocale(middleware.LocaleFromContext(r.Context())); err == nil {
		return locale
	}
	return enums.LocaleArabic
}
