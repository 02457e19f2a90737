package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/khidmaty/khidmaty-backend/pkg/auth"
	"github.com/khidmaty/khidmaty-backend/pkg/auth/session"
	"github.com/khidmaty/khidmaty-backend/pkg/config"
	"github.com/khidmaty/khidmaty-backend/pkg/db"
	"github.com/khidmaty/khidmaty-backend/pkg/db/models"
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	pkgerrors "github.com/khidmaty/khidmaty-backend/pkg/errors"
	"github.com/khidmaty/khidmaty-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "khidmaty",
	ExpirationMinutes: 30,
}

type stubUserRepo struct {
	user *models.User
	err  error
}

func (s stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

type stubSessionManager struct {
	refreshToken string
	rotated      string
	revoked      []string
	rotateErr    error
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	s.rotated = oldAccessID
	return session.NewAccessID(), "rotated-refresh", nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func newUsersTestDB(t *testing.T) *db.Client {
	t.Helper()

	client, err := db.NewSQLite()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL,
  preferred_locale TEXT NOT NULL DEFAULT 'ar',
  is_active BOOLEAN NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	if err := client.DB().Exec(schema).Error; err != nil {
		t.Fatalf("create users table: %v", err)
	}
	if err := client.DB().Exec("DELETE FROM users").Error; err != nil {
		t.Fatalf("truncate users: %v", err)
	}
	return client
}

func buildTestService(t *testing.T, repo userRepository, client *db.Client) (Service, *stubSessionManager) {
	t.Helper()

	if client == nil {
		client = newUsersTestDB(t)
	}
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token"}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		DB:             client,
		SessionManager: sessionMgr,
		JWTConfig:      testJWTConfig,
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessionMgr
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func seededUser(t *testing.T, password string) *models.User {
	t.Helper()
	return &models.User{
		ID:              uuid.New(),
		Email:           "fatima@example.com",
		PasswordHash:    mustHashPassword(t, password),
		FullName:        "Fatima Alzahrani",
		Role:            enums.PartyRoleBuyer,
		PreferredLocale: enums.LocaleArabic,
		IsActive:        true,
	}
}

func TestLoginIssuesClaimsWithRoleAndLocale(t *testing.T) {
	password := "buyer-secret"
	user := seededUser(t, password)
	svc, _ := buildTestService(t, stubUserRepo{user: user}, nil)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id %s, got %s", user.ID, claims.UserID)
	}
	if claims.Role != enums.PartyRoleBuyer {
		t.Fatalf("expected buyer role claim, got %s", claims.Role)
	}
	if claims.Locale != enums.LocaleArabic {
		t.Fatalf("expected arabic locale claim, got %s", claims.Locale)
	}
	if resp.RefreshToken == "" {
		t.Fatal("expected refresh token to be set")
	}
	if resp.User == nil || resp.User.Email != user.Email {
		t.Fatalf("expected sanitized user in response, got %+v", resp.User)
	}
}

func TestLoginRejectsBadPasswordAndInactiveUser(t *testing.T) {
	user := seededUser(t, "right-password")
	svc, _ := buildTestService(t, stubUserRepo{user: user}, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "wrong"})
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	user.IsActive = false
	_, err = svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "right-password"})
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for inactive user, got %v", err)
	}
}

func TestRegisterPersistsUserAndRejectsDuplicates(t *testing.T) {
	client := newUsersTestDB(t)
	svc, _ := buildTestService(t, stubUserRepo{err: errors.New("unused")}, client)

	dto, err := svc.Register(context.Background(), RegisterRequest{
		FullName:        "Omar Haddad",
		Email:           "Omar@Example.com",
		Password:        "long-enough-password",
		Role:            enums.PartyRoleSeller,
		PreferredLocale: enums.LocaleEnglish,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if dto.Email != "omar@example.com" {
		t.Fatalf("expected lowercased email, got %q", dto.Email)
	}
	if dto.Role != enums.PartyRoleSeller {
		t.Fatalf("expected seller role, got %s", dto.Role)
	}

	_, err = svc.Register(context.Background(), RegisterRequest{
		FullName: "Omar Again",
		Email:    "omar@example.com",
		Password: "long-enough-password",
		Role:     enums.PartyRoleSeller,
	})
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := buildTestService(t, stubUserRepo{}, nil)

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{FullName: "X", Password: "long-enough-pw", Role: enums.PartyRoleBuyer}},
		{"bad role", RegisterRequest{FullName: "X", Email: "x@example.com", Password: "long-enough-pw", Role: "admin"}},
		{"short password", RegisterRequest{FullName: "X", Email: "x@example.com", Password: "short", Role: enums.PartyRoleBuyer}},
		{"bad locale", RegisterRequest{FullName: "X", Email: "x@example.com", Password: "long-enough-pw", Role: enums.PartyRoleBuyer, PreferredLocale: "fr"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.req)
			if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	password := "buyer-secret"
	user := seededUser(t, password)
	svc, sessionMgr := buildTestService(t, stubUserRepo{user: user}, nil)

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken != "rotated-refresh" {
		t.Fatalf("expected rotated pair, got %+v", resp)
	}
	if sessionMgr.rotated == "" {
		t.Fatal("expected rotation keyed by the old access id")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != user.Role {
		t.Fatalf("rotated claims must carry over identity, got %+v", claims)
	}
	if claims.ID == sessionMgr.rotated {
		t.Fatal("rotated token must carry a fresh access id")
	}
}

func TestRefreshInvalidTokenUnauthorized(t *testing.T) {
	user := seededUser(t, "pw-not-used-here")
	svc, sessionMgr := buildTestService(t, stubUserRepo{user: user}, nil)
	sessionMgr.rotateErr = session.ErrInvalidRefreshToken

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "pw-not-used-here"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "stale",
	})
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	user := seededUser(t, "pw")
	svc, sessionMgr := buildTestService(t, stubUserRepo{user: user}, nil)

	if err := svc.Logout(context.Background(), "access-id"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessionMgr.revoked) != 1 || sessionMgr.revoked[0] != "access-id" {
		t.Fatalf("expected revoked access id, got %v", sessionMgr.revoked)
	}
}
