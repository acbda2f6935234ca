package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func TestAuthLoginSuccess(t *testing.T) {
	svc := &stubAuthService{login: &auth.LoginResponse{
		AccessToken: "token-123",
		ExpiresIn:   3600,
		User:        &users.UserDTO{ID: 7, Email: "shopper@example.com", Role: "user"},
	}}

	rec := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(rec, newJSONRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"shopper@example.com","password":"secret"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get("X-Storefront-Token") != "token-123" {
		t.Fatalf("expected token header")
	}
	if svc.gotLogin.Email != "shopper@example.com" {
		t.Fatalf("unexpected login request %+v", svc.gotLogin)
	}
	var resp auth.LoginResponse
	decodeData(t, rec, &resp)
	if resp.User == nil || resp.User.ID != 7 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAuthLoginValidation(t *testing.T) {
	svc := &stubAuthService{}
	rec := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(rec, newJSONRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"not-an-email"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
}

func TestAuthLoginBadCredentials(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	rec := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(rec, newJSONRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"a@example.com","password":"nope"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthMe(t *testing.T) {
	svc := &stubAuthService{me: &users.UserDTO{ID: 3, Name: "Sam"}}

	rec := httptest.NewRecorder()
	AuthMe(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "{\"data\":null}\n" {
		t.Fatalf("expected null user for anonymous caller, got %s", body)
	}

	rec = httptest.NewRecorder()
	AuthMe(svc, nil).ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), 3))
	var user users.UserDTO
	decodeData(t, rec, &user)
	if user.ID != 3 || svc.meUserID != 3 {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestAuthLogoutRevokesSession(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req = req.WithContext(middleware.WithAccessID(req.Context(), "access-1"))

	rec := httptest.NewRecorder()
	AuthLogout(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
	if svc.revokedID != "access-1" {
		t.Fatalf("expected access-1 revoked, got %q", svc.revokedID)
	}
}

func TestNilServicesReturnInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	AuthLogin(nil, nil).ServeHTTP(rec, newJSONRequest(http.MethodPost, "/", `{}`))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}
