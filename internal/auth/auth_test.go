package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/tahcohcat/liferpg-web/internal/services"
)

func newTestAuth(t *testing.T) *Auth {
	t.Helper()
	users, err := services.NewUserService(map[string]string{"ada": "lovelace"})
	if err != nil {
		t.Fatal(err)
	}
	return New("test-secret-0123456789abcdef", users)
}

func protected(a *Auth) http.Handler {
	return a.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello " + GetUsername(r)))
	}))
}

func TestMiddlewareRejectsAnonymous(t *testing.T) {
	a := newTestAuth(t)
	h := protected(a)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("api status=%d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("page status=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLoginIssuesSessionAndOpensData(t *testing.T) {
	a := newTestAuth(t)
	var opened string
	a.OnLogin = func(_ context.Context, username string) error {
		opened = username
		return nil
	}

	form := url.Values{"username": {"Ada"}, "password": {"lovelace"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	a.LoginHandler(rec, req)

	if rec.Code != http.StatusFound || opened != "ada" {
		t.Fatalf("status=%d opened=%q", rec.Code, opened)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no session cookie")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	protected(a).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "hello ada" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestLoginJSONBadPassword(t *testing.T) {
	a := newTestAuth(t)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"ada","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.LoginHandler(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", rec.Code)
	}
}

func TestLoginFailsWhenDataCannotOpen(t *testing.T) {
	a := newTestAuth(t)
	a.OnLogin = func(context.Context, string) error { return errors.New("store down") }

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"ada","password":"lovelace"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.LoginHandler(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status=%d, want 502", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("cookie issued for a failed login")
	}
}
