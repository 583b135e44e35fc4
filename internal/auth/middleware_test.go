package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// protectedEcho is a handler that records the identity it saw.
func protectedEcho(got *Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			http.Error(w, "no identity in context", http.StatusInternalServerError)
			return
		}
		*got = id
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_ValidCookie(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate(Identity{UserID: "user-1", Username: "alice123"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var seen Identity
	handler := RequireAuth(ts)(protectedEcho(&seen))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if seen.Username != "alice123" {
		t.Errorf("identity.Username = %q, want %q", seen.Username, "alice123")
	}
	if seen.UserID != "user-1" {
		t.Errorf("identity.UserID = %q, want %q", seen.UserID, "user-1")
	}
}

func TestRequireAuth_MissingCookie(t *testing.T) {
	ts := newTestTokenService(t)

	var seen Identity
	handler := RequireAuth(ts)(protectedEcho(&seen))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if seen.UserID != "" {
		t.Error("handler ran despite missing cookie")
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.GenerateWithDuration(Identity{UserID: "user-1", Username: "alice123"}, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	var seen Identity
	handler := RequireAuth(ts)(protectedEcho(&seen))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth_GarbageCookie(t *testing.T) {
	ts := newTestTokenService(t)

	var seen Identity
	handler := RequireAuth(ts)(protectedEcho(&seen))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-jwt"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestIdentityFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if _, ok := IdentityFromContext(req.Context()); ok {
		t.Error("IdentityFromContext() = ok on a bare request context")
	}
}
