package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func echoEmail(t *testing.T, gotEmail *string, gotOK *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotEmail, *gotOK = EmailFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequiredValidToken(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, err := issuer.Issue("a@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	var gotEmail string
	var gotOK bool
	handler := Required(issuer)(echoEmail(t, &gotEmail, &gotOK))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !gotOK || gotEmail != "a@example.com" {
		t.Errorf("Expected identity in context, got %q ok=%v", gotEmail, gotOK)
	}
}

func TestRequiredMissingToken(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	handler := Required(issuer)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("Handler should not run without a token")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestRequiredBadToken(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	handler := Required(issuer)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("Handler should not run with a bad token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestOptionalWithoutToken(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	var gotEmail string
	var gotOK bool
	handler := Optional(issuer)(echoEmail(t, &gotEmail, &gotOK))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if gotOK {
		t.Error("Expected no identity without a token")
	}
}

func TestOptionalWithToken(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, err := issuer.Issue("a@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	var gotEmail string
	var gotOK bool
	handler := Optional(issuer)(echoEmail(t, &gotEmail, &gotOK))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !gotOK || gotEmail != "a@example.com" {
		t.Errorf("Expected identity in context, got %q ok=%v", gotEmail, gotOK)
	}
}

func TestOptionalInvalidTokenIgnored(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	var gotEmail string
	var gotOK bool
	handler := Optional(issuer)(echoEmail(t, &gotEmail, &gotOK))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if gotOK {
		t.Error("Expected invalid token to be ignored, not rejected")
	}
}
