package sessiongate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestOnboardingCompleted(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if OnboardingCompleted(req) {
		t.Fatal("expected false without marker cookie")
	}

	req.AddCookie(&http.Cookie{Name: OnboardingCookieName, Value: ""})
	if !OnboardingCompleted(req) {
		t.Fatal("expected presence alone to count as completed")
	}
}

func TestMarkOnboardingCompleted_CookieContract(t *testing.T) {
	rec := httptest.NewRecorder()
	MarkOnboardingCompleted(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	c := cookies[0]
	if c.Name != "onboarding_completed" {
		t.Errorf("unexpected name %q", c.Name)
	}
	if c.Value != "1" {
		t.Errorf("unexpected value %q", c.Value)
	}
	if c.Path != "/" {
		t.Errorf("unexpected path %q", c.Path)
	}
	if c.MaxAge != 31536000 {
		t.Errorf("unexpected max-age %d", c.MaxAge)
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Errorf("unexpected same-site %v", c.SameSite)
	}
}

func TestCompleteOnboardingHandler_Post(t *testing.T) {
	h := CompleteOnboardingHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/onboarding/complete", nil)
	req = req.WithContext(WithUser(context.Background(), &User{ID: uuid.New()}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !body.Success {
		t.Fatal("expected success=true")
	}

	if got := rec.Result().Cookies(); len(got) != 1 || got[0].Name != OnboardingCookieName {
		t.Fatalf("expected marker cookie, got %v", got)
	}
}

func TestCompleteOnboardingHandler_Idempotent(t *testing.T) {
	h := CompleteOnboardingHandler(zerolog.Nop())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/onboarding/complete", nil)
		req.AddCookie(&http.Cookie{Name: OnboardingCookieName, Value: "1"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("call %d: expected 200, got %d", i, rec.Code)
		}
	}
}

func TestCompleteOnboardingHandler_RejectsGet(t *testing.T) {
	h := CompleteOnboardingHandler(zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/onboarding/complete", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != http.MethodPost {
		t.Fatalf("unexpected Allow %q", got)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("expected no cookie on rejected method")
	}
}
