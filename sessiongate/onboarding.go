package sessiongate

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// OnboardingCompleted reports whether the request carries the onboarding
// marker cookie.
//
// Only presence is checked: any value, including "0" or an empty string,
// counts as completed.
func OnboardingCompleted(r *http.Request) bool {
	_, err := r.Cookie(OnboardingCookieName)
	return err == nil
}

// MarkOnboardingCompleted writes the onboarding marker cookie.
func MarkOnboardingCompleted(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     OnboardingCookieName,
		Value:    OnboardingCookieValue,
		Path:     "/",
		MaxAge:   OnboardingCookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}

type completeResponse struct {
	Success bool `json:"success"`
}

// CompleteOnboardingHandler returns the endpoint that marks onboarding as
// completed for the calling browser.
//
// It accepts POST only, holds no state and may be called any number of times.
func CompleteOnboardingHandler(log zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		MarkOnboardingCompleted(w)

		if u, ok := UserFromContext(r.Context()); ok {
			log.Info().Str("user_id", u.ID.String()).Msg("Onboarding completed")
		} else {
			log.Info().Msg("Onboarding completed")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(completeResponse{Success: true})
	})
}
