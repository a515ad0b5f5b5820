package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/response"
)

// timeTokenWindow is the validity period of one time token. The token of the previous
// window is also accepted to tolerate clock skew at window boundaries.
const timeTokenWindow = time.Minute

// GenerateTimeToken returns the time token for apiKey in the current window:
// the hex HMAC-SHA256 of the window number keyed with apiKey.
func GenerateTimeToken(apiKey string) string {
	return timeToken(apiKey, time.Now())
}

func timeToken(apiKey string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(apiKey))
	mac.Write([]byte(strconv.FormatInt(at.Unix()/int64(timeTokenWindow/time.Second), 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

func validTimeToken(apiKey, token string) bool {
	now := time.Now()
	for _, at := range []time.Time{now, now.Add(-timeTokenWindow)} {
		if hmac.Equal([]byte(token), []byte(timeToken(apiKey, at))) {
			return true
		}
	}
	return false
}

// NewAPIKeyMiddleware guards write endpoints that trigger upstream traffic.
// Requests must carry X-API-Key equal to apiKey and an X-Time-Token produced by
// GenerateTimeToken. An empty apiKey rejects every request with 500.
func NewAPIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				response.RespondError(w, http.StatusInternalServerError, "authentication error", "Authentication not loaded")
				return
			}

			key := r.Header.Get("X-API-Key")
			if key == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
				return
			}
			if !hmac.Equal([]byte(key), []byte(apiKey)) {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
				return
			}

			token := r.Header.Get("X-Time-Token")
			if token == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
				return
			}
			if !validTimeToken(apiKey, token) {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Time token is invalid or expired")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
