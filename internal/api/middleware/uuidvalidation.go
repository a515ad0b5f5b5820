// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/response"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/validation"
)

// ValidateUUIDMiddleware rejects requests whose uuid URL parameter is missing or not a UUID.
//
//	r.With(middleware.ValidateUUIDMiddleware).Get("/refresh/{uuid}", handler.RefreshStatus)
var ValidateUUIDMiddleware = urlParamValidator("uuid", "refresh ID", validation.ValidateUUID)

// ValidateSymbolMiddleware rejects requests whose symbol URL parameter is not a well-formed
// ticker. Case is not checked; handlers upper-case the symbol themselves.
var ValidateSymbolMiddleware = urlParamValidator("symbol", "symbol", validation.ValidateTicker)

// urlParamValidator builds a middleware answering 400 when the named chi URL parameter is
// blank or fails validate.
func urlParamValidator(param, label string, validate func(string) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			value := strings.TrimSpace(chi.URLParam(r, param))
			if value == "" {
				response.RespondError(w, http.StatusBadRequest, label+" is required", "")
				return
			}
			if err := validate(value); err != nil {
				response.RespondError(w, http.StatusBadRequest, "invalid "+label, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
