package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

var sanitizeLogValue = strings.NewReplacer("\n", "", "\r", "").Replace

// Logger logs one line per request: request ID, method, path, status, response size
// and duration. Backtests fan out to the market data provider, so the duration is the
// number to watch on POST /api/backtest.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		reqID := chimw.GetReqID(r.Context())
		if reqID == "" {
			reqID = "-"
		}
		//nolint:gosec // G706: method and path have CR/LF stripped before logging.
		log.Printf(
			"[%s] %s %s %d %dB %s",
			reqID,
			sanitizeLogValue(r.Method),
			sanitizeLogValue(r.URL.Path),
			rec.status,
			rec.bytes,
			time.Since(start).Round(time.Millisecond),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (rec *statusRecorder) WriteHeader(code int) {
	if !rec.wroteHeader {
		rec.status = code
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	rec.wroteHeader = true
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}
