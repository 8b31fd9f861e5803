package requestlogger

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/mileusna/useragent"
	"github.com/rs/zerolog"
)

// Middleware logs one line per request. Only the path is logged, since the
// query string of the sign-in redirect carries the authorization code.
func Middleware(logger zerolog.Logger, pathFilters ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			for _, filter := range pathFilters {
				if filter == r.URL.Path {
					next.ServeHTTP(w, r)
					return
				}
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			t1 := time.Now()
			defer func() {
				bytesIn, err := strconv.Atoi(r.Header.Get("Content-Length"))
				if err != nil {
					bytesIn = 0
				}

				requestID := middleware.GetReqID(r.Context())
				if requestID == "" {
					requestID = "n/a"
				}

				logger.Info().Timestamp().
					Str("request_id", requestID).
					Str("request", fmt.Sprintf("%s %s (response_code: %d)", r.Method, r.URL.Path, ww.Status())).
					Str("browser", browser(r.UserAgent())).
					Int("bytes_in", bytesIn).
					Int("bytes_out", ww.BytesWritten()).
					Float64("latency_ms", float64(time.Since(t1).Nanoseconds())/1000000.0).
					Msg("incoming_request")
			}()

			next.ServeHTTP(ww, r)
		}

		return http.HandlerFunc(fn)
	}
}

func browser(raw string) string {
	if raw == "" {
		return "unknown"
	}

	ua := useragent.Parse(raw)
	if ua.Name == "" {
		return "unknown"
	}

	if ua.OS == "" {
		return ua.Name
	}

	return fmt.Sprintf("%s (%s)", ua.Name, ua.OS)
}
