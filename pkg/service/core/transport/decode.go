package transport

import (
	"errors"
	"mime"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/navikt/onboarding-assistant/pkg/errs"
)

const maxRequestBodyBytes = 1 << 16

// RequestFromJSON decodes the request body as JSON. A request without a
// content type is accepted.
func (h *Transport[In, Out]) RequestFromJSON() *Transport[In, Out] {
	h.decoderFn = func(r *http.Request) (In, error) {
		const op errs.Op = "transport.RequestFromJSON"

		var in In

		if ct := r.Header.Get("Content-Type"); ct != "" {
			mediaType, _, err := mime.ParseMediaType(ct)
			if err != nil || mediaType != "application/json" {
				return in, errs.E(errs.UnsupportedMediaType, op, errs.Code("Request body must be JSON."), errs.Parameter("Content-Type"), errs.Str(ct))
			}
		}

		err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes)).Decode(&in)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return in, errs.E(errs.InvalidRequest, op, errs.Code("Request body too large."), err)
			}

			return in, errs.E(errs.InvalidRequest, op, errs.Code("Invalid request body."), err)
		}

		return in, nil
	}

	return h
}

// RequestFromQuery builds the input from the query string.
func (h *Transport[In, Out]) RequestFromQuery(fn func(url.Values) In) *Transport[In, Out] {
	h.decoderFn = func(r *http.Request) (In, error) {
		return fn(r.URL.Query()), nil
	}

	return h
}
