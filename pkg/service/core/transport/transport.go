// Package transport turns typed handler functions into http.HandlerFuncs.
//
// A handler receives the decoded input, and for routes behind the session
// middleware, the caller's session. Its output is written as JSON unless it
// implements Encoder, and its status code can be chosen by implementing
// StatusCoder.
package transport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/navikt/onboarding-assistant/pkg/errs"
	"github.com/navikt/onboarding-assistant/pkg/service"
	"github.com/rs/zerolog"
)

type StatusCoder interface {
	StatusCode() int
}

type Encoder interface {
	Encode(w http.ResponseWriter) error
}

// DecoderFunc reads the handler input from the request.
type DecoderFunc[In any] func(r *http.Request) (In, error)

// TargetFunc handles a request that needs no session.
type TargetFunc[In any, Out any] func(context.Context, *http.Request, In) (Out, error)

// SessionTargetFunc handles a request on behalf of the caller's session.
type SessionTargetFunc[In any, Out any] func(context.Context, *http.Request, service.Session, In) (Out, error)

type Transport[In any, Out any] struct {
	decoderFn DecoderFunc[In]
	targetFn  TargetFunc[In, Out]
}

func For[In any, Out any](target TargetFunc[In, Out]) *Transport[In, Out] {
	return &Transport[In, Out]{
		targetFn: target,
	}
}

// ForSession builds a transport for a handler that acts on the session the
// session middleware placed in the request context.
func ForSession[In any, Out any](target SessionTargetFunc[In, Out]) *Transport[In, Out] {
	return For[In, Out](func(ctx context.Context, r *http.Request, in In) (Out, error) {
		const op errs.Op = "transport.ForSession"

		sess, ok := service.SessionFromContext(ctx)
		if !ok {
			var out Out

			return out, errs.E(errs.Internal, op, errs.Str("no session in request context"))
		}

		return target(ctx, r, sess, in)
	})
}

func (h *Transport[In, Out]) Build(logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("dispatching")

		var in In
		var err error

		if h.decoderFn != nil {
			in, err = h.decoderFn(r)
			if err != nil {
				errs.HTTPErrorResponse(w, log, err)
				return
			}
		}

		out, err := h.targetFn(r.Context(), r, in)
		if err != nil {
			errs.HTTPErrorResponse(w, log, err)
			return
		}

		if v, ok := any(out).(Encoder); ok {
			err = v.Encode(w)
		} else {
			err = encodeJSON(w, out)
		}

		if err != nil {
			log.Error().Err(err).Msg("writing response")
		}
	}
}
