package errs

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// ErrResponse is used as the Response Body
type ErrResponse struct {
	Error ServiceError `json:"error"`
}

// ServiceError has fields for Service errors. All fields with no data will
// be omitted
type ServiceError struct {
	Kind    string `json:"kind,omitempty"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// HTTPErrorResponse takes a writer, error and a logger, performs a
// type switch to determine if the type is an Error (which meets
// the Error interface as defined in this package), then sends the
// Error as a response to the client. If the type does not meet the
// Error interface as defined in this package, then a proper error
// is still formed and sent to the client, however, the Kind and
// Code will be Unanticipated. Logging of error is also done using
// https://github.com/rs/zerolog
func HTTPErrorResponse(w http.ResponseWriter, lgr zerolog.Logger, err error) {
	if err == nil {
		nilErrorResponse(w, lgr)
		return
	}

	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case Unauthenticated:
			unauthenticatedErrorResponse(w, lgr, e)
			return
		case Unauthorized:
			unauthorizedErrorResponse(w, lgr, e)
			return
		default:
			typicalErrorResponse(w, lgr, e)
			return
		}
	}

	unknownErrorResponse(w, lgr, err)
}

func typicalErrorResponse(w http.ResponseWriter, lgr zerolog.Logger, e *Error) {
	const op Op = "errs.typicalErrorResponse"

	httpStatusCode := httpErrorStatusCode(e.Kind)

	if e.isZero() {
		lgr.Error().Stack().Msgf("error sent to %s, but empty - very strange, investigate", op)
		http.Error(w, "", httpStatusCode)
		return
	}

	// log the error with stacktrace
	lgr.Error().Stack().Err(e.Err).
		Str("Kind", e.Kind.String()).
		Str("Parameter", string(e.Param)).
		Str("Code", string(e.Code)).
		Strs("OpStack", OpStack(e)).
		Msg("error response sent to client")

	// get ErrResponse
	errResponse := newErrResponse(e)

	errJSON, _ := json.Marshal(errResponse)
	ej := string(errJSON)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	w.WriteHeader(httpStatusCode)

	_, _ = w.Write([]byte(ej))
}

func newErrResponse(err *Error) ErrResponse {
	const msg string = "internal server error - please contact support"

	switch err.Kind {
	case Internal, Database, Unanticipated:
		if err.Code != "" {
			return ErrResponse{
				Error: ServiceError{
					Kind:    err.Kind.String(),
					Code:    string(err.Code),
					Message: string(err.Code),
				},
			}
		}

		return ErrResponse{
			Error: ServiceError{
				Kind:    Unanticipated.String(),
				Code:    "Unanticipated",
				Message: msg,
			},
		}
	default:
		return ErrResponse{
			Error: ServiceError{
				Kind:    err.Kind.String(),
				Code:    string(err.Code),
				Param:   string(err.Param),
				Message: userMessage(err),
			},
		}
	}
}

// userMessage never includes the text of the wrapped error.
func userMessage(err *Error) string {
	if err.Code != "" {
		return string(err.Code)
	}

	return err.Kind.String()
}

func unauthenticatedErrorResponse(w http.ResponseWriter, lgr zerolog.Logger, e *Error) {
	lgr.Error().Stack().Err(e.Err).
		Str("Kind", e.Kind.String()).
		Strs("OpStack", OpStack(e)).
		Msg("Unauthenticated Request")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"kind":"unauthenticated_request","message":"sign in to continue"}}`))
}

func unauthorizedErrorResponse(w http.ResponseWriter, lgr zerolog.Logger, e *Error) {
	lgr.Info().Err(e.Err).
		Str("Kind", e.Kind.String()).
		Strs("OpStack", OpStack(e)).
		Msg("Unauthorized Request")

	errResponse := newErrResponse(e)
	errJSON, _ := json.Marshal(errResponse)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write(errJSON)
}

func nilErrorResponse(w http.ResponseWriter, lgr zerolog.Logger) {
	lgr.Error().Stack().Msg("nil error - no response body sent")

	w.WriteHeader(http.StatusInternalServerError)
}

func unknownErrorResponse(w http.ResponseWriter, lgr zerolog.Logger, err error) {
	er := ErrResponse{
		Error: ServiceError{
			Kind:    Unanticipated.String(),
			Code:    "Unanticipated",
			Message: "Unexpected error - contact support",
		},
	}

	lgr.Error().Err(err).Msg("Unknown Error")

	errJSON, _ := json.Marshal(er)
	ej := string(errJSON)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	w.WriteHeader(http.StatusInternalServerError)

	_, _ = w.Write([]byte(ej))
}

// httpErrorStatusCode maps an error Kind to an HTTP Status Code
func httpErrorStatusCode(k Kind) int {
	switch k {
	case Invalid, Exist, NotExist, Private, BrokenLink, Validation, InvalidRequest:
		return http.StatusBadRequest
	case UnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case IO:
		return http.StatusBadGateway
	case Timeout:
		return http.StatusGatewayTimeout
	case Unauthenticated:
		return http.StatusUnauthorized
	case Unauthorized:
		return http.StatusForbidden
	case Other, Internal, Database, Unanticipated:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
