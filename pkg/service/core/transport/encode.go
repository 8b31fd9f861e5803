package transport

import (
	"net/http"

	"github.com/goccy/go-json"
)

func encodeJSON(w http.ResponseWriter, out any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	code := http.StatusOK
	if sc, ok := out.(StatusCoder); ok {
		code = sc.StatusCode()
	}

	w.WriteHeader(code)

	if code == http.StatusNoContent {
		return nil
	}

	return json.NewEncoder(w).Encode(out)
}

// Redirect answers with 303 See Other, so a GET always follows.
type Redirect struct {
	newURL string
	r      *http.Request
}

func (r *Redirect) Encode(w http.ResponseWriter) error {
	// A present Content-Type keeps http.Redirect from writing an HTML body.
	w.Header().Set("Content-Type", "")
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r.r, r.newURL, http.StatusSeeOther)

	return nil
}

func NewRedirect(newURL string, r *http.Request) *Redirect {
	return &Redirect{
		newURL: newURL,
		r:      r,
	}
}

// Empty answers with 204 No Content.
type Empty struct{}

func (e *Empty) StatusCode() int {
	return http.StatusNoContent
}
