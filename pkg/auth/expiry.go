package auth

import (
	"time"

	"github.com/navikt/onboarding-assistant/pkg/service"
)

const (
	DefaultSessionTimeout = 3600 * time.Second
	ExpiredNotice         = "Session expired. Please sign in again."
)

// CheckExpiry resets a logged in session whose age exceeds timeout. The
// second return value reports whether the session expired.
func CheckExpiry(sess service.Session, now time.Time, timeout time.Duration) (service.Session, bool) {
	if !sess.LoggedIn {
		return sess, false
	}

	if now.Sub(sess.LoginTime) > timeout {
		return sess.Anonymous(), true
	}

	return sess, false
}
