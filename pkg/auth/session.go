package auth

import (
	"context"
	"sync"
	"time"

	"github.com/navikt/onboarding-assistant/pkg/errs"
	"github.com/navikt/onboarding-assistant/pkg/service"
	"github.com/rs/zerolog"
)

var _ service.SessionStorage = &SessionStore{}

// SessionStore keeps sessions in process memory, one entry per client.
type SessionStore struct {
	lock     sync.RWMutex
	sessions map[string]service.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: map[string]service.Session{},
		now:      time.Now,
	}
}

func (s *SessionStore) GetSession(_ context.Context, id string) (*service.Session, error) {
	const op errs.Op = "sessionStore.GetSession"

	s.lock.RLock()
	defer s.lock.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, errs.E(errs.NotExist, op, errs.Parameter("session"), errs.Str("session not found"))
	}

	return &sess, nil
}

func (s *SessionStore) SaveSession(_ context.Context, sess service.Session) error {
	const op errs.Op = "sessionStore.SaveSession"

	if sess.ID == "" {
		return errs.E(errs.Invalid, op, errs.Parameter("id"), errs.Str("session without id"))
	}

	if !sess.Valid() {
		return errs.E(errs.Internal, op, errs.Str("token present iff logged in"))
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	sess.LastSeen = s.now()
	s.sessions[sess.ID] = sess

	return nil
}

func (s *SessionStore) DeleteSession(_ context.Context, id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.sessions, id)

	return nil
}

// EvictIdle removes sessions not seen for longer than idle.
func (s *SessionStore) EvictIdle(_ context.Context, idle time.Duration) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	cutoff := s.now().Add(-idle)
	evicted := 0

	for id, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}

	return evicted, nil
}

func (s *SessionStore) Count() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.sessions)
}

// SessionJanitor periodically evicts idle sessions from a store.
type SessionJanitor struct {
	store service.SessionStorage
	idle  time.Duration
	log   zerolog.Logger
}

func NewSessionJanitor(store service.SessionStorage, idle time.Duration, log zerolog.Logger) *SessionJanitor {
	return &SessionJanitor{
		store: store,
		idle:  idle,
		log:   log,
	}
}

func (j *SessionJanitor) Run(ctx context.Context, frequency time.Duration) {
	ticker := time.NewTicker(frequency)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info().Msg("stopping session janitor")
			return
		case <-ticker.C:
			n, err := j.store.EvictIdle(ctx, j.idle)
			if err != nil {
				j.log.Error().Err(err).Msg("evicting idle sessions")
				continue
			}

			if n > 0 {
				j.log.Info().Int("evicted", n).Int("remaining", j.store.Count()).Msg("evicted idle sessions")
			}
		}
	}
}
