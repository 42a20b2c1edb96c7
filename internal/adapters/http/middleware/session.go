package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"badgecreator/internal/domain/session"
)

type contextKey string

const sessionContextKey contextKey = "badge_session"

const sessionCookieName = "badge_session"

// DefaultSessionTTL is how long an idle form session is kept.
const DefaultSessionTTL = 2 * time.Hour

// slot guards one session. Requests from the same browser serialize on mu.
type slot struct {
	mu    sync.Mutex
	state *session.State
}

// SessionStore keeps form sessions in memory.
type SessionStore struct {
	mu          sync.Mutex
	slots       map[string]*slot
	ttl         time.Duration
	defaultPage session.Page
	now         func() time.Time
}

// NewSessionStore creates an empty store. New sessions start on defaultPage.
func NewSessionStore(ttl time.Duration, defaultPage session.Page) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		slots:       make(map[string]*slot),
		ttl:         ttl,
		defaultPage: defaultPage,
		now:         time.Now,
	}
}

// acquire returns the locked slot for id, creating one when id is unknown or was expired
// while the caller waited for its lock.
// POST: caller holds s.mu, s is still in the store, and caller must call release
func (ss *SessionStore) acquire(id string) (*slot, bool) {
	for {
		ss.mu.Lock()
		s, ok := ss.slots[id]
		if !ok {
			id = uuid.NewString()
			s = &slot{state: session.New(id, ss.defaultPage, ss.now())}
			s.mu.Lock()
			ss.slots[id] = s
			ss.mu.Unlock()
			return s, true
		}
		ss.mu.Unlock()

		s.mu.Lock()
		ss.mu.Lock()
		live := ss.slots[id] == s
		ss.mu.Unlock()
		if live {
			return s, false
		}
		s.mu.Unlock()
	}
}

func (ss *SessionStore) release(s *slot) {
	s.state.LastSeen = ss.now()
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (ss *SessionStore) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.slots)
}

// Expire drops sessions idle for longer than the TTL.
// POST: returns the number of sessions removed
func (ss *SessionStore) Expire() int {
	cutoff := ss.now().Add(-ss.ttl)
	ss.mu.Lock()
	defer ss.mu.Unlock()
	removed := 0
	for id, s := range ss.slots {
		if !s.mu.TryLock() {
			continue // in use
		}
		if s.state.LastSeen.Before(cutoff) {
			delete(ss.slots, id)
			removed++
		}
		s.mu.Unlock()
	}
	return removed
}

// RunJanitor expires idle sessions every interval until ctx is done.
func (ss *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := ss.Expire(); n > 0 {
				slog.Info("session_event", "event", "sessions_expired", "count", n, "live", ss.Len())
			}
		}
	}
}

// Sessions attaches the caller's form session to the request context, creating it on first visit.
// The session stays locked until the handler returns.
func Sessions(store *SessionStore, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(sessionCookieName); err == nil {
				id = c.Value
			}
			s, created := store.acquire(id)
			defer store.release(s)

			if created {
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    s.state.ID,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
					Path:     "/",
				})
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionContextKey, s.state)))
		})
	}
}

// SessionFromContext returns the form session attached by Sessions.
func SessionFromContext(ctx context.Context) (*session.State, bool) {
	s, ok := ctx.Value(sessionContextKey).(*session.State)
	return s, ok
}
