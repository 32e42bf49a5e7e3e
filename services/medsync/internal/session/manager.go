package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	contextKey = "medsync.session"
	managerKey = "medsync.session.manager"
)

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager binds sessions to requests.
type Manager struct {
	store Store
	opts  Options
}

func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "medsync_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{store: store, opts: opts}
}

// Middleware loads or starts the session, exposes it to handlers and
// saves it once the handler chain returns.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKey, m.load(c))
		c.Set(managerKey, m)
		c.Next()
		if err := m.Save(c); err != nil {
			logrus.WithError(err).Error("save session")
		}
	}
}

// FromContext returns the session loaded by Middleware, or nil.
func FromContext(c *gin.Context) *Session {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}

// Commit saves the request's session through the Manager that loaded it.
func Commit(c *gin.Context) error {
	v, ok := c.Get(managerKey)
	if !ok {
		return nil
	}
	m, _ := v.(*Manager)
	if m == nil {
		return nil
	}
	return m.Save(c)
}

func (m *Manager) load(c *gin.Context) *Session {
	if id, err := c.Cookie(m.opts.CookieName); err == nil && validID(id) {
		values, err := m.store.Load(c.Request.Context(), id)
		if err == nil {
			return &Session{id: id, values: values}
		}
		if !errors.Is(err, ErrNotFound) {
			logrus.WithError(err).Warn("load session, starting a new one")
		}
	}

	s := New()
	m.setCookie(c, s.id)
	return s
}

// Save writes the session now. Handlers that flush a large body before
// returning call it first; Middleware calls it again, which is a no-op
// when nothing changed.
func (m *Manager) Save(c *gin.Context) error {
	s := FromContext(c)
	if s == nil {
		return nil
	}
	ctx := c.Request.Context()

	for _, stale := range s.staleIDs {
		if err := m.store.Delete(ctx, stale); err != nil {
			return err
		}
	}
	s.staleIDs = nil

	if !s.dirty {
		return nil
	}

	if len(s.values) == 0 {
		if err := m.store.Delete(ctx, s.id); err != nil {
			return err
		}
	} else {
		if err := m.store.Save(ctx, s.id, s.values, m.opts.TTL); err != nil {
			return err
		}
		if uid := s.values[UserIDKey]; uid != "" {
			if err := m.store.Track(ctx, uid, s.id, m.opts.TTL); err != nil {
				return err
			}
		}
	}
	s.dirty = false
	return nil
}

// Regenerate moves the session to a fresh ID, keeping its values. The old
// ID is deleted on save.
func (m *Manager) Regenerate(c *gin.Context) {
	s := FromContext(c)
	if s == nil {
		return
	}
	if !s.isNew {
		s.staleIDs = append(s.staleIDs, s.id)
	}
	s.id = NewID()
	s.isNew = true
	s.dirty = true
	m.setCookie(c, s.id)
}

// Destroy drops every value and the old ID; the visitor continues with
// an empty session under a new ID.
func (m *Manager) Destroy(c *gin.Context) {
	s := FromContext(c)
	if s == nil {
		return
	}
	m.Regenerate(c)
	s.values = map[string]string{}
}

// DestroyUser removes every stored session of userID.
func (m *Manager) DestroyUser(ctx context.Context, userID string) (int, error) {
	return m.store.DeleteByUser(ctx, userID)
}

// setCookie replaces any session cookie already queued on this response.
func (m *Manager) setCookie(c *gin.Context, id string) {
	header := c.Writer.Header()
	prefix := m.opts.CookieName + "="
	kept := header.Values("Set-Cookie")[:0:0]
	for _, v := range header.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	header.Del("Set-Cookie")
	for _, v := range kept {
		header.Add("Set-Cookie", v)
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.opts.TTL / time.Second),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func validID(id string) bool {
	if len(id) < 16 || len(id) > 128 {
		return false
	}
	for _, r := range id {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}
