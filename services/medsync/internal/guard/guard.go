// Package guard admits requests that carry a live, signed-in session.
package guard

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"medsync/packages/response"
	"medsync/services/medsync/internal/csrf"
	"medsync/services/medsync/internal/model/user"
	"medsync/services/medsync/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Session keys written by SignIn.
const (
	KeyRole            = "role"
	KeyUserID          = session.UserIDKey
	KeyDisplayID       = "display_id"
	KeyUsername        = "username"
	KeyName            = "name"
	KeyUserAgent       = "user_agent"
	KeyLastActivity    = "last_activity"
	KeyLastRegenerated = "last_regenerated"
)

const identityKey = "medsync.identity"

// Reason is sent to the login page as ?reason=.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonForbidden       Reason = "forbidden"
	ReasonFingerprint     Reason = "fingerprint"
	ReasonTimeout         Reason = "timeout"
)

// Identity is the signed-in account as recorded in the session.
type Identity struct {
	UserID    int
	DisplayID string
	Username  string
	Name      string
	Role      user.Role
}

// SignIn records id in s. Callers regenerate the session ID first.
func SignIn(s *session.Session, id Identity, userAgent string, now time.Time) {
	s.Set(KeyRole, string(id.Role))
	s.Set(KeyUserID, strconv.Itoa(id.UserID))
	s.Set(KeyDisplayID, id.DisplayID)
	s.Set(KeyUsername, id.Username)
	s.Set(KeyName, id.Name)
	s.Set(KeyUserAgent, userAgent)
	s.SetTime(KeyLastActivity, now)
	s.SetTime(KeyLastRegenerated, now)
}

// Current reads the identity from s.
func Current(s *session.Session) (Identity, bool) {
	if s == nil {
		return Identity{}, false
	}
	role := user.Role(s.GetString(KeyRole))
	if !role.Valid() {
		return Identity{}, false
	}
	uid, err := strconv.Atoi(s.GetString(KeyUserID))
	if err != nil {
		return Identity{}, false
	}
	return Identity{
		UserID:    uid,
		DisplayID: s.GetString(KeyDisplayID),
		Username:  s.GetString(KeyUsername),
		Name:      s.GetString(KeyName),
		Role:      role,
	}, true
}

// IdentityFromContext returns what Require admitted.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// HomePath is the dashboard of role.
func HomePath(role user.Role) string {
	switch role {
	case user.RoleAdmin:
		return "/admin"
	case user.RoleDoctor:
		return "/doctor"
	case user.RoleStaff:
		return "/staff"
	case user.RoleUser:
		return "/patient"
	}
	return "/login"
}

type Config struct {
	IdleTimeout      time.Duration
	RotationInterval time.Duration
	LoginPath        string
	Now              func() time.Time
}

// Verdict is the outcome of Evaluate.
type Verdict struct {
	Identity Identity
	Reason   Reason
	Rotate   bool
}

// Evaluate checks role, allowed roles, user agent and idle time, and
// whether the session ID is due for rotation. It does not modify s.
func Evaluate(s *session.Session, userAgent string, now time.Time, cfg Config, roles ...user.Role) Verdict {
	id, ok := Current(s)
	if !ok {
		return Verdict{Reason: ReasonUnauthenticated}
	}
	if len(roles) > 0 && !slices.Contains(roles, id.Role) {
		return Verdict{Identity: id, Reason: ReasonForbidden}
	}
	if s.GetString(KeyUserAgent) != userAgent {
		return Verdict{Identity: id, Reason: ReasonFingerprint}
	}

	last, ok := s.GetTime(KeyLastActivity)
	if !ok || now.Sub(last) >= cfg.IdleTimeout {
		return Verdict{Identity: id, Reason: ReasonTimeout}
	}

	v := Verdict{Identity: id}
	if regen, ok := s.GetTime(KeyLastRegenerated); !ok || now.Sub(regen) >= cfg.RotationInterval {
		v.Rotate = true
	}
	return v
}

type Guard struct {
	sessions *session.Manager
	cfg      Config
}

func New(sessions *session.Manager, cfg Config) *Guard {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if cfg.RotationInterval <= 0 {
		cfg.RotationInterval = 5 * time.Minute
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Guard{sessions: sessions, cfg: cfg}
}

// Require admits signed-in sessions, limited to roles when given. Any
// failure destroys the session and sends the visitor to the login page.
func (g *Guard) Require(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := session.FromContext(c)
		now := g.cfg.Now()
		v := Evaluate(s, c.Request.UserAgent(), now, g.cfg, roles...)

		if v.Reason != ReasonNone {
			g.reject(c, v)
			return
		}

		if v.Rotate {
			g.sessions.Regenerate(c)
			s.SetTime(KeyLastRegenerated, now)
		}
		s.SetTime(KeyLastActivity, now)

		c.Set(identityKey, v.Identity)
		c.Next()
	}
}

func (g *Guard) reject(c *gin.Context, v Verdict) {
	entry := logrus.WithFields(logrus.Fields{
		"reason": string(v.Reason),
		"path":   c.Request.URL.Path,
		"ip":     c.ClientIP(),
	})
	if v.Identity.UserID != 0 {
		entry = entry.WithField("user_id", v.Identity.UserID)
	}
	entry.Info("session rejected")

	if session.FromContext(c) != nil {
		g.sessions.Destroy(c)
	}

	if csrf.IsAJAX(c) {
		code, status := response.Unauthorized, http.StatusUnauthorized
		if v.Reason == ReasonForbidden {
			code, status = response.Forbidden, http.StatusForbidden
		}
		c.AbortWithStatusJSON(status, response.CustomResponse(
			response.WithCode(code),
			response.WithMessage(Message(v.Reason)),
			response.WithData(gin.H{"reason": string(v.Reason)}),
		))
		return
	}

	c.Redirect(http.StatusFound, g.cfg.LoginPath+"?reason="+url.QueryEscape(string(v.Reason)))
	c.Abort()
}

// Message is the login page copy for a rejection reason.
func Message(r Reason) string {
	switch r {
	case ReasonUnauthenticated:
		return "Please sign in to continue."
	case ReasonForbidden:
		return "You do not have access to that page."
	case ReasonFingerprint:
		return "Your session was ended for security reasons. Please sign in again."
	case ReasonTimeout:
		return "Your session timed out. Please sign in again."
	}
	return ""
}
