// Package csrf implements the synchronizer token pattern on top of the
// session: one random token per session, echoed back by every form.
package csrf

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"medsync/packages/response"
	"medsync/services/medsync/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	FormField  = "csrf_token"
	HeaderName = "X-CSRF-Token"
	sessionKey = "csrf_token"
)

// Token returns the session's token, creating it on first use.
func Token(s *session.Session) string {
	if tok := s.GetString(sessionKey); tok != "" {
		return tok
	}
	tok, err := session.RandomToken(32)
	if err != nil {
		logrus.WithError(err).Error("generate csrf token")
		return ""
	}
	s.Set(sessionKey, tok)
	return tok
}

// Valid compares submitted with the session token in constant time.
func Valid(s *session.Session, submitted string) bool {
	expected := s.GetString(sessionKey)
	if expected == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}

// Middleware rejects unsafe requests whose token does not match. Form
// posts are redirected back with a flash; AJAX callers get a 403 envelope.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if safeMethod(c.Request.Method) {
			c.Next()
			return
		}

		s := session.FromContext(c)
		submitted := c.GetHeader(HeaderName)
		if submitted == "" {
			submitted = c.PostForm(FormField)
		}
		if s != nil && Valid(s, submitted) {
			c.Next()
			return
		}

		logrus.WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"ip":     c.ClientIP(),
		}).Warn("csrf token mismatch")

		const msg = "Your form expired. Please try again."
		if IsAJAX(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorResponse(response.Forbidden, msg))
			return
		}
		if s != nil {
			s.AddFlash("error", msg)
		}
		c.Redirect(http.StatusSeeOther, backURL(c))
		c.Abort()
	}
}

// IsAJAX reports whether the caller expects JSON rather than a page.
func IsAJAX(c *gin.Context) bool {
	if strings.EqualFold(c.GetHeader("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// backURL is the same-origin path the form came from, or the request path.
func backURL(c *gin.Context) string {
	ref := c.GetHeader("Referer")
	if ref != "" {
		if i := strings.Index(ref, "://"); i >= 0 {
			rest := ref[i+3:]
			if j := strings.Index(rest, "/"); j >= 0 && rest[:j] == c.Request.Host {
				return rest[j:]
			}
		} else if strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//") {
			return ref
		}
	}
	return c.Request.URL.Path
}
