// Package web renders the server-side pages and carries flash messages
// across redirects.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"medsync/packages/response"
	"medsync/services/medsync/internal/csrf"
	"medsync/services/medsync/internal/guard"
	"medsync/services/medsync/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every embedded page.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		"inc": func(n int) int { return n + 1 },
		"dec": func(n int) int { return n - 1 },
	}).ParseFS(files, "templates/*.html"))
}

// Render executes page name with data plus the CSRF token, pending
// flashes and the signed-in identity.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if s := session.FromContext(c); s != nil {
		data["CSRFToken"] = csrf.Token(s)
		data["Flashes"] = s.Flashes()
		if id, ok := guard.Current(s); ok {
			data["Identity"] = id
		}
	}
	commit(c)
	c.HTML(status, name, data)
}

// Redirect commits the session and answers 303 See Other.
func Redirect(c *gin.Context, location string) {
	commit(c)
	c.Redirect(http.StatusSeeOther, location)
}

// Flash queues a message for the next page.
func Flash(c *gin.Context, kind, message string) {
	if s := session.FromContext(c); s != nil {
		s.AddFlash(kind, message)
	}
}

// Fail flashes err's user-facing message and redirects to location.
func Fail(c *gin.Context, location string, err *response.BusinessError) {
	if err.Err != nil {
		logrus.WithError(err.Err).WithField("code", err.Code).Warn(err.Msg)
	}
	Flash(c, "error", err.Msg)
	Redirect(c, location)
}

func commit(c *gin.Context) {
	if err := session.Commit(c); err != nil {
		logrus.WithError(err).Error("save session")
	}
}
