package csrf

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"medsync/packages/response"
	"medsync/services/medsync/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	router *gin.Engine
	cookie *http.Cookie
	token  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := session.NewManager(session.NewMemoryStore(), session.Options{CookieName: "sid", TTL: time.Hour})
	r := gin.New()
	r.Use(m.Middleware(), Middleware())
	r.GET("/form", func(c *gin.Context) {
		c.String(http.StatusOK, Token(session.FromContext(c)))
	})
	r.POST("/form", func(c *gin.Context) {
		c.String(http.StatusOK, "accepted")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))
	require.Equal(t, http.StatusOK, w.Code)

	return &harness{router: r, cookie: w.Result().Cookies()[0], token: w.Body.String()}
}

func (h *harness) post(form url.Values, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.AddCookie(h.cookie)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestTokenIsStablePerSession(t *testing.T) {
	h := newHarness(t)
	assert.Len(t, h.token, 43)

	req := httptest.NewRequest(http.MethodGet, "/form", nil)
	req.AddCookie(h.cookie)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	assert.Equal(t, h.token, w.Body.String())
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		form       func(h *harness) url.Values
		headers    func(h *harness) map[string]string
		wantStatus int
	}{
		{
			name:       "form field matches",
			form:       func(h *harness) url.Values { return url.Values{FormField: {h.token}} },
			wantStatus: http.StatusOK,
		},
		{
			name:       "header matches",
			headers:    func(h *harness) map[string]string { return map[string]string{HeaderName: h.token} },
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing token",
			wantStatus: http.StatusSeeOther,
		},
		{
			name:       "wrong token",
			form:       func(h *harness) url.Values { return url.Values{FormField: {h.token[:42] + "x"}} },
			wantStatus: http.StatusSeeOther,
		},
		{
			name: "ajax wrong token",
			headers: func(h *harness) map[string]string {
				return map[string]string{HeaderName: "nope", "X-Requested-With": "XMLHttpRequest"}
			},
			wantStatus: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			var form url.Values
			if tt.form != nil {
				form = tt.form(h)
			}
			var headers map[string]string
			if tt.headers != nil {
				headers = tt.headers(h)
			}

			w := h.post(form, headers)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestMiddlewareRejectionShapes(t *testing.T) {
	h := newHarness(t)

	w := h.post(nil, map[string]string{"Referer": "http://example.com/register"})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/register", w.Header().Get("Location"))

	w = h.post(nil, map[string]string{"Referer": "http://evil.test/phish"})
	assert.Equal(t, "/form", w.Header().Get("Location"))

	w = h.post(nil, map[string]string{"Accept": "application/json"})
	require.Equal(t, http.StatusForbidden, w.Code)
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Message)
}

func TestValidWithoutIssuedToken(t *testing.T) {
	assert.False(t, Valid(&session.Session{}, "x"))
	assert.False(t, Valid(&session.Session{}, ""))
}
