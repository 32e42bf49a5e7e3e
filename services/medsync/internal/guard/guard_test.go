package guard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medsync/packages/response"
	"medsync/services/medsync/internal/model/user"
	"medsync/services/medsync/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const browser = "Mozilla/5.0 (X11; Linux x86_64) Firefox/131.0"

var doctor = Identity{UserID: 3, DisplayID: "D0003", Username: "drhouse", Name: "Gregory House", Role: user.RoleDoctor}

func testConfig() Config {
	return Config{IdleTimeout: 30 * time.Minute, RotationInterval: 5 * time.Minute}
}

func signedIn(t0 time.Time) *session.Session {
	s := session.New()
	SignIn(s, doctor, browser, t0)
	return s
}

func TestEvaluate(t *testing.T) {
	t0 := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		session    func() *session.Session
		ua         string
		now        time.Time
		roles      []user.Role
		wantReason Reason
		wantRotate bool
	}{
		{
			name:    "fresh session passes",
			session: func() *session.Session { return signedIn(t0) },
			ua:      browser,
			now:     t0.Add(time.Minute),
		},
		{
			name:    "allowed role passes",
			session: func() *session.Session { return signedIn(t0) },
			ua:      browser,
			now:     t0.Add(time.Minute),
			roles:   []user.Role{user.RoleDoctor, user.RoleAdmin},
		},
		{
			name:       "no role",
			session:    session.New,
			ua:         browser,
			now:        t0,
			wantReason: ReasonUnauthenticated,
		},
		{
			name: "unknown role",
			session: func() *session.Session {
				s := signedIn(t0)
				s.Set(KeyRole, "superuser")
				return s
			},
			ua:         browser,
			now:        t0,
			wantReason: ReasonUnauthenticated,
		},
		{
			name:       "wrong role",
			session:    func() *session.Session { return signedIn(t0) },
			ua:         browser,
			now:        t0,
			roles:      []user.Role{user.RoleAdmin},
			wantReason: ReasonForbidden,
		},
		{
			name:       "user agent changed",
			session:    func() *session.Session { return signedIn(t0) },
			ua:         "curl/8.0",
			now:        t0,
			wantReason: ReasonFingerprint,
		},
		{
			name:       "idle just under the limit",
			session:    func() *session.Session { return signedIn(t0) },
			ua:         browser,
			now:        t0.Add(30*time.Minute - time.Second),
			wantRotate: true,
		},
		{
			name:       "idle at the limit",
			session:    func() *session.Session { return signedIn(t0) },
			ua:         browser,
			now:        t0.Add(30 * time.Minute),
			wantReason: ReasonTimeout,
		},
		{
			name: "rotation due but active",
			session: func() *session.Session {
				s := signedIn(t0)
				s.SetTime(KeyLastActivity, t0.Add(5*time.Minute))
				return s
			},
			ua:         browser,
			now:        t0.Add(6 * time.Minute),
			wantRotate: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(tt.session(), tt.ua, tt.now, testConfig(), tt.roles...)
			assert.Equal(t, tt.wantReason, v.Reason)
			assert.Equal(t, tt.wantRotate, v.Rotate)
		})
	}
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newRouter(t *testing.T) (*gin.Engine, *session.MemoryStore, *clock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clk := &clock{now: time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)}
	store := session.NewMemoryStore()
	m := session.NewManager(store, session.Options{CookieName: "sid", TTL: time.Hour})
	cfg := testConfig()
	cfg.Now = clk.Now
	g := New(m, cfg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/signin", func(c *gin.Context) {
		m.Regenerate(c)
		SignIn(session.FromContext(c), doctor, c.Request.UserAgent(), clk.Now())
		c.Status(http.StatusNoContent)
	})
	r.GET("/doctor", g.Require(user.RoleDoctor), func(c *gin.Context) {
		id, _ := IdentityFromContext(c)
		c.String(http.StatusOK, id.DisplayID)
	})
	r.GET("/admin", g.Require(user.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, "admin")
	})
	return r, store, clk
}

func get(r http.Handler, path, ua string, cookie *http.Cookie, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("User-Agent", ua)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cookieOf(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	cs := w.Result().Cookies()
	require.NotEmpty(t, cs)
	return cs[len(cs)-1]
}

func TestRequire_Admits(t *testing.T) {
	r, _, clk := newRouter(t)
	cookie := cookieOf(t, get(r, "/signin", browser, nil))

	clk.now = clk.now.Add(time.Minute)
	w := get(r, "/doctor", browser, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "D0003", w.Body.String())
	assert.Empty(t, w.Result().Cookies(), "no rotation yet")
}

func TestRequire_RedirectsWithReason(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		ua       string
		advance  time.Duration
		location string
	}{
		{"wrong role", "/admin", browser, 0, "/login?reason=forbidden"},
		{"fingerprint", "/doctor", "curl/8.0", 0, "/login?reason=fingerprint"},
		{"timeout", "/doctor", browser, 31 * time.Minute, "/login?reason=timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, clk := newRouter(t)
			cookie := cookieOf(t, get(r, "/signin", browser, nil))

			clk.now = clk.now.Add(tt.advance)
			w := get(r, tt.path, tt.ua, cookie)
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))

			// the session is gone: even a correct request is refused now
			w = get(r, "/doctor", browser, cookie)
			assert.Equal(t, "/login?reason=unauthenticated", w.Header().Get("Location"))
		})
	}
}

func TestRequire_Anonymous(t *testing.T) {
	r, _, _ := newRouter(t)
	w := get(r, "/doctor", browser, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?reason=unauthenticated", w.Header().Get("Location"))
}

func TestRequire_AJAX(t *testing.T) {
	r, _, _ := newRouter(t)
	w := get(r, "/doctor", browser, nil, "X-Requested-With", "XMLHttpRequest")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, response.Unauthorized, body.Code)
}

func TestRequire_RotatesInsteadOfRejecting(t *testing.T) {
	r, store, clk := newRouter(t)
	old := cookieOf(t, get(r, "/signin", browser, nil))

	clk.now = clk.now.Add(4 * time.Minute)
	require.Equal(t, http.StatusOK, get(r, "/doctor", browser, old).Code)

	clk.now = clk.now.Add(2 * time.Minute)
	w := get(r, "/doctor", browser, old)
	require.Equal(t, http.StatusOK, w.Code)
	fresh := cookieOf(t, w)
	assert.NotEqual(t, old.Value, fresh.Value)
	assert.Equal(t, 1, store.Len())

	assert.Equal(t, http.StatusOK, get(r, "/doctor", browser, fresh).Code)
	assert.Equal(t, http.StatusFound, get(r, "/doctor", browser, old).Code)
}

func TestHomePath(t *testing.T) {
	assert.Equal(t, "/admin", HomePath(user.RoleAdmin))
	assert.Equal(t, "/doctor", HomePath(user.RoleDoctor))
	assert.Equal(t, "/staff", HomePath(user.RoleStaff))
	assert.Equal(t, "/patient", HomePath(user.RoleUser))
	assert.Equal(t, "/login", HomePath("nurse"))
}
