package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(store Store) (*gin.Engine, *Manager) {
	gin.SetMode(gin.TestMode)
	m := NewManager(store, Options{CookieName: "sid", TTL: time.Hour})

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/set", func(c *gin.Context) {
		FromContext(c).Set("role", c.Query("role"))
		FromContext(c).Set(UserIDKey, "42")
		c.Status(http.StatusNoContent)
	})
	r.GET("/get", func(c *gin.Context) {
		c.String(http.StatusOK, FromContext(c).GetString("role"))
	})
	r.GET("/rotate", func(c *gin.Context) {
		m.Regenerate(c)
		c.String(http.StatusOK, FromContext(c).GetString("role"))
	})
	r.GET("/destroy", func(c *gin.Context) {
		m.Destroy(c)
		c.String(http.StatusOK, FromContext(c).GetString("role"))
	})
	return r, m
}

func do(r http.Handler, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "sid", cookies[0].Name)
	return cookies[0]
}

func TestManagerRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	r, _ := newTestRouter(store)

	w := do(r, "/set?role=doctor", nil)
	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	w = do(r, "/get", cookie)
	assert.Equal(t, "doctor", w.Body.String())
	assert.Empty(t, w.Result().Cookies(), "existing session keeps its cookie")
}

func TestManagerUnknownCookieStartsFresh(t *testing.T) {
	r, _ := newTestRouter(NewMemoryStore())

	stale := &http.Cookie{Name: "sid", Value: NewID()}
	w := do(r, "/get", stale)
	assert.Equal(t, "", w.Body.String())
	assert.NotEqual(t, stale.Value, sessionCookie(t, w).Value)
}

func TestManagerRegenerate(t *testing.T) {
	store := NewMemoryStore()
	r, _ := newTestRouter(store)

	old := sessionCookie(t, do(r, "/set?role=staff", nil))

	w := do(r, "/rotate", old)
	assert.Equal(t, "staff", w.Body.String())
	fresh := sessionCookie(t, w)
	assert.NotEqual(t, old.Value, fresh.Value)

	_, err := store.Load(context.Background(), old.Value)
	assert.ErrorIs(t, err, ErrNotFound, "old id is gone")

	assert.Equal(t, "staff", do(r, "/get", fresh).Body.String())
	assert.Equal(t, "", do(r, "/get", old).Body.String())
}

func TestManagerDestroy(t *testing.T) {
	store := NewMemoryStore()
	r, _ := newTestRouter(store)

	old := sessionCookie(t, do(r, "/set?role=admin", nil))
	w := do(r, "/destroy", old)
	assert.Equal(t, "", w.Body.String())
	assert.NotEqual(t, old.Value, sessionCookie(t, w).Value)
	assert.Zero(t, store.Len())
}

func TestManagerDestroyUser(t *testing.T) {
	store := NewMemoryStore()
	r, m := newTestRouter(store)

	first := sessionCookie(t, do(r, "/set?role=user", nil))
	second := sessionCookie(t, do(r, "/set?role=user", nil))
	require.Equal(t, 2, store.Len())

	n, err := m.DestroyUser(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, "", do(r, "/get", first).Body.String())
	assert.Equal(t, "", do(r, "/get", second).Body.String())
}

func TestManagerUntouchedSessionIsNotStored(t *testing.T) {
	store := NewMemoryStore()
	r, _ := newTestRouter(store)

	do(r, "/get", nil)
	assert.Zero(t, store.Len())
}
