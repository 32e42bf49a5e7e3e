package testutils

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
)

const TestUserAgent = "Mozilla/5.0 (X11; Linux x86_64) MedSyncTest/1.0"

var csrfRegex = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// Browser drives a handler the way a browser would: it keeps cookies
// and remembers the last CSRF token seen in a page.
type Browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
	CSRF    string
}

func NewBrowser(t *testing.T, handler http.Handler) *Browser {
	return &Browser{t: t, handler: handler, cookies: map[string]*http.Cookie{}}
}

// Get fetches path and picks up any CSRF token in the body.
func (b *Browser) Get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	return b.Do(req)
}

// PostForm submits values urlencoded, adding the current CSRF token.
func (b *Browser) PostForm(path string, values url.Values) *httptest.ResponseRecorder {
	if values == nil {
		values = url.Values{}
	}
	if values.Get("csrf_token") == "" && b.CSRF != "" {
		values.Set("csrf_token", b.CSRF)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.Do(req)
}

// PostMultipart submits values plus one file part, adding the CSRF token.
func (b *Browser) PostMultipart(path string, values url.Values, field, filename string, content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if values.Get("csrf_token") == "" && b.CSRF != "" {
		values.Set("csrf_token", b.CSRF)
	}
	for k, vs := range values {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				b.t.Fatalf("write field: %v", err)
			}
		}
	}
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		if err != nil {
			b.t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			b.t.Fatalf("write file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		b.t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.Do(req)
}

// PostJSON sends body as an AJAX request with the CSRF header.
func (b *Browser) PostJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if b.CSRF != "" {
		req.Header.Set("X-CSRF-Token", b.CSRF)
	}
	return b.Do(req)
}

// Do sends req with the stored cookies and records the response cookies.
func (b *Browser) Do(req *http.Request) *httptest.ResponseRecorder {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", TestUserAgent)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	if m := csrfRegex.FindStringSubmatch(w.Body.String()); m != nil {
		b.CSRF = m[1]
	}
	return w
}

// Cookie returns the stored cookie called name, or nil.
func (b *Browser) Cookie(name string) *http.Cookie {
	return b.cookies[name]
}
