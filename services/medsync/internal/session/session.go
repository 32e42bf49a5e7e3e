// Package session keeps per-visitor server-side state behind an HttpOnly
// cookie. Handlers reach it through FromContext; values are strings, with
// JSON and time helpers layered on top.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// UserIDKey is the value Manager uses to index sessions by account.
const UserIDKey = "user_id"

const flashKey = "_flashes"

type Session struct {
	id       string
	values   map[string]string
	isNew    bool
	dirty    bool
	staleIDs []string
}

// New returns an empty session with a fresh ID, not yet bound to a request.
func New() *Session {
	return &Session{
		id:     NewID(),
		values: map[string]string{},
		isNew:  true,
	}
}

func (s *Session) ID() string {
	return s.id
}

// IsNew reports whether the session was created during this request.
func (s *Session) IsNew() bool {
	return s.isNew
}

func (s *Session) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// GetString returns the value or "".
func (s *Session) GetString(key string) string {
	return s.values[key]
}

func (s *Session) Set(key, value string) {
	s.values[key] = value
	s.dirty = true
}

func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.dirty = true
	}
}

// Clear drops every value, flashes included.
func (s *Session) Clear() {
	if len(s.values) > 0 {
		s.values = map[string]string{}
		s.dirty = true
	}
}

// GetObject decodes the JSON stored under key into v.
func (s *Session) GetObject(key string, v any) (bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("decode session value %s: %w", key, err)
	}
	return true, nil
}

// SetObject stores v as JSON under key.
func (s *Session) SetObject(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode session value %s: %w", key, err)
	}
	s.Set(key, string(raw))
	return nil
}

// GetTime reads a unix timestamp stored with SetTime.
func (s *Session) GetTime(key string) (time.Time, bool) {
	raw, ok := s.values[key]
	if !ok {
		return time.Time{}, false
	}
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(sec, 0), true
}

func (s *Session) SetTime(key string, t time.Time) {
	s.Set(key, strconv.FormatInt(t.Unix(), 10))
}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"` // success, error, info
	Message string `json:"message"`
}

func (s *Session) AddFlash(kind, message string) {
	var flashes []Flash
	_, _ = s.GetObject(flashKey, &flashes)
	flashes = append(flashes, Flash{Kind: kind, Message: message})
	_ = s.SetObject(flashKey, flashes)
}

// Flashes returns the pending flashes and removes them.
func (s *Session) Flashes() []Flash {
	var flashes []Flash
	if ok, err := s.GetObject(flashKey, &flashes); !ok || err != nil {
		s.Delete(flashKey)
		return nil
	}
	s.Delete(flashKey)
	return flashes
}

// NewID returns 32 random bytes, URL-safe base64 encoded.
func NewID() string {
	id, err := RandomToken(32)
	if err != nil {
		panic(fmt.Sprintf("session: read random bytes: %v", err))
	}
	return id
}

// RandomToken returns n random bytes, URL-safe base64 encoded without padding.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
