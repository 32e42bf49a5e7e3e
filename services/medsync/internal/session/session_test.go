package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionValues(t *testing.T) {
	s := New()
	assert.True(t, s.IsNew())
	assert.False(t, s.dirty)

	_, ok := s.Get("role")
	assert.False(t, ok)

	s.Set("role", "doctor")
	v, ok := s.Get("role")
	assert.True(t, ok)
	assert.Equal(t, "doctor", v)
	assert.True(t, s.dirty)

	s.Delete("role")
	assert.Equal(t, "", s.GetString("role"))

	s.Set("a", "1")
	s.Set("b", "2")
	s.Clear()
	assert.Empty(t, s.values)
}

func TestSessionObject(t *testing.T) {
	type pending struct {
		Username string    `json:"username"`
		IssuedAt time.Time `json:"issued_at"`
	}
	s := New()
	in := pending{Username: "alice", IssuedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	require.NoError(t, s.SetObject("pending", in))

	var out pending
	ok, err := s.GetObject("pending", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, out)

	ok, err = s.GetObject("missing", &out)
	assert.NoError(t, err)
	assert.False(t, ok)

	s.Set("broken", "{not json")
	ok, err = s.GetObject("broken", &out)
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestSessionTime(t *testing.T) {
	s := New()
	now := time.Unix(1_760_000_000, 0)
	s.SetTime("last_activity", now)

	got, ok := s.GetTime("last_activity")
	assert.True(t, ok)
	assert.True(t, now.Equal(got))

	s.Set("garbage", "yesterday")
	_, ok = s.GetTime("garbage")
	assert.False(t, ok)
}

func TestSessionFlashes(t *testing.T) {
	s := New()
	assert.Nil(t, s.Flashes())

	s.AddFlash("error", "Passwords do not match.")
	s.AddFlash("info", "Check your inbox.")

	flashes := s.Flashes()
	require.Len(t, flashes, 2)
	assert.Equal(t, Flash{Kind: "error", Message: "Passwords do not match."}, flashes[0])
	assert.Equal(t, "info", flashes[1].Kind)

	assert.Nil(t, s.Flashes(), "flashes are consumed on read")
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
	assert.True(t, validID(a))
}

func TestValidID(t *testing.T) {
	assert.False(t, validID(""))
	assert.False(t, validID("short"))
	assert.False(t, validID("has spaces in the middle of it"))
	assert.False(t, validID("../../../../etc/passwd/xxxxxxxx"))
	assert.True(t, validID("abcdefghijklmnop_-0123"))
}
