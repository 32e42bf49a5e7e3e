package code

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	digits := regexp.MustCompile(`^\d{6}$`)
	seen := map[string]bool{}
	for range 200 {
		c := Generate()
		assert.Regexp(t, digits, c)
		seen[c] = true
	}
	// 200 draws from a million values should almost never collide much
	assert.Greater(t, len(seen), 190)
}

func TestIssuedCheck(t *testing.T) {
	issuedAt := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	i := Issued{Code: "123456", IssuedAt: issuedAt}

	tests := []struct {
		name      string
		submitted string
		elapsed   time.Duration
		want      error
	}{
		{"fresh", "123456", time.Second, nil},
		{"exactly at the limit", "123456", 600 * time.Second, nil},
		{"one second late", "123456", 601 * time.Second, ErrExpired},
		{"wrong code", "654321", time.Second, ErrMismatch},
		{"wrong code and late", "654321", time.Hour, ErrMismatch},
		{"surrounding whitespace", " 123456 ", time.Second, nil},
		{"empty", "", time.Second, ErrMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := i.Check(tt.submitted, issuedAt.Add(tt.elapsed), 0)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIssuedCheckCustomTTL(t *testing.T) {
	now := time.Now()
	i := Issued{Code: "000001", IssuedAt: now}

	assert.NoError(t, i.Check("000001", now.Add(59*time.Second), time.Minute))
	assert.ErrorIs(t, i.Check("000001", now.Add(61*time.Second), time.Minute), ErrExpired)
}

func TestIssue(t *testing.T) {
	now := time.Now()
	a, b := Issue(now), Issue(now.Add(time.Second))

	assert.Equal(t, now, a.IssuedAt)
	assert.Len(t, a.Code, CodeLength)
	assert.True(t, b.IssuedAt.After(a.IssuedAt))
}

func TestExpireMinutes(t *testing.T) {
	assert.Equal(t, 10, ExpireMinutes(0))
	assert.Equal(t, 10, ExpireMinutes(600*time.Second))
	assert.Equal(t, 2, ExpireMinutes(61*time.Second))
}

func TestSessionKey(t *testing.T) {
	assert.NotEqual(t, CodeTypeRegister.SessionKey(), CodeTypeResetPassword.SessionKey())
}
