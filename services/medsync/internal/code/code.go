// Package code issues and checks the six digit one-time codes mailed
// during registration and password reset.
package code

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"
)

const (
	CodeLength = 6
	CodeExpire = 600 * time.Second
)

var (
	ErrMismatch = errors.New("code does not match")
	ErrExpired  = errors.New("code expired")
)

type CodeType int

const (
	CodeTypeRegister CodeType = iota + 1
	CodeTypeResetPassword
)

// SessionKey is where a pending flow of this type lives in the session.
func (t CodeType) SessionKey() string {
	switch t {
	case CodeTypeRegister:
		return "pending_registration"
	case CodeTypeResetPassword:
		return "pending_password_reset"
	}
	return "pending_code"
}

var ten = big.NewInt(10)

// Generate returns CodeLength uniform random digits from crypto/rand.
func Generate() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for range CodeLength {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			panic("code: read random digit: " + err.Error())
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String()
}

// Issued is a code together with the moment it was mailed.
type Issued struct {
	Code     string    `json:"otp"`
	IssuedAt time.Time `json:"issued_at"`
}

// Issue generates a fresh code stamped with now.
func Issue(now time.Time) Issued {
	return Issued{Code: Generate(), IssuedAt: now}
}

// Check compares submitted against the code, then the age against ttl.
// A non-positive ttl means CodeExpire. The comparison is plain equality.
func (i Issued) Check(submitted string, now time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = CodeExpire
	}
	if strings.TrimSpace(submitted) != i.Code {
		return ErrMismatch
	}
	if now.Sub(i.IssuedAt) > ttl {
		return ErrExpired
	}
	return nil
}

// ExpireMinutes is ttl rounded up to whole minutes, for mail copy.
func ExpireMinutes(ttl time.Duration) int {
	if ttl <= 0 {
		ttl = CodeExpire
	}
	return int((ttl + time.Minute - 1) / time.Minute)
}
