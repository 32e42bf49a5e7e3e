// Package displayid hands out the human-facing sequential user IDs
// (A0001, D0042, U10000) from one counter row per role.
package displayid

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"medsync/services/medsync/internal/model/counter"
	"medsync/services/medsync/internal/model/user"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidRole = errors.New("invalid role")
	ErrPersistence = errors.New("display id persistence error")
	ErrMalformed   = errors.New("malformed display id")
)

var prefixes = map[user.Role]string{
	user.RoleAdmin:  "A",
	user.RoleDoctor: "D",
	user.RoleStaff:  "S",
	user.RoleUser:   "U",
}

var pattern = regexp.MustCompile(`^([ADSU])(\d{4,})$`)

// PrefixFor maps a role name to its single-letter prefix.
func PrefixFor(role string) (string, error) {
	p, ok := prefixes[user.Role(role)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return p, nil
}

// Format renders n zero-padded to four digits; wider values are not truncated.
func Format(prefix string, n int64) string {
	return prefix + fmt.Sprintf("%04d", n)
}

// Parse splits a display ID into prefix and number.
func Parse(id string) (string, int64, error) {
	m := pattern.FindStringSubmatch(id)
	if m == nil {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformed, id)
	}
	n, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformed, id)
	}
	return m[1], n, nil
}

// Allocator issues display IDs. Callers for the same role wait on the
// counter row lock; the counter is never decremented, so a caller that
// fails after Allocate leaves a gap.
type Allocator struct {
	db *gorm.DB
}

func NewAllocator(db *gorm.DB) *Allocator {
	return &Allocator{db: db}
}

// Allocate returns the next display ID for role.
func (a *Allocator) Allocate(ctx context.Context, role string) (string, error) {
	prefix, err := PrefixFor(role)
	if err != nil {
		return "", err
	}

	var next int64
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := counter.RoleCounter{RolePrefix: prefix}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return fmt.Errorf("seed counter: %w", err)
		}

		var row counter.RoleCounter
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("role_prefix = ?", prefix).
			First(&row).Error; err != nil {
			return fmt.Errorf("lock counter: %w", err)
		}

		next = row.LastID + 1
		if err := tx.Model(&counter.RoleCounter{}).
			Where("role_prefix = ?", prefix).
			Update("last_id", next).Error; err != nil {
			return fmt.Errorf("advance counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: role %s: %w", ErrPersistence, role, err)
	}

	return Format(prefix, next), nil
}

// Peek reports the last number issued for role without advancing it.
func (a *Allocator) Peek(ctx context.Context, role string) (int64, error) {
	prefix, err := PrefixFor(role)
	if err != nil {
		return 0, err
	}

	var row counter.RoleCounter
	err = a.db.WithContext(ctx).Where("role_prefix = ?", prefix).Limit(1).Find(&row).Error
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return row.LastID, nil
}
