// Package health reports whether the service's backing stores answer.
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const checkTimeout = 2 * time.Second

// CheckFunc returns nil when the dependency is usable.
type CheckFunc func(ctx context.Context) error

type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

func NewChecker() *Checker {
	return &Checker{checks: map[string]CheckFunc{}}
}

// Add registers check under name, replacing an earlier one.
func (c *Checker) Add(name string, check CheckFunc) *Checker {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
	return c
}

// Report is the outcome of one Run.
type Report struct {
	Healthy bool              `json:"healthy" example:"true"`
	Checks  map[string]string `json:"checks"`
}

// Run executes every check, each with its own timeout.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	checks := make(map[string]CheckFunc, len(c.checks))
	for k, v := range c.checks {
		checks[k] = v
	}
	c.mu.RUnlock()
	sort.Strings(names)

	report := Report{Healthy: true, Checks: make(map[string]string, len(names))}
	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := checks[name](cctx)
		cancel()
		if err != nil {
			report.Healthy = false
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = "ok"
	}
	return report
}

// SQL pings the database behind db.
func SQL(db *gorm.DB) CheckFunc {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// Redis pings client.
func Redis(client redis.UniversalClient) CheckFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
