package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
)

// ResourceLockRepository serialises commits touching the same room or lecturer using
// transaction-scoped Postgres advisory locks.
type ResourceLockRepository struct {
	timeout time.Duration
}

// NewResourceLockRepository constructs the repository. A positive timeout bounds how long a commit
// waits for a lock held by another transaction.
func NewResourceLockRepository(timeout time.Duration) *ResourceLockRepository {
	return &ResourceLockRepository{timeout: timeout}
}

// Lock acquires one advisory lock per distinct key, in sorted order so concurrent commits cannot deadlock.
// The locks are released when the surrounding transaction ends.
func (r *ResourceLockRepository) Lock(ctx context.Context, exec sqlx.ExtContext, keys ...string) error {
	if exec == nil {
		return fmt.Errorf("advisory locks require a transaction")
	}
	unique := make(map[string]struct{}, len(keys))
	ordered := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := unique[key]; ok {
			continue
		}
		unique[key] = struct{}{}
		ordered = append(ordered, key)
	}
	sort.Strings(ordered)

	if r.timeout > 0 {
		const timeoutQuery = `SELECT set_config('lock_timeout', $1, true)`
		if _, err := exec.ExecContext(ctx, timeoutQuery, fmt.Sprintf("%dms", r.timeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}

	const query = `SELECT pg_advisory_xact_lock(hashtext($1))`
	for _, key := range ordered {
		if _, err := exec.ExecContext(ctx, query, key); err != nil {
			return fmt.Errorf("acquire advisory lock %s: %w", key, err)
		}
	}
	return nil
}
