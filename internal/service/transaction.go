package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-schedule-api/internal/models"
	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

const (
	// gridCachePattern matches every cached weekly grid.
	gridCachePattern = "schedule:week:*"
	// gridGenerationKey versions the grid keys; every session mutation advances it.
	gridGenerationKey = "schedule:generation"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type resourceLocker interface {
	Lock(ctx context.Context, exec sqlx.ExtContext, keys ...string) error
}

// withTx runs fn in a transaction, rolling back on error or panic.
func withTx(ctx context.Context, provider txProvider, fn func(tx *sqlx.Tx) error) (err error) {
	if provider == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := provider.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit transaction")
	}
	return nil
}

// lockResources serialises writers on the given rooms and lecturers for the rest of the transaction.
// Scope keys are locked in the same call and guard state that is not tied to a resource.
func lockResources(ctx context.Context, locker resourceLocker, tx *sqlx.Tx, roomIDs []string, lecturerIDs []string, scopes ...string) error {
	if locker == nil {
		return nil
	}
	keys := make([]string, 0, len(scopes)+len(roomIDs)+len(lecturerIDs))
	keys = append(keys, scopes...)
	for _, id := range roomIDs {
		keys = append(keys, "room:"+id)
	}
	for _, id := range lecturerIDs {
		keys = append(keys, "lecturer:"+id)
	}
	if err := locker.Lock(ctx, tx, keys...); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock schedule resources")
	}
	return nil
}

// classLockKey scopes a lock to one class so its session set changes one writer at a time.
func classLockKey(classID string) string {
	return "class:" + classID
}

// recheck re-runs detection for a room and a lecturer inside the commit transaction and turns any
// overlap into RESOURCE_CONFLICT_ON_COMMIT carrying the conflicts.
func recheck(ctx context.Context, detector *ConflictDetector, tx *sqlx.Tx, cand Candidate, roomID, lecturerID string) error {
	scoped := detector.Within(tx)
	roomConflicts, err := scoped.Detect(ctx, cand, models.ResourceRoom, roomID)
	if err != nil {
		return err
	}
	lecturerConflicts, err := scoped.Detect(ctx, cand, models.ResourceLecturer, lecturerID)
	if err != nil {
		return err
	}
	if len(roomConflicts) == 0 && len(lecturerConflicts) == 0 {
		return nil
	}
	conflicts := append(roomConflicts, lecturerConflicts...)
	return appErrors.WithDetails(
		appErrors.Clone(appErrors.ErrResourceConflictOnCommit, fmt.Sprintf("%d conflicting sessions found while committing, re-run check-and-suggest", len(conflicts))),
		map[string]interface{}{"conflicts": conflicts},
	)
}
