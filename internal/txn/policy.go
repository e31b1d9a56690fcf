package txn

import (
	"context"

	"gorm.io/gorm"
)

// Policy wraps every write in a commit-or-discard decision. In demo mode
// writes execute fully (including identifier assignment) and are then
// rolled back, so callers see realistic success responses while no state
// survives past the operation.
//
// Demo mode is fixed at construction rather than read from ambient
// state, so it cannot leak between concurrently served requests.
type Policy struct {
	db   *gorm.DB
	demo bool
}

func New(db *gorm.DB, demo bool) *Policy {
	return &Policy{db: db, demo: demo}
}

// Demo reports whether writes are being discarded.
func (p *Policy) Demo() bool {
	return p.demo
}

// Write runs fn inside a transaction scoped to one logical operation.
// Errors from fn roll back and propagate. In demo mode a successful fn
// is also rolled back, and nil is returned.
func (p *Policy) Write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := p.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if p.demo {
		return tx.Rollback().Error
	}
	return tx.Commit().Error
}
