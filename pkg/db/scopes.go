package db

import "gorm.io/gorm"

// NotDeleted filters out soft-deleted rows. Every repository query that reads
// a soft-deletable resource goes through this scope so the predicate lives in
// exactly one place.
func NotDeleted(tx *gorm.DB) *gorm.DB {
	return tx.Where("is_deleted = ?", false)
}
