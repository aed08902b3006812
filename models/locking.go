package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockForUpdate adds a row-level FOR UPDATE lock on dialects that support
// it. SQLite allows a single writer per database, so there the surrounding
// transaction already serializes conflicting writes.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
