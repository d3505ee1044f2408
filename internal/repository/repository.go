// Package repository holds the GORM data access for the ledger. Methods with a
// Tx suffix take the caller's transaction and must be used for every read that
// feeds a balance check; the Lock variants add SELECT ... FOR UPDATE.
package repository

import (
	"gorm.io/gorm/clause"
)

func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}
