// Package service implements the dual-path business logic: every mutation
// either goes straight to the remote API (online) or is applied to the local
// mirror and enqueued as a pending action in the same transaction (offline).
// The caller decides the path by sampling connectivity once per request and
// passing the result in, so a flap mid-operation cannot split one mutation
// across both paths.
package service

import "gorm.io/gorm"

// runTx executes fn inside a transaction when db is available, or calls
// fn(nil) directly when db is nil (unit-test mode with fake repositories).
func runTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.Transaction(fn)
}
