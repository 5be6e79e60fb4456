package model

import (
	"time"

	"gorm.io/datatypes"
)

// PendingAction is one durable, ordered record of a mutation performed while
// offline, awaiting replay against the remote API. Entries are append-only:
// they are created by the service layer, never mutated, and removed by the
// sync engine only after the corresponding remote call succeeds.
type PendingAction struct {
	// ID is the replay sequence — drains always process ascending.
	ID   uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Type string `gorm:"type:varchar(50);not null" json:"type"`
	// Payload is opaque to the queue; internal/action defines the shapes.
	Payload datatypes.JSON `gorm:"not null" json:"payload"`
	// IdempotencyKey is generated at enqueue time and sent unchanged on every
	// replay attempt, so an ambiguous failure cannot double-apply remotely.
	IdempotencyKey string    `gorm:"type:varchar(36);not null" json:"idempotency_key"`
	CriadoEm       time.Time `json:"criado_em"`
}

func (PendingAction) TableName() string { return "pending_actions" }

// SyncAlias maps a local id to the server id assigned when the sync engine
// confirmed the corresponding create. Later drains use it to resolve queued
// actions that still reference the local id.
type SyncAlias struct {
	LocalID  string    `gorm:"primaryKey" json:"local_id"`
	ServerID string    `gorm:"not null;index" json:"server_id"`
	CriadoEm time.Time `json:"criado_em"`
}

func (SyncAlias) TableName() string { return "sync_aliases" }
