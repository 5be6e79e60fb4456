package repository

import (
	"context"
	"errors"
	"time"

	"systmix/internal/action"
	"systmix/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PendingActionRepository is the durable FIFO queue of offline mutation
// intents, plus the local-id → server-id alias table the sync engine fills as
// creates are confirmed. Replay order is the auto-increment sequence id;
// entries are append-only and only the sync engine removes them.
type PendingActionRepository interface {
	Enqueue(ctx context.Context, tipo string, payload []byte) (*model.PendingAction, error)
	EnqueueTx(tx *gorm.DB, tipo string, payload []byte) (*model.PendingAction, error)
	PeekAllOrdered(ctx context.Context) ([]model.PendingAction, error)
	Remove(ctx context.Context, id uint64) error
	Count(ctx context.Context) (int64, error)

	SaveAlias(ctx context.Context, localID, serverID string) error
	// ResolveAlias maps a local id to its confirmed server id; ids without an
	// alias (server ids, or local ids not yet confirmed) come back unchanged.
	ResolveAlias(ctx context.Context, id string) (string, error)

	DB() *gorm.DB
}

type pendingRepo struct{ db *gorm.DB }

func NewPendingActionRepository(db *gorm.DB) PendingActionRepository {
	return &pendingRepo{db: db}
}

func newPendingAction(tipo string, payload []byte) (*model.PendingAction, error) {
	if err := action.Validate(tipo); err != nil {
		return nil, err
	}
	return &model.PendingAction{
		Type:           tipo,
		Payload:        datatypes.JSON(payload),
		IdempotencyKey: uuid.NewString(),
		CriadoEm:       time.Now().UTC(),
	}, nil
}

func (r *pendingRepo) Enqueue(ctx context.Context, tipo string, payload []byte) (*model.PendingAction, error) {
	return r.EnqueueTx(r.db.WithContext(ctx), tipo, payload)
}

func (r *pendingRepo) EnqueueTx(tx *gorm.DB, tipo string, payload []byte) (*model.PendingAction, error) {
	pa, err := newPendingAction(tipo, payload)
	if err != nil {
		return nil, err
	}
	if err := tx.Create(pa).Error; err != nil {
		return nil, err
	}
	return pa, nil
}

func (r *pendingRepo) PeekAllOrdered(ctx context.Context) ([]model.PendingAction, error) {
	var actions []model.PendingAction
	err := r.db.WithContext(ctx).Order("id ASC").Find(&actions).Error
	return actions, err
}

func (r *pendingRepo) Remove(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&model.PendingAction{}, id).Error
}

func (r *pendingRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PendingAction{}).Count(&count).Error
	return count, err
}

func (r *pendingRepo) SaveAlias(ctx context.Context, localID, serverID string) error {
	alias := &model.SyncAlias{LocalID: localID, ServerID: serverID, CriadoEm: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(alias).Error
}

func (r *pendingRepo) ResolveAlias(ctx context.Context, id string) (string, error) {
	var alias model.SyncAlias
	err := r.db.WithContext(ctx).First(&alias, "local_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return id, nil
	}
	if err != nil {
		return "", err
	}
	return alias.ServerID, nil
}

func (r *pendingRepo) DB() *gorm.DB { return r.db }
