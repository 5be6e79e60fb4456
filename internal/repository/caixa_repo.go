package repository

import (
	"context"
	"errors"

	"systmix/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSemCaixaAberto is returned when no open cash session exists locally.
var ErrSemCaixaAberto = errors.New("não há caixa aberto")

// CaixaRepository is the mirror-store contract for cash sessions. The mirror
// keeps the last known sessions so the open/closed gate keeps working with no
// network.
type CaixaRepository interface {
	Create(ctx context.Context, c *model.Caixa) error
	FindAberta(ctx context.Context) (*model.Caixa, error)
	Update(ctx context.Context, c *model.Caixa) error
	Upsert(ctx context.Context, c *model.Caixa) error
	DB() *gorm.DB
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) Create(ctx context.Context, c *model.Caixa) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *caixaRepo) FindAberta(ctx context.Context) (*model.Caixa, error) {
	var c model.Caixa
	err := r.db.WithContext(ctx).
		Where("data_fechamento IS NULL").
		Order("data_abertura DESC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSemCaixaAberto
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caixaRepo) Update(ctx context.Context, c *model.Caixa) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *caixaRepo) Upsert(ctx context.Context, c *model.Caixa) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(c).Error
}

func (r *caixaRepo) DB() *gorm.DB { return r.db }
