package repository

import (
	"context"

	"systmix/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProdutoRepository is the mirror-store contract for the product catalog.
type ProdutoRepository interface {
	CreateTx(tx *gorm.DB, p *model.Produto) error
	FindByID(ctx context.Context, id string) (*model.Produto, error)
	List(ctx context.Context) ([]model.Produto, error)
	ListAtivos(ctx context.Context) ([]model.Produto, error)
	UpdateTx(tx *gorm.DB, p *model.Produto) error
	DeleteTx(tx *gorm.DB, id string) error

	// EmUso reports whether any comanda item in the mirror references the
	// product. The authoritative check lives on the remote side; this one
	// only covers rows the mirror happens to hold.
	EmUso(ctx context.Context, id string) (bool, error)

	Upsert(ctx context.Context, p *model.Produto) error
	ReplaceID(ctx context.Context, localID, serverID string) error
	DB() *gorm.DB
}

type produtoRepo struct{ db *gorm.DB }

func NewProdutoRepository(db *gorm.DB) ProdutoRepository { return &produtoRepo{db: db} }

func (r *produtoRepo) CreateTx(tx *gorm.DB, p *model.Produto) error {
	return tx.Create(p).Error
}

func (r *produtoRepo) FindByID(ctx context.Context, id string) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *produtoRepo) List(ctx context.Context) ([]model.Produto, error) {
	var produtos []model.Produto
	err := r.db.WithContext(ctx).Order("nome ASC").Find(&produtos).Error
	return produtos, err
}

func (r *produtoRepo) ListAtivos(ctx context.Context) ([]model.Produto, error) {
	var produtos []model.Produto
	err := r.db.WithContext(ctx).Where("ativo = ?", true).Order("nome ASC").Find(&produtos).Error
	return produtos, err
}

func (r *produtoRepo) UpdateTx(tx *gorm.DB, p *model.Produto) error {
	return tx.Save(p).Error
}

func (r *produtoRepo) DeleteTx(tx *gorm.DB, id string) error {
	return tx.Where("id = ?", id).Delete(&model.Produto{}).Error
}

func (r *produtoRepo) EmUso(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ItemComanda{}).
		Where("produto_id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *produtoRepo) Upsert(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(p).Error
}

func (r *produtoRepo) ReplaceID(ctx context.Context, localID, serverID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Produto{}).Where("id = ?", localID).Update("id", serverID).Error; err != nil {
			return err
		}
		return tx.Model(&model.ItemComanda{}).Where("produto_id = ?", localID).Update("produto_id", serverID).Error
	})
}

func (r *produtoRepo) DB() *gorm.DB { return r.db }
