package repository

import (
	"context"

	"systmix/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClienteRepository is the mirror-store contract for customers.
type ClienteRepository interface {
	CreateTx(tx *gorm.DB, c *model.Cliente) error
	FindByID(ctx context.Context, id string) (*model.Cliente, error)
	List(ctx context.Context) ([]model.Cliente, error)
	UpdateTx(tx *gorm.DB, c *model.Cliente) error
	DeleteTx(tx *gorm.DB, id string) error

	Upsert(ctx context.Context, c *model.Cliente) error
	ReplaceID(ctx context.Context, localID, serverID string) error
	DB() *gorm.DB
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) CreateTx(tx *gorm.DB, c *model.Cliente) error {
	return tx.Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id string) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *clienteRepo) List(ctx context.Context) ([]model.Cliente, error) {
	var clientes []model.Cliente
	err := r.db.WithContext(ctx).Order("nome ASC").Find(&clientes).Error
	return clientes, err
}

func (r *clienteRepo) UpdateTx(tx *gorm.DB, c *model.Cliente) error {
	return tx.Save(c).Error
}

func (r *clienteRepo) DeleteTx(tx *gorm.DB, id string) error {
	return tx.Where("id = ?", id).Delete(&model.Cliente{}).Error
}

func (r *clienteRepo) Upsert(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(c).Error
}

func (r *clienteRepo) ReplaceID(ctx context.Context, localID, serverID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Cliente{}).Where("id = ?", localID).Update("id", serverID).Error; err != nil {
			return err
		}
		return tx.Model(&model.Comanda{}).Where("cliente_id = ?", localID).Update("cliente_id", serverID).Error
	})
}

func (r *clienteRepo) DB() *gorm.DB { return r.db }
