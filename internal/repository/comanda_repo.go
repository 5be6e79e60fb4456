package repository

import (
	"context"
	"time"

	"systmix/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ComandaRepository is the mirror-store contract for comandas, their items
// and payments. Services depend on this interface, not on the concrete GORM
// implementation, enabling unit testing with in-memory fakes.
type ComandaRepository interface {
	CreateTx(tx *gorm.DB, c *model.Comanda) error
	FindByID(ctx context.Context, id string) (*model.Comanda, error)
	FindAbertaPorNumero(ctx context.Context, numero int) (*model.Comanda, error)
	ListAbertas(ctx context.Context) ([]model.Comanda, error)
	FecharTx(tx *gorm.DB, id string, fechadoEm time.Time) error

	AddItemTx(tx *gorm.DB, item *model.ItemComanda) error
	FindItem(ctx context.Context, comandaID, itemID string) (*model.ItemComanda, error)
	UpdateItemQuantidadeTx(tx *gorm.DB, itemID string, quantidade int) error
	RemoveItemTx(tx *gorm.DB, itemID string) error
	AddPagamentoTx(tx *gorm.DB, p *model.Pagamento) error

	// Upsert refreshes a server-confirmed row (and children) after an online
	// read; the mirror is a plain read cache for confirmed data.
	Upsert(ctx context.Context, c *model.Comanda) error

	// ReplaceComandaID / ReplaceItemID rewrite a locally-created row under its
	// server-assigned id once the sync engine confirms the create. Child
	// references are fixed in the same statement batch.
	ReplaceComandaID(ctx context.Context, localID, serverID string) error
	ReplaceItemID(ctx context.Context, localID, serverID string) error

	// DB exposes the underlying *gorm.DB so services can open transactions
	// spanning the mirror write and the pending-action enqueue.
	DB() *gorm.DB
}

type comandaRepo struct{ db *gorm.DB }

func NewComandaRepository(db *gorm.DB) ComandaRepository { return &comandaRepo{db: db} }

func (r *comandaRepo) CreateTx(tx *gorm.DB, c *model.Comanda) error {
	return tx.Create(c).Error
}

// hydrate assembles itens (with produto) and cliente in application code,
// mirroring how the queries behave with no network at all.
func (r *comandaRepo) hydrate(ctx context.Context, c *model.Comanda) error {
	if err := r.db.WithContext(ctx).Where("comanda_id = ?", c.ID).Order("criado_em ASC").Find(&c.Itens).Error; err != nil {
		return err
	}
	for i := range c.Itens {
		var p model.Produto
		if err := r.db.WithContext(ctx).First(&p, "id = ?", c.Itens[i].ProdutoID).Error; err == nil {
			c.Itens[i].Produto = &p
		}
	}
	if c.ClienteID != nil {
		var cli model.Cliente
		if err := r.db.WithContext(ctx).First(&cli, "id = ?", *c.ClienteID).Error; err == nil {
			c.Cliente = &cli
		}
	}
	return r.db.WithContext(ctx).Where("comanda_id = ?", c.ID).Order("data ASC").Find(&c.Pagamentos).Error
}

func (r *comandaRepo) FindByID(ctx context.Context, id string) (*model.Comanda, error) {
	var c model.Comanda
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *comandaRepo) FindAbertaPorNumero(ctx context.Context, numero int) (*model.Comanda, error) {
	var c model.Comanda
	err := r.db.WithContext(ctx).
		Where("numero = ? AND status = ?", numero, model.ComandaAberta).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *comandaRepo) ListAbertas(ctx context.Context) ([]model.Comanda, error) {
	var comandas []model.Comanda
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ComandaAberta).
		Order("numero ASC").
		Find(&comandas).Error
	if err != nil {
		return nil, err
	}
	for i := range comandas {
		if err := r.hydrate(ctx, &comandas[i]); err != nil {
			return nil, err
		}
	}
	return comandas, nil
}

func (r *comandaRepo) FecharTx(tx *gorm.DB, id string, fechadoEm time.Time) error {
	return tx.Model(&model.Comanda{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": model.ComandaFechada, "fechado_em": fechadoEm}).Error
}

func (r *comandaRepo) AddItemTx(tx *gorm.DB, item *model.ItemComanda) error {
	return tx.Create(item).Error
}

func (r *comandaRepo) FindItem(ctx context.Context, comandaID, itemID string) (*model.ItemComanda, error) {
	var item model.ItemComanda
	err := r.db.WithContext(ctx).
		Where("id = ? AND comanda_id = ?", itemID, comandaID).
		First(&item).Error
	return &item, err
}

func (r *comandaRepo) UpdateItemQuantidadeTx(tx *gorm.DB, itemID string, quantidade int) error {
	return tx.Model(&model.ItemComanda{}).Where("id = ?", itemID).
		Update("quantidade", quantidade).Error
}

func (r *comandaRepo) RemoveItemTx(tx *gorm.DB, itemID string) error {
	return tx.Where("id = ?", itemID).Delete(&model.ItemComanda{}).Error
}

func (r *comandaRepo) AddPagamentoTx(tx *gorm.DB, p *model.Pagamento) error {
	return tx.Create(p).Error
}

func (r *comandaRepo) Upsert(ctx context.Context, c *model.Comanda) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := *c
		row.Itens, row.Pagamentos, row.Cliente = nil, nil, nil
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return err
		}
		for i := range c.Itens {
			item := c.Itens[i]
			item.Produto = nil
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&item).Error; err != nil {
				return err
			}
		}
		for i := range c.Pagamentos {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&c.Pagamentos[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *comandaRepo) ReplaceComandaID(ctx context.Context, localID, serverID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Comanda{}).Where("id = ?", localID).Update("id", serverID).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.ItemComanda{}).Where("comanda_id = ?", localID).Update("comanda_id", serverID).Error; err != nil {
			return err
		}
		return tx.Model(&model.Pagamento{}).Where("comanda_id = ?", localID).Update("comanda_id", serverID).Error
	})
}

func (r *comandaRepo) ReplaceItemID(ctx context.Context, localID, serverID string) error {
	return r.db.WithContext(ctx).Model(&model.ItemComanda{}).
		Where("id = ?", localID).Update("id", serverID).Error
}

func (r *comandaRepo) DB() *gorm.DB { return r.db }
