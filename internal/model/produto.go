package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Produto is a catalog entry. Products referenced by any comanda item are
// never hard-deleted online — they are deactivated instead (see
// ProdutoService.Deletar).
type Produto struct {
	ID        string          `gorm:"primaryKey" json:"id"`
	Nome      string          `gorm:"index;not null" json:"nome"`
	Categoria string          `gorm:"not null" json:"categoria"`
	Preco     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"preco"`
	Ativo     bool            `gorm:"not null;default:true" json:"ativo"`
	CriadoEm  time.Time       `json:"criado_em"`
}
