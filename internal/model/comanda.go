package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Comanda status values.
const (
	ComandaAberta  = "aberta"
	ComandaFechada = "fechada"
)

// Comanda is a running bill tied to a numbered table/seat.
// ID is either a server-assigned UUID or a local id (localid package) for
// rows created offline that have not been confirmed yet.
type Comanda struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	Numero    int        `gorm:"not null;index" json:"numero"`
	ClienteID *string    `gorm:"index" json:"id_cliente,omitempty"`
	Status    string     `gorm:"type:varchar(10);not null;default:'aberta'" json:"status"`
	CriadoEm  time.Time  `json:"criado_em"`
	FechadoEm *time.Time `json:"fechado_em,omitempty"`

	Cliente    *Cliente      `gorm:"foreignKey:ClienteID" json:"cliente,omitempty"`
	Itens      []ItemComanda `gorm:"foreignKey:ComandaID" json:"itens"`
	Pagamentos []Pagamento   `gorm:"foreignKey:ComandaID" json:"pagamentos"`
}

// Total is always derived from the items, never stored. A price edit on the
// catalog does not move this value because ValorUnit was captured at add time.
func (c *Comanda) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Itens {
		total = total.Add(item.ValorUnit.Mul(decimal.NewFromInt(int64(item.Quantidade))))
	}
	return total
}

// ItemComanda is one product line on a comanda. ValorUnit is a snapshot of
// the product price at add time.
type ItemComanda struct {
	ID         string          `gorm:"primaryKey" json:"id"`
	ComandaID  string          `gorm:"index;not null" json:"id_comanda"`
	ProdutoID  string          `gorm:"index;not null" json:"id_produto"`
	Quantidade int             `gorm:"not null;default:1" json:"quantidade"`
	ValorUnit  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"valor_unit"`
	CriadoEm   time.Time       `json:"criado_em"`

	Produto *Produto `gorm:"foreignKey:ProdutoID" json:"produto,omitempty"`
}

// Subtotal returns Quantidade × ValorUnit.
func (i *ItemComanda) Subtotal() decimal.Decimal {
	return i.ValorUnit.Mul(decimal.NewFromInt(int64(i.Quantidade)))
}

// Pagamento records one payment entry made when a comanda is closed.
type Pagamento struct {
	ID        string          `gorm:"primaryKey" json:"id"`
	ComandaID string          `gorm:"index;not null" json:"id_comanda"`
	Metodo    string          `gorm:"not null" json:"metodo"`
	Valor     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"valor"`
	Data      time.Time       `json:"data"`
}
