package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Caixa brackets a register's operating period. At most one session is open
// at a time; sales operations are gated on an open session.
type Caixa struct {
	ID             string           `gorm:"primaryKey" json:"id"`
	DataAbertura   time.Time        `json:"data_abertura"`
	ValorInicial   decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"valor_inicial"`
	DataFechamento *time.Time       `json:"data_fechamento,omitempty"`
	ValorFinal     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"valor_final,omitempty"`
}

// Aberta reports whether the session has not been closed yet.
func (c *Caixa) Aberta() bool { return c.DataFechamento == nil }
