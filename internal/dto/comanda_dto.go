package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarComandaRequest struct {
	Numero    int     `json:"numero"     validate:"required,min=1"`
	ClienteID *string `json:"id_cliente" validate:"omitempty"`
}

type AdicionarItemRequest struct {
	ProdutoID  string `json:"id_produto" validate:"required"`
	Quantidade int    `json:"quantidade" validate:"required,min=1"`
}

// AtualizarQuantidadeRequest accepts any quantity; values below 1 remove the
// item instead of leaving a zero-quantity line.
type AtualizarQuantidadeRequest struct {
	Quantidade int `json:"quantidade"`
}

type PagamentoRequest struct {
	Metodo string          `json:"metodo" validate:"required,oneof=dinheiro cartao pix"`
	Valor  decimal.Decimal `json:"valor"  validate:"required"`
}

type FecharComandaRequest struct {
	Pagamentos []PagamentoRequest `json:"pagamentos" validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FecharComandaResponse struct {
	ComandaID string          `json:"id_comanda"`
	Total     decimal.Decimal `json:"total"`
	Pago      decimal.Decimal `json:"pago"`
	Troco     decimal.Decimal `json:"troco"`
}
