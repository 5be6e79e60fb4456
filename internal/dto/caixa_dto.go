package dto

import "github.com/shopspring/decimal"

type AbrirCaixaRequest struct {
	ValorInicial decimal.Decimal `json:"valor_inicial" validate:"min=0"`
}

type FecharCaixaRequest struct {
	ValorFinal decimal.Decimal `json:"valor_final" validate:"min=0"`
}
