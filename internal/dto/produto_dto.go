package dto

import "github.com/shopspring/decimal"

type CriarProdutoRequest struct {
	Nome      string          `json:"nome"      validate:"required,min=1"`
	Categoria string          `json:"categoria" validate:"required,min=1"`
	Preco     decimal.Decimal `json:"preco"     validate:"min=0"`
	Ativo     *bool           `json:"ativo"` // nil = true
}

type AtualizarProdutoRequest struct {
	Nome      string          `json:"nome"      validate:"required,min=1"`
	Categoria string          `json:"categoria" validate:"required,min=1"`
	Preco     decimal.Decimal `json:"preco"     validate:"min=0"`
	Ativo     bool            `json:"ativo"`
}

type ProdutoEmUsoResponse struct {
	EmUso bool `json:"em_uso"`
}
