// Package action defines the fixed enumeration of pending-action types and
// the payload shapes the service layer enqueues and the sync engine replays.
// The queue itself treats payloads as opaque JSON; only this package knows
// how to encode and decode them.
package action

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Action types. The names mirror the wire values persisted in the queue —
// renaming one is a breaking change for databases with actions in flight.
const (
	CriarComanda     = "CRIAR_COMANDA"
	AdicionarItem    = "ADICIONAR_ITEM"
	AtualizarQtdItem = "ATUALIZAR_QTD_ITEM"
	RemoverItem      = "REMOVER_ITEM"
	FecharComanda    = "FECHAR_COMANDA"
	CriarCliente     = "CRIAR_CLIENTE"
	AtualizarCliente = "ATUALIZAR_CLIENTE"
	DeletarCliente   = "DELETAR_CLIENTE"
	CriarProduto     = "CRIAR_PRODUTO"
	AtualizarProduto = "ATUALIZAR_PRODUTO"
	DeletarProduto   = "DELETAR_PRODUTO"
)

// known is the closed set accepted by Validate.
var known = map[string]bool{
	CriarComanda:     true,
	AdicionarItem:    true,
	AtualizarQtdItem: true,
	RemoverItem:      true,
	FecharComanda:    true,
	CriarCliente:     true,
	AtualizarCliente: true,
	DeletarCliente:   true,
	CriarProduto:     true,
	AtualizarProduto: true,
	DeletarProduto:   true,
}

// Validate rejects unknown action types before they reach the queue.
func Validate(tipo string) error {
	if !known[tipo] {
		return fmt.Errorf("tipo de ação pendente desconhecido: %q", tipo)
	}
	return nil
}

// ── Payloads ─────────────────────────────────────────────────────────────────
// Every payload carries enough data to replay the mutation without consulting
// any other local state, except that ids may be local ids which the engine
// resolves through the alias table at replay time.

type CriarComandaPayload struct {
	LocalID   string  `json:"local_id"`
	Numero    int     `json:"numero"`
	ClienteID *string `json:"id_cliente,omitempty"`
}

type AdicionarItemPayload struct {
	LocalItemID string          `json:"local_item_id"`
	ComandaID   string          `json:"id_comanda"`
	ProdutoID   string          `json:"id_produto"`
	Quantidade  int             `json:"quantidade"`
	ValorUnit   decimal.Decimal `json:"valor_unit"`
}

type AtualizarQtdItemPayload struct {
	ComandaID  string `json:"id_comanda"`
	ItemID     string `json:"id_item"`
	Quantidade int    `json:"quantidade"`
}

type RemoverItemPayload struct {
	ComandaID string `json:"id_comanda"`
	ItemID    string `json:"id_item"`
}

type PagamentoPayload struct {
	Metodo string          `json:"metodo"`
	Valor  decimal.Decimal `json:"valor"`
}

type FecharComandaPayload struct {
	ComandaID  string             `json:"id_comanda"`
	Pagamentos []PagamentoPayload `json:"pagamentos"`
}

type CriarClientePayload struct {
	LocalID  string  `json:"local_id"`
	Nome     string  `json:"nome"`
	Telefone *string `json:"telefone,omitempty"`
}

type AtualizarClientePayload struct {
	ClienteID string  `json:"id_cliente"`
	Nome      string  `json:"nome"`
	Telefone  *string `json:"telefone,omitempty"`
}

type DeletarClientePayload struct {
	ClienteID string `json:"id_cliente"`
}

type CriarProdutoPayload struct {
	LocalID   string          `json:"local_id"`
	Nome      string          `json:"nome"`
	Categoria string          `json:"categoria"`
	Preco     decimal.Decimal `json:"preco"`
	Ativo     bool            `json:"ativo"`
}

type AtualizarProdutoPayload struct {
	ProdutoID string          `json:"id_produto"`
	Nome      string          `json:"nome"`
	Categoria string          `json:"categoria"`
	Preco     decimal.Decimal `json:"preco"`
	Ativo     bool            `json:"ativo"`
}

type DeletarProdutoPayload struct {
	ProdutoID string `json:"id_produto"`
}

// Encode marshals a payload for storage in the queue.
func Encode(payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("action: marshal payload: %w", err)
	}
	return data, nil
}

// Decode unmarshals a stored payload into the struct for its type.
func Decode(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("action: unmarshal payload: %w", err)
	}
	return nil
}
