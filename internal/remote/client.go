// Package remote implements the HTTP contract with the SystMix backend. It
// is consumed by the online branch of the service layer and by the sync
// engine during queue replay; it holds no local state of its own.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"systmix/internal/model"

	"github.com/shopspring/decimal"
)

// IdempotencyHeader carries the client-generated key the backend uses to
// deduplicate a replayed mutation whose first attempt may have succeeded
// without the response arriving.
const IdempotencyHeader = "X-Idempotency-Key"

// Pagamento is the wire shape of one payment entry on a close call.
type Pagamento struct {
	Metodo string          `json:"metodo"`
	Valor  decimal.Decimal `json:"valor"`
}

// ProdutoInput carries the mutable product fields for create/update calls.
type ProdutoInput struct {
	Nome      string          `json:"nome"`
	Categoria string          `json:"categoria"`
	Preco     decimal.Decimal `json:"preco"`
	Ativo     bool            `json:"ativo"`
}

// ClienteInput carries the mutable customer fields for create/update calls.
type ClienteInput struct {
	Nome     string  `json:"nome"`
	Telefone *string `json:"telefone,omitempty"`
}

// API is the remote contract. The backend's transactional internals (item
// merging, close atomicity) are opaque; only request/response shapes matter
// here.
type API interface {
	Health(ctx context.Context) error

	ListarComandasAbertas(ctx context.Context) ([]model.Comanda, error)
	BuscarComanda(ctx context.Context, id string) (*model.Comanda, error)
	CriarComanda(ctx context.Context, numero int, clienteID *string, idemKey string) (*model.Comanda, error)
	AdicionarItem(ctx context.Context, comandaID, produtoID string, quantidade int, valorUnit decimal.Decimal, idemKey string) (*model.ItemComanda, error)
	AtualizarQuantidadeItem(ctx context.Context, comandaID, itemID string, quantidade int, idemKey string) error
	RemoverItem(ctx context.Context, comandaID, itemID string, idemKey string) error
	FecharComanda(ctx context.Context, comandaID string, pagamentos []Pagamento, idemKey string) error

	ListarProdutos(ctx context.Context) ([]model.Produto, error)
	CriarProduto(ctx context.Context, in ProdutoInput, idemKey string) (*model.Produto, error)
	AtualizarProduto(ctx context.Context, id string, in ProdutoInput, idemKey string) (*model.Produto, error)
	DeletarProduto(ctx context.Context, id string, idemKey string) error
	VerificarUsoProduto(ctx context.Context, id string) (bool, error)

	ListarClientes(ctx context.Context) ([]model.Cliente, error)
	CriarCliente(ctx context.Context, in ClienteInput, idemKey string) (*model.Cliente, error)
	AtualizarCliente(ctx context.Context, id string, in ClienteInput, idemKey string) (*model.Cliente, error)
	DeletarCliente(ctx context.Context, id string, idemKey string) error

	AbrirCaixa(ctx context.Context, valorInicial decimal.Decimal, idemKey string) (*model.Caixa, error)
	FecharCaixa(ctx context.Context, id string, valorFinal decimal.Decimal, idemKey string) error
	ObterCaixaAberto(ctx context.Context) (*model.Caixa, error)
}

// APIError is a non-2xx response from the backend, with the backend's own
// human-readable detail when one was sent.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("remote: backend returned %d", e.Status)
}

// Client is the HTTP implementation of API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// do issues one JSON request. A nil out skips response decoding; 204 bodies
// are accepted for any out.
func (c *Client) do(ctx context.Context, method, path string, body any, idemKey string, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("remote: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idemKey != "" {
		req.Header.Set(IdempotencyHeader, idemKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote: backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Detail string `json:"detail"`
		}
		if json.NewDecoder(resp.Body).Decode(&envelope) == nil {
			apiErr.Detail = envelope.Detail
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: decode response: %w", err)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, "", nil)
}

// ── Comandas ─────────────────────────────────────────────────────────────────

func (c *Client) ListarComandasAbertas(ctx context.Context) ([]model.Comanda, error) {
	var comandas []model.Comanda
	if err := c.do(ctx, http.MethodGet, "/v1/comandas/abertas", nil, "", &comandas); err != nil {
		return nil, err
	}
	return comandas, nil
}

func (c *Client) BuscarComanda(ctx context.Context, id string) (*model.Comanda, error) {
	var comanda model.Comanda
	if err := c.do(ctx, http.MethodGet, "/v1/comandas/"+id, nil, "", &comanda); err != nil {
		return nil, err
	}
	return &comanda, nil
}

func (c *Client) CriarComanda(ctx context.Context, numero int, clienteID *string, idemKey string) (*model.Comanda, error) {
	body := map[string]any{"numero": numero}
	if clienteID != nil {
		body["id_cliente"] = *clienteID
	}
	var comanda model.Comanda
	if err := c.do(ctx, http.MethodPost, "/v1/comandas", body, idemKey, &comanda); err != nil {
		return nil, err
	}
	return &comanda, nil
}

func (c *Client) AdicionarItem(ctx context.Context, comandaID, produtoID string, quantidade int, valorUnit decimal.Decimal, idemKey string) (*model.ItemComanda, error) {
	body := map[string]any{
		"id_produto": produtoID,
		"quantidade": quantidade,
		"valor_unit": valorUnit,
	}
	var item model.ItemComanda
	if err := c.do(ctx, http.MethodPost, "/v1/comandas/"+comandaID+"/itens", body, idemKey, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) AtualizarQuantidadeItem(ctx context.Context, comandaID, itemID string, quantidade int, idemKey string) error {
	body := map[string]any{"quantidade": quantidade}
	return c.do(ctx, http.MethodPatch, "/v1/comandas/"+comandaID+"/itens/"+itemID, body, idemKey, nil)
}

func (c *Client) RemoverItem(ctx context.Context, comandaID, itemID string, idemKey string) error {
	return c.do(ctx, http.MethodDelete, "/v1/comandas/"+comandaID+"/itens/"+itemID, nil, idemKey, nil)
}

func (c *Client) FecharComanda(ctx context.Context, comandaID string, pagamentos []Pagamento, idemKey string) error {
	body := map[string]any{"pagamentos": pagamentos}
	return c.do(ctx, http.MethodPost, "/v1/comandas/"+comandaID+"/fechar", body, idemKey, nil)
}

// ── Produtos ─────────────────────────────────────────────────────────────────

func (c *Client) ListarProdutos(ctx context.Context) ([]model.Produto, error) {
	var produtos []model.Produto
	if err := c.do(ctx, http.MethodGet, "/v1/produtos", nil, "", &produtos); err != nil {
		return nil, err
	}
	return produtos, nil
}

func (c *Client) CriarProduto(ctx context.Context, in ProdutoInput, idemKey string) (*model.Produto, error) {
	var p model.Produto
	if err := c.do(ctx, http.MethodPost, "/v1/produtos", in, idemKey, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) AtualizarProduto(ctx context.Context, id string, in ProdutoInput, idemKey string) (*model.Produto, error) {
	var p model.Produto
	if err := c.do(ctx, http.MethodPut, "/v1/produtos/"+id, in, idemKey, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeletarProduto(ctx context.Context, id string, idemKey string) error {
	return c.do(ctx, http.MethodDelete, "/v1/produtos/"+id, nil, idemKey, nil)
}

func (c *Client) VerificarUsoProduto(ctx context.Context, id string) (bool, error) {
	var resp struct {
		EmUso bool `json:"em_uso"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/produtos/"+id+"/em-uso", nil, "", &resp); err != nil {
		return false, err
	}
	return resp.EmUso, nil
}

// ── Clientes ─────────────────────────────────────────────────────────────────

func (c *Client) ListarClientes(ctx context.Context) ([]model.Cliente, error) {
	var clientes []model.Cliente
	if err := c.do(ctx, http.MethodGet, "/v1/clientes", nil, "", &clientes); err != nil {
		return nil, err
	}
	return clientes, nil
}

func (c *Client) CriarCliente(ctx context.Context, in ClienteInput, idemKey string) (*model.Cliente, error) {
	var cli model.Cliente
	if err := c.do(ctx, http.MethodPost, "/v1/clientes", in, idemKey, &cli); err != nil {
		return nil, err
	}
	return &cli, nil
}

func (c *Client) AtualizarCliente(ctx context.Context, id string, in ClienteInput, idemKey string) (*model.Cliente, error) {
	var cli model.Cliente
	if err := c.do(ctx, http.MethodPut, "/v1/clientes/"+id, in, idemKey, &cli); err != nil {
		return nil, err
	}
	return &cli, nil
}

func (c *Client) DeletarCliente(ctx context.Context, id string, idemKey string) error {
	return c.do(ctx, http.MethodDelete, "/v1/clientes/"+id, nil, idemKey, nil)
}

// ── Caixa ────────────────────────────────────────────────────────────────────

func (c *Client) AbrirCaixa(ctx context.Context, valorInicial decimal.Decimal, idemKey string) (*model.Caixa, error) {
	body := map[string]any{"valor_inicial": valorInicial}
	var caixa model.Caixa
	if err := c.do(ctx, http.MethodPost, "/v1/caixa/abrir", body, idemKey, &caixa); err != nil {
		return nil, err
	}
	return &caixa, nil
}

func (c *Client) FecharCaixa(ctx context.Context, id string, valorFinal decimal.Decimal, idemKey string) error {
	body := map[string]any{"valor_final": valorFinal}
	return c.do(ctx, http.MethodPost, "/v1/caixa/"+id+"/fechar", body, idemKey, nil)
}

func (c *Client) ObterCaixaAberto(ctx context.Context) (*model.Caixa, error) {
	var caixa model.Caixa
	err := c.do(ctx, http.MethodGet, "/v1/caixa/aberta", nil, "", &caixa)
	if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &caixa, nil
}
