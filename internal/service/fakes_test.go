package service

// In-memory fakes for the repository and remote interfaces. DB() returns nil
// on every fake, which makes runTx call the transaction body directly.

import (
	"context"
	"sort"
	"sync"
	"time"

	"systmix/internal/action"
	"systmix/internal/model"
	"systmix/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"systmix/internal/remote"
)

// ── Pending-action queue ─────────────────────────────────────────────────────

type fakeQueue struct {
	mu      sync.Mutex
	nextID  uint64
	actions []model.PendingAction
	aliases map[string]string
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{aliases: make(map[string]string)}
}

func (q *fakeQueue) Enqueue(_ context.Context, tipo string, payload []byte) (*model.PendingAction, error) {
	return q.EnqueueTx(nil, tipo, payload)
}

func (q *fakeQueue) EnqueueTx(_ *gorm.DB, tipo string, payload []byte) (*model.PendingAction, error) {
	if err := action.Validate(tipo); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	pa := model.PendingAction{
		ID:             q.nextID,
		Type:           tipo,
		Payload:        datatypes.JSON(payload),
		IdempotencyKey: uuid.NewString(),
		CriadoEm:       time.Now().UTC(),
	}
	q.actions = append(q.actions, pa)
	return &pa, nil
}

func (q *fakeQueue) PeekAllOrdered(context.Context) ([]model.PendingAction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]model.PendingAction, len(q.actions))
	copy(out, q.actions)
	return out, nil
}

func (q *fakeQueue) Remove(_ context.Context, id uint64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, a := range q.actions {
		if a.ID == id {
			q.actions = append(q.actions[:i], q.actions[i+1:]...)
			return nil
		}
	}
	return nil
}

func (q *fakeQueue) Count(context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.actions)), nil
}

func (q *fakeQueue) SaveAlias(_ context.Context, localID, serverID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.aliases[localID] = serverID
	return nil
}

func (q *fakeQueue) ResolveAlias(_ context.Context, id string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if server, ok := q.aliases[id]; ok {
		return server, nil
	}
	return id, nil
}

func (q *fakeQueue) DB() *gorm.DB { return nil }

// ── Comanda repository ───────────────────────────────────────────────────────

type fakeComandaRepo struct {
	comandas   map[string]*model.Comanda
	itens      map[string]*model.ItemComanda
	pagamentos []model.Pagamento
}

func newFakeComandaRepo() *fakeComandaRepo {
	return &fakeComandaRepo{
		comandas: make(map[string]*model.Comanda),
		itens:    make(map[string]*model.ItemComanda),
	}
}

func (r *fakeComandaRepo) CreateTx(_ *gorm.DB, c *model.Comanda) error {
	clone := *c
	r.comandas[c.ID] = &clone
	return nil
}

func (r *fakeComandaRepo) hydrate(c model.Comanda) *model.Comanda {
	c.Itens = nil
	c.Pagamentos = nil
	for _, item := range r.itens {
		if item.ComandaID == c.ID {
			c.Itens = append(c.Itens, *item)
		}
	}
	sort.Slice(c.Itens, func(i, j int) bool { return c.Itens[i].CriadoEm.Before(c.Itens[j].CriadoEm) })
	for _, p := range r.pagamentos {
		if p.ComandaID == c.ID {
			c.Pagamentos = append(c.Pagamentos, p)
		}
	}
	return &c
}

func (r *fakeComandaRepo) FindByID(_ context.Context, id string) (*model.Comanda, error) {
	c, ok := r.comandas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.hydrate(*c), nil
}

func (r *fakeComandaRepo) FindAbertaPorNumero(_ context.Context, numero int) (*model.Comanda, error) {
	for _, c := range r.comandas {
		if c.Numero == numero && c.Status == model.ComandaAberta {
			return r.hydrate(*c), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeComandaRepo) ListAbertas(context.Context) ([]model.Comanda, error) {
	var out []model.Comanda
	for _, c := range r.comandas {
		if c.Status == model.ComandaAberta {
			out = append(out, *r.hydrate(*c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Numero < out[j].Numero })
	return out, nil
}

func (r *fakeComandaRepo) FecharTx(_ *gorm.DB, id string, fechadoEm time.Time) error {
	c, ok := r.comandas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Status = model.ComandaFechada
	t := fechadoEm
	c.FechadoEm = &t
	return nil
}

func (r *fakeComandaRepo) AddItemTx(_ *gorm.DB, item *model.ItemComanda) error {
	clone := *item
	r.itens[item.ID] = &clone
	return nil
}

func (r *fakeComandaRepo) FindItem(_ context.Context, comandaID, itemID string) (*model.ItemComanda, error) {
	item, ok := r.itens[itemID]
	if !ok || item.ComandaID != comandaID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *item
	return &clone, nil
}

func (r *fakeComandaRepo) UpdateItemQuantidadeTx(_ *gorm.DB, itemID string, quantidade int) error {
	item, ok := r.itens[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.Quantidade = quantidade
	return nil
}

func (r *fakeComandaRepo) RemoveItemTx(_ *gorm.DB, itemID string) error {
	delete(r.itens, itemID)
	return nil
}

func (r *fakeComandaRepo) AddPagamentoTx(_ *gorm.DB, p *model.Pagamento) error {
	r.pagamentos = append(r.pagamentos, *p)
	return nil
}

func (r *fakeComandaRepo) Upsert(_ context.Context, c *model.Comanda) error {
	clone := *c
	clone.Itens, clone.Pagamentos, clone.Cliente = nil, nil, nil
	r.comandas[c.ID] = &clone
	for _, item := range c.Itens {
		it := item
		it.Produto = nil
		r.itens[it.ID] = &it
	}
	return nil
}

func (r *fakeComandaRepo) ReplaceComandaID(_ context.Context, localID, serverID string) error {
	if c, ok := r.comandas[localID]; ok {
		delete(r.comandas, localID)
		c.ID = serverID
		r.comandas[serverID] = c
	}
	for _, item := range r.itens {
		if item.ComandaID == localID {
			item.ComandaID = serverID
		}
	}
	for i := range r.pagamentos {
		if r.pagamentos[i].ComandaID == localID {
			r.pagamentos[i].ComandaID = serverID
		}
	}
	return nil
}

func (r *fakeComandaRepo) ReplaceItemID(_ context.Context, localID, serverID string) error {
	if item, ok := r.itens[localID]; ok {
		delete(r.itens, localID)
		item.ID = serverID
		r.itens[serverID] = item
	}
	return nil
}

func (r *fakeComandaRepo) DB() *gorm.DB { return nil }

// ── Produto repository ───────────────────────────────────────────────────────

type fakeProdutoRepo struct {
	produtos map[string]*model.Produto
	comandas *fakeComandaRepo // for EmUso; may be nil
}

func newFakeProdutoRepo() *fakeProdutoRepo {
	return &fakeProdutoRepo{produtos: make(map[string]*model.Produto)}
}

func (r *fakeProdutoRepo) CreateTx(_ *gorm.DB, p *model.Produto) error {
	clone := *p
	r.produtos[p.ID] = &clone
	return nil
}

func (r *fakeProdutoRepo) FindByID(_ context.Context, id string) (*model.Produto, error) {
	p, ok := r.produtos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProdutoRepo) List(context.Context) ([]model.Produto, error) {
	var out []model.Produto
	for _, p := range r.produtos {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (r *fakeProdutoRepo) ListAtivos(ctx context.Context) ([]model.Produto, error) {
	all, _ := r.List(ctx)
	out := make([]model.Produto, 0, len(all))
	for _, p := range all {
		if p.Ativo {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProdutoRepo) UpdateTx(_ *gorm.DB, p *model.Produto) error {
	clone := *p
	r.produtos[p.ID] = &clone
	return nil
}

func (r *fakeProdutoRepo) DeleteTx(_ *gorm.DB, id string) error {
	delete(r.produtos, id)
	return nil
}

func (r *fakeProdutoRepo) EmUso(_ context.Context, id string) (bool, error) {
	if r.comandas == nil {
		return false, nil
	}
	for _, item := range r.comandas.itens {
		if item.ProdutoID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProdutoRepo) Upsert(_ context.Context, p *model.Produto) error {
	clone := *p
	r.produtos[p.ID] = &clone
	return nil
}

func (r *fakeProdutoRepo) ReplaceID(_ context.Context, localID, serverID string) error {
	if p, ok := r.produtos[localID]; ok {
		delete(r.produtos, localID)
		p.ID = serverID
		r.produtos[serverID] = p
	}
	return nil
}

func (r *fakeProdutoRepo) DB() *gorm.DB { return nil }

// ── Cliente repository ───────────────────────────────────────────────────────

type fakeClienteRepo struct {
	clientes map[string]*model.Cliente
}

func newFakeClienteRepo() *fakeClienteRepo {
	return &fakeClienteRepo{clientes: make(map[string]*model.Cliente)}
}

func (r *fakeClienteRepo) CreateTx(_ *gorm.DB, c *model.Cliente) error {
	clone := *c
	r.clientes[c.ID] = &clone
	return nil
}

func (r *fakeClienteRepo) FindByID(_ context.Context, id string) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *fakeClienteRepo) List(context.Context) ([]model.Cliente, error) {
	var out []model.Cliente
	for _, c := range r.clientes {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (r *fakeClienteRepo) UpdateTx(_ *gorm.DB, c *model.Cliente) error {
	clone := *c
	r.clientes[c.ID] = &clone
	return nil
}

func (r *fakeClienteRepo) DeleteTx(_ *gorm.DB, id string) error {
	delete(r.clientes, id)
	return nil
}

func (r *fakeClienteRepo) Upsert(_ context.Context, c *model.Cliente) error {
	clone := *c
	r.clientes[c.ID] = &clone
	return nil
}

func (r *fakeClienteRepo) ReplaceID(_ context.Context, localID, serverID string) error {
	if c, ok := r.clientes[localID]; ok {
		delete(r.clientes, localID)
		c.ID = serverID
		r.clientes[serverID] = c
	}
	return nil
}

func (r *fakeClienteRepo) DB() *gorm.DB { return nil }

// ── Caixa repository ─────────────────────────────────────────────────────────

type fakeCaixaRepo struct {
	sessoes map[string]*model.Caixa
}

func newFakeCaixaRepo() *fakeCaixaRepo {
	return &fakeCaixaRepo{sessoes: make(map[string]*model.Caixa)}
}

func (r *fakeCaixaRepo) Create(_ context.Context, c *model.Caixa) error {
	clone := *c
	r.sessoes[c.ID] = &clone
	return nil
}

func (r *fakeCaixaRepo) FindAberta(context.Context) (*model.Caixa, error) {
	for _, c := range r.sessoes {
		if c.DataFechamento == nil {
			clone := *c
			return &clone, nil
		}
	}
	return nil, repository.ErrSemCaixaAberto
}

func (r *fakeCaixaRepo) Update(_ context.Context, c *model.Caixa) error {
	clone := *c
	r.sessoes[c.ID] = &clone
	return nil
}

func (r *fakeCaixaRepo) Upsert(_ context.Context, c *model.Caixa) error {
	clone := *c
	r.sessoes[c.ID] = &clone
	return nil
}

func (r *fakeCaixaRepo) DB() *gorm.DB { return nil }

// ── Remote API ───────────────────────────────────────────────────────────────

// fakeRemote records calls and can be told to fail specific methods.
type fakeRemote struct {
	mu    sync.Mutex
	fail  map[string]error
	calls []string

	abertas  []model.Comanda
	produtos []model.Produto
	clientes []model.Cliente
	caixa    *model.Caixa
	emUso    map[string]bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{fail: make(map[string]error), emUso: make(map[string]bool)}
}

func (f *fakeRemote) failWith(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method] = err
}

func (f *fakeRemote) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
	return f.fail[method]
}

func (f *fakeRemote) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (f *fakeRemote) Health(context.Context) error { return f.record("Health") }

func (f *fakeRemote) ListarComandasAbertas(context.Context) ([]model.Comanda, error) {
	if err := f.record("ListarComandasAbertas"); err != nil {
		return nil, err
	}
	return f.abertas, nil
}

func (f *fakeRemote) BuscarComanda(_ context.Context, id string) (*model.Comanda, error) {
	if err := f.record("BuscarComanda"); err != nil {
		return nil, err
	}
	for i := range f.abertas {
		if f.abertas[i].ID == id {
			return &f.abertas[i], nil
		}
	}
	return nil, &remote.APIError{Status: 404, Detail: "comanda não encontrada"}
}

func (f *fakeRemote) CriarComanda(_ context.Context, numero int, clienteID *string, _ string) (*model.Comanda, error) {
	if err := f.record("CriarComanda"); err != nil {
		return nil, err
	}
	c := model.Comanda{
		ID:        uuid.NewString(),
		Numero:    numero,
		ClienteID: clienteID,
		Status:    model.ComandaAberta,
		CriadoEm:  time.Now().UTC(),
	}
	f.mu.Lock()
	f.abertas = append(f.abertas, c)
	f.mu.Unlock()
	return &c, nil
}

func (f *fakeRemote) AdicionarItem(_ context.Context, comandaID, produtoID string, quantidade int, valorUnit decimal.Decimal, _ string) (*model.ItemComanda, error) {
	if err := f.record("AdicionarItem"); err != nil {
		return nil, err
	}
	return &model.ItemComanda{
		ID:         uuid.NewString(),
		ComandaID:  comandaID,
		ProdutoID:  produtoID,
		Quantidade: quantidade,
		ValorUnit:  valorUnit,
		CriadoEm:   time.Now().UTC(),
	}, nil
}

func (f *fakeRemote) AtualizarQuantidadeItem(_ context.Context, _, _ string, _ int, _ string) error {
	return f.record("AtualizarQuantidadeItem")
}

func (f *fakeRemote) RemoverItem(_ context.Context, _, _ string, _ string) error {
	return f.record("RemoverItem")
}

func (f *fakeRemote) FecharComanda(_ context.Context, _ string, _ []remote.Pagamento, _ string) error {
	return f.record("FecharComanda")
}

func (f *fakeRemote) ListarProdutos(context.Context) ([]model.Produto, error) {
	if err := f.record("ListarProdutos"); err != nil {
		return nil, err
	}
	return f.produtos, nil
}

func (f *fakeRemote) CriarProduto(_ context.Context, in remote.ProdutoInput, _ string) (*model.Produto, error) {
	if err := f.record("CriarProduto"); err != nil {
		return nil, err
	}
	return &model.Produto{
		ID:        uuid.NewString(),
		Nome:      in.Nome,
		Categoria: in.Categoria,
		Preco:     in.Preco,
		Ativo:     in.Ativo,
		CriadoEm:  time.Now().UTC(),
	}, nil
}

func (f *fakeRemote) AtualizarProduto(_ context.Context, id string, in remote.ProdutoInput, _ string) (*model.Produto, error) {
	if err := f.record("AtualizarProduto"); err != nil {
		return nil, err
	}
	return &model.Produto{
		ID:        id,
		Nome:      in.Nome,
		Categoria: in.Categoria,
		Preco:     in.Preco,
		Ativo:     in.Ativo,
	}, nil
}

func (f *fakeRemote) DeletarProduto(_ context.Context, _ string, _ string) error {
	return f.record("DeletarProduto")
}

func (f *fakeRemote) VerificarUsoProduto(_ context.Context, id string) (bool, error) {
	if err := f.record("VerificarUsoProduto"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.emUso[id], nil
}

func (f *fakeRemote) ListarClientes(context.Context) ([]model.Cliente, error) {
	if err := f.record("ListarClientes"); err != nil {
		return nil, err
	}
	return f.clientes, nil
}

func (f *fakeRemote) CriarCliente(_ context.Context, in remote.ClienteInput, _ string) (*model.Cliente, error) {
	if err := f.record("CriarCliente"); err != nil {
		return nil, err
	}
	return &model.Cliente{ID: uuid.NewString(), Nome: in.Nome, Telefone: in.Telefone, CriadoEm: time.Now().UTC()}, nil
}

func (f *fakeRemote) AtualizarCliente(_ context.Context, id string, in remote.ClienteInput, _ string) (*model.Cliente, error) {
	if err := f.record("AtualizarCliente"); err != nil {
		return nil, err
	}
	return &model.Cliente{ID: id, Nome: in.Nome, Telefone: in.Telefone}, nil
}

func (f *fakeRemote) DeletarCliente(_ context.Context, _ string, _ string) error {
	return f.record("DeletarCliente")
}

func (f *fakeRemote) AbrirCaixa(_ context.Context, valorInicial decimal.Decimal, _ string) (*model.Caixa, error) {
	if err := f.record("AbrirCaixa"); err != nil {
		return nil, err
	}
	c := &model.Caixa{ID: uuid.NewString(), DataAbertura: time.Now().UTC(), ValorInicial: valorInicial}
	f.mu.Lock()
	f.caixa = c
	f.mu.Unlock()
	return c, nil
}

func (f *fakeRemote) FecharCaixa(_ context.Context, _ string, _ decimal.Decimal, _ string) error {
	if err := f.record("FecharCaixa"); err != nil {
		return err
	}
	f.mu.Lock()
	f.caixa = nil
	f.mu.Unlock()
	return nil
}

func (f *fakeRemote) ObterCaixaAberto(context.Context) (*model.Caixa, error) {
	if err := f.record("ObterCaixaAberto"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.caixa, nil
}
