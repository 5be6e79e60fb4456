package service

import (
	"time"

	"systmix/internal/model"
	"systmix/internal/notify"

	"github.com/shopspring/decimal"
)

// env wires the services over in-memory fakes, mirroring how the router
// wires them over GORM repositories.
type env struct {
	comandas *fakeComandaRepo
	produtos *fakeProdutoRepo
	clientes *fakeClienteRepo
	caixa    *fakeCaixaRepo
	queue    *fakeQueue
	remote   *fakeRemote
	notifier *notify.Notifier

	caixaSvc   CaixaService
	comandaSvc ComandaService
	produtoSvc ProdutoService
	clienteSvc ClienteService
}

func newEnv() *env {
	e := &env{
		comandas: newFakeComandaRepo(),
		produtos: newFakeProdutoRepo(),
		clientes: newFakeClienteRepo(),
		caixa:    newFakeCaixaRepo(),
		queue:    newFakeQueue(),
		remote:   newFakeRemote(),
		notifier: notify.NewNotifier(),
	}
	e.produtos.comandas = e.comandas
	e.caixaSvc = NewCaixaService(e.caixa, e.remote, e.notifier)
	e.comandaSvc = NewComandaService(e.comandas, e.produtos, e.queue, e.remote, e.caixaSvc, e.notifier, 200)
	e.produtoSvc = NewProdutoService(e.produtos, e.queue, e.remote, e.notifier)
	e.clienteSvc = NewClienteService(e.clientes, e.queue, e.remote, e.notifier)
	return e
}

// abrirCaixaLocal seeds an open session in the mirror only (offline opens).
func (e *env) abrirCaixaLocal(id string) {
	_ = e.caixa.Create(nil, &model.Caixa{
		ID:           id,
		DataAbertura: time.Now().UTC(),
		ValorInicial: decimal.NewFromInt(100),
	})
}

// abrirCaixaRemota seeds an open session on the fake backend.
func (e *env) abrirCaixaRemota(id string) {
	e.remote.caixa = &model.Caixa{
		ID:           id,
		DataAbertura: time.Now().UTC(),
		ValorInicial: decimal.NewFromInt(100),
	}
}

// seedProduto puts a product straight into the mirror.
func (e *env) seedProduto(id, nome string, preco decimal.Decimal, ativo bool) {
	_ = e.produtos.Upsert(nil, &model.Produto{
		ID:        id,
		Nome:      nome,
		Categoria: "Bebidas",
		Preco:     preco,
		Ativo:     ativo,
		CriadoEm:  time.Now().UTC(),
	})
}
