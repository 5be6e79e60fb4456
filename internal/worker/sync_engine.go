// Package worker holds the sync engine that drains the pending-action queue
// against the remote API after a reconnection.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"systmix/internal/action"
	"systmix/internal/infra"
	"systmix/internal/model"
	"systmix/internal/notify"
	"systmix/internal/remote"
	"systmix/internal/repository"

	"github.com/rs/zerolog/log"
)

// EngineState is the drain state machine: Idle until a drain is triggered,
// Draining while one runs. There is never more than one drain at a time.
type EngineState int32

const (
	EngineIdle EngineState = iota
	EngineDraining
)

func (s EngineState) String() string {
	if s == EngineDraining {
		return "draining"
	}
	return "idle"
}

// DrainSummary is the outcome of one drain pass.
type DrainSummary struct {
	Processadas int   `json:"processadas"`
	Falhas      int   `json:"falhas"`
	Restantes   int64 `json:"restantes"`
}

// SyncEngine replays pending actions in enqueue order. Each action succeeds
// or fails on its own: a failure is logged, the action stays queued for the
// next pass, and the drain moves on. The drain stops early when connectivity
// drops or the circuit breaker trips open.
type SyncEngine struct {
	queue    repository.PendingActionRepository
	comandas repository.ComandaRepository
	produtos repository.ProdutoRepository
	clientes repository.ClienteRepository
	remote   remote.API
	breaker  *infra.CircuitBreaker
	notifier *notify.Notifier
	online   func() bool
	state    atomic.Int32
}

func NewSyncEngine(
	queue repository.PendingActionRepository,
	comandas repository.ComandaRepository,
	produtos repository.ProdutoRepository,
	clientes repository.ClienteRepository,
	rem remote.API,
	breaker *infra.CircuitBreaker,
	notifier *notify.Notifier,
	online func() bool,
) *SyncEngine {
	return &SyncEngine{
		queue:    queue,
		comandas: comandas,
		produtos: produtos,
		clientes: clientes,
		remote:   rem,
		breaker:  breaker,
		notifier: notifier,
		online:   online,
	}
}

// State returns the engine state for the status endpoint.
func (e *SyncEngine) State() EngineState {
	return EngineState(e.state.Load())
}

// Drain runs one pass over the queue. A second call while a pass is running
// returns immediately with a nil summary.
func (e *SyncEngine) Drain(ctx context.Context) (*DrainSummary, error) {
	if !e.state.CompareAndSwap(int32(EngineIdle), int32(EngineDraining)) {
		log.Debug().Msg("sync: drain já em andamento, ignorando")
		return nil, nil
	}
	defer e.state.Store(int32(EngineIdle))

	pendentes, err := e.queue.PeekAllOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync: ler fila de pendências: %w", err)
	}
	if len(pendentes) == 0 {
		return &DrainSummary{}, nil
	}

	log.Info().Int("pendentes", len(pendentes)).Msg("sync: iniciando drenagem")
	summary := &DrainSummary{}

	for i := range pendentes {
		if ctx.Err() != nil {
			log.Info().Msg("sync: drenagem cancelada")
			break
		}
		if !e.online() {
			log.Info().Msg("sync: conexão caiu, interrompendo drenagem")
			break
		}
		if e.breaker.State() == infra.CBOpen {
			log.Warn().Msg("sync: circuit breaker aberto, interrompendo drenagem")
			break
		}

		pa := &pendentes[i]
		if err := e.replay(ctx, pa); err != nil {
			summary.Falhas++
			log.Error().Err(err).
				Uint64("action_id", pa.ID).
				Str("type", pa.Type).
				Msg("sync: ação falhou, mantida na fila")
			continue
		}
		if err := e.queue.Remove(ctx, pa.ID); err != nil {
			summary.Falhas++
			log.Error().Err(err).Uint64("action_id", pa.ID).Msg("sync: falha ao remover ação concluída")
			continue
		}
		summary.Processadas++
	}

	restantes, err := e.queue.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("sync: falha ao contar pendências restantes")
	}
	summary.Restantes = restantes

	log.Info().
		Int("processadas", summary.Processadas).
		Int("falhas", summary.Falhas).
		Int64("restantes", summary.Restantes).
		Msg("sync: drenagem concluída")

	switch {
	case summary.Falhas == 0 && summary.Processadas > 0:
		e.notifier.Success(fmt.Sprintf("Sincronização concluída: %d ações enviadas", summary.Processadas))
	case summary.Falhas > 0:
		e.notifier.Warning(fmt.Sprintf("Sincronização parcial: %d enviadas, %d pendentes", summary.Processadas, summary.Restantes))
	}
	return summary, nil
}

// resolve maps ids that may still be local through the alias table.
func (e *SyncEngine) resolve(ctx context.Context, id string) (string, error) {
	return e.queue.ResolveAlias(ctx, id)
}

func (e *SyncEngine) resolveOpt(ctx context.Context, id *string) (*string, error) {
	if id == nil {
		return nil, nil
	}
	resolved, err := e.queue.ResolveAlias(ctx, *id)
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

// replay performs one action against the remote API. Creates additionally
// record the local→server alias and rewrite the mirror row under its
// server-assigned id.
func (e *SyncEngine) replay(ctx context.Context, pa *model.PendingAction) error {
	call := func(fn func() error) error { return e.breaker.Execute(fn) }

	switch pa.Type {
	case action.CriarComanda:
		var p action.CriarComandaPayload
		if err := action.Decode(pa.Payload, &p); err != nil {
			return err
		}
		clienteID, err := e.resolveOpt(ctx, p.ClienteID)
		if err != nil {
			return err
		}
		var criada *model.Comanda
		if err := call(func() error {
			var err error
			criada, err = e.remote.CriarComanda(ctx, p.Numero, clienteID, pa.IdempotencyKey)
			return err
		}); err != nil {
			return err
		}
		return e.confirmCreate(ctx, p.LocalID, criada.ID, e.comandas.ReplaceComandaID)

	case action.AdicionarItem:
		var p action.AdicionarItemPayload
		if err := action.Decode(pa.Payload, &p); err != nil {
			return err
		}
		comandaID, err := e.resolve(ctx, p.ComandaID)
		if err != nil {
			return err
		}
		produtoID, err := e.resolve(ctx, p.ProdutoID)
		if err != nil {
			return err
		}
		var item *model.ItemComanda
		if err := call(func() error {
			var err error
			item, err = e.remote.AdicionarItem(ctx, comandaID, produtoID, p.Quantidade, p.ValorUnit, pa.IdempotencyKey)
			return err
		}); err != nil {
			return err
		}
		return e.confirmCreate(ctx, p.LocalItemID, item.ID, e.comandas.ReplaceItemID)

	case action.AtualizarQtdItem:
		var p action.AtualizarQtdItemPayload
		if err := action.Decode(pa.Payload, &p); err != nil {
			return err
		}
		comandaID, err := e.resolve(ctx, p.ComandaID)
		if err != nil {
			return err
		}
		itemID, err := e.resolve(ctx, p.ItemID)
		if err != nil {
			return err
		}
		return call(func() error {
			return e.remote.AtualizarQuantidadeItem(ctx, comandaID, itemID, p.Quantidade, pa.IdempotencyKey)
		})

	case action.RemoverItem:
		var p action.RemoverItemPayload
		if err := action.Decode(pa.Payload, &p); err != nil {
			return err
		}
		comandaID, err := e.resolve(ctx, p.ComandaID)
		if err != nil {
			return err
		}
		itemID, err := e.resolve(ctx, p.ItemID)
		if err != nil {
			return err
		}
		return call(func() error {
			return e.remote.RemoverItem(ctx, comandaID, itemID, pa.IdempotencyKey)
		})

	case action.FecharComanda:
		var p action.FecharComandaPayload
		if err := action.Decode(pa.Payload, &p); err != nil {
			return err
		}
		comandaID, err := e.resolve(ctx, p.ComandaID)
		if err != nil {
			return err
		}
		pagamentos := make([]remote.Pagamento, len(p.Pagamentos))
		for i, pg := range p.Pagamentos {
			pagamentos[i] = remote.Pagamento{Metodo: pg.Metodo, Valor: pg.Valor}
		}
		return call(func() error {
			return e.remote.FecharComanda(ctx, comandaID, pagamentos, pa.IdempotencyKey)
		})

	case action.CriarCliente:
		var p action.CriarClientePayload
		if err := action.Decode(pa.Payload, &p); err != nil {
			return err
		}
		var criado *model.Cliente
		if err := call(func() error {
			var err error
			criado, err = e.remote.CriarCliente(ctx, remote.ClienteInput{Nome: p.Nome, Telefone: p.Telefone}, pa.IdempotencyKey)
			return err
		}); err != nil {
			return err
		}
		return e.confirmCreate(ctx, p.LocalID, criado.ID, e.clientes.ReplaceID)

	case action.AtualizarCliente:
		var p action.AtualizarClientePayload
		if err := action.Decode(pa.Payload, &p); err != nil {
			return err
		}
		clienteID, err := e.resolve(ctx, p.ClienteID)
		if err != nil {
			return err
		}
		return call(func() error {
			_, err := e.remote.AtualizarCliente(ctx, clienteID, remote.ClienteInput{Nome: p.Nome, Telefone: p.Telefone}, pa.IdempotencyKey)
			return err
		})

	case action.DeletarCliente:
		var p action.DeletarClientePayload
		if err := action.Decode(pa.Payload, &p); err != nil {
			return err
		}
		clienteID, err := e.resolve(ctx, p.ClienteID)
		if err != nil {
			return err
		}
		return call(func() error {
			return e.remote.DeletarCliente(ctx, clienteID, pa.IdempotencyKey)
		})

	case action.CriarProduto:
		var p action.CriarProdutoPayload
		if err := action.Decode(pa.Payload, &p); err != nil {
			return err
		}
		var criado *model.Produto
		if err := call(func() error {
			var err error
			criado, err = e.remote.CriarProduto(ctx, remote.ProdutoInput{
				Nome:      p.Nome,
				Categoria: p.Categoria,
				Preco:     p.Preco,
				Ativo:     p.Ativo,
			}, pa.IdempotencyKey)
			return err
		}); err != nil {
			return err
		}
		return e.confirmCreate(ctx, p.LocalID, criado.ID, e.produtos.ReplaceID)

	case action.AtualizarProduto:
		var p action.AtualizarProdutoPayload
		if err := action.Decode(pa.Payload, &p); err != nil {
			return err
		}
		produtoID, err := e.resolve(ctx, p.ProdutoID)
		if err != nil {
			return err
		}
		return call(func() error {
			_, err := e.remote.AtualizarProduto(ctx, produtoID, remote.ProdutoInput{
				Nome:      p.Nome,
				Categoria: p.Categoria,
				Preco:     p.Preco,
				Ativo:     p.Ativo,
			}, pa.IdempotencyKey)
			return err
		})

	case action.DeletarProduto:
		var p action.DeletarProdutoPayload
		if err := action.Decode(pa.Payload, &p); err != nil {
			return err
		}
		produtoID, err := e.resolve(ctx, p.ProdutoID)
		if err != nil {
			return err
		}
		return call(func() error {
			return e.remote.DeletarProduto(ctx, produtoID, pa.IdempotencyKey)
		})
	}

	return errors.New("sync: tipo de ação desconhecido: " + pa.Type)
}

// confirmCreate records the alias for a confirmed create and rewrites the
// mirror row under the server id. The alias is saved first: if the rewrite
// fails, later replays of dependent actions still resolve correctly.
func (e *SyncEngine) confirmCreate(ctx context.Context, localID, serverID string, replace func(ctx context.Context, localID, serverID string) error) error {
	if err := e.queue.SaveAlias(ctx, localID, serverID); err != nil {
		return fmt.Errorf("sync: gravar alias %s→%s: %w", localID, serverID, err)
	}
	if err := replace(ctx, localID, serverID); err != nil {
		log.Warn().Err(err).
			Str("local_id", localID).
			Str("server_id", serverID).
			Msg("sync: falha ao reescrever id no espelho")
	}
	return nil
}
