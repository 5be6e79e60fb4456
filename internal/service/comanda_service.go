package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"systmix/internal/action"
	"systmix/internal/dto"
	"systmix/internal/localid"
	"systmix/internal/model"
	"systmix/internal/notify"
	"systmix/internal/remote"
	"systmix/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrComandaNaoEncontrada = errors.New("comanda não encontrada")
	ErrComandaFechada       = errors.New("comanda já está fechada")
	ErrNumeroEmUso          = errors.New("já existe uma comanda aberta com este número")
	ErrComandaSemItens      = errors.New("não é possível fechar uma comanda sem itens")
	ErrItemNaoEncontrado    = errors.New("item não encontrado na comanda")
	ErrCaixaFechado         = errors.New("abra o caixa antes de operar comandas")
)

// ComandaService is the tab lifecycle: open, add/adjust items, close with
// payments. Reads and writes follow the online/offline path chosen by the
// caller; writes against rows that only exist locally (local_ ids) always
// take the offline path so they queue behind the pending create.
type ComandaService interface {
	ListarAbertas(ctx context.Context, online bool) ([]model.Comanda, error)
	Buscar(ctx context.Context, online bool, id string) (*model.Comanda, error)
	BuscarPorNumero(ctx context.Context, online bool, numero int) (*model.Comanda, error)
	Criar(ctx context.Context, online bool, req dto.CriarComandaRequest) (*model.Comanda, error)
	AdicionarItem(ctx context.Context, online bool, comandaID string, req dto.AdicionarItemRequest) (*model.ItemComanda, error)
	AtualizarQuantidade(ctx context.Context, online bool, comandaID, itemID string, quantidade int) error
	RemoverItem(ctx context.Context, online bool, comandaID, itemID string) error
	Fechar(ctx context.Context, online bool, comandaID string, req dto.FecharComandaRequest) (*dto.FecharComandaResponse, error)
}

type comandaService struct {
	repo      repository.ComandaRepository
	produtos  repository.ProdutoRepository
	queue     repository.PendingActionRepository
	remote    remote.API
	caixa     CaixaService
	notifier  *notify.Notifier
	maxNumero int
}

func NewComandaService(
	repo repository.ComandaRepository,
	produtos repository.ProdutoRepository,
	queue repository.PendingActionRepository,
	rem remote.API,
	caixa CaixaService,
	notifier *notify.Notifier,
	maxNumero int,
) ComandaService {
	return &comandaService{
		repo:      repo,
		produtos:  produtos,
		queue:     queue,
		remote:    rem,
		caixa:     caixa,
		notifier:  notifier,
		maxNumero: maxNumero,
	}
}

func (s *comandaService) ListarAbertas(ctx context.Context, online bool) ([]model.Comanda, error) {
	if online {
		comandas, err := s.remote.ListarComandasAbertas(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("comandas: listagem remota falhou, usando espelho local")
			return s.repo.ListAbertas(ctx)
		}
		for i := range comandas {
			if err := s.repo.Upsert(ctx, &comandas[i]); err != nil {
				log.Warn().Err(err).Str("comanda_id", comandas[i].ID).Msg("comandas: falha ao atualizar espelho")
			}
		}
		return comandas, nil
	}
	return s.repo.ListAbertas(ctx)
}

func (s *comandaService) Buscar(ctx context.Context, online bool, id string) (*model.Comanda, error) {
	if online && !localid.IsLocal(id) {
		c, err := s.remote.BuscarComanda(ctx, id)
		if err != nil {
			var apiErr *remote.APIError
			if errors.As(err, &apiErr) && apiErr.Status == 404 {
				return nil, ErrComandaNaoEncontrada
			}
			log.Warn().Err(err).Msg("comandas: consulta remota falhou, usando espelho local")
			return s.buscarLocal(ctx, id)
		}
		if err := s.repo.Upsert(ctx, c); err != nil {
			log.Warn().Err(err).Msg("comandas: falha ao atualizar espelho")
		}
		return c, nil
	}
	return s.buscarLocal(ctx, id)
}

func (s *comandaService) buscarLocal(ctx context.Context, id string) (*model.Comanda, error) {
	c, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrComandaNaoEncontrada
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *comandaService) BuscarPorNumero(ctx context.Context, online bool, numero int) (*model.Comanda, error) {
	if online {
		abertas, err := s.ListarAbertas(ctx, true)
		if err != nil {
			return nil, err
		}
		for i := range abertas {
			if abertas[i].Numero == numero {
				return &abertas[i], nil
			}
		}
		return nil, ErrComandaNaoEncontrada
	}
	c, err := s.repo.FindAbertaPorNumero(ctx, numero)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrComandaNaoEncontrada
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *comandaService) Criar(ctx context.Context, online bool, req dto.CriarComandaRequest) (*model.Comanda, error) {
	if req.Numero < 1 || req.Numero > s.maxNumero {
		return nil, fmt.Errorf("número de comanda inválido: use um valor entre 1 e %d", s.maxNumero)
	}

	sess, err := s.caixa.Atual(ctx, online)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrCaixaFechado
	}

	if _, err := s.BuscarPorNumero(ctx, online, req.Numero); err == nil {
		return nil, ErrNumeroEmUso
	} else if !errors.Is(err, ErrComandaNaoEncontrada) {
		return nil, err
	}

	if online {
		c, err := s.remote.CriarComanda(ctx, req.Numero, req.ClienteID, uuid.NewString())
		if err != nil {
			return nil, err
		}
		if err := s.repo.Upsert(ctx, c); err != nil {
			log.Warn().Err(err).Msg("comandas: falha ao atualizar espelho")
		}
		s.notifier.Success(fmt.Sprintf("Comanda %d aberta", c.Numero))
		return c, nil
	}

	c := &model.Comanda{
		ID:        localid.New(),
		Numero:    req.Numero,
		ClienteID: req.ClienteID,
		Status:    model.ComandaAberta,
		CriadoEm:  time.Now().UTC(),
	}
	payload, err := action.Encode(action.CriarComandaPayload{
		LocalID:   c.ID,
		Numero:    c.Numero,
		ClienteID: c.ClienteID,
	})
	if err != nil {
		return nil, err
	}
	err = runTx(s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, c); err != nil {
			return err
		}
		_, err := s.queue.EnqueueTx(tx, action.CriarComanda, payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifier.SuccessOffline(fmt.Sprintf("Comanda %d aberta localmente", c.Numero))
	return c, nil
}

// produtoParaVenda resolves the product to price the new item from, trying
// the mirror first and refreshing the catalog once when online.
func (s *comandaService) produtoParaVenda(ctx context.Context, online bool, produtoID string) (*model.Produto, error) {
	p, err := s.produtos.FindByID(ctx, produtoID)
	if errors.Is(err, gorm.ErrRecordNotFound) && online {
		produtos, lerr := s.remote.ListarProdutos(ctx)
		if lerr != nil {
			return nil, ErrProdutoNaoEncontrado
		}
		for i := range produtos {
			if uerr := s.produtos.Upsert(ctx, &produtos[i]); uerr != nil {
				log.Warn().Err(uerr).Msg("comandas: falha ao atualizar espelho de produtos")
			}
			if produtos[i].ID == produtoID {
				p, err = &produtos[i], nil
			}
		}
	}
	if err != nil {
		return nil, ErrProdutoNaoEncontrado
	}
	if !p.Ativo {
		return nil, ErrProdutoInativo
	}
	return p, nil
}

func (s *comandaService) AdicionarItem(ctx context.Context, online bool, comandaID string, req dto.AdicionarItemRequest) (*model.ItemComanda, error) {
	c, err := s.Buscar(ctx, online, comandaID)
	if err != nil {
		return nil, err
	}
	if c.Status != model.ComandaAberta {
		return nil, ErrComandaFechada
	}

	// Price is captured now; later catalog edits must not move this line.
	produto, err := s.produtoParaVenda(ctx, online, req.ProdutoID)
	if err != nil {
		return nil, err
	}

	if online && !localid.IsLocal(comandaID) {
		item, err := s.remote.AdicionarItem(ctx, comandaID, req.ProdutoID, req.Quantidade, produto.Preco, uuid.NewString())
		if err != nil {
			return nil, err
		}
		s.notifier.Success(produto.Nome + " adicionado à comanda")
		return item, nil
	}

	item := &model.ItemComanda{
		ID:         localid.New(),
		ComandaID:  comandaID,
		ProdutoID:  req.ProdutoID,
		Quantidade: req.Quantidade,
		ValorUnit:  produto.Preco,
		CriadoEm:   time.Now().UTC(),
	}
	payload, err := action.Encode(action.AdicionarItemPayload{
		LocalItemID: item.ID,
		ComandaID:   comandaID,
		ProdutoID:   req.ProdutoID,
		Quantidade:  req.Quantidade,
		ValorUnit:   item.ValorUnit,
	})
	if err != nil {
		return nil, err
	}
	err = runTx(s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.AddItemTx(tx, item); err != nil {
			return err
		}
		_, err := s.queue.EnqueueTx(tx, action.AdicionarItem, payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifier.SuccessOffline(produto.Nome + " adicionado localmente")
	return item, nil
}

func (s *comandaService) AtualizarQuantidade(ctx context.Context, online bool, comandaID, itemID string, quantidade int) error {
	if quantidade < 1 {
		return s.RemoverItem(ctx, online, comandaID, itemID)
	}

	if online && !localid.IsLocal(comandaID) && !localid.IsLocal(itemID) {
		if err := s.remote.AtualizarQuantidadeItem(ctx, comandaID, itemID, quantidade, uuid.NewString()); err != nil {
			return err
		}
		s.notifier.Success("Quantidade atualizada")
		return nil
	}

	if _, err := s.repo.FindItem(ctx, comandaID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNaoEncontrado
		}
		return err
	}
	payload, err := action.Encode(action.AtualizarQtdItemPayload{
		ComandaID:  comandaID,
		ItemID:     itemID,
		Quantidade: quantidade,
	})
	if err != nil {
		return err
	}
	err = runTx(s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateItemQuantidadeTx(tx, itemID, quantidade); err != nil {
			return err
		}
		_, err := s.queue.EnqueueTx(tx, action.AtualizarQtdItem, payload)
		return err
	})
	if err != nil {
		return err
	}
	s.notifier.SuccessOffline("Quantidade atualizada localmente")
	return nil
}

func (s *comandaService) RemoverItem(ctx context.Context, online bool, comandaID, itemID string) error {
	if online && !localid.IsLocal(comandaID) && !localid.IsLocal(itemID) {
		if err := s.remote.RemoverItem(ctx, comandaID, itemID, uuid.NewString()); err != nil {
			return err
		}
		s.notifier.Success("Item removido")
		return nil
	}

	if _, err := s.repo.FindItem(ctx, comandaID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNaoEncontrado
		}
		return err
	}
	payload, err := action.Encode(action.RemoverItemPayload{ComandaID: comandaID, ItemID: itemID})
	if err != nil {
		return err
	}
	err = runTx(s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.RemoveItemTx(tx, itemID); err != nil {
			return err
		}
		_, err := s.queue.EnqueueTx(tx, action.RemoverItem, payload)
		return err
	})
	if err != nil {
		return err
	}
	s.notifier.SuccessOffline("Item removido localmente")
	return nil
}

func (s *comandaService) Fechar(ctx context.Context, online bool, comandaID string, req dto.FecharComandaRequest) (*dto.FecharComandaResponse, error) {
	sess, err := s.caixa.Atual(ctx, online)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrCaixaFechado
	}

	c, err := s.Buscar(ctx, online, comandaID)
	if err != nil {
		return nil, err
	}
	if c.Status != model.ComandaAberta {
		return nil, ErrComandaFechada
	}
	if len(c.Itens) == 0 {
		return nil, ErrComandaSemItens
	}

	total := c.Total()
	pago := decimal.Zero
	for _, pg := range req.Pagamentos {
		pago = pago.Add(pg.Valor)
	}
	if pago.LessThan(total) {
		return nil, fmt.Errorf("pagamentos insuficientes: total %s, pago %s", total.StringFixed(2), pago.StringFixed(2))
	}
	troco := pago.Sub(total)
	now := time.Now().UTC()

	if online && !localid.IsLocal(comandaID) {
		pagamentos := make([]remote.Pagamento, len(req.Pagamentos))
		for i, pg := range req.Pagamentos {
			pagamentos[i] = remote.Pagamento{Metodo: pg.Metodo, Valor: pg.Valor}
		}
		if err := s.remote.FecharComanda(ctx, comandaID, pagamentos, uuid.NewString()); err != nil {
			return nil, err
		}
		if _, err := s.repo.FindByID(ctx, comandaID); err == nil {
			err = runTx(s.repo.DB(), func(tx *gorm.DB) error {
				return s.repo.FecharTx(tx, comandaID, now)
			})
			if err != nil {
				log.Warn().Err(err).Msg("comandas: falha ao fechar no espelho")
			}
		}
		s.notifier.Success(fmt.Sprintf("Comanda %d fechada", c.Numero))
		return &dto.FecharComandaResponse{ComandaID: comandaID, Total: total, Pago: pago, Troco: troco}, nil
	}

	payload, err := action.Encode(fecharPayload(comandaID, req.Pagamentos))
	if err != nil {
		return nil, err
	}
	err = runTx(s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.FecharTx(tx, comandaID, now); err != nil {
			return err
		}
		for _, pg := range req.Pagamentos {
			p := &model.Pagamento{
				ID:        localid.New(),
				ComandaID: comandaID,
				Metodo:    pg.Metodo,
				Valor:     pg.Valor,
				Data:      now,
			}
			if err := s.repo.AddPagamentoTx(tx, p); err != nil {
				return err
			}
		}
		_, err := s.queue.EnqueueTx(tx, action.FecharComanda, payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifier.SuccessOffline(fmt.Sprintf("Comanda %d fechada localmente", c.Numero))
	return &dto.FecharComandaResponse{ComandaID: comandaID, Total: total, Pago: pago, Troco: troco}, nil
}

func fecharPayload(comandaID string, pagamentos []dto.PagamentoRequest) action.FecharComandaPayload {
	p := action.FecharComandaPayload{ComandaID: comandaID}
	for _, pg := range pagamentos {
		p.Pagamentos = append(p.Pagamentos, action.PagamentoPayload{Metodo: pg.Metodo, Valor: pg.Valor})
	}
	return p
}
