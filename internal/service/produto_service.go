package service

import (
	"context"
	"errors"
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
	"gorm.io/gorm"
)

var (
	ErrProdutoNaoEncontrado = errors.New("produto não encontrado")
	ErrProdutoInativo       = errors.New("produto inativo")
)

type ProdutoService interface {
	Listar(ctx context.Context, online bool) ([]model.Produto, error)
	ListarAtivos(ctx context.Context, online bool) ([]model.Produto, error)
	Criar(ctx context.Context, online bool, req dto.CriarProdutoRequest) (*model.Produto, error)
	Atualizar(ctx context.Context, online bool, id string, req dto.AtualizarProdutoRequest) (*model.Produto, error)
	// Deletar removes the product, unless it is referenced by comanda items:
	// a referenced product is deactivated instead so history keeps resolving.
	Deletar(ctx context.Context, online bool, id string) error
	VerificarUso(ctx context.Context, online bool, id string) (bool, error)
}

type produtoService struct {
	repo     repository.ProdutoRepository
	queue    repository.PendingActionRepository
	remote   remote.API
	notifier *notify.Notifier
}

func NewProdutoService(repo repository.ProdutoRepository, queue repository.PendingActionRepository, rem remote.API, notifier *notify.Notifier) ProdutoService {
	return &produtoService{repo: repo, queue: queue, remote: rem, notifier: notifier}
}

func (s *produtoService) Listar(ctx context.Context, online bool) ([]model.Produto, error) {
	if online {
		produtos, err := s.remote.ListarProdutos(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("produtos: listagem remota falhou, usando espelho local")
			return s.repo.List(ctx)
		}
		for i := range produtos {
			if err := s.repo.Upsert(ctx, &produtos[i]); err != nil {
				log.Warn().Err(err).Str("produto_id", produtos[i].ID).Msg("produtos: falha ao atualizar espelho")
			}
		}
		return produtos, nil
	}
	return s.repo.List(ctx)
}

func (s *produtoService) ListarAtivos(ctx context.Context, online bool) ([]model.Produto, error) {
	if !online {
		return s.repo.ListAtivos(ctx)
	}
	produtos, err := s.Listar(ctx, true)
	if err != nil {
		return nil, err
	}
	ativos := make([]model.Produto, 0, len(produtos))
	for _, p := range produtos {
		if p.Ativo {
			ativos = append(ativos, p)
		}
	}
	return ativos, nil
}

// find resolves a product from the mirror, refreshing the catalog from the
// remote once when online and the id is unknown locally.
func (s *produtoService) find(ctx context.Context, online bool, id string) (*model.Produto, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !online {
		return nil, ErrProdutoNaoEncontrado
	}
	if _, err := s.Listar(ctx, true); err != nil {
		return nil, err
	}
	p, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProdutoNaoEncontrado
	}
	return p, nil
}

func (s *produtoService) Criar(ctx context.Context, online bool, req dto.CriarProdutoRequest) (*model.Produto, error) {
	ativo := true
	if req.Ativo != nil {
		ativo = *req.Ativo
	}

	if online {
		p, err := s.remote.CriarProduto(ctx, remote.ProdutoInput{
			Nome:      req.Nome,
			Categoria: req.Categoria,
			Preco:     req.Preco,
			Ativo:     ativo,
		}, uuid.NewString())
		if err != nil {
			return nil, err
		}
		if err := s.repo.Upsert(ctx, p); err != nil {
			log.Warn().Err(err).Msg("produtos: falha ao atualizar espelho")
		}
		s.notifier.Success("Produto cadastrado: " + p.Nome)
		return p, nil
	}

	p := &model.Produto{
		ID:        localid.New(),
		Nome:      req.Nome,
		Categoria: req.Categoria,
		Preco:     req.Preco,
		Ativo:     ativo,
		CriadoEm:  time.Now().UTC(),
	}
	payload, err := action.Encode(action.CriarProdutoPayload{
		LocalID:   p.ID,
		Nome:      p.Nome,
		Categoria: p.Categoria,
		Preco:     p.Preco,
		Ativo:     p.Ativo,
	})
	if err != nil {
		return nil, err
	}
	err = runTx(s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, p); err != nil {
			return err
		}
		_, err := s.queue.EnqueueTx(tx, action.CriarProduto, payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifier.SuccessOffline("Produto salvo localmente: " + p.Nome)
	return p, nil
}

func (s *produtoService) Atualizar(ctx context.Context, online bool, id string, req dto.AtualizarProdutoRequest) (*model.Produto, error) {
	if online && !localid.IsLocal(id) {
		p, err := s.remote.AtualizarProduto(ctx, id, remote.ProdutoInput{
			Nome:      req.Nome,
			Categoria: req.Categoria,
			Preco:     req.Preco,
			Ativo:     req.Ativo,
		}, uuid.NewString())
		if err != nil {
			return nil, err
		}
		if err := s.repo.Upsert(ctx, p); err != nil {
			log.Warn().Err(err).Msg("produtos: falha ao atualizar espelho")
		}
		s.notifier.Success("Produto atualizado: " + p.Nome)
		return p, nil
	}

	p, err := s.find(ctx, online, id)
	if err != nil {
		return nil, err
	}
	p.Nome = req.Nome
	p.Categoria = req.Categoria
	p.Preco = req.Preco
	p.Ativo = req.Ativo

	payload, err := action.Encode(action.AtualizarProdutoPayload{
		ProdutoID: id,
		Nome:      p.Nome,
		Categoria: p.Categoria,
		Preco:     p.Preco,
		Ativo:     p.Ativo,
	})
	if err != nil {
		return nil, err
	}
	err = runTx(s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, p); err != nil {
			return err
		}
		_, err := s.queue.EnqueueTx(tx, action.AtualizarProduto, payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifier.SuccessOffline("Produto atualizado localmente: " + p.Nome)
	return p, nil
}

// VerificarUso answers "is this product referenced by any comanda item".
// Online the remote store is authoritative; offline only the mirror can be
// consulted, so a false here is a best-effort answer, not a guarantee.
func (s *produtoService) VerificarUso(ctx context.Context, online bool, id string) (bool, error) {
	if online && !localid.IsLocal(id) {
		return s.remote.VerificarUsoProduto(ctx, id)
	}
	return s.repo.EmUso(ctx, id)
}

func (s *produtoService) Deletar(ctx context.Context, online bool, id string) error {
	p, err := s.find(ctx, online, id)
	if err != nil {
		return err
	}

	emUso, err := s.VerificarUso(ctx, online, id)
	if err != nil {
		return err
	}
	if emUso {
		_, err := s.Atualizar(ctx, online, id, dto.AtualizarProdutoRequest{
			Nome:      p.Nome,
			Categoria: p.Categoria,
			Preco:     p.Preco,
			Ativo:     false,
		})
		if err != nil {
			return err
		}
		s.notifier.Warning("Produto em uso em comandas: " + p.Nome + " foi desativado em vez de excluído")
		return nil
	}

	if online && !localid.IsLocal(id) {
		if err := s.remote.DeletarProduto(ctx, id, uuid.NewString()); err != nil {
			return err
		}
		err = runTx(s.repo.DB(), func(tx *gorm.DB) error { return s.repo.DeleteTx(tx, id) })
		if err != nil {
			log.Warn().Err(err).Msg("produtos: falha ao remover do espelho")
		}
		s.notifier.Success("Produto excluído: " + p.Nome)
		return nil
	}

	payload, err := action.Encode(action.DeletarProdutoPayload{ProdutoID: id})
	if err != nil {
		return err
	}
	err = runTx(s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.DeleteTx(tx, id); err != nil {
			return err
		}
		_, err := s.queue.EnqueueTx(tx, action.DeletarProduto, payload)
		return err
	})
	if err != nil {
		return err
	}
	s.notifier.SuccessOffline("Produto excluído localmente: " + p.Nome)
	return nil
}
