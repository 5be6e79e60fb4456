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

var ErrClienteNaoEncontrado = errors.New("cliente não encontrado")

type ClienteService interface {
	Listar(ctx context.Context, online bool) ([]model.Cliente, error)
	Criar(ctx context.Context, online bool, req dto.CriarClienteRequest) (*model.Cliente, error)
	Atualizar(ctx context.Context, online bool, id string, req dto.AtualizarClienteRequest) (*model.Cliente, error)
	Deletar(ctx context.Context, online bool, id string) error
}

type clienteService struct {
	repo     repository.ClienteRepository
	queue    repository.PendingActionRepository
	remote   remote.API
	notifier *notify.Notifier
}

func NewClienteService(repo repository.ClienteRepository, queue repository.PendingActionRepository, rem remote.API, notifier *notify.Notifier) ClienteService {
	return &clienteService{repo: repo, queue: queue, remote: rem, notifier: notifier}
}

func (s *clienteService) Listar(ctx context.Context, online bool) ([]model.Cliente, error) {
	if online {
		clientes, err := s.remote.ListarClientes(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("clientes: listagem remota falhou, usando espelho local")
			return s.repo.List(ctx)
		}
		for i := range clientes {
			if err := s.repo.Upsert(ctx, &clientes[i]); err != nil {
				log.Warn().Err(err).Str("cliente_id", clientes[i].ID).Msg("clientes: falha ao atualizar espelho")
			}
		}
		return clientes, nil
	}
	return s.repo.List(ctx)
}

func (s *clienteService) Criar(ctx context.Context, online bool, req dto.CriarClienteRequest) (*model.Cliente, error) {
	if online {
		cli, err := s.remote.CriarCliente(ctx, remote.ClienteInput{Nome: req.Nome, Telefone: req.Telefone}, uuid.NewString())
		if err != nil {
			return nil, err
		}
		if err := s.repo.Upsert(ctx, cli); err != nil {
			log.Warn().Err(err).Msg("clientes: falha ao atualizar espelho")
		}
		s.notifier.Success("Cliente cadastrado: " + cli.Nome)
		return cli, nil
	}

	cli := &model.Cliente{
		ID:       localid.New(),
		Nome:     req.Nome,
		Telefone: req.Telefone,
		CriadoEm: time.Now().UTC(),
	}
	payload, err := action.Encode(action.CriarClientePayload{
		LocalID:  cli.ID,
		Nome:     cli.Nome,
		Telefone: cli.Telefone,
	})
	if err != nil {
		return nil, err
	}
	err = runTx(s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, cli); err != nil {
			return err
		}
		_, err := s.queue.EnqueueTx(tx, action.CriarCliente, payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifier.SuccessOffline("Cliente salvo localmente: " + cli.Nome)
	return cli, nil
}

func (s *clienteService) Atualizar(ctx context.Context, online bool, id string, req dto.AtualizarClienteRequest) (*model.Cliente, error) {
	if online && !localid.IsLocal(id) {
		cli, err := s.remote.AtualizarCliente(ctx, id, remote.ClienteInput{Nome: req.Nome, Telefone: req.Telefone}, uuid.NewString())
		if err != nil {
			return nil, err
		}
		if err := s.repo.Upsert(ctx, cli); err != nil {
			log.Warn().Err(err).Msg("clientes: falha ao atualizar espelho")
		}
		s.notifier.Success("Cliente atualizado: " + cli.Nome)
		return cli, nil
	}

	cli, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClienteNaoEncontrado
		}
		return nil, err
	}
	cli.Nome = req.Nome
	cli.Telefone = req.Telefone

	payload, err := action.Encode(action.AtualizarClientePayload{
		ClienteID: id,
		Nome:      cli.Nome,
		Telefone:  cli.Telefone,
	})
	if err != nil {
		return nil, err
	}
	err = runTx(s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, cli); err != nil {
			return err
		}
		_, err := s.queue.EnqueueTx(tx, action.AtualizarCliente, payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifier.SuccessOffline("Cliente atualizado localmente: " + cli.Nome)
	return cli, nil
}

func (s *clienteService) Deletar(ctx context.Context, online bool, id string) error {
	if online && !localid.IsLocal(id) {
		if err := s.remote.DeletarCliente(ctx, id, uuid.NewString()); err != nil {
			return err
		}
		err := runTx(s.repo.DB(), func(tx *gorm.DB) error { return s.repo.DeleteTx(tx, id) })
		if err != nil {
			log.Warn().Err(err).Msg("clientes: falha ao remover do espelho")
		}
		s.notifier.Success("Cliente excluído")
		return nil
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClienteNaoEncontrado
		}
		return err
	}
	payload, err := action.Encode(action.DeletarClientePayload{ClienteID: id})
	if err != nil {
		return err
	}
	err = runTx(s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.DeleteTx(tx, id); err != nil {
			return err
		}
		_, err := s.queue.EnqueueTx(tx, action.DeletarCliente, payload)
		return err
	})
	if err != nil {
		return err
	}
	s.notifier.SuccessOffline("Cliente excluído localmente")
	return nil
}
