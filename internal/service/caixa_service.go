package service

import (
	"context"
	"errors"
	"time"

	"systmix/internal/dto"
	"systmix/internal/localid"
	"systmix/internal/model"
	"systmix/internal/notify"
	"systmix/internal/remote"
	"systmix/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrCaixaJaAberto  = errors.New("já existe um caixa aberto")
	ErrCaixaNaoAberto = errors.New("não há caixa aberto")
)

// CaixaService controls the register session that gates sales operations.
//
// A session opened offline exists only on this terminal: it is never queued
// for replay. Closing while offline likewise stays local and raises a warning
// so the operator reconciles the drawer against the back office by hand.
type CaixaService interface {
	Atual(ctx context.Context, online bool) (*model.Caixa, error)
	Abrir(ctx context.Context, online bool, req dto.AbrirCaixaRequest) (*model.Caixa, error)
	Fechar(ctx context.Context, online bool, req dto.FecharCaixaRequest) (*model.Caixa, error)
}

type caixaService struct {
	repo     repository.CaixaRepository
	remote   remote.API
	notifier *notify.Notifier
}

func NewCaixaService(repo repository.CaixaRepository, rem remote.API, notifier *notify.Notifier) CaixaService {
	return &caixaService{repo: repo, remote: rem, notifier: notifier}
}

// Atual returns the open session, or (nil, nil) when there is none.
func (s *caixaService) Atual(ctx context.Context, online bool) (*model.Caixa, error) {
	if online {
		sess, err := s.remote.ObterCaixaAberto(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("caixa: consulta remota falhou, usando espelho local")
			return s.atualLocal(ctx)
		}
		if sess != nil {
			if err := s.repo.Upsert(ctx, sess); err != nil {
				log.Warn().Err(err).Msg("caixa: falha ao atualizar espelho")
			}
			return sess, nil
		}
		// The backend has no open session, but one opened offline on this
		// terminal still counts here.
		local, err := s.atualLocal(ctx)
		if err != nil {
			return nil, err
		}
		if local != nil && localid.IsLocal(local.ID) {
			return local, nil
		}
		return nil, nil
	}
	return s.atualLocal(ctx)
}

func (s *caixaService) atualLocal(ctx context.Context) (*model.Caixa, error) {
	sess, err := s.repo.FindAberta(ctx)
	if errors.Is(err, repository.ErrSemCaixaAberto) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *caixaService) Abrir(ctx context.Context, online bool, req dto.AbrirCaixaRequest) (*model.Caixa, error) {
	atual, err := s.Atual(ctx, online)
	if err != nil {
		return nil, err
	}
	if atual != nil {
		return nil, ErrCaixaJaAberto
	}

	if online {
		sess, err := s.remote.AbrirCaixa(ctx, req.ValorInicial, uuid.NewString())
		if err != nil {
			return nil, err
		}
		if err := s.repo.Upsert(ctx, sess); err != nil {
			log.Warn().Err(err).Msg("caixa: falha ao atualizar espelho")
		}
		s.notifier.Success("Caixa aberto")
		return sess, nil
	}

	sess := &model.Caixa{
		ID:           localid.New(),
		DataAbertura: time.Now().UTC(),
		ValorInicial: req.ValorInicial,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.notifier.SuccessOffline("Caixa aberto localmente")
	s.notifier.Warning("Sessão de caixa aberta sem conexão: ela vale apenas neste terminal e não será sincronizada")
	return sess, nil
}

func (s *caixaService) Fechar(ctx context.Context, online bool, req dto.FecharCaixaRequest) (*model.Caixa, error) {
	sess, err := s.Atual(ctx, online)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrCaixaNaoAberto
	}

	now := time.Now().UTC()
	valor := req.ValorFinal
	sess.DataFechamento = &now
	sess.ValorFinal = &valor

	if online && !localid.IsLocal(sess.ID) {
		if err := s.remote.FecharCaixa(ctx, sess.ID, valor, uuid.NewString()); err != nil {
			return nil, err
		}
		if err := s.repo.Upsert(ctx, sess); err != nil {
			log.Warn().Err(err).Msg("caixa: falha ao atualizar espelho")
		}
		s.notifier.Success("Caixa fechado")
		return sess, nil
	}

	// Offline close (or a session the backend never saw): persist locally
	// only. The close is deliberately not queued for replay; the drawer
	// count must be reconciled against the back office by hand.
	if err := s.repo.Update(ctx, sess); err != nil {
		return nil, err
	}
	s.notifier.Warning("Caixa fechado apenas localmente: o fechamento não será sincronizado, concilie os valores no retaguarda")
	return sess, nil
}
