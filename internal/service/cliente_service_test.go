package service

import (
	"context"
	"testing"

	"systmix/internal/action"
	"systmix/internal/dto"
	"systmix/internal/localid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriarClienteOfflineEnfileira(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	tel := "11988887777"

	cli, err := e.clienteSvc.Criar(ctx, false, dto.CriarClienteRequest{Nome: "Ana", Telefone: &tel})
	require.NoError(t, err)
	assert.True(t, localid.IsLocal(cli.ID))

	pendentes, _ := e.queue.PeekAllOrdered(ctx)
	require.Len(t, pendentes, 1)
	assert.Equal(t, action.CriarCliente, pendentes[0].Type)
}

func TestCriarClienteOnline(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	cli, err := e.clienteSvc.Criar(ctx, true, dto.CriarClienteRequest{Nome: "Bruno"})
	require.NoError(t, err)
	assert.False(t, localid.IsLocal(cli.ID))
	assert.Equal(t, 1, e.remote.callCount("CriarCliente"))

	n, _ := e.queue.Count(ctx)
	assert.Zero(t, n)
}

func TestAtualizarClienteOffline(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	cli, err := e.clienteSvc.Criar(ctx, false, dto.CriarClienteRequest{Nome: "Ana"})
	require.NoError(t, err)

	atualizado, err := e.clienteSvc.Atualizar(ctx, false, cli.ID, dto.AtualizarClienteRequest{Nome: "Ana Souza"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", atualizado.Nome)

	pendentes, _ := e.queue.PeekAllOrdered(ctx)
	require.Len(t, pendentes, 2)
	assert.Equal(t, action.AtualizarCliente, pendentes[1].Type)
}

func TestAtualizarClienteOnlineComIDLocalEnfileira(t *testing.T) {
	// The client was created offline; even with the connection back, the
	// update must queue behind the pending create.
	e := newEnv()
	ctx := context.Background()

	cli, err := e.clienteSvc.Criar(ctx, false, dto.CriarClienteRequest{Nome: "Ana"})
	require.NoError(t, err)

	_, err = e.clienteSvc.Atualizar(ctx, true, cli.ID, dto.AtualizarClienteRequest{Nome: "Ana Souza"})
	require.NoError(t, err)
	assert.Zero(t, e.remote.callCount("AtualizarCliente"))

	pendentes, _ := e.queue.PeekAllOrdered(ctx)
	require.Len(t, pendentes, 2)
}

func TestDeletarClienteOfflineEnfileira(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	cli, err := e.clienteSvc.Criar(ctx, false, dto.CriarClienteRequest{Nome: "Ana"})
	require.NoError(t, err)
	require.NoError(t, e.clienteSvc.Deletar(ctx, false, cli.ID))

	_, err = e.clientes.FindByID(ctx, cli.ID)
	assert.Error(t, err)

	pendentes, _ := e.queue.PeekAllOrdered(ctx)
	require.Len(t, pendentes, 2)
	assert.Equal(t, action.DeletarCliente, pendentes[1].Type)
}

func TestDeletarClienteInexistente(t *testing.T) {
	e := newEnv()
	err := e.clienteSvc.Deletar(context.Background(), false, "nope")
	assert.ErrorIs(t, err, ErrClienteNaoEncontrado)
}
