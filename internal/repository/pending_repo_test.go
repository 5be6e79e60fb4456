package repository

import (
	"context"
	"testing"

	"systmix/internal/action"
	"systmix/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.PendingAction{}, &model.SyncAlias{}))
	return db
}

func TestEnqueuePreservaOrdemFIFO(t *testing.T) {
	repo := NewPendingActionRepository(newTestDB(t))
	ctx := context.Background()

	tipos := []string{action.CriarComanda, action.AdicionarItem, action.FecharComanda}
	for _, tipo := range tipos {
		_, err := repo.Enqueue(ctx, tipo, []byte(`{}`))
		require.NoError(t, err)
	}

	actions, err := repo.PeekAllOrdered(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 3)
	for i, pa := range actions {
		assert.Equal(t, tipos[i], pa.Type)
		assert.NotEmpty(t, pa.IdempotencyKey)
		if i > 0 {
			assert.Greater(t, pa.ID, actions[i-1].ID)
		}
	}
}

func TestEnqueueRejeitaTipoDesconhecido(t *testing.T) {
	repo := NewPendingActionRepository(newTestDB(t))

	_, err := repo.Enqueue(context.Background(), "ZERAR_TUDO", []byte(`{}`))
	assert.Error(t, err)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRemoveDeixaDemaisNaFila(t *testing.T) {
	repo := NewPendingActionRepository(newTestDB(t))
	ctx := context.Background()

	first, err := repo.Enqueue(ctx, action.CriarComanda, []byte(`{}`))
	require.NoError(t, err)
	_, err = repo.Enqueue(ctx, action.AdicionarItem, []byte(`{}`))
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, first.ID))

	actions, err := repo.PeekAllOrdered(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, action.AdicionarItem, actions[0].Type)
}

func TestResolveAliasMapeiaIDLocalConfirmado(t *testing.T) {
	repo := NewPendingActionRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.SaveAlias(ctx, "local_100", "srv-abc"))

	got, err := repo.ResolveAlias(ctx, "local_100")
	require.NoError(t, err)
	assert.Equal(t, "srv-abc", got)

	// Ids sem alias (server ids ou criações ainda pendentes) voltam intactos.
	got, err = repo.ResolveAlias(ctx, "local_999")
	require.NoError(t, err)
	assert.Equal(t, "local_999", got)

	got, err = repo.ResolveAlias(ctx, "srv-abc")
	require.NoError(t, err)
	assert.Equal(t, "srv-abc", got)
}

func TestSaveAliasSobrescreveConfirmacaoRepetida(t *testing.T) {
	repo := NewPendingActionRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.SaveAlias(ctx, "local_7", "srv-1"))
	require.NoError(t, repo.SaveAlias(ctx, "local_7", "srv-1"))

	got, err := repo.ResolveAlias(ctx, "local_7")
	require.NoError(t, err)
	assert.Equal(t, "srv-1", got)
}
