package handler

import (
	"net/http"

	"systmix/internal/apierror"
	"systmix/internal/connectivity"
	"systmix/internal/dto"
	"systmix/internal/infra"
	"systmix/internal/repository"
	"systmix/internal/worker"

	"github.com/gin-gonic/gin"
)

// SyncHandler is the bridge surface of the sync subsystem: the UI reports
// connectivity transitions here, polls queue status, and can force a drain.
type SyncHandler struct {
	monitor *connectivity.Monitor
	engine  *worker.SyncEngine
	queue   repository.PendingActionRepository
	breaker *infra.CircuitBreaker
}

func NewSyncHandler(monitor *connectivity.Monitor, engine *worker.SyncEngine, queue repository.PendingActionRepository, breaker *infra.CircuitBreaker) *SyncHandler {
	return &SyncHandler{monitor: monitor, engine: engine, queue: queue, breaker: breaker}
}

// Status godoc
// @Summary Estado atual da sincronização
// @Tags sync
// @Produce json
// @Success 200 {object} dto.SyncStatusResponse
// @Router /v1/sync/status [get]
func (h *SyncHandler) Status(c *gin.Context) {
	pendentes, err := h.queue.Count(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SyncStatusResponse{
		Online:         h.monitor.IsOnline(),
		Estado:         h.engine.State().String(),
		Pendentes:      pendentes,
		CircuitBreaker: h.breaker.State().String(),
	})
}

// Pendentes godoc
// @Summary Lista as ações pendentes na fila, em ordem de replay
// @Tags sync
// @Produce json
// @Success 200 {array} model.PendingAction
// @Router /v1/sync/pendentes [get]
func (h *SyncHandler) Pendentes(c *gin.Context) {
	actions, err := h.queue.PeekAllOrdered(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, actions)
}

// Conectividade godoc
// @Summary Reporta uma transição de conectividade observada pela UI
// @Tags sync
// @Accept json
// @Success 204
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/sync/conectividade [post]
func (h *SyncHandler) Conectividade(c *gin.Context) {
	var req dto.ConectividadeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.monitor.SetOnline(*req.Online)
	c.Status(http.StatusNoContent)
}

// Executar godoc
// @Summary Dispara uma drenagem manual da fila
// @Tags sync
// @Produce json
// @Success 200 {object} worker.DrainSummary
// @Failure 409 {object} apierror.APIError
// @Router /v1/sync/executar [post]
func (h *SyncHandler) Executar(c *gin.Context) {
	if !h.monitor.IsOnline() {
		c.JSON(http.StatusConflict, apierror.New("sem conexão: não é possível sincronizar agora"))
		return
	}
	summary, err := h.engine.Drain(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	if summary == nil {
		c.JSON(http.StatusConflict, apierror.New("sincronização já em andamento"))
		return
	}
	c.JSON(http.StatusOK, summary)
}
