package handler

import (
	"net/http"

	"systmix/internal/notify"

	"github.com/gin-gonic/gin"
)

type NotificacoesHandler struct{ notifier *notify.Notifier }

func NewNotificacoesHandler(notifier *notify.Notifier) *NotificacoesHandler {
	return &NotificacoesHandler{notifier: notifier}
}

// Listar godoc
// @Summary Lista as notificações recentes (mais antigas primeiro)
// @Tags notificacoes
// @Produce json
// @Success 200 {array} notify.Notification
// @Router /v1/notificacoes [get]
func (h *NotificacoesHandler) Listar(c *gin.Context) {
	c.JSON(http.StatusOK, h.notifier.Snapshot())
}
