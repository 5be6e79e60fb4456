package handler

import (
	"net/http"

	"systmix/internal/dto"
	"systmix/internal/service"

	"github.com/gin-gonic/gin"
)

type CaixaHandler struct {
	svc    service.CaixaService
	online func() bool
}

func NewCaixaHandler(svc service.CaixaService, online func() bool) *CaixaHandler {
	return &CaixaHandler{svc: svc, online: online}
}

// Atual godoc
// @Summary Retorna a sessão de caixa aberta
// @Tags caixa
// @Produce json
// @Success 200 {object} model.Caixa
// @Failure 404 {object} apierror.APIError
// @Router /v1/caixa/atual [get]
func (h *CaixaHandler) Atual(c *gin.Context) {
	sess, err := h.svc.Atual(c.Request.Context(), h.online())
	if err != nil {
		respondErr(c, err)
		return
	}
	if sess == nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Abrir godoc
// @Summary Abre uma sessão de caixa
// @Tags caixa
// @Accept json
// @Produce json
// @Param body body dto.AbrirCaixaRequest true "Valor inicial"
// @Success 201 {object} model.Caixa
// @Failure 409 {object} apierror.APIError
// @Router /v1/caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sess, err := h.svc.Abrir(c.Request.Context(), h.online(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// Fechar godoc
// @Summary Fecha a sessão de caixa aberta
// @Tags caixa
// @Accept json
// @Produce json
// @Param body body dto.FecharCaixaRequest true "Valor final contado"
// @Success 200 {object} model.Caixa
// @Failure 400 {object} apierror.APIError
// @Router /v1/caixa/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	var req dto.FecharCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sess, err := h.svc.Fechar(c.Request.Context(), h.online(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}
