package handler

import (
	"net/http"

	"systmix/internal/dto"
	"systmix/internal/service"

	"github.com/gin-gonic/gin"
)

type ClientesHandler struct {
	svc    service.ClienteService
	online func() bool
}

func NewClientesHandler(svc service.ClienteService, online func() bool) *ClientesHandler {
	return &ClientesHandler{svc: svc, online: online}
}

// Listar godoc
// @Summary Lista os clientes
// @Tags clientes
// @Produce json
// @Success 200 {array} model.Cliente
// @Router /v1/clientes [get]
func (h *ClientesHandler) Listar(c *gin.Context) {
	clientes, err := h.svc.Listar(c.Request.Context(), h.online())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, clientes)
}

// Criar godoc
// @Summary Cadastra um cliente
// @Tags clientes
// @Accept json
// @Produce json
// @Param body body dto.CriarClienteRequest true "Cliente"
// @Success 201 {object} model.Cliente
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/clientes [post]
func (h *ClientesHandler) Criar(c *gin.Context) {
	var req dto.CriarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cli, err := h.svc.Criar(c.Request.Context(), h.online(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, cli)
}

// Atualizar godoc
// @Summary Atualiza um cliente
// @Tags clientes
// @Accept json
// @Produce json
// @Param id path string true "ID do cliente"
// @Param body body dto.AtualizarClienteRequest true "Cliente"
// @Success 200 {object} model.Cliente
// @Failure 404 {object} apierror.APIError
// @Router /v1/clientes/{id} [put]
func (h *ClientesHandler) Atualizar(c *gin.Context) {
	var req dto.AtualizarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cli, err := h.svc.Atualizar(c.Request.Context(), h.online(), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, cli)
}

// Deletar godoc
// @Summary Exclui um cliente
// @Tags clientes
// @Param id path string true "ID do cliente"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/clientes/{id} [delete]
func (h *ClientesHandler) Deletar(c *gin.Context) {
	if err := h.svc.Deletar(c.Request.Context(), h.online(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
