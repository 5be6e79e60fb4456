package handler

import (
	"net/http"
	"strconv"

	"systmix/internal/apierror"
	"systmix/internal/dto"
	"systmix/internal/service"

	"github.com/gin-gonic/gin"
)

// ComandasHandler samples connectivity once per request and hands the result
// to the service, so one request never mixes online and offline paths.
type ComandasHandler struct {
	svc    service.ComandaService
	online func() bool
}

func NewComandasHandler(svc service.ComandaService, online func() bool) *ComandasHandler {
	return &ComandasHandler{svc: svc, online: online}
}

// ListarAbertas godoc
// @Summary Lista as comandas abertas
// @Tags comandas
// @Produce json
// @Success 200 {array} model.Comanda
// @Router /v1/comandas/abertas [get]
func (h *ComandasHandler) ListarAbertas(c *gin.Context) {
	comandas, err := h.svc.ListarAbertas(c.Request.Context(), h.online())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, comandas)
}

// Buscar godoc
// @Summary Busca uma comanda pelo id
// @Tags comandas
// @Produce json
// @Param id path string true "ID da comanda"
// @Success 200 {object} model.Comanda
// @Failure 404 {object} apierror.APIError
// @Router /v1/comandas/{id} [get]
func (h *ComandasHandler) Buscar(c *gin.Context) {
	comanda, err := h.svc.Buscar(c.Request.Context(), h.online(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, comanda)
}

// BuscarPorNumero godoc
// @Summary Busca a comanda aberta com o número dado
// @Tags comandas
// @Produce json
// @Param numero path int true "Número da comanda"
// @Success 200 {object} model.Comanda
// @Failure 404 {object} apierror.APIError
// @Router /v1/comandas/numero/{numero} [get]
func (h *ComandasHandler) BuscarPorNumero(c *gin.Context) {
	numero, err := strconv.Atoi(c.Param("numero"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("número inválido"))
		return
	}
	comanda, err := h.svc.BuscarPorNumero(c.Request.Context(), h.online(), numero)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, comanda)
}

// Criar godoc
// @Summary Abre uma nova comanda
// @Tags comandas
// @Accept json
// @Produce json
// @Param body body dto.CriarComandaRequest true "Dados da comanda"
// @Success 201 {object} model.Comanda
// @Failure 409 {object} apierror.APIError
// @Router /v1/comandas [post]
func (h *ComandasHandler) Criar(c *gin.Context) {
	var req dto.CriarComandaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	comanda, err := h.svc.Criar(c.Request.Context(), h.online(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, comanda)
}

// AdicionarItem godoc
// @Summary Adiciona um item à comanda
// @Tags comandas
// @Accept json
// @Produce json
// @Param id path string true "ID da comanda"
// @Param body body dto.AdicionarItemRequest true "Item"
// @Success 201 {object} model.ItemComanda
// @Failure 404 {object} apierror.APIError
// @Router /v1/comandas/{id}/itens [post]
func (h *ComandasHandler) AdicionarItem(c *gin.Context) {
	var req dto.AdicionarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	item, err := h.svc.AdicionarItem(c.Request.Context(), h.online(), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// AtualizarQuantidade godoc
// @Summary Atualiza a quantidade de um item (abaixo de 1 remove)
// @Tags comandas
// @Accept json
// @Param id path string true "ID da comanda"
// @Param item_id path string true "ID do item"
// @Param body body dto.AtualizarQuantidadeRequest true "Nova quantidade"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/comandas/{id}/itens/{item_id} [patch]
func (h *ComandasHandler) AtualizarQuantidade(c *gin.Context) {
	var req dto.AtualizarQuantidadeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	err := h.svc.AtualizarQuantidade(c.Request.Context(), h.online(), c.Param("id"), c.Param("item_id"), req.Quantidade)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoverItem godoc
// @Summary Remove um item da comanda
// @Tags comandas
// @Param id path string true "ID da comanda"
// @Param item_id path string true "ID do item"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/comandas/{id}/itens/{item_id} [delete]
func (h *ComandasHandler) RemoverItem(c *gin.Context) {
	err := h.svc.RemoverItem(c.Request.Context(), h.online(), c.Param("id"), c.Param("item_id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Fechar godoc
// @Summary Fecha a comanda registrando os pagamentos
// @Tags comandas
// @Accept json
// @Produce json
// @Param id path string true "ID da comanda"
// @Param body body dto.FecharComandaRequest true "Pagamentos"
// @Success 200 {object} dto.FecharComandaResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/comandas/{id}/fechar [post]
func (h *ComandasHandler) Fechar(c *gin.Context) {
	var req dto.FecharComandaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Fechar(c.Request.Context(), h.online(), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
