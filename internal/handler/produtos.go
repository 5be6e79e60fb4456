package handler

import (
	"net/http"

	"systmix/internal/dto"
	"systmix/internal/service"

	"github.com/gin-gonic/gin"
)

type ProdutosHandler struct {
	svc    service.ProdutoService
	online func() bool
}

func NewProdutosHandler(svc service.ProdutoService, online func() bool) *ProdutosHandler {
	return &ProdutosHandler{svc: svc, online: online}
}

// Listar godoc
// @Summary Lista o catálogo de produtos
// @Tags produtos
// @Produce json
// @Param ativos query bool false "Somente produtos ativos"
// @Success 200 {array} model.Produto
// @Router /v1/produtos [get]
func (h *ProdutosHandler) Listar(c *gin.Context) {
	var (
		produtos interface{}
		err      error
	)
	if c.Query("ativos") == "true" {
		produtos, err = h.svc.ListarAtivos(c.Request.Context(), h.online())
	} else {
		produtos, err = h.svc.Listar(c.Request.Context(), h.online())
	}
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, produtos)
}

// Criar godoc
// @Summary Cadastra um produto
// @Tags produtos
// @Accept json
// @Produce json
// @Param body body dto.CriarProdutoRequest true "Produto"
// @Success 201 {object} model.Produto
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/produtos [post]
func (h *ProdutosHandler) Criar(c *gin.Context) {
	var req dto.CriarProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p, err := h.svc.Criar(c.Request.Context(), h.online(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Atualizar godoc
// @Summary Atualiza um produto
// @Tags produtos
// @Accept json
// @Produce json
// @Param id path string true "ID do produto"
// @Param body body dto.AtualizarProdutoRequest true "Produto"
// @Success 200 {object} model.Produto
// @Failure 404 {object} apierror.APIError
// @Router /v1/produtos/{id} [put]
func (h *ProdutosHandler) Atualizar(c *gin.Context) {
	var req dto.AtualizarProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p, err := h.svc.Atualizar(c.Request.Context(), h.online(), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Deletar godoc
// @Summary Exclui um produto (desativa se estiver em uso)
// @Tags produtos
// @Param id path string true "ID do produto"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/produtos/{id} [delete]
func (h *ProdutosHandler) Deletar(c *gin.Context) {
	if err := h.svc.Deletar(c.Request.Context(), h.online(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// VerificarUso godoc
// @Summary Verifica se o produto é referenciado por itens de comanda
// @Tags produtos
// @Produce json
// @Param id path string true "ID do produto"
// @Success 200 {object} dto.ProdutoEmUsoResponse
// @Router /v1/produtos/{id}/em-uso [get]
func (h *ProdutosHandler) VerificarUso(c *gin.Context) {
	emUso, err := h.svc.VerificarUso(c.Request.Context(), h.online(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProdutoEmUsoResponse{EmUso: emUso})
}
