package handler

import (
	"net/http"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/service"

	"github.com/gin-gonic/gin"
)

type ComprasHandler struct{ svc service.CompraService }

func NewComprasHandler(svc service.CompraService) *ComprasHandler {
	return &ComprasHandler{svc: svc}
}

// Registrar POST /v1/compras: stock in, average cost recomputed per line.
func (h *ComprasHandler) Registrar(c *gin.Context) {
	usuarioID, ok := usuarioActual(c)
	if !ok {
		return
	}
	var req dto.RegistrarEntradaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarEntrada(c.Request.Context(), usuarioID, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ComprasHandler) Listar(c *gin.Context) {
	var filter dto.EntradaCompraFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListarEntradas(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComprasHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerEntrada(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
