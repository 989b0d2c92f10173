package handler

import (
	"net/http"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/service"

	"github.com/gin-gonic/gin"
)

type AjustesHandler struct{ svc service.AjusteService }

func NewAjustesHandler(svc service.AjusteService) *AjustesHandler {
	return &AjustesHandler{svc: svc}
}

// Registrar POST /v1/ajustes sets a product's stock to cantidad_nueva.
func (h *AjustesHandler) Registrar(c *gin.Context) {
	usuarioID, ok := usuarioActual(c)
	if !ok {
		return
	}
	var req dto.RegistrarAjusteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarAjuste(c.Request.Context(), usuarioID, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar GET /v1/ajustes, manual adjustments and the audit trail alike.
func (h *AjustesHandler) Listar(c *gin.Context) {
	var filter dto.AjusteFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListarAjustes(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
