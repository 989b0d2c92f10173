package handler

import (
	"net/http"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/service"

	"github.com/gin-gonic/gin"
)

type ClientesHandler struct{ svc service.ClienteService }

func NewClientesHandler(svc service.ClienteService) *ClientesHandler {
	return &ClientesHandler{svc: svc}
}

func (h *ClientesHandler) Crear(c *gin.Context) {
	var req dto.CrearClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ClientesHandler) Listar(c *gin.Context) {
	var filter dto.ClienteFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientesHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientesHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar DELETE /v1/clientes/:id, 409 when the customer has invoices.
func (h *ClientesHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
