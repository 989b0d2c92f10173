package handler

import (
	"net/http"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/service"

	"github.com/gin-gonic/gin"
)

type NombresProductoHandler struct{ svc service.NombreProductoService }

func NewNombresProductoHandler(svc service.NombreProductoService) *NombresProductoHandler {
	return &NombresProductoHandler{svc: svc}
}

// Crear POST /v1/nombres-producto
func (h *NombresProductoHandler) Crear(c *gin.Context) {
	var req dto.CrearNombreProductoRequest
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

// Listar GET /v1/nombres-producto
func (h *NombresProductoHandler) Listar(c *gin.Context) {
	var filter dto.CatalogoFilter
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

// ObtenerPorID GET /v1/nombres-producto/:id
func (h *NombresProductoHandler) ObtenerPorID(c *gin.Context) {
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

// Actualizar PUT /v1/nombres-producto/:id
func (h *NombresProductoHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarNombreProductoRequest
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

// Eliminar DELETE /v1/nombres-producto/:id
func (h *NombresProductoHandler) Eliminar(c *gin.Context) {
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
