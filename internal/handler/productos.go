package handler

import (
	"net/http"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct{ svc service.ProductoService }

func NewProductosHandler(svc service.ProductoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

// Crear POST /v1/productos
func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
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

// Listar GET /v1/productos
func (h *ProductosHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
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

// PorAgotarse GET /v1/productos/por-agotarse
func (h *ProductosHandler) PorAgotarse(c *gin.Context) {
	categoriaID, ok := parseIDQuery(c, "categoria_id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorAgotarse(c.Request.Context(), categoriaID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) ObtenerPorID(c *gin.Context) {
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

// Actualizar PUT /v1/productos/:id. Stock and average cost are not editable.
func (h *ProductosHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarProductoRequest
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

func (h *ProductosHandler) Desactivar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductosHandler) Reactivar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Reactivar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Eliminar DELETE /v1/productos/:id, 409 once any ledger row references it.
func (h *ProductosHandler) Eliminar(c *gin.Context) {
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

// Snapshot GET /v1/productos/:id/snapshot
func (h *ProductosHandler) Snapshot(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Snapshot(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HistorialPrecios GET /v1/productos/:id/historial-precios, newest first.
// Filters: motivo (entrada_compra | manual), desde, hasta, page, limit.
func (h *ProductosHandler) HistorialPrecios(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var filter dto.HistorialPrecioFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListarHistorial(c.Request.Context(), id, filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
