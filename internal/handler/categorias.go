package handler

import (
	"net/http"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/service"

	"github.com/gin-gonic/gin"
)

type CategoriasHandler struct{ svc service.CategoriaService }

func NewCategoriasHandler(svc service.CategoriaService) *CategoriasHandler {
	return &CategoriasHandler{svc: svc}
}

// Crear POST /v1/categorias
func (h *CategoriasHandler) Crear(c *gin.Context) {
	var req dto.CrearCategoriaRequest
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

// Listar GET /v1/categorias
func (h *CategoriasHandler) Listar(c *gin.Context) {
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

// ObtenerPorID GET /v1/categorias/:id
func (h *CategoriasHandler) ObtenerPorID(c *gin.Context) {
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

// Actualizar PUT /v1/categorias/:id
func (h *CategoriasHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarCategoriaRequest
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

// Eliminar DELETE /v1/categorias/:id
func (h *CategoriasHandler) Eliminar(c *gin.Context) {
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
