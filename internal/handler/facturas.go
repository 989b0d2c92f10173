package handler

import (
	"net/http"
	"path/filepath"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/service"

	"github.com/gin-gonic/gin"
)

type FacturasHandler struct{ svc service.FacturaService }

func NewFacturasHandler(svc service.FacturaService) *FacturasHandler {
	return &FacturasHandler{svc: svc}
}

// Crear godoc
// @Summary      Registrar factura de venta
// @Description  Crea la factura y, si queda COMPLETADA, descuenta el stock de todas las líneas o de ninguna.
// @Tags         facturas
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body     dto.CrearFacturaRequest  true  "Factura"
// @Success      201   {object} dto.FacturaResponse
// @Failure      409   {object} apierror.StockInsuficienteError
// @Failure      422   {object} apierror.ValidationError
// @Router       /v1/facturas [post]
func (h *FacturasHandler) Crear(c *gin.Context) {
	vendedorID, ok := usuarioActual(c)
	if !ok {
		return
	}
	var req dto.CrearFacturaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearFactura(c.Request.Context(), vendedorID, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *FacturasHandler) Listar(c *gin.Context) {
	var filter dto.FacturaFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListarFacturas(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FacturasHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerFactura(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Anular POST /v1/facturas/:id/anular
func (h *FacturasHandler) Anular(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	usuarioID, ok := usuarioActual(c)
	if !ok {
		return
	}
	resp, err := h.svc.AnularFactura(c.Request.Context(), id, usuarioID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Completar POST /v1/facturas/:id/completar
func (h *FacturasHandler) Completar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	usuarioID, ok := usuarioActual(c)
	if !ok {
		return
	}
	resp, err := h.svc.CompletarFactura(c.Request.Context(), id, usuarioID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AgregarLinea POST /v1/facturas/:id/lineas
func (h *FacturasHandler) AgregarLinea(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	usuarioID, ok := usuarioActual(c)
	if !ok {
		return
	}
	var req dto.LineaFacturaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarLinea(c.Request.Context(), id, usuarioID, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarLinea DELETE /v1/facturas/:id/lineas/:producto_id
func (h *FacturasHandler) EliminarLinea(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	productoID, ok := parseID(c, "producto_id")
	if !ok {
		return
	}
	usuarioID, ok := usuarioActual(c)
	if !ok {
		return
	}
	resp, err := h.svc.EliminarLinea(c.Request.Context(), id, productoID, usuarioID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PDF GET /v1/facturas/:id/pdf
func (h *FacturasHandler) PDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	path, err := h.svc.GenerarPDF(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
