package handler

import (
	"net/http"
	"time"

	"sistemainventario/internal/apierror"
	"sistemainventario/internal/service"

	"github.com/gin-gonic/gin"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportesHandler struct {
	svc   service.ReporteService
	ahora func() time.Time
}

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc, ahora: time.Now}
}

// VentasDia GET /v1/reportes/ventas-dia?fecha=2006-01-02 (default: today)
func (h *ReportesHandler) VentasDia(c *gin.Context) {
	fecha := h.ahora()
	if raw := c.Query("fecha"); raw != "" {
		f, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"fecha": "datetime"}))
			return
		}
		fecha = f
	}
	resp, err := h.svc.VentasDelDia(c.Request.Context(), fecha)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PorAgotarse GET /v1/reportes/por-agotarse
func (h *ReportesHandler) PorAgotarse(c *gin.Context) {
	categoriaID, ok := parseIDQuery(c, "categoria_id")
	if !ok {
		return
	}
	resp, err := h.svc.PorAgotarse(c.Request.Context(), categoriaID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Inventario GET /v1/reportes/inventario
func (h *ReportesHandler) Inventario(c *gin.Context) {
	categoriaID, ok := parseIDQuery(c, "categoria_id")
	if !ok {
		return
	}
	resp, err := h.svc.Valorizacion(c.Request.Context(), categoriaID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// InventarioXLSX GET /v1/reportes/inventario.xlsx
func (h *ReportesHandler) InventarioXLSX(c *gin.Context) {
	categoriaID, ok := parseIDQuery(c, "categoria_id")
	if !ok {
		return
	}
	c.Header("Content-Type", contentTypeXLSX)
	c.Header("Content-Disposition", "attachment; filename=valorizacion_"+h.ahora().Format("20060102")+".xlsx")
	if err := h.svc.ExportarValorizacionXLSX(c.Request.Context(), c.Writer, categoriaID); err != nil {
		responderError(c, err)
	}
}
