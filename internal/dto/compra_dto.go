package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type LineaEntradaRequest struct {
	ProductoID     string          `json:"producto_id"     validate:"required,uuid"`
	Cantidad       int             `json:"cantidad"        validate:"min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
}

type RegistrarEntradaRequest struct {
	Proveedor     string                `json:"proveedor"      validate:"required,max=200"`
	NumeroFactura string                `json:"numero_factura" validate:"required,max=50"`
	FechaCompra   *time.Time            `json:"fecha_compra"`
	Observaciones *string               `json:"observaciones"`
	Lineas        []LineaEntradaRequest `json:"lineas"         validate:"required,min=1,dive"`
}

type EntradaCompraFilter struct {
	Proveedor string `form:"proveedor"`
	Desde     string `form:"desde" validate:"omitempty,datetime=2006-01-02"`
	Hasta     string `form:"hasta" validate:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type DetalleEntradaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Codigo         string          `json:"codigo"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type EntradaCompraResponse struct {
	ID              string                   `json:"id"`
	NumeroFactura   string                   `json:"numero_factura"`
	Proveedor       string                   `json:"proveedor"`
	FechaCompra     time.Time                `json:"fecha_compra"`
	Total           decimal.Decimal          `json:"total"`
	Observaciones   *string                  `json:"observaciones,omitempty"`
	UsuarioRegistro string                   `json:"usuario_registro"`
	Detalles        []DetalleEntradaResponse `json:"detalles"`
}

type EntradaCompraListResponse struct {
	Data  []EntradaCompraResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
