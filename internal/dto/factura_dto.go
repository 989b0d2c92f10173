package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type LineaFacturaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"min=1"`
}

// CrearFacturaRequest: ClienteID and ClienteNombre are mutually exclusive;
// with neither the invoice goes to "Consumidor final".
type CrearFacturaRequest struct {
	NumeroFactura *string               `json:"numero_factura" validate:"omitempty,max=50"`
	ClienteID     *string               `json:"cliente_id"     validate:"omitempty,uuid"`
	ClienteNombre *string               `json:"cliente_nombre" validate:"omitempty,max=200"`
	FechaVenta    *time.Time            `json:"fecha_venta"`
	Descuento     decimal.Decimal       `json:"descuento"      validate:"min=0"`
	Estado        string                `json:"estado"         validate:"omitempty,oneof=PENDIENTE COMPLETADA"`
	Observaciones *string               `json:"observaciones"`
	Lineas        []LineaFacturaRequest `json:"lineas"         validate:"required,min=1,dive"`
}

type FacturaFilter struct {
	Estado    string `form:"estado"     validate:"omitempty,oneof=PENDIENTE COMPLETADA ANULADA"`
	Numero    string `form:"numero"`
	ClienteID string `form:"cliente_id" validate:"omitempty,uuid"`
	Desde     string `form:"desde"      validate:"omitempty,datetime=2006-01-02"`
	Hasta     string `form:"hasta"      validate:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type DetalleFacturaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Codigo         string          `json:"codigo"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type FacturaResponse struct {
	ID            string                   `json:"id"`
	NumeroFactura string                   `json:"numero_factura"`
	ClienteID     *string                  `json:"cliente_id,omitempty"`
	Cliente       string                   `json:"cliente"`
	VendedorID    string                   `json:"vendedor_id"`
	FechaVenta    time.Time                `json:"fecha_venta"`
	Subtotal      decimal.Decimal          `json:"subtotal"`
	Descuento     decimal.Decimal          `json:"descuento"`
	Total         decimal.Decimal          `json:"total"`
	Estado        string                   `json:"estado"`
	Observaciones *string                  `json:"observaciones,omitempty"`
	Detalles      []DetalleFacturaResponse `json:"detalles"`
}

type FacturaListResponse struct {
	Data  []FacturaResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
