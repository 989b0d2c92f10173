package dto

import "github.com/shopspring/decimal"

// HistorialPrecioFilter narrows GET /v1/productos/:id/historial-precios.
type HistorialPrecioFilter struct {
	Motivo string `form:"motivo" validate:"omitempty,oneof=entrada_compra manual"`
	Desde  string `form:"desde"  validate:"omitempty,datetime=2006-01-02"`
	Hasta  string `form:"hasta"  validate:"omitempty,datetime=2006-01-02"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// HistorialPrecioItem is one cost or sale-price change. EntradaCompraID is set
// when Motivo is entrada_compra.
type HistorialPrecioItem struct {
	ID                 string          `json:"id"`
	Motivo             string          `json:"motivo"`
	CostoAntes         decimal.Decimal `json:"costo_antes"`
	CostoDespues       decimal.Decimal `json:"costo_despues"`
	VentaAntes         decimal.Decimal `json:"venta_antes"`
	VentaDespues       decimal.Decimal `json:"venta_despues"`
	PorcentajeAplicado decimal.Decimal `json:"porcentaje_aplicado"`
	EntradaCompraID    *string         `json:"entrada_compra_id,omitempty"`
	Fecha              string          `json:"fecha"`
}

type HistorialPrecioListResponse struct {
	ProductoID string                `json:"producto_id"`
	Codigo     string                `json:"codigo"`
	Data       []HistorialPrecioItem `json:"data"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
}
