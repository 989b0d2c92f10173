package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Codigo                     string          `json:"codigo"                       validate:"required,max=50"`
	NombreProductoID           string          `json:"nombre_producto_id"           validate:"required,uuid"`
	CategoriaID                string          `json:"categoria_id"                 validate:"required,uuid"`
	Descripcion                *string         `json:"descripcion"`
	PrecioCompra               decimal.Decimal `json:"precio_compra"                validate:"min=0"`
	PrecioVenta                decimal.Decimal `json:"precio_venta"                 validate:"min=0"`
	PorcentajeGanancia         decimal.Decimal `json:"porcentaje_ganancia"          validate:"min=0,max=999.99"`
	ActualizarPrecioAutomatico bool            `json:"actualizar_precio_automatico"`
	StockInicial               int             `json:"stock_inicial"                validate:"min=0"`
	StockMinimo                int             `json:"stock_minimo"                 validate:"min=0"`
}

// ActualizarProductoRequest carries catalog fields only: stock and average
// cost are owned by the ledgers and cannot be edited here.
type ActualizarProductoRequest struct {
	Codigo                     *string          `json:"codigo"                       validate:"omitempty,max=50"`
	NombreProductoID           *string          `json:"nombre_producto_id"           validate:"omitempty,uuid"`
	CategoriaID                *string          `json:"categoria_id"                 validate:"omitempty,uuid"`
	Descripcion                *string          `json:"descripcion"`
	PrecioCompra               *decimal.Decimal `json:"precio_compra"                validate:"omitempty,min=0"`
	PrecioVenta                *decimal.Decimal `json:"precio_venta"                 validate:"omitempty,min=0"`
	PorcentajeGanancia         *decimal.Decimal `json:"porcentaje_ganancia"          validate:"omitempty,min=0,max=999.99"`
	ActualizarPrecioAutomatico *bool            `json:"actualizar_precio_automatico"`
	StockMinimo                *int             `json:"stock_minimo"                 validate:"omitempty,min=0"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Codigo      string `form:"codigo"`
	Nombre      string `form:"nombre"`
	CategoriaID string `form:"categoria_id" validate:"omitempty,uuid"`
	// Activo: "true" (default) | "false" | "all"
	Activo      string `form:"activo"`
	PorAgotarse bool   `form:"por_agotarse"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID                         string          `json:"id"`
	Codigo                     string          `json:"codigo"`
	Nombre                     string          `json:"nombre"`
	NombreProductoID           string          `json:"nombre_producto_id"`
	CategoriaID                string          `json:"categoria_id"`
	Categoria                  string          `json:"categoria,omitempty"`
	UnidadMedida               string          `json:"unidad_medida"`
	Descripcion                *string         `json:"descripcion"`
	PrecioCompra               decimal.Decimal `json:"precio_compra"`
	PrecioVenta                decimal.Decimal `json:"precio_venta"`
	CostoPromedio              decimal.Decimal `json:"costo_promedio"`
	PorcentajeGanancia         decimal.Decimal `json:"porcentaje_ganancia"`
	ActualizarPrecioAutomatico bool            `json:"actualizar_precio_automatico"`
	StockActual                int             `json:"stock_actual"`
	StockMinimo                int             `json:"stock_minimo"`
	PorAgotarse                bool            `json:"por_agotarse"`
	ValorInventario            decimal.Decimal `json:"valor_inventario"`
	Activo                     bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data       []ProductoResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// SnapshotProductoResponse is the point-of-sale view of a product.
type SnapshotProductoResponse struct {
	ProductoID  string          `json:"producto_id"`
	Codigo      string          `json:"codigo"`
	Nombre      string          `json:"nombre"`
	PrecioVenta decimal.Decimal `json:"precio_venta"`
	Stock       int             `json:"stock"`
	Unidad      string          `json:"unidad"`
}
