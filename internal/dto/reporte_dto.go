package dto

import "github.com/shopspring/decimal"

type VentasDiaResponse struct {
	Fecha            string          `json:"fecha"`
	CantidadFacturas int             `json:"cantidad_facturas"`
	Total            decimal.Decimal `json:"total"`
}

type ProductoPorAgotarseResponse struct {
	ProductoID  string `json:"producto_id"`
	Codigo      string `json:"codigo"`
	Nombre      string `json:"nombre"`
	Categoria   string `json:"categoria"`
	StockActual int    `json:"stock_actual"`
	StockMinimo int    `json:"stock_minimo"`
}

type ValorizacionItem struct {
	ProductoID    string          `json:"producto_id"`
	Codigo        string          `json:"codigo"`
	Nombre        string          `json:"nombre"`
	Categoria     string          `json:"categoria"`
	StockActual   int             `json:"stock_actual"`
	CostoUnitario decimal.Decimal `json:"costo_unitario"`
	Valor         decimal.Decimal `json:"valor"`
}

type ValorizacionResponse struct {
	Items []ValorizacionItem `json:"items"`
	Total decimal.Decimal    `json:"total"`
}
