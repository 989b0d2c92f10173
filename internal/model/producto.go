package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Producto is a physical stock-keeping unit.
//
// StockActual is only written by the stock coordinator; CostoPromedio and
// PrecioCompra are only written by the costing engine once purchase lines
// exist. Catalog edits touch neither.
type Producto struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Codigo           string          `gorm:"size:50;uniqueIndex;not null"`
	NombreProductoID uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoriaID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Descripcion      *string
	PrecioCompra     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioVenta      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostoPromedio    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// PorcentajeGanancia is the markup applied over CostoPromedio when
	// ActualizarPrecioAutomatico is set.
	PorcentajeGanancia         decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	ActualizarPrecioAutomatico bool            `gorm:"not null"`
	StockActual                int             `gorm:"not null;check:chk_productos_stock_actual,stock_actual >= 0"`
	StockMinimo                int             `gorm:"not null;check:chk_productos_stock_minimo,stock_minimo >= 0"`
	Activo                     bool            `gorm:"not null;default:true"`
	CreatedAt                  time.Time
	UpdatedAt                  time.Time

	NombreProducto *NombreProducto `gorm:"foreignKey:NombreProductoID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Categoria      *Categoria      `gorm:"foreignKey:CategoriaID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (Producto) TableName() string { return "productos" }

func (p *Producto) BeforeCreate(*gorm.DB) error {
	asignarID(&p.ID)
	return nil
}

// Nombre returns the display name, or the code when the name was not loaded.
func (p *Producto) Nombre() string {
	if p.NombreProducto != nil {
		return p.NombreProducto.Nombre
	}
	return p.Codigo
}

// UnidadMedida returns the unit of the shared name entry, "unidad" when not loaded.
func (p *Producto) UnidadMedida() string {
	if p.NombreProducto != nil {
		return p.NombreProducto.UnidadMedida
	}
	return "unidad"
}

// EstaPorAgotarse reports whether the product needs replenishment.
func (p *Producto) EstaPorAgotarse() bool {
	return p.StockActual <= p.StockMinimo
}

// TieneStockSuficiente reports whether cantidad units can be taken from stock.
func (p *Producto) TieneStockSuficiente(cantidad int) bool {
	return p.StockActual >= cantidad
}

// CostoUnitario is the cost basis used for valuation: the weighted average
// when there is one, the last purchase price otherwise.
func (p *Producto) CostoUnitario() decimal.Decimal {
	if p.CostoPromedio.IsPositive() {
		return p.CostoPromedio
	}
	return p.PrecioCompra
}

// ValorInventario is the current stock valued at CostoUnitario.
func (p *Producto) ValorInventario() decimal.Decimal {
	return decimal.NewFromInt(int64(p.StockActual)).Mul(p.CostoUnitario()).Round(2)
}
