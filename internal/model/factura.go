package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	FacturaPendiente  = "PENDIENTE"
	FacturaCompletada = "COMPLETADA"
	FacturaAnulada    = "ANULADA"
)

// Factura is a sales invoice. Subtotal and Total are derived from the lines
// and rewritten on every line change.
type Factura struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	NumeroFactura string          `gorm:"size:50;uniqueIndex;not null"`
	ClienteID     *uuid.UUID      `gorm:"type:uuid;index"`
	ClienteNombre *string         `gorm:"size:200"`
	VendedorID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	FechaVenta    time.Time       `gorm:"not null;index"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descuento     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado        string          `gorm:"size:20;not null;index"`
	Observaciones *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Cliente  *Cliente         `gorm:"foreignKey:ClienteID;constraint:OnDelete:RESTRICT"`
	Vendedor *Usuario         `gorm:"foreignKey:VendedorID;constraint:OnDelete:RESTRICT"`
	Detalles []DetalleFactura `gorm:"foreignKey:FacturaID;constraint:OnDelete:CASCADE"`
}

func (Factura) TableName() string { return "facturas" }

func (f *Factura) BeforeCreate(*gorm.DB) error {
	asignarID(&f.ID)
	return nil
}

// NombreCliente returns the registered customer's name or the walk-in name.
func (f *Factura) NombreCliente() string {
	if f.Cliente != nil {
		return f.Cliente.Nombre
	}
	if f.ClienteNombre != nil {
		return *f.ClienteNombre
	}
	return "Consumidor final"
}

// DetalleFactura is one product line of a Factura. PrecioUnitario is the sale
// price captured when the line was added.
type DetalleFactura struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	FacturaID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_factura_producto"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_factura_producto"`
	Cantidad       int             `gorm:"not null;check:chk_detalles_factura_cantidad,cantidad >= 1"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// StockAplicado is set when the line's quantity was taken from stock and
	// cleared when it is given back. Reversal only acts on set lines.
	StockAplicado bool `gorm:"not null"`
	CreatedAt     time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:RESTRICT"`
}

func (DetalleFactura) TableName() string { return "detalles_factura" }

func (d *DetalleFactura) BeforeCreate(*gorm.DB) error {
	asignarID(&d.ID)
	return nil
}
