package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EntradaCompra is a supplier delivery. Its lines are the purchase ledger the
// costing engine reads; once recorded they are never edited.
type EntradaCompra struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	NumeroFactura   string          `gorm:"size:50;not null;index"`
	Proveedor       string          `gorm:"size:200;not null"`
	FechaCompra     time.Time       `gorm:"not null;index"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Observaciones   *string
	UsuarioRegistro uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt       time.Time

	Usuario  *Usuario               `gorm:"foreignKey:UsuarioRegistro;constraint:OnDelete:RESTRICT"`
	Detalles []DetalleEntradaCompra `gorm:"foreignKey:EntradaCompraID;constraint:OnDelete:CASCADE"`
}

func (EntradaCompra) TableName() string { return "entradas_compra" }

func (e *EntradaCompra) BeforeCreate(*gorm.DB) error {
	asignarID(&e.ID)
	return nil
}

// DetalleEntradaCompra is one purchased product inside an EntradaCompra.
type DetalleEntradaCompra struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EntradaCompraID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_entrada_producto"`
	ProductoID      uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_entrada_producto"`
	Cantidad        int             `gorm:"not null;check:chk_detalles_entrada_cantidad,cantidad >= 1"`
	PrecioUnitario  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt       time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:RESTRICT"`
}

func (DetalleEntradaCompra) TableName() string { return "detalles_entrada_compra" }

func (d *DetalleEntradaCompra) BeforeCreate(*gorm.DB) error {
	asignarID(&d.ID)
	return nil
}
