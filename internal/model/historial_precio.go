package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	MotivoPrecioEntradaCompra = "entrada_compra"
	MotivoPrecioManual        = "manual"
)

// HistorialPrecio registra cada cambio de costo o precio de venta de un producto.
// Los registros son inmutables: nunca se eliminan ni modifican.
type HistorialPrecio struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductoID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	CostoAntes         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostoDespues       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VentaAntes         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VentaDespues       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PorcentajeAplicado decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Motivo             string          `gorm:"size:30;not null"` // entrada_compra | manual
	// ReferenciaID is the EntradaCompra that triggered a recosting.
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:RESTRICT"`
}

func (HistorialPrecio) TableName() string { return "historial_precios" }

func (h *HistorialPrecio) BeforeCreate(*gorm.DB) error {
	asignarID(&h.ID)
	return nil
}
