package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AjusteEntrada    = "ENTRADA"
	AjusteSalida     = "SALIDA"
	AjusteCorreccion = "CORRECCION"
)

// Origen of an adjustment row. Only OrigenManual rows drive stock; the rest
// are audit entries written by the coordinator after it already moved stock.
const (
	OrigenManual    = "manual"
	OrigenCompra    = "compra"
	OrigenVenta     = "venta"
	OrigenAnulacion = "anulacion"
)

// AjusteInventario records a stock change with its before/after snapshot.
type AjusteInventario struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductoID       uuid.UUID `gorm:"type:uuid;not null;index"`
	TipoAjuste       string    `gorm:"size:20;not null"`
	CantidadAnterior int       `gorm:"not null;check:chk_ajustes_cantidad_anterior,cantidad_anterior >= 0"`
	CantidadNueva    int       `gorm:"not null;check:chk_ajustes_cantidad_nueva,cantidad_nueva >= 0"`
	Diferencia       int       `gorm:"not null"`
	Motivo           string    `gorm:"not null"`
	Origen           string    `gorm:"size:20;not null;index"`
	// ReferenciaID points at the EntradaCompra or Factura that caused the row.
	ReferenciaID    *uuid.UUID `gorm:"type:uuid;index"`
	UsuarioRegistro uuid.UUID  `gorm:"type:uuid;not null;index"`
	FechaAjuste     time.Time  `gorm:"not null;index"`

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:RESTRICT"`
	Usuario  *Usuario  `gorm:"foreignKey:UsuarioRegistro;constraint:OnDelete:RESTRICT"`
}

func (AjusteInventario) TableName() string { return "ajustes_inventario" }

func (a *AjusteInventario) BeforeCreate(*gorm.DB) error {
	asignarID(&a.ID)
	return nil
}

// TipoAjusteValido reports whether tipo is one of the adjustment kinds.
func TipoAjusteValido(tipo string) bool {
	switch tipo {
	case AjusteEntrada, AjusteSalida, AjusteCorreccion:
		return true
	}
	return false
}
