package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NombreProducto is a shared display-name entry. Several physical products
// (different codes, suppliers or presentations) may point at the same one.
type NombreProducto struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre       string    `gorm:"size:200;not null;uniqueIndex:idx_nombre_categoria_unidad"`
	CategoriaID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_nombre_categoria_unidad"`
	UnidadMedida string    `gorm:"size:20;not null;uniqueIndex:idx_nombre_categoria_unidad"`
	Descripcion  *string
	Activo       bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Categoria *Categoria `gorm:"foreignKey:CategoriaID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (NombreProducto) TableName() string { return "nombres_producto" }

func (n *NombreProducto) BeforeCreate(*gorm.DB) error {
	asignarID(&n.ID)
	return nil
}
