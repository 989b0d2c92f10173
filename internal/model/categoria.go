package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Categoria represents a product category used to classify products.
type Categoria struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre      string    `gorm:"size:100;uniqueIndex;not null"`
	Descripcion *string
	Activa      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (Categoria) TableName() string { return "categorias" }

func (c *Categoria) BeforeCreate(*gorm.DB) error {
	asignarID(&c.ID)
	return nil
}
