package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ClienteRegular   = "REGULAR"
	ClienteFrecuente = "FRECUENTE"
	ClienteMayorista = "MAYORISTA"
)

// Cliente is a registered customer. Walk-in customers are recorded on the
// invoice by name only.
type Cliente struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre      string    `gorm:"size:200;not null;index"`
	Cedula      *string   `gorm:"size:20;uniqueIndex"`
	Telefono    *string   `gorm:"size:17"`
	Email       *string
	Direccion   *string
	TipoCliente string `gorm:"size:20;not null"`
	Activo      bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Cliente) TableName() string { return "clientes" }

func (c *Cliente) BeforeCreate(*gorm.DB) error {
	asignarID(&c.ID)
	return nil
}
