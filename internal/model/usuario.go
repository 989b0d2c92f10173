package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RolAdministrador = "administrador"
	RolVendedor      = "vendedor"
	RolBodeguero     = "bodeguero"
)

// Usuario stores system users with role-based access.
// Rol: "administrador" | "vendedor" | "bodeguero"
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"size:50;uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string  `gorm:"not null"`
	Rol          string  `gorm:"size:20;not null"`
	Telefono     *string `gorm:"size:17"`
	Activo       bool    `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *Usuario) BeforeCreate(*gorm.DB) error {
	asignarID(&u.ID)
	return nil
}
