package dto

import "github.com/google/uuid"

// ── Request DTOs ──────────────────────────────────────────────────────────────

type CrearCategoriaRequest struct {
	Nombre      string  `json:"nombre"      validate:"required,min=2,max=100"`
	Descripcion *string `json:"descripcion"`
}

type ActualizarCategoriaRequest struct {
	Nombre      *string `json:"nombre"      validate:"omitempty,min=2,max=100"`
	Descripcion *string `json:"descripcion"`
	Activa      *bool   `json:"activa"`
}

type CrearNombreProductoRequest struct {
	Nombre       string  `json:"nombre"        validate:"required,min=2,max=200"`
	CategoriaID  string  `json:"categoria_id"  validate:"required,uuid"`
	UnidadMedida string  `json:"unidad_medida" validate:"omitempty,max=20"`
	Descripcion  *string `json:"descripcion"`
}

type ActualizarNombreProductoRequest struct {
	Nombre       *string `json:"nombre"        validate:"omitempty,min=2,max=200"`
	CategoriaID  *string `json:"categoria_id"  validate:"omitempty,uuid"`
	UnidadMedida *string `json:"unidad_medida" validate:"omitempty,max=20"`
	Descripcion  *string `json:"descripcion"`
	Activo       *bool   `json:"activo"`
}

type CatalogoFilter struct {
	// Activo: "true" | "false" | "all" (default)
	Activo      string `form:"activo"`
	CategoriaID string `form:"categoria_id" validate:"omitempty,uuid"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type CategoriaResponse struct {
	ID          uuid.UUID `json:"id"`
	Nombre      string    `json:"nombre"`
	Descripcion *string   `json:"descripcion,omitempty"`
	Activa      bool      `json:"activa"`
}

type NombreProductoResponse struct {
	ID           uuid.UUID `json:"id"`
	Nombre       string    `json:"nombre"`
	CategoriaID  uuid.UUID `json:"categoria_id"`
	Categoria    string    `json:"categoria,omitempty"`
	UnidadMedida string    `json:"unidad_medida"`
	Descripcion  *string   `json:"descripcion,omitempty"`
	Activo       bool      `json:"activo"`
}
