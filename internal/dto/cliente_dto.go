package dto

type CrearClienteRequest struct {
	Nombre      string  `json:"nombre"       validate:"required,min=2,max=200"`
	Cedula      *string `json:"cedula"       validate:"omitempty,max=20"`
	Telefono    *string `json:"telefono"     validate:"omitempty,max=17"`
	Email       *string `json:"email"        validate:"omitempty,email"`
	Direccion   *string `json:"direccion"`
	TipoCliente string  `json:"tipo_cliente" validate:"omitempty,oneof=REGULAR FRECUENTE MAYORISTA"`
}

type ActualizarClienteRequest struct {
	Nombre      *string `json:"nombre"       validate:"omitempty,min=2,max=200"`
	Cedula      *string `json:"cedula"       validate:"omitempty,max=20"`
	Telefono    *string `json:"telefono"     validate:"omitempty,max=17"`
	Email       *string `json:"email"        validate:"omitempty,email"`
	Direccion   *string `json:"direccion"`
	TipoCliente *string `json:"tipo_cliente" validate:"omitempty,oneof=REGULAR FRECUENTE MAYORISTA"`
	Activo      *bool   `json:"activo"`
}

type ClienteFilter struct {
	Nombre      string `form:"nombre"`
	TipoCliente string `form:"tipo_cliente" validate:"omitempty,oneof=REGULAR FRECUENTE MAYORISTA"`
	// Activo: "true" (default) | "false" | "all"
	Activo string `form:"activo"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type ClienteResponse struct {
	ID          string  `json:"id"`
	Nombre      string  `json:"nombre"`
	Cedula      *string `json:"cedula,omitempty"`
	Telefono    *string `json:"telefono,omitempty"`
	Email       *string `json:"email,omitempty"`
	Direccion   *string `json:"direccion,omitempty"`
	TipoCliente string  `json:"tipo_cliente"`
	Activo      bool    `json:"activo"`
}

type ClienteListResponse struct {
	Data  []ClienteResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
