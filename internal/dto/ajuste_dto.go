package dto

import "time"

type RegistrarAjusteRequest struct {
	ProductoID    string `json:"producto_id"    validate:"required,uuid"`
	TipoAjuste    string `json:"tipo_ajuste"    validate:"required,oneof=ENTRADA SALIDA CORRECCION"`
	CantidadNueva *int   `json:"cantidad_nueva" validate:"required,min=0"`
	Motivo        string `json:"motivo"         validate:"required,max=500"`
}

type AjusteFilter struct {
	ProductoID string `form:"producto_id" validate:"omitempty,uuid"`
	TipoAjuste string `form:"tipo_ajuste" validate:"omitempty,oneof=ENTRADA SALIDA CORRECCION"`
	Origen     string `form:"origen"      validate:"omitempty,oneof=manual compra venta anulacion"`
	Desde      string `form:"desde"       validate:"omitempty,datetime=2006-01-02"`
	Hasta      string `form:"hasta"       validate:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type AjusteResponse struct {
	ID               string    `json:"id"`
	ProductoID       string    `json:"producto_id"`
	Codigo           string    `json:"codigo,omitempty"`
	TipoAjuste       string    `json:"tipo_ajuste"`
	CantidadAnterior int       `json:"cantidad_anterior"`
	CantidadNueva    int       `json:"cantidad_nueva"`
	Diferencia       int       `json:"diferencia"`
	Motivo           string    `json:"motivo"`
	Origen           string    `json:"origen"`
	ReferenciaID     *string   `json:"referencia_id,omitempty"`
	UsuarioRegistro  string    `json:"usuario_registro"`
	FechaAjuste      time.Time `json:"fecha_ajuste"`
}

type AjusteListResponse struct {
	Data  []AjusteResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
