package dto

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
}

type UsuarioResponse struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Nombre   string  `json:"nombre"`
	Email    *string `json:"email,omitempty"`
	Rol      string  `json:"rol"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"` // seconds
	User        UsuarioResponse `json:"user"`
}
