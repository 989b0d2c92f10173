package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"sistemainventario/internal/config"
	"sistemainventario/internal/dto"
	"sistemainventario/internal/middleware"
	"sistemainventario/internal/model"
	"sistemainventario/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// ErrCredencialesInvalidas hides whether the username or the password failed.
var ErrCredencialesInvalidas = errors.New("credenciales invalidas")

const costoBcrypt = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// Sembrar creates or refreshes a user with the given plain password.
	Sembrar(ctx context.Context, username, nombre, password, rol string, email *string) (*model.Usuario, error)
	EmitirToken(u *model.Usuario) (string, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) ttl() time.Duration {
	return time.Duration(s.cfg.JWTExpirationHours) * time.Hour
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, ErrCredencialesInvalidas
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredencialesInvalidas
	}

	token, err := s.EmitirToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.ttl().Seconds()),
		User: dto.UsuarioResponse{
			ID:       user.ID.String(),
			Username: user.Username,
			Nombre:   user.Nombre,
			Email:    user.Email,
			Rol:      user.Rol,
		},
	}, nil
}

func (s *authService) EmitirToken(u *model.Usuario) (string, error) {
	return middleware.GenerarToken(s.cfg.JWTSecret, u.ID, u.Username, u.Rol, s.ttl())
}

func (s *authService) Sembrar(ctx context.Context, username, nombre, password, rol string, email *string) (*model.Usuario, error) {
	switch rol {
	case model.RolAdministrador, model.RolVendedor, model.RolBodeguero:
	default:
		return nil, errValidacion("rol", "debe ser administrador, vendedor o bodeguero")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), costoBcrypt)
	if err != nil {
		return nil, err
	}
	u := &model.Usuario{
		Username:     username,
		Nombre:       nombre,
		Email:        email,
		PasswordHash: string(hash),
		Rol:          rol,
		Activo:       true,
	}
	if err := s.repo.Upsert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
