package service

import (
	"context"
	"errors"
	"strings"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/model"
	"sistemainventario/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoriaService defines business operations for product categories.
type CategoriaService interface {
	Crear(ctx context.Context, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error)
	Listar(ctx context.Context, filter dto.CatalogoFilter) ([]dto.CategoriaResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (dto.CategoriaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

// mapCategoria converts a model to a DTO response.
func mapCategoria(c model.Categoria) dto.CategoriaResponse {
	return dto.CategoriaResponse{
		ID:          c.ID,
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		Activa:      c.Activa,
	}
}

// nombreLibre fails when another category already uses nombre (case-insensitive).
func (s *categoriaService) nombreLibre(ctx context.Context, nombre string, propio uuid.UUID) error {
	existing, err := s.repo.ObtenerPorNombre(ctx, nombre)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != propio {
		return errValidacion("nombre", "ya existe una categoría con ese nombre")
	}
	return nil
}

func (s *categoriaService) Crear(ctx context.Context, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return dto.CategoriaResponse{}, errValidacion("nombre", "es obligatorio")
	}
	if err := s.nombreLibre(ctx, nombre, uuid.Nil); err != nil {
		return dto.CategoriaResponse{}, err
	}

	c := &model.Categoria{
		Nombre:      nombre,
		Descripcion: req.Descripcion,
		Activa:      true,
	}
	if err := s.repo.Crear(ctx, c); err != nil {
		if esDuplicado(err) {
			return dto.CategoriaResponse{}, errValidacion("nombre", "ya existe una categoría con ese nombre")
		}
		return dto.CategoriaResponse{}, err
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Listar(ctx context.Context, filter dto.CatalogoFilter) ([]dto.CategoriaResponse, error) {
	list, err := s.repo.Listar(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoriaResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategoria(c))
	}
	return result, nil
}

func (s *categoriaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (dto.CategoriaResponse, error) {
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return dto.CategoriaResponse{}, traducirErrorDB(err)
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error) {
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return dto.CategoriaResponse{}, traducirErrorDB(err)
	}

	if req.Nombre != nil {
		nombre := strings.TrimSpace(*req.Nombre)
		if !strings.EqualFold(nombre, c.Nombre) {
			if err := s.nombreLibre(ctx, nombre, id); err != nil {
				return dto.CategoriaResponse{}, err
			}
		}
		c.Nombre = nombre
	}
	if req.Descripcion != nil {
		c.Descripcion = req.Descripcion
	}
	if req.Activa != nil {
		c.Activa = *req.Activa
	}

	if err := s.repo.Actualizar(ctx, c); err != nil {
		if esDuplicado(err) {
			return dto.CategoriaResponse{}, errValidacion("nombre", "ya existe una categoría con ese nombre")
		}
		return dto.CategoriaResponse{}, err
	}
	return mapCategoria(*c), nil
}

// Eliminar removes a category nothing is filed under. Categories with
// products or product names can only be deactivated.
func (s *categoriaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.ObtenerPorID(ctx, id); err != nil {
		return traducirErrorDB(err)
	}
	n, err := s.repo.ContarReferencias(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrEnUso
	}
	return traducirErrorBorrado(s.repo.Eliminar(ctx, id))
}
