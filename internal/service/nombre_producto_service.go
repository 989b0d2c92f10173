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

// NombreProductoService manages the shared display names products point at.
type NombreProductoService interface {
	Crear(ctx context.Context, req dto.CrearNombreProductoRequest) (dto.NombreProductoResponse, error)
	Listar(ctx context.Context, filter dto.CatalogoFilter) ([]dto.NombreProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (dto.NombreProductoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarNombreProductoRequest) (dto.NombreProductoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type nombreProductoService struct {
	repo       repository.NombreProductoRepository
	categorias repository.CategoriaRepository
}

func NewNombreProductoService(repo repository.NombreProductoRepository, categorias repository.CategoriaRepository) NombreProductoService {
	return &nombreProductoService{repo: repo, categorias: categorias}
}

const unidadPorDefecto = "unidad"

func mapNombreProducto(n model.NombreProducto) dto.NombreProductoResponse {
	resp := dto.NombreProductoResponse{
		ID:           n.ID,
		Nombre:       n.Nombre,
		CategoriaID:  n.CategoriaID,
		UnidadMedida: n.UnidadMedida,
		Descripcion:  n.Descripcion,
		Activo:       n.Activo,
	}
	if n.Categoria != nil {
		resp.Categoria = n.Categoria.Nombre
	}
	return resp
}

func (s *nombreProductoService) categoriaExiste(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categorias.ObtenerPorID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errValidacion("categoria_id", "la categoría no existe")
		}
		return err
	}
	return nil
}

func errNombreDuplicado() error {
	return errValidacion("nombre", "ya existe ese nombre con la misma categoría y unidad")
}

func (s *nombreProductoService) Crear(ctx context.Context, req dto.CrearNombreProductoRequest) (dto.NombreProductoResponse, error) {
	categoriaID, err := parseUUID("categoria_id", req.CategoriaID)
	if err != nil {
		return dto.NombreProductoResponse{}, err
	}
	if err := s.categoriaExiste(ctx, categoriaID); err != nil {
		return dto.NombreProductoResponse{}, err
	}
	unidad := strings.TrimSpace(req.UnidadMedida)
	if unidad == "" {
		unidad = unidadPorDefecto
	}

	n := &model.NombreProducto{
		Nombre:       strings.TrimSpace(req.Nombre),
		CategoriaID:  categoriaID,
		UnidadMedida: unidad,
		Descripcion:  req.Descripcion,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		if esDuplicado(err) {
			return dto.NombreProductoResponse{}, errNombreDuplicado()
		}
		return dto.NombreProductoResponse{}, traducirErrorDB(err)
	}
	return s.ObtenerPorID(ctx, n.ID)
}

func (s *nombreProductoService) Listar(ctx context.Context, filter dto.CatalogoFilter) ([]dto.NombreProductoResponse, error) {
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := make([]dto.NombreProductoResponse, 0, len(list))
	for _, n := range list {
		result = append(result, mapNombreProducto(n))
	}
	return result, nil
}

func (s *nombreProductoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (dto.NombreProductoResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.NombreProductoResponse{}, traducirErrorDB(err)
	}
	return mapNombreProducto(*n), nil
}

func (s *nombreProductoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarNombreProductoRequest) (dto.NombreProductoResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.NombreProductoResponse{}, traducirErrorDB(err)
	}
	if req.Nombre != nil {
		n.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.CategoriaID != nil {
		categoriaID, err := parseUUID("categoria_id", *req.CategoriaID)
		if err != nil {
			return dto.NombreProductoResponse{}, err
		}
		if categoriaID != n.CategoriaID {
			if err := s.categoriaExiste(ctx, categoriaID); err != nil {
				return dto.NombreProductoResponse{}, err
			}
			// products keep their own categoria_id; moving a name under them would split the pair
			enUso, err := s.repo.ContarProductos(ctx, id)
			if err != nil {
				return dto.NombreProductoResponse{}, err
			}
			if enUso > 0 {
				return dto.NombreProductoResponse{}, errValidacion("categoria_id", "el nombre tiene productos asociados")
			}
		}
		n.CategoriaID = categoriaID
		n.Categoria = nil
	}
	if req.UnidadMedida != nil {
		n.UnidadMedida = strings.TrimSpace(*req.UnidadMedida)
		if n.UnidadMedida == "" {
			n.UnidadMedida = unidadPorDefecto
		}
	}
	if req.Descripcion != nil {
		n.Descripcion = req.Descripcion
	}
	if req.Activo != nil {
		n.Activo = *req.Activo
	}

	if err := s.repo.Update(ctx, n); err != nil {
		if esDuplicado(err) {
			return dto.NombreProductoResponse{}, errNombreDuplicado()
		}
		return dto.NombreProductoResponse{}, traducirErrorDB(err)
	}
	return s.ObtenerPorID(ctx, id)
}

func (s *nombreProductoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return traducirErrorDB(err)
	}
	n, err := s.repo.ContarProductos(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrEnUso
	}
	return traducirErrorBorrado(s.repo.Delete(ctx, id))
}
