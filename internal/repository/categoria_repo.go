package repository

import (
	"context"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoriaRepository defines CRUD operations for Categoria.
type CategoriaRepository interface {
	Crear(ctx context.Context, c *model.Categoria) error
	Listar(ctx context.Context, filter dto.CatalogoFilter) ([]model.Categoria, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Categoria, error)
	ObtenerPorNombre(ctx context.Context, nombre string) (*model.Categoria, error)
	Actualizar(ctx context.Context, c *model.Categoria) error
	Eliminar(ctx context.Context, id uuid.UUID) error
	// ContarReferencias counts product names and products filed under the category.
	ContarReferencias(ctx context.Context, id uuid.UUID) (int64, error)
}

type categoriaRepository struct{ db *gorm.DB }

func NewCategoriaRepository(db *gorm.DB) CategoriaRepository {
	return &categoriaRepository{db: db}
}

func (r *categoriaRepository) Crear(ctx context.Context, c *model.Categoria) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoriaRepository) Listar(ctx context.Context, filter dto.CatalogoFilter) ([]model.Categoria, error) {
	var list []model.Categoria
	q := filtrarActivo(r.db.WithContext(ctx), "activa", filter.Activo, "all")
	err := q.Order("nombre asc").Find(&list).Error
	return list, err
}

func (r *categoriaRepository) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Categoria, error) {
	var c model.Categoria
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoriaRepository) ObtenerPorNombre(ctx context.Context, nombre string) (*model.Categoria, error) {
	var c model.Categoria
	err := r.db.WithContext(ctx).Where("lower(nombre) = lower(?)", nombre).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoriaRepository) Actualizar(ctx context.Context, c *model.Categoria) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *categoriaRepository) Eliminar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Categoria{}, "id = ?", id).Error
}

func (r *categoriaRepository) ContarReferencias(ctx context.Context, id uuid.UUID) (int64, error) {
	var nombres, productos int64
	if err := r.db.WithContext(ctx).Model(&model.NombreProducto{}).
		Where("categoria_id = ?", id).Count(&nombres).Error; err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("categoria_id = ?", id).Count(&productos).Error; err != nil {
		return 0, err
	}
	return nombres + productos, nil
}
