package repository

import (
	"context"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NombreProductoRepository interface {
	Create(ctx context.Context, n *model.NombreProducto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.NombreProducto, error)
	List(ctx context.Context, filter dto.CatalogoFilter) ([]model.NombreProducto, error)
	Update(ctx context.Context, n *model.NombreProducto) error
	Delete(ctx context.Context, id uuid.UUID) error
	ContarProductos(ctx context.Context, id uuid.UUID) (int64, error)
}

type nombreProductoRepo struct{ db *gorm.DB }

func NewNombreProductoRepository(db *gorm.DB) NombreProductoRepository {
	return &nombreProductoRepo{db: db}
}

func (r *nombreProductoRepo) Create(ctx context.Context, n *model.NombreProducto) error {
	return r.db.WithContext(ctx).Omit("Categoria").Create(n).Error
}

func (r *nombreProductoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.NombreProducto, error) {
	var n model.NombreProducto
	if err := r.db.WithContext(ctx).Preload("Categoria").First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *nombreProductoRepo) List(ctx context.Context, filter dto.CatalogoFilter) ([]model.NombreProducto, error) {
	q := filtrarActivo(r.db.WithContext(ctx), "activo", filter.Activo, "all")
	if filter.CategoriaID != "" {
		q = q.Where("categoria_id = ?", filter.CategoriaID)
	}
	var list []model.NombreProducto
	err := q.Preload("Categoria").Order("nombre asc").Find(&list).Error
	return list, err
}

func (r *nombreProductoRepo) Update(ctx context.Context, n *model.NombreProducto) error {
	return r.db.WithContext(ctx).Omit("Categoria").Save(n).Error
}

func (r *nombreProductoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.NombreProducto{}, "id = ?", id).Error
}

func (r *nombreProductoRepo) ContarProductos(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Producto{}).Where("nombre_producto_id = ?", id).Count(&n).Error
	return n, err
}
