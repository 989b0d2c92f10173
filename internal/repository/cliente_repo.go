package repository

import (
	"context"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	List(ctx context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error)
	Update(ctx context.Context, c *model.Cliente) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clienteRepo) List(ctx context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error) {
	q := filtrarActivo(r.db.WithContext(ctx).Model(&model.Cliente{}), "activo", filter.Activo, "true")
	if filter.Nombre != "" {
		q = q.Where("LOWER(nombre) LIKE LOWER(?)", "%"+filter.Nombre+"%")
	}
	if filter.TipoCliente != "" {
		q = q.Where("tipo_cliente = ?", filter.TipoCliente)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := paginar(filter.Page, filter.Limit, 20, 100)
	var clientes []model.Cliente
	err := q.Order("nombre ASC").Limit(limit).Offset(offset).Find(&clientes).Error
	return clientes, total, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clienteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Cliente{}, "id = ?", id).Error
}
