package repository

import (
	"context"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AjusteRepository stores manual adjustments and the audit rows the stock
// coordinator writes for every other stock change.
type AjusteRepository interface {
	CreateTx(tx *gorm.DB, a *model.AjusteInventario) error
	List(ctx context.Context, filter dto.AjusteFilter) ([]model.AjusteInventario, int64, error)
}

type ajusteRepo struct{ db *gorm.DB }

func NewAjusteRepository(db *gorm.DB) AjusteRepository {
	return &ajusteRepo{db: db}
}

func (r *ajusteRepo) CreateTx(tx *gorm.DB, a *model.AjusteInventario) error {
	return tx.Omit(clause.Associations).Create(a).Error
}

func (r *ajusteRepo) List(ctx context.Context, filter dto.AjusteFilter) ([]model.AjusteInventario, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.AjusteInventario{})
	if filter.ProductoID != "" {
		q = q.Where("producto_id = ?", filter.ProductoID)
	}
	if filter.TipoAjuste != "" {
		q = q.Where("tipo_ajuste = ?", filter.TipoAjuste)
	}
	if filter.Origen != "" {
		q = q.Where("origen = ?", filter.Origen)
	}
	q, err := filtrarFechas(q, "fecha_ajuste", filter.Desde, filter.Hasta)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := paginar(filter.Page, filter.Limit, 50, 500)
	var ajustes []model.AjusteInventario
	err = q.Preload("Producto").
		Order("fecha_ajuste DESC").Offset(offset).Limit(limit).Find(&ajustes).Error
	return ajustes, total, err
}
