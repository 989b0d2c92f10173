package repository

import (
	"context"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HistorialPrecioRepository is append-only: rows are written by the costing
// engine and by manual price edits, never updated.
type HistorialPrecioRepository interface {
	CreateTx(tx *gorm.DB, h *model.HistorialPrecio) error
	ListByProducto(ctx context.Context, productoID uuid.UUID, filter dto.HistorialPrecioFilter) ([]model.HistorialPrecio, int64, error)
}

type historialPrecioRepository struct{ db *gorm.DB }

func NewHistorialPrecioRepository(db *gorm.DB) HistorialPrecioRepository {
	return &historialPrecioRepository{db: db}
}

func (r *historialPrecioRepository) CreateTx(tx *gorm.DB, h *model.HistorialPrecio) error {
	return tx.Omit(clause.Associations).Create(h).Error
}

func (r *historialPrecioRepository) ListByProducto(ctx context.Context, productoID uuid.UUID, filter dto.HistorialPrecioFilter) ([]model.HistorialPrecio, int64, error) {
	_, limit, offset := paginar(filter.Page, filter.Limit, 50, 200)

	q := r.db.WithContext(ctx).Model(&model.HistorialPrecio{}).Where("producto_id = ?", productoID)
	if filter.Motivo != "" {
		q = q.Where("motivo = ?", filter.Motivo)
	}
	q, err := filtrarFechas(q, "created_at", filter.Desde, filter.Hasta)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.HistorialPrecio
	err = q.Order("created_at DESC, id").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, err
}
