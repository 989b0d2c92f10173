package repository

import (
	"context"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntradaCompraRepository stores supplier deliveries and exposes the purchase
// ledger the costing engine aggregates.
type EntradaCompraRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.EntradaCompra, error)
	List(ctx context.Context, filter dto.EntradaCompraFilter) ([]model.EntradaCompra, int64, error)

	CreateTx(tx *gorm.DB, e *model.EntradaCompra) error
	CreateDetalleTx(tx *gorm.DB, d *model.DetalleEntradaCompra) error
	UpdateTotalTx(tx *gorm.DB, id uuid.UUID, total decimal.Decimal) error
	// ListDetallesPorProductoTx returns every purchase line ever recorded for the product.
	ListDetallesPorProductoTx(tx *gorm.DB, productoID uuid.UUID) ([]model.DetalleEntradaCompra, error)

	DB() *gorm.DB
}

type entradaCompraRepo struct{ db *gorm.DB }

func NewEntradaCompraRepository(db *gorm.DB) EntradaCompraRepository {
	return &entradaCompraRepo{db: db}
}

func (r *entradaCompraRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.EntradaCompra, error) {
	var e model.EntradaCompra
	err := r.db.WithContext(ctx).
		Preload("Detalles", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Detalles.Producto.NombreProducto").
		First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *entradaCompraRepo) List(ctx context.Context, filter dto.EntradaCompraFilter) ([]model.EntradaCompra, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.EntradaCompra{})
	if filter.Proveedor != "" {
		q = q.Where("LOWER(proveedor) LIKE LOWER(?)", "%"+filter.Proveedor+"%")
	}
	q, err := filtrarFechas(q, "fecha_compra", filter.Desde, filter.Hasta)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := paginar(filter.Page, filter.Limit, 20, 100)
	var entradas []model.EntradaCompra
	err = q.Preload("Detalles.Producto.NombreProducto").
		Order("fecha_compra DESC").Limit(limit).Offset(offset).Find(&entradas).Error
	return entradas, total, err
}

func (r *entradaCompraRepo) CreateTx(tx *gorm.DB, e *model.EntradaCompra) error {
	return tx.Omit(clause.Associations).Create(e).Error
}

func (r *entradaCompraRepo) CreateDetalleTx(tx *gorm.DB, d *model.DetalleEntradaCompra) error {
	return tx.Omit(clause.Associations).Create(d).Error
}

func (r *entradaCompraRepo) UpdateTotalTx(tx *gorm.DB, id uuid.UUID, total decimal.Decimal) error {
	return tx.Model(&model.EntradaCompra{}).Where("id = ?", id).Update("total", total).Error
}

func (r *entradaCompraRepo) ListDetallesPorProductoTx(tx *gorm.DB, productoID uuid.UUID) ([]model.DetalleEntradaCompra, error) {
	var detalles []model.DetalleEntradaCompra
	err := tx.Select("id", "cantidad", "precio_unitario").
		Where("producto_id = ?", productoID).Find(&detalles).Error
	return detalles, err
}

func (r *entradaCompraRepo) DB() *gorm.DB { return r.db }
