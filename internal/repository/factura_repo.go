package repository

import (
	"context"
	"time"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FacturaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error)
	List(ctx context.Context, filter dto.FacturaFilter) ([]model.Factura, int64, error)
	// ListCompletadasEntre returns COMPLETADA invoices with desde <= fecha_venta < hasta.
	ListCompletadasEntre(ctx context.Context, desde, hasta time.Time) ([]model.Factura, error)
	ContarPorCliente(ctx context.Context, clienteID uuid.UUID) (int64, error)

	CreateTx(tx *gorm.DB, f *model.Factura) error
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Factura, error)
	// UltimoNumeroTx returns the highest invoice number starting with prefijo, "" when none.
	UltimoNumeroTx(tx *gorm.DB, prefijo string) (string, error)
	UpdateTotalesTx(tx *gorm.DB, id uuid.UUID, subtotal, total decimal.Decimal) error
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error

	ListDetallesTx(tx *gorm.DB, facturaID uuid.UUID) ([]model.DetalleFactura, error)
	CreateDetalleTx(tx *gorm.DB, d *model.DetalleFactura) error
	SetStockAplicadoTx(tx *gorm.DB, detalleID uuid.UUID, aplicado bool) error
	DeleteDetalleTx(tx *gorm.DB, detalleID uuid.UUID) error

	DB() *gorm.DB
}

type facturaRepo struct{ db *gorm.DB }

func NewFacturaRepository(db *gorm.DB) FacturaRepository { return &facturaRepo{db: db} }

func preloadFactura(db *gorm.DB) *gorm.DB {
	return db.Preload("Cliente").
		Preload("Detalles", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Detalles.Producto.NombreProducto")
}

func (r *facturaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	if err := preloadFactura(r.db.WithContext(ctx)).First(&f, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *facturaRepo) List(ctx context.Context, filter dto.FacturaFilter) ([]model.Factura, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Factura{})
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Numero != "" {
		q = q.Where("numero_factura LIKE ?", "%"+filter.Numero+"%")
	}
	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	q, err := filtrarFechas(q, "fecha_venta", filter.Desde, filter.Hasta)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := paginar(filter.Page, filter.Limit, 20, 100)
	var facturas []model.Factura
	err = preloadFactura(q).Order("fecha_venta DESC").Limit(limit).Offset(offset).Find(&facturas).Error
	return facturas, total, err
}

func (r *facturaRepo) ListCompletadasEntre(ctx context.Context, desde, hasta time.Time) ([]model.Factura, error) {
	var facturas []model.Factura
	err := r.db.WithContext(ctx).
		Where("estado = ? AND fecha_venta >= ? AND fecha_venta < ?", model.FacturaCompletada, desde, hasta).
		Order("fecha_venta ASC").Find(&facturas).Error
	return facturas, err
}

func (r *facturaRepo) ContarPorCliente(ctx context.Context, clienteID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Factura{}).Where("cliente_id = ?", clienteID).Count(&n).Error
	return n, err
}

func (r *facturaRepo) CreateTx(tx *gorm.DB, f *model.Factura) error {
	return tx.Omit(clause.Associations).Create(f).Error
}

func (r *facturaRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&f, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *facturaRepo) UltimoNumeroTx(tx *gorm.DB, prefijo string) (string, error) {
	var numeros []string
	err := tx.Model(&model.Factura{}).
		Where("numero_factura LIKE ?", prefijo+"%").
		Order("LENGTH(numero_factura) DESC").Order("numero_factura DESC").Limit(1).
		Pluck("numero_factura", &numeros).Error
	if err != nil || len(numeros) == 0 {
		return "", err
	}
	return numeros[0], nil
}

func (r *facturaRepo) UpdateTotalesTx(tx *gorm.DB, id uuid.UUID, subtotal, total decimal.Decimal) error {
	return tx.Model(&model.Factura{}).Where("id = ?", id).Updates(map[string]interface{}{
		"subtotal": subtotal,
		"total":    total,
	}).Error
}

func (r *facturaRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Factura{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *facturaRepo) ListDetallesTx(tx *gorm.DB, facturaID uuid.UUID) ([]model.DetalleFactura, error) {
	var detalles []model.DetalleFactura
	err := tx.Where("factura_id = ?", facturaID).Order("created_at ASC").Find(&detalles).Error
	return detalles, err
}

func (r *facturaRepo) CreateDetalleTx(tx *gorm.DB, d *model.DetalleFactura) error {
	return tx.Omit(clause.Associations).Create(d).Error
}

func (r *facturaRepo) SetStockAplicadoTx(tx *gorm.DB, detalleID uuid.UUID, aplicado bool) error {
	return tx.Model(&model.DetalleFactura{}).Where("id = ?", detalleID).Update("stock_aplicado", aplicado).Error
}

func (r *facturaRepo) DeleteDetalleTx(tx *gorm.DB, detalleID uuid.UUID) error {
	return tx.Delete(&model.DetalleFactura{}, "id = ?", detalleID).Error
}

func (r *facturaRepo) DB() *gorm.DB { return r.db }
