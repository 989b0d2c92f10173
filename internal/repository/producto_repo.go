package repository

import (
	"context"
	"fmt"
	"sort"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	ListPorAgotarse(ctx context.Context, categoriaID *uuid.UUID) ([]model.Producto, error)
	ListActivos(ctx context.Context, categoriaID *uuid.UUID) ([]model.Producto, error)
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ContarReferencias counts ledger and invoice rows that point at the product.
	ContarReferencias(ctx context.Context, id uuid.UUID) (int64, error)

	// Used inside transactions; callers must pass the tx instance
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	FindByIDsForUpdateTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Producto, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, stock int) error
	UpdateCostosTx(tx *gorm.DB, id uuid.UUID, costoPromedio, precioCompra, precioVenta decimal.Decimal) error
	// UpdateCatalogoTx writes only the catalog columns present in cambios;
	// stock and costo_promedio are never accepted.
	UpdateCatalogoTx(tx *gorm.DB, id uuid.UUID, cambios map[string]interface{}) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Preload("NombreProducto").Preload("Categoria").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Preload("NombreProducto").Preload("Categoria").
		Where("codigo = ?", codigo).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})
	q = filtrarActivo(q, "productos.activo", filter.Activo, "true")

	if filter.Codigo != "" {
		q = q.Where("productos.codigo = ?", filter.Codigo)
	}
	if filter.Nombre != "" {
		q = q.Joins("JOIN nombres_producto np ON np.id = productos.nombre_producto_id").
			Where("LOWER(np.nombre) LIKE LOWER(?)", "%"+filter.Nombre+"%")
	}
	if filter.CategoriaID != "" {
		q = q.Where("productos.categoria_id = ?", filter.CategoriaID)
	}
	if filter.PorAgotarse {
		q = q.Where("productos.stock_actual <= productos.stock_minimo")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := paginar(filter.Page, filter.Limit, 20, 100)
	err := q.Preload("NombreProducto").Preload("Categoria").
		Order("productos.codigo ASC").Limit(limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) ListPorAgotarse(ctx context.Context, categoriaID *uuid.UUID) ([]model.Producto, error) {
	q := r.db.WithContext(ctx).
		Where("activo = ? AND stock_actual <= stock_minimo", true)
	if categoriaID != nil {
		q = q.Where("categoria_id = ?", *categoriaID)
	}
	var productos []model.Producto
	err := q.Preload("NombreProducto").Preload("Categoria").
		Order("stock_actual ASC").Order("codigo ASC").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) ListActivos(ctx context.Context, categoriaID *uuid.UUID) ([]model.Producto, error) {
	q := r.db.WithContext(ctx).Where("activo = ?", true)
	if categoriaID != nil {
		q = q.Where("categoria_id = ?", *categoriaID)
	}
	var productos []model.Producto
	err := q.Preload("NombreProducto").Preload("Categoria").
		Order("codigo ASC").Find(&productos).Error
	return productos, err
}

var columnasCatalogo = map[string]bool{
	"codigo":                       true,
	"nombre_producto_id":           true,
	"categoria_id":                 true,
	"descripcion":                  true,
	"precio_compra":                true,
	"precio_venta":                 true,
	"porcentaje_ganancia":          true,
	"actualizar_precio_automatico": true,
	"stock_minimo":                 true,
}

func (r *productoRepo) UpdateCatalogoTx(tx *gorm.DB, id uuid.UUID, cambios map[string]interface{}) error {
	if len(cambios) == 0 {
		return nil
	}
	for col := range cambios {
		if !columnasCatalogo[col] {
			return fmt.Errorf("columna %q no editable desde el catálogo", col)
		}
	}
	res := tx.Model(&model.Producto{}).Where("id = ?", id).Updates(cambios)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productoRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	res := r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", activo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Producto{}, "id = ?", id).Error
}

func (r *productoRepo) ContarReferencias(ctx context.Context, id uuid.UUID) (int64, error) {
	var total int64
	for _, m := range []interface{}{
		&model.DetalleEntradaCompra{}, &model.DetalleFactura{},
		&model.AjusteInventario{}, &model.HistorialPrecio{},
	} {
		var n int64
		if err := r.db.WithContext(ctx).Model(m).Where("producto_id = ?", id).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (r *productoRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByIDsForUpdateTx locks every row in ascending id order so that two
// multi-line operations can never wait on each other in a cycle.
func (r *productoRepo) FindByIDsForUpdateTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Producto, error) {
	ordenados := append([]uuid.UUID(nil), ids...)
	sort.Slice(ordenados, func(i, j int) bool { return ordenados[i].String() < ordenados[j].String() })

	productos := make([]model.Producto, 0, len(ordenados))
	for _, id := range ordenados {
		p, err := r.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return nil, err
		}
		productos = append(productos, *p)
	}
	return productos, nil
}

func (r *productoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Preload("NombreProducto").First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, stock int) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).Update("stock_actual", stock).Error
}

func (r *productoRepo) UpdateCostosTx(tx *gorm.DB, id uuid.UUID, costoPromedio, precioCompra, precioVenta decimal.Decimal) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).Updates(map[string]interface{}{
		"costo_promedio": costoPromedio,
		"precio_compra":  precioCompra,
		"precio_venta":   precioVenta,
	}).Error
}

func (r *productoRepo) DB() *gorm.DB { return r.db }
