package service

import (
	"context"
	"testing"
	"time"

	"sistemainventario/internal/config"
	"sistemainventario/internal/infra/sqlitetest"
	"sistemainventario/internal/model"
	"sistemainventario/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// entorno wires every ledger on a fresh in-memory database, without cache.
type entorno struct {
	db          *gorm.DB
	usuario     model.Usuario
	categoria   model.Categoria
	nombre      model.NombreProducto
	productos   repository.ProductoRepository
	ajustesRepo repository.AjusteRepository
	facturaRepo repository.FacturaRepository
	coordinador *CoordinadorStock
	compras     CompraService
	ajustes     AjusteService
	facturas    FacturaService
	catalogo    ProductoService
}

func nuevoEntorno(t *testing.T) *entorno {
	t.Helper()
	db := sqlitetest.Open(t)

	productos := repository.NewProductoRepository(db)
	ajustes := repository.NewAjusteRepository(db)
	facturas := repository.NewFacturaRepository(db)
	compras := repository.NewEntradaCompraRepository(db)
	historial := repository.NewHistorialPrecioRepository(db)
	clientes := repository.NewClienteRepository(db)
	nombres := repository.NewNombreProductoRepository(db)

	coordinador := NewCoordinadorStock(productos, ajustes, facturas)
	costeo := NewMotorCosteo(compras, productos, historial)
	cfg := &config.Config{PDFStoragePath: t.TempDir(), EmpresaNombre: "Ferretería Prueba"}

	e := &entorno{
		db:          db,
		productos:   productos,
		ajustesRepo: ajustes,
		facturaRepo: facturas,
		coordinador: coordinador,
		compras:     NewCompraService(compras, coordinador, costeo, nil),
		ajustes:     NewAjusteService(ajustes, db, coordinador, nil),
		facturas:    NewFacturaService(facturas, clientes, coordinador, nil, cfg),
		catalogo:    NewProductoService(productos, nombres, historial, nil),
	}

	e.usuario = model.Usuario{Username: "admin", Nombre: "Admin", PasswordHash: "x", Rol: model.RolAdministrador, Activo: true}
	require.NoError(t, db.Create(&e.usuario).Error)
	e.categoria = model.Categoria{Nombre: "Herramientas", Activa: true}
	require.NoError(t, db.Create(&e.categoria).Error)
	e.nombre = model.NombreProducto{Nombre: "Martillo", CategoriaID: e.categoria.ID, UnidadMedida: "unidad", Activo: true}
	require.NoError(t, db.Create(&e.nombre).Error)
	return e
}

type opcionesProducto struct {
	stock        int
	minimo       int
	precioCompra string
	precioVenta  string
	ganancia     string
	automatico   bool
}

func (e *entorno) crearProducto(t *testing.T, codigo string, o opcionesProducto) model.Producto {
	t.Helper()
	if o.precioCompra == "" {
		o.precioCompra = "10.00"
	}
	if o.precioVenta == "" {
		o.precioVenta = "15.00"
	}
	if o.ganancia == "" {
		o.ganancia = "0"
	}
	p := model.Producto{
		Codigo:                     codigo,
		NombreProductoID:           e.nombre.ID,
		CategoriaID:                e.categoria.ID,
		PrecioCompra:               decimal.RequireFromString(o.precioCompra),
		PrecioVenta:                decimal.RequireFromString(o.precioVenta),
		PorcentajeGanancia:         decimal.RequireFromString(o.ganancia),
		ActualizarPrecioAutomatico: o.automatico,
		StockActual:                o.stock,
		StockMinimo:                o.minimo,
		Activo:                     true,
	}
	require.NoError(t, e.db.Create(&p).Error)
	return p
}

func (e *entorno) recargar(t *testing.T, id uuid.UUID) model.Producto {
	t.Helper()
	p, err := e.productos.FindByID(context.Background(), id)
	require.NoError(t, err)
	return *p
}

func (e *entorno) contarAjustes(t *testing.T, productoID uuid.UUID, origen string) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(&model.AjusteInventario{}).Where("producto_id = ?", productoID)
	if origen != "" {
		q = q.Where("origen = ?", origen)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

// fijarReloj pins the invoice service clock.
func (e *entorno) fijarReloj(t time.Time) {
	e.facturas.(*facturaService).ahora = func() time.Time { return t }
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
