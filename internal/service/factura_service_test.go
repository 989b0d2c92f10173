package service

import (
	"context"
	"math/rand"
	"os"
	"testing"
	"time"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ventaDe(lineas ...dto.LineaFacturaRequest) dto.CrearFacturaRequest {
	return dto.CrearFacturaRequest{Lineas: lineas}
}

func lineaDe(p model.Producto, cantidad int) dto.LineaFacturaRequest {
	return dto.LineaFacturaRequest{ProductoID: p.ID.String(), Cantidad: cantidad}
}

func TestCalcularTotales(t *testing.T) {
	detalles := []model.DetalleFactura{
		{Subtotal: dec("31.20")},
		{Subtotal: dec("4.35")},
	}
	subtotal, total := CalcularTotales(detalles, dec("5.55"))
	assert.True(t, dec("35.55").Equal(subtotal))
	assert.True(t, dec("30.00").Equal(total))

	subtotal, total = CalcularTotales(nil, decimal.Zero)
	assert.True(t, subtotal.IsZero())
	assert.True(t, total.IsZero())
}

func TestSiguienteNumero(t *testing.T) {
	prefijo := prefijoNumero(time.Date(2025, 3, 9, 15, 0, 0, 0, time.UTC))
	assert.Equal(t, "FACT-20250309-", prefijo)
	assert.Equal(t, "FACT-20250309-0001", siguienteNumero(prefijo, ""))
	assert.Equal(t, "FACT-20250309-0002", siguienteNumero(prefijo, "FACT-20250309-0001"))
	assert.Equal(t, "FACT-20250309-10000", siguienteNumero(prefijo, "FACT-20250309-9999"))
}

func TestCrearFactura_DescuentaStockYMarcaPorAgotarse(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	p := e.crearProducto(t, "VTA-01", opcionesProducto{stock: 5, minimo: 5, precioVenta: "15.60"})

	resp, err := e.facturas.CrearFactura(ctx, e.usuario.ID, ventaDe(lineaDe(p, 1)))
	require.NoError(t, err)
	assert.Equal(t, model.FacturaCompletada, resp.Estado)
	assert.Equal(t, "Consumidor final", resp.Cliente)
	assert.True(t, dec("15.60").Equal(resp.Subtotal))
	assert.True(t, dec("15.60").Equal(resp.Total))
	require.Len(t, resp.Detalles, 1)
	assert.True(t, dec("15.60").Equal(resp.Detalles[0].PrecioUnitario))

	got := e.recargar(t, p.ID)
	assert.Equal(t, 4, got.StockActual)
	assert.True(t, got.EstaPorAgotarse())

	var a model.AjusteInventario
	require.NoError(t, e.db.Where("producto_id = ? AND origen = ?", p.ID, model.OrigenVenta).First(&a).Error)
	assert.Equal(t, "Venta - Factura #"+resp.NumeroFactura, a.Motivo)
	assert.Equal(t, -1, a.Diferencia)
	assert.Equal(t, resp.ID, a.ReferenciaID.String())
}

func TestCrearFactura_StockInsuficienteNoDejaRastro(t *testing.T) {
	e := nuevoEntorno(t)
	a := e.crearProducto(t, "VTA-02", opcionesProducto{stock: 10})
	b := e.crearProducto(t, "VTA-03", opcionesProducto{stock: 1})

	_, err := e.facturas.CrearFactura(context.Background(), e.usuario.ID, ventaDe(lineaDe(a, 3), lineaDe(b, 2)))
	var serr *StockInsuficienteError
	require.ErrorAs(t, err, &serr)
	require.Len(t, serr.Faltantes, 1)
	assert.Equal(t, "VTA-03", serr.Faltantes[0].Codigo)
	assert.Equal(t, 2, serr.Faltantes[0].Solicitado)
	assert.Equal(t, 1, serr.Faltantes[0].Disponible)

	assert.Equal(t, 10, e.recargar(t, a.ID).StockActual)
	assert.Equal(t, 1, e.recargar(t, b.ID).StockActual)

	var facturas, ajustes int64
	require.NoError(t, e.db.Model(&model.Factura{}).Count(&facturas).Error)
	require.NoError(t, e.db.Model(&model.AjusteInventario{}).Count(&ajustes).Error)
	assert.Zero(t, facturas)
	assert.Zero(t, ajustes)
}

func TestCrearFactura_Numeracion(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	e.fijarReloj(time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local))
	p := e.crearProducto(t, "VTA-04", opcionesProducto{stock: 10})

	f1, err := e.facturas.CrearFactura(ctx, e.usuario.ID, ventaDe(lineaDe(p, 1)))
	require.NoError(t, err)
	f2, err := e.facturas.CrearFactura(ctx, e.usuario.ID, ventaDe(lineaDe(p, 1)))
	require.NoError(t, err)
	assert.Equal(t, "FACT-20250601-0001", f1.NumeroFactura)
	assert.Equal(t, "FACT-20250601-0002", f2.NumeroFactura)

	req := ventaDe(lineaDe(p, 1))
	req.NumeroFactura = &f1.NumeroFactura
	_, err = e.facturas.CrearFactura(ctx, e.usuario.ID, req)
	var verr *ValidacionError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Campos, "numero_factura")
	assert.Equal(t, 8, e.recargar(t, p.ID).StockActual)
}

func TestCrearFactura_NumeracionPasaDeCuatroDigitos(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	dia := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)
	e.fijarReloj(dia)
	p := e.crearProducto(t, "VTA-05", opcionesProducto{stock: 10})

	for _, numero := range []string{"FACT-20250601-9999", "FACT-20250601-10000"} {
		require.NoError(t, e.db.Create(&model.Factura{
			NumeroFactura: numero,
			VendedorID:    e.usuario.ID,
			FechaVenta:    dia,
			Estado:        model.FacturaAnulada,
		}).Error)
	}

	f1, err := e.facturas.CrearFactura(ctx, e.usuario.ID, ventaDe(lineaDe(p, 1)))
	require.NoError(t, err)
	f2, err := e.facturas.CrearFactura(ctx, e.usuario.ID, ventaDe(lineaDe(p, 1)))
	require.NoError(t, err)
	assert.Equal(t, "FACT-20250601-10001", f1.NumeroFactura)
	assert.Equal(t, "FACT-20250601-10002", f2.NumeroFactura)
}

func TestCrearFactura_Validaciones(t *testing.T) {
	e := nuevoEntorno(t)
	p := e.crearProducto(t, "VTA-05", opcionesProducto{stock: 10, precioVenta: "5.00"})
	nombre := "Juan"
	otro := uuid.NewString()

	tests := []struct {
		name  string
		req   dto.CrearFacturaRequest
		campo string
	}{
		{"sin lineas", ventaDe(), "lineas"},
		{"cantidad cero", ventaDe(lineaDe(p, 0)), "lineas[0].cantidad"},
		{"producto repetido", ventaDe(lineaDe(p, 1), lineaDe(p, 2)), "lineas[1].producto_id"},
		{"descuento mayor al subtotal", dto.CrearFacturaRequest{Descuento: dec("5.01"), Lineas: []dto.LineaFacturaRequest{lineaDe(p, 1)}}, "descuento"},
		{"cliente y nombre", dto.CrearFacturaRequest{ClienteID: &otro, ClienteNombre: &nombre, Lineas: []dto.LineaFacturaRequest{lineaDe(p, 1)}}, "cliente"},
		{"cliente inexistente", dto.CrearFacturaRequest{ClienteID: &otro, Lineas: []dto.LineaFacturaRequest{lineaDe(p, 1)}}, "cliente_id"},
		{"producto inexistente", ventaDe(dto.LineaFacturaRequest{ProductoID: uuid.NewString(), Cantidad: 1}), "producto_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.facturas.CrearFactura(context.Background(), e.usuario.ID, tt.req)
			var verr *ValidacionError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Campos, tt.campo)
		})
	}
	assert.Equal(t, 10, e.recargar(t, p.ID).StockActual)
}

func TestCrearFactura_ProductoInactivo(t *testing.T) {
	e := nuevoEntorno(t)
	p := e.crearProducto(t, "VTA-06", opcionesProducto{stock: 10})
	require.NoError(t, e.productos.SetActivo(context.Background(), p.ID, false))

	_, err := e.facturas.CrearFactura(context.Background(), e.usuario.ID, ventaDe(lineaDe(p, 1)))
	var verr *ValidacionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 10, e.recargar(t, p.ID).StockActual)
}

func TestAnularFactura_RestauraUnaSolaVez(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	a := e.crearProducto(t, "VTA-07", opcionesProducto{stock: 10})
	b := e.crearProducto(t, "VTA-08", opcionesProducto{stock: 4})

	f, err := e.facturas.CrearFactura(ctx, e.usuario.ID, ventaDe(lineaDe(a, 3), lineaDe(b, 4)))
	require.NoError(t, err)
	assert.Equal(t, 7, e.recargar(t, a.ID).StockActual)
	assert.Equal(t, 0, e.recargar(t, b.ID).StockActual)

	id := uuid.MustParse(f.ID)
	anulada, err := e.facturas.AnularFactura(ctx, id, e.usuario.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FacturaAnulada, anulada.Estado)
	assert.Equal(t, 10, e.recargar(t, a.ID).StockActual)
	assert.Equal(t, 4, e.recargar(t, b.ID).StockActual)

	_, err = e.facturas.AnularFactura(ctx, id, e.usuario.ID)
	assert.ErrorIs(t, err, ErrFacturaYaAnulada)
	assert.Equal(t, 10, e.recargar(t, a.ID).StockActual)
	assert.Equal(t, 4, e.recargar(t, b.ID).StockActual)

	var motivos []string
	require.NoError(t, e.db.Model(&model.AjusteInventario{}).
		Where("origen = ?", model.OrigenAnulacion).Pluck("motivo", &motivos).Error)
	require.Len(t, motivos, 2)
	for _, m := range motivos {
		assert.Equal(t, "Anulación de Factura #"+f.NumeroFactura, m)
	}

	_, err = e.facturas.AgregarLinea(ctx, id, e.usuario.ID, lineaDe(a, 1))
	assert.ErrorIs(t, err, ErrFacturaYaAnulada)
}

func TestAnularFactura_Inexistente(t *testing.T) {
	e := nuevoEntorno(t)
	_, err := e.facturas.AnularFactura(context.Background(), uuid.New(), e.usuario.ID)
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestFacturaPendiente_NoMueveStockHastaCompletar(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	p := e.crearProducto(t, "VTA-09", opcionesProducto{stock: 2})

	req := ventaDe(lineaDe(p, 3))
	req.Estado = model.FacturaPendiente
	f, err := e.facturas.CrearFactura(ctx, e.usuario.ID, req)
	require.NoError(t, err)
	assert.Equal(t, model.FacturaPendiente, f.Estado)
	assert.Equal(t, 2, e.recargar(t, p.ID).StockActual)

	id := uuid.MustParse(f.ID)
	_, err = e.facturas.CompletarFactura(ctx, id, e.usuario.ID)
	var serr *StockInsuficienteError
	require.ErrorAs(t, err, &serr)

	_, err = e.ajustes.RegistrarAjuste(ctx, e.usuario.ID, ajusteA(p.ID, model.AjusteEntrada, 5))
	require.NoError(t, err)

	completada, err := e.facturas.CompletarFactura(ctx, id, e.usuario.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FacturaCompletada, completada.Estado)
	assert.Equal(t, 2, e.recargar(t, p.ID).StockActual)

	_, err = e.facturas.CompletarFactura(ctx, id, e.usuario.ID)
	var verr *ValidacionError
	assert.ErrorAs(t, err, &verr)
}

func TestAnularFacturaPendiente_NoTocaStock(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	p := e.crearProducto(t, "VTA-10", opcionesProducto{stock: 6})

	req := ventaDe(lineaDe(p, 2))
	req.Estado = model.FacturaPendiente
	f, err := e.facturas.CrearFactura(ctx, e.usuario.ID, req)
	require.NoError(t, err)

	_, err = e.facturas.AnularFactura(ctx, uuid.MustParse(f.ID), e.usuario.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, e.recargar(t, p.ID).StockActual)
	assert.EqualValues(t, 0, e.contarAjustes(t, p.ID, ""))
}

func TestLineas_TotalesSiempreCuadran(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	a := e.crearProducto(t, "VTA-11", opcionesProducto{stock: 10, precioVenta: "12.50"})
	b := e.crearProducto(t, "VTA-12", opcionesProducto{stock: 10, precioVenta: "3.10"})

	req := ventaDe(lineaDe(a, 2))
	req.Descuento = dec("5.00")
	f, err := e.facturas.CrearFactura(ctx, e.usuario.ID, req)
	require.NoError(t, err)
	id := uuid.MustParse(f.ID)
	assert.True(t, dec("25.00").Equal(f.Subtotal))
	assert.True(t, dec("20.00").Equal(f.Total))

	f, err = e.facturas.AgregarLinea(ctx, id, e.usuario.ID, lineaDe(b, 3))
	require.NoError(t, err)
	assert.True(t, dec("34.30").Equal(f.Subtotal), f.Subtotal.String())
	assert.True(t, f.Subtotal.Sub(f.Descuento).Equal(f.Total))
	assert.Equal(t, 7, e.recargar(t, b.ID).StockActual)

	_, err = e.facturas.AgregarLinea(ctx, id, e.usuario.ID, lineaDe(b, 1))
	var verr *ValidacionError
	require.ErrorAs(t, err, &verr)

	f, err = e.facturas.EliminarLinea(ctx, id, a.ID, e.usuario.ID)
	require.NoError(t, err)
	assert.True(t, dec("9.30").Equal(f.Subtotal), f.Subtotal.String())
	assert.True(t, dec("4.30").Equal(f.Total), f.Total.String())
	assert.Equal(t, 10, e.recargar(t, a.ID).StockActual)

	var motivos []string
	require.NoError(t, e.db.Model(&model.AjusteInventario{}).
		Where("producto_id = ? AND origen = ?", a.ID, model.OrigenAnulacion).Pluck("motivo", &motivos).Error)
	assert.Equal(t, []string{"Anulación/Corrección - Factura #" + f.NumeroFactura}, motivos)

	_, err = e.facturas.EliminarLinea(ctx, id, b.ID, e.usuario.ID)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Campos, "lineas")

	_, err = e.facturas.EliminarLinea(ctx, id, uuid.New(), e.usuario.ID)
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestAgregarLinea_StockInsuficienteNoCambiaNada(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	a := e.crearProducto(t, "VTA-15", opcionesProducto{stock: 10, precioVenta: "10.00"})
	b := e.crearProducto(t, "VTA-16", opcionesProducto{stock: 1, precioVenta: "4.00"})

	f, err := e.facturas.CrearFactura(ctx, e.usuario.ID, ventaDe(lineaDe(a, 3)))
	require.NoError(t, err)
	id := uuid.MustParse(f.ID)
	require.True(t, dec("30.00").Equal(f.Total))

	_, err = e.facturas.AgregarLinea(ctx, id, e.usuario.ID, lineaDe(b, 2))
	var serr *StockInsuficienteError
	require.ErrorAs(t, err, &serr)
	require.Len(t, serr.Faltantes, 1)
	assert.Equal(t, "VTA-16", serr.Faltantes[0].Codigo)
	assert.Equal(t, 1, serr.Faltantes[0].Disponible)

	f, err = e.facturas.ObtenerFactura(ctx, id)
	require.NoError(t, err)
	assert.True(t, dec("30.00").Equal(f.Subtotal), f.Subtotal.String())
	assert.True(t, dec("30.00").Equal(f.Total), f.Total.String())
	assert.Len(t, f.Detalles, 1)
	assert.Equal(t, 7, e.recargar(t, a.ID).StockActual)
	assert.Equal(t, 1, e.recargar(t, b.ID).StockActual)
	assert.Zero(t, e.contarAjustes(t, b.ID, model.OrigenVenta))
}

func TestLineas_PrecioCapturadoAlAgregar(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	p := e.crearProducto(t, "VTA-13", opcionesProducto{stock: 50, precioVenta: "10.00"})
	q := e.crearProducto(t, "VTA-14", opcionesProducto{stock: 50, precioVenta: "1.00"})

	f, err := e.facturas.CrearFactura(ctx, e.usuario.ID, ventaDe(lineaDe(q, 1)))
	require.NoError(t, err)

	nuevo := dec("99.00")
	_, err = e.catalogo.Actualizar(ctx, p.ID, dto.ActualizarProductoRequest{PrecioVenta: &nuevo})
	require.NoError(t, err)

	f, err = e.facturas.AgregarLinea(ctx, uuid.MustParse(f.ID), e.usuario.ID, lineaDe(p, 1))
	require.NoError(t, err)
	for _, d := range f.Detalles {
		if d.Codigo == "VTA-13" {
			assert.True(t, nuevo.Equal(d.PrecioUnitario))
		}
	}

	_, err = e.catalogo.Actualizar(ctx, p.ID, dto.ActualizarProductoRequest{PrecioVenta: func() *decimal.Decimal { v := dec("1.00"); return &v }()})
	require.NoError(t, err)
	f, err = e.facturas.ObtenerFactura(ctx, uuid.MustParse(f.ID))
	require.NoError(t, err)
	assert.True(t, dec("100.00").Equal(f.Subtotal), f.Subtotal.String())
}

// Every sequence of purchases, sales, voids and adjustments must keep
// stock_actual equal to the running sum of the audit differences.
func TestEcuacionDeStock_SecuenciasAleatorias(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	productos := []model.Producto{
		e.crearProducto(t, "RND-A", opcionesProducto{stock: 0}),
		e.crearProducto(t, "RND-B", opcionesProducto{stock: 0}),
		e.crearProducto(t, "RND-C", opcionesProducto{stock: 0}),
	}
	var emitidas []uuid.UUID

	for i := 0; i < 60; i++ {
		p := productos[rng.Intn(len(productos))]
		switch rng.Intn(4) {
		case 0:
			_, err := e.compras.RegistrarEntrada(ctx, e.usuario.ID, entradaDe(p.ID, 1+rng.Intn(10), "7.25"))
			require.NoError(t, err)
		case 1:
			f, err := e.facturas.CrearFactura(ctx, e.usuario.ID, ventaDe(lineaDe(p, 1+rng.Intn(5))))
			if err == nil {
				emitidas = append(emitidas, uuid.MustParse(f.ID))
				continue
			}
			var serr *StockInsuficienteError
			require.ErrorAs(t, err, &serr)
		case 2:
			if len(emitidas) == 0 {
				continue
			}
			k := rng.Intn(len(emitidas))
			_, err := e.facturas.AnularFactura(ctx, emitidas[k], e.usuario.ID)
			require.NoError(t, err)
			emitidas = append(emitidas[:k], emitidas[k+1:]...)
		case 3:
			_, err := e.ajustes.RegistrarAjuste(ctx, e.usuario.ID, ajusteA(p.ID, model.AjusteCorreccion, rng.Intn(8)))
			require.NoError(t, err)
		}
	}

	for _, p := range productos {
		var suma int64
		require.NoError(t, e.db.Model(&model.AjusteInventario{}).
			Where("producto_id = ?", p.ID).Select("COALESCE(SUM(diferencia), 0)").Scan(&suma).Error)
		got := e.recargar(t, p.ID)
		assert.EqualValues(t, suma, got.StockActual, p.Codigo)
		assert.GreaterOrEqual(t, got.StockActual, 0)
	}
}

func TestGenerarPDF(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	p := e.crearProducto(t, "VTA-15", opcionesProducto{stock: 3})

	f, err := e.facturas.CrearFactura(ctx, e.usuario.ID, ventaDe(lineaDe(p, 1)))
	require.NoError(t, err)

	ruta, err := e.facturas.GenerarPDF(ctx, uuid.MustParse(f.ID))
	require.NoError(t, err)
	info, err := os.Stat(ruta)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
