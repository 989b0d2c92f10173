package service

import (
	"context"
	"testing"

	"sistemainventario/internal/infra"
	"sistemainventario/internal/model"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func (e *entorno) enTx(t *testing.T, fn func(tx *gorm.DB) error) error {
	t.Helper()
	return runTx(context.Background(), e.db, fn)
}

func TestVerificarStockTx_ListaTodosLosFaltantes(t *testing.T) {
	e := nuevoEntorno(t)
	a := e.crearProducto(t, "COORD-A", opcionesProducto{stock: 1})
	b := e.crearProducto(t, "COORD-B", opcionesProducto{stock: 10})
	c := e.crearProducto(t, "COORD-C", opcionesProducto{stock: 0})

	antes := testutil.ToFloat64(infra.StockInsuficiente)
	err := e.enTx(t, func(tx *gorm.DB) error {
		_, err := e.coordinador.VerificarStockTx(tx, map[uuid.UUID]int{a.ID: 2, b.ID: 5, c.ID: 1})
		return err
	})

	var serr *StockInsuficienteError
	require.ErrorAs(t, err, &serr)
	require.Len(t, serr.Faltantes, 2)
	codigos := []string{serr.Faltantes[0].Codigo, serr.Faltantes[1].Codigo}
	assert.ElementsMatch(t, []string{"COORD-A", "COORD-C"}, codigos)
	for _, f := range serr.Faltantes {
		if f.Codigo == "COORD-A" {
			assert.Equal(t, 2, f.Solicitado)
			assert.Equal(t, 1, f.Disponible)
		}
	}
	assert.Equal(t, antes+1, testutil.ToFloat64(infra.StockInsuficiente))
}

func TestVentaRegistradaTx_NoDejaStockNegativo(t *testing.T) {
	e := nuevoEntorno(t)
	p := e.crearProducto(t, "COORD-D", opcionesProducto{stock: 3})

	err := e.enTx(t, func(tx *gorm.DB) error {
		return e.coordinador.VentaRegistradaTx(tx, EventoStock{ProductoID: p.ID, Cantidad: 4, Motivo: "x", UsuarioID: e.usuario.ID})
	})
	var serr *StockInsuficienteError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 3, e.recargar(t, p.ID).StockActual)
	assert.EqualValues(t, 0, e.contarAjustes(t, p.ID, ""))
}

func TestCoordinador_AplicarYRevertirLineaUnaSolaVez(t *testing.T) {
	e := nuevoEntorno(t)
	p := e.crearProducto(t, "COORD-E", opcionesProducto{stock: 5})

	f := &model.Factura{
		NumeroFactura: "FACT-TEST-0001",
		VendedorID:    e.usuario.ID,
		Estado:        model.FacturaCompletada,
		Subtotal:      dec("30.00"),
		Descuento:     dec("0"),
		Total:         dec("30.00"),
	}
	d := &model.DetalleFactura{ProductoID: p.ID, Cantidad: 2, PrecioUnitario: dec("15.00"), Subtotal: dec("30.00")}

	antes := testutil.ToFloat64(infra.ViolacionesIdempotencia)
	require.NoError(t, e.enTx(t, func(tx *gorm.DB) error {
		if err := e.facturaRepo.CreateTx(tx, f); err != nil {
			return err
		}
		d.FacturaID = f.ID
		if err := e.facturaRepo.CreateDetalleTx(tx, d); err != nil {
			return err
		}
		if err := e.coordinador.AplicarLineaTx(tx, f, d, e.usuario.ID); err != nil {
			return err
		}
		// second application is ignored
		return e.coordinador.AplicarLineaTx(tx, f, d, e.usuario.ID)
	}))
	assert.Equal(t, 3, e.recargar(t, p.ID).StockActual)
	assert.True(t, d.StockAplicado)
	assert.Equal(t, antes+1, testutil.ToFloat64(infra.ViolacionesIdempotencia))

	require.NoError(t, e.enTx(t, func(tx *gorm.DB) error {
		if err := e.coordinador.RevertirLineaTx(tx, f, d, "Anulación de Factura #FACT-TEST-0001", e.usuario.ID); err != nil {
			return err
		}
		return e.coordinador.RevertirLineaTx(tx, f, d, "Anulación de Factura #FACT-TEST-0001", e.usuario.ID)
	}))
	assert.Equal(t, 5, e.recargar(t, p.ID).StockActual)
	assert.False(t, d.StockAplicado)
	assert.Equal(t, antes+2, testutil.ToFloat64(infra.ViolacionesIdempotencia))

	assert.EqualValues(t, 1, e.contarAjustes(t, p.ID, model.OrigenVenta))
	assert.EqualValues(t, 1, e.contarAjustes(t, p.ID, model.OrigenAnulacion))
}

func TestAjusteRegistradoTx_IgnoraFilasDeAuditoria(t *testing.T) {
	e := nuevoEntorno(t)
	p := e.crearProducto(t, "COORD-F", opcionesProducto{stock: 8})

	antes := testutil.ToFloat64(infra.ViolacionesIdempotencia)
	require.NoError(t, e.enTx(t, func(tx *gorm.DB) error {
		return e.coordinador.AjusteRegistradoTx(tx, &model.AjusteInventario{
			ProductoID:      p.ID,
			TipoAjuste:      model.AjusteSalida,
			CantidadNueva:   6,
			Motivo:          "Venta - Factura #FACT-X",
			Origen:          model.OrigenVenta,
			UsuarioRegistro: e.usuario.ID,
		})
	}))

	assert.Equal(t, 8, e.recargar(t, p.ID).StockActual)
	assert.EqualValues(t, 0, e.contarAjustes(t, p.ID, ""))
	assert.Equal(t, antes+1, testutil.ToFloat64(infra.ViolacionesIdempotencia))
}

func TestCompraRegistradaTx_EscribeAuditoria(t *testing.T) {
	e := nuevoEntorno(t)
	p := e.crearProducto(t, "COORD-G", opcionesProducto{stock: 2})
	ref := uuid.New()

	var actualizado *model.Producto
	require.NoError(t, e.enTx(t, func(tx *gorm.DB) error {
		var err error
		actualizado, err = e.coordinador.CompraRegistradaTx(tx, EventoStock{
			ProductoID:   p.ID,
			Cantidad:     5,
			Motivo:       "Entrada de compra - Factura #A1 (Proveedor)",
			ReferenciaID: &ref,
			UsuarioID:    e.usuario.ID,
		})
		return err
	}))
	assert.Equal(t, 7, actualizado.StockActual)

	var a model.AjusteInventario
	require.NoError(t, e.db.Where("producto_id = ?", p.ID).First(&a).Error)
	assert.Equal(t, model.AjusteEntrada, a.TipoAjuste)
	assert.Equal(t, 2, a.CantidadAnterior)
	assert.Equal(t, 7, a.CantidadNueva)
	assert.Equal(t, 5, a.Diferencia)
	assert.Equal(t, model.OrigenCompra, a.Origen)
	require.NotNil(t, a.ReferenciaID)
	assert.Equal(t, ref, *a.ReferenciaID)
}

func TestCompraRegistradaTx_CantidadInvalida(t *testing.T) {
	e := nuevoEntorno(t)
	p := e.crearProducto(t, "COORD-H", opcionesProducto{})

	err := e.enTx(t, func(tx *gorm.DB) error {
		_, err := e.coordinador.CompraRegistradaTx(tx, EventoStock{ProductoID: p.ID, Cantidad: 0, UsuarioID: e.usuario.ID})
		return err
	})
	var verr *ValidacionError
	assert.ErrorAs(t, err, &verr)
}
