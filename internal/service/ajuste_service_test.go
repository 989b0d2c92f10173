package service

import (
	"context"
	"testing"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ajusteA(productoID uuid.UUID, tipo string, nueva int) dto.RegistrarAjusteRequest {
	return dto.RegistrarAjusteRequest{
		ProductoID:    productoID.String(),
		TipoAjuste:    tipo,
		CantidadNueva: &nueva,
		Motivo:        "conteo físico",
	}
}

func TestRegistrarAjuste_FijaStockYGuardaDiferencia(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	p := e.crearProducto(t, "AJ-01", opcionesProducto{stock: 15})

	resp, err := e.ajustes.RegistrarAjuste(ctx, e.usuario.ID, ajusteA(p.ID, model.AjusteEntrada, 20))
	require.NoError(t, err)
	assert.Equal(t, 15, resp.CantidadAnterior)
	assert.Equal(t, 20, resp.CantidadNueva)
	assert.Equal(t, 5, resp.Diferencia)
	assert.Equal(t, model.OrigenManual, resp.Origen)
	assert.Nil(t, resp.ReferenciaID)

	assert.Equal(t, 20, e.recargar(t, p.ID).StockActual)
	assert.EqualValues(t, 1, e.contarAjustes(t, p.ID, ""))

	resp, err = e.ajustes.RegistrarAjuste(ctx, e.usuario.ID, ajusteA(p.ID, model.AjusteSalida, 3))
	require.NoError(t, err)
	assert.Equal(t, -17, resp.Diferencia)
	assert.Equal(t, 3, e.recargar(t, p.ID).StockActual)
}

func TestRegistrarAjuste_MismaCantidadSeRegistra(t *testing.T) {
	e := nuevoEntorno(t)
	p := e.crearProducto(t, "AJ-02", opcionesProducto{stock: 7})

	resp, err := e.ajustes.RegistrarAjuste(context.Background(), e.usuario.ID, ajusteA(p.ID, model.AjusteCorreccion, 7))
	require.NoError(t, err)
	assert.Zero(t, resp.Diferencia)
	assert.EqualValues(t, 1, e.contarAjustes(t, p.ID, model.OrigenManual))
}

func TestRegistrarAjuste_Rechazos(t *testing.T) {
	e := nuevoEntorno(t)
	p := e.crearProducto(t, "AJ-03", opcionesProducto{stock: 4})

	tests := []struct {
		name  string
		req   dto.RegistrarAjusteRequest
		campo string
	}{
		{"cantidad negativa", ajusteA(p.ID, model.AjusteSalida, -1), "cantidad_nueva"},
		{"tipo desconocido", ajusteA(p.ID, "ROBO", 1), "tipo_ajuste"},
		{"producto inexistente", ajusteA(uuid.New(), model.AjusteEntrada, 1), "producto_id"},
		{"sin motivo", func() dto.RegistrarAjusteRequest {
			r := ajusteA(p.ID, model.AjusteEntrada, 1)
			r.Motivo = " "
			return r
		}(), "motivo"},
		{"sin cantidad", dto.RegistrarAjusteRequest{ProductoID: p.ID.String(), TipoAjuste: model.AjusteEntrada, Motivo: "x"}, "cantidad_nueva"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ajustes.RegistrarAjuste(context.Background(), e.usuario.ID, tt.req)
			var verr *ValidacionError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Campos, tt.campo)
		})
	}

	assert.Equal(t, 4, e.recargar(t, p.ID).StockActual)
	assert.EqualValues(t, 0, e.contarAjustes(t, p.ID, ""))
}

func TestListarAjustes_FiltraPorOrigen(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	p := e.crearProducto(t, "AJ-04", opcionesProducto{stock: 10})

	_, err := e.ajustes.RegistrarAjuste(ctx, e.usuario.ID, ajusteA(p.ID, model.AjusteCorreccion, 12))
	require.NoError(t, err)
	_, err = e.compras.RegistrarEntrada(ctx, e.usuario.ID, entradaDe(p.ID, 3, "10.00"))
	require.NoError(t, err)

	todos, err := e.ajustes.ListarAjustes(ctx, dto.AjusteFilter{ProductoID: p.ID.String(), Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 2, todos.Total)

	manuales, err := e.ajustes.ListarAjustes(ctx, dto.AjusteFilter{Origen: model.OrigenManual, Page: 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, manuales.Data, 1)
	assert.Equal(t, "AJ-04", manuales.Data[0].Codigo)
	assert.Equal(t, 12, manuales.Data[0].CantidadNueva)
}
