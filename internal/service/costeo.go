package service

import (
	"sistemainventario/internal/model"
	"sistemainventario/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// precisionDivision is the number of places carried by the weighted-average
// division before rounding to money precision.
const precisionDivision = 4

var cien = decimal.NewFromInt(100)

// CostoPromedioPonderado returns Σ(cantidad × precio) / Σ(cantidad) rounded to
// cents, or respaldo when there are no purchase lines.
func CostoPromedioPonderado(lineas []model.DetalleEntradaCompra, respaldo decimal.Decimal) decimal.Decimal {
	valor := decimal.Zero
	unidades := int64(0)
	for _, l := range lineas {
		valor = valor.Add(l.PrecioUnitario.Mul(decimal.NewFromInt(int64(l.Cantidad))))
		unidades += int64(l.Cantidad)
	}
	if unidades == 0 {
		return respaldo.Round(2)
	}
	return valor.DivRound(decimal.NewFromInt(unidades), precisionDivision).Round(2)
}

// PrecioVentaConGanancia applies a percentage markup over costo.
func PrecioVentaConGanancia(costo, porcentaje decimal.Decimal) decimal.Decimal {
	return costo.Add(costo.Mul(porcentaje).Div(cien)).Round(2)
}

// MotorCosteo keeps a product's average cost, purchase price and optional sale
// price in line with its purchase history.
type MotorCosteo struct {
	compras   repository.EntradaCompraRepository
	productos repository.ProductoRepository
	historial repository.HistorialPrecioRepository
}

func NewMotorCosteo(
	compras repository.EntradaCompraRepository,
	productos repository.ProductoRepository,
	historial repository.HistorialPrecioRepository,
) *MotorCosteo {
	return &MotorCosteo{compras: compras, productos: productos, historial: historial}
}

// RecalcularTx recosts p from every purchase line visible in tx and writes the
// result back. p must be row-locked by the caller; it is updated in place.
// entradaID is the purchase entry that triggered the run.
func (m *MotorCosteo) RecalcularTx(tx *gorm.DB, p *model.Producto, entradaID uuid.UUID) error {
	lineas, err := m.compras.ListDetallesPorProductoTx(tx, p.ID)
	if err != nil {
		return err
	}

	costo := CostoPromedioPonderado(lineas, p.PrecioCompra)
	venta := p.PrecioVenta
	if p.ActualizarPrecioAutomatico {
		venta = PrecioVentaConGanancia(costo, p.PorcentajeGanancia)
	}

	if costo.Equal(p.CostoPromedio) && costo.Equal(p.PrecioCompra) && venta.Equal(p.PrecioVenta) {
		return nil
	}

	if err := m.productos.UpdateCostosTx(tx, p.ID, costo, costo, venta); err != nil {
		return err
	}

	if !costo.Equal(p.CostoPromedio) || !venta.Equal(p.PrecioVenta) {
		ref := entradaID
		h := &model.HistorialPrecio{
			ProductoID:         p.ID,
			CostoAntes:         p.CostoPromedio,
			CostoDespues:       costo,
			VentaAntes:         p.PrecioVenta,
			VentaDespues:       venta,
			PorcentajeAplicado: p.PorcentajeGanancia,
			Motivo:             model.MotivoPrecioEntradaCompra,
			ReferenciaID:       &ref,
		}
		if err := m.historial.CreateTx(tx, h); err != nil {
			return err
		}
	}

	log.Debug().
		Str("producto_id", p.ID.String()).
		Str("costo_promedio", costo.StringFixed(2)).
		Str("precio_venta", venta.StringFixed(2)).
		Int("lineas", len(lineas)).
		Msg("producto recosteado")

	p.CostoPromedio = costo
	p.PrecioCompra = costo
	p.PrecioVenta = venta
	return nil
}
