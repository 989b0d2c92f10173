package service

import (
	"fmt"
	"time"

	"sistemainventario/internal/infra"
	"sistemainventario/internal/model"
	"sistemainventario/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// EventoStock is one quantity change requested by a ledger.
type EventoStock struct {
	ProductoID   uuid.UUID
	Cantidad     int
	Motivo       string
	ReferenciaID *uuid.UUID
	UsuarioID    uuid.UUID
}

// CoordinadorStock is the only writer of Producto.StockActual. Every method
// runs inside the caller's transaction: it locks the product row, applies the
// change and leaves an AjusteInventario behind. Any error must abort tx.
type CoordinadorStock struct {
	productos repository.ProductoRepository
	ajustes   repository.AjusteRepository
	facturas  repository.FacturaRepository
	ahora     func() time.Time
}

func NewCoordinadorStock(
	productos repository.ProductoRepository,
	ajustes repository.AjusteRepository,
	facturas repository.FacturaRepository,
) *CoordinadorStock {
	return &CoordinadorStock{productos: productos, ajustes: ajustes, facturas: facturas, ahora: time.Now}
}

// bloquear re-reads the product under a row lock.
func (c *CoordinadorStock) bloquear(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	p, err := c.productos.FindByIDForUpdateTx(tx, id)
	if err != nil {
		if err = traducirErrorDB(err); err == ErrNoEncontrado {
			return nil, errValidacion("producto_id", "el producto "+id.String()+" no existe")
		}
		return nil, err
	}
	return p, nil
}

// BloquearProductosTx locks the given products in ascending id order and
// returns them keyed by id. A missing product is a validation error.
func (c *CoordinadorStock) BloquearProductosTx(tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]model.Producto, error) {
	productos, err := c.productos.FindByIDsForUpdateTx(tx, ids)
	if err != nil {
		if traducirErrorDB(err) == ErrNoEncontrado {
			return nil, errValidacion("producto_id", "uno de los productos no existe")
		}
		return nil, err
	}
	bloqueados := make(map[uuid.UUID]model.Producto, len(productos))
	for _, p := range productos {
		bloqueados[p.ID] = p
	}
	return bloqueados, nil
}

// VerificarStockTx locks every product in pedidos (id → quantity) and fails
// with the full list of shortfalls if any of them cannot be served.
func (c *CoordinadorStock) VerificarStockTx(tx *gorm.DB, pedidos map[uuid.UUID]int) (map[uuid.UUID]model.Producto, error) {
	ids := make([]uuid.UUID, 0, len(pedidos))
	for id := range pedidos {
		ids = append(ids, id)
	}
	ordenarIDs(ids)
	bloqueados, err := c.BloquearProductosTx(tx, ids)
	if err != nil {
		return nil, err
	}

	var faltantes []Faltante
	for _, id := range ids {
		p := bloqueados[id]
		if !p.TieneStockSuficiente(pedidos[id]) {
			faltantes = append(faltantes, Faltante{
				ProductoID: p.ID,
				Codigo:     p.Codigo,
				Solicitado: pedidos[id],
				Disponible: p.StockActual,
			})
		}
	}
	if len(faltantes) > 0 {
		infra.StockInsuficiente.Inc()
		return nil, &StockInsuficienteError{Faltantes: faltantes}
	}
	return bloqueados, nil
}

// CompraRegistradaTx adds a purchased quantity and returns the locked,
// updated product so the costing engine can run on it.
func (c *CoordinadorStock) CompraRegistradaTx(tx *gorm.DB, ev EventoStock) (*model.Producto, error) {
	if ev.Cantidad < 1 {
		return nil, errValidacion("cantidad", "debe ser al menos 1")
	}
	p, err := c.bloquear(tx, ev.ProductoID)
	if err != nil {
		return nil, err
	}
	if err := c.moverTx(tx, p, ev.Cantidad, model.OrigenCompra, ev); err != nil {
		return nil, err
	}
	infra.EventosStock.WithLabelValues("compra").Inc()
	return p, nil
}

// AjusteRegistradoTx sets stock to a.CantidadNueva and stores a with the
// before/after snapshot filled in. Only manual adjustments move stock; audit
// rows written by this coordinator are never applied a second time.
func (c *CoordinadorStock) AjusteRegistradoTx(tx *gorm.DB, a *model.AjusteInventario) error {
	if a.Origen == "" {
		a.Origen = model.OrigenManual
	}
	if a.Origen != model.OrigenManual {
		c.violacionIdempotencia("ajuste de auditoría reenviado", a.ProductoID, a.ReferenciaID)
		return nil
	}
	if a.CantidadNueva < 0 {
		return errValidacion("cantidad_nueva", "no puede ser negativa")
	}

	p, err := c.bloquear(tx, a.ProductoID)
	if err != nil {
		return err
	}
	a.CantidadAnterior = p.StockActual
	a.Diferencia = a.CantidadNueva - p.StockActual
	if a.FechaAjuste.IsZero() {
		a.FechaAjuste = c.ahora()
	}

	if err := c.productos.UpdateStockTx(tx, p.ID, a.CantidadNueva); err != nil {
		return err
	}
	if err := c.ajustes.CreateTx(tx, a); err != nil {
		return err
	}
	infra.EventosStock.WithLabelValues("ajuste").Inc()
	return nil
}

// VentaRegistradaTx takes a sold quantity out of stock, or fails with
// StockInsuficienteError leaving stock untouched.
func (c *CoordinadorStock) VentaRegistradaTx(tx *gorm.DB, ev EventoStock) error {
	p, err := c.bloquear(tx, ev.ProductoID)
	if err != nil {
		return err
	}
	if !p.TieneStockSuficiente(ev.Cantidad) {
		infra.StockInsuficiente.Inc()
		return &StockInsuficienteError{Faltantes: []Faltante{{
			ProductoID: p.ID,
			Codigo:     p.Codigo,
			Solicitado: ev.Cantidad,
			Disponible: p.StockActual,
		}}}
	}
	if err := c.moverTx(tx, p, -ev.Cantidad, model.OrigenVenta, ev); err != nil {
		return err
	}
	infra.EventosStock.WithLabelValues("venta").Inc()
	return nil
}

// VentaRevertidaTx gives a previously sold quantity back to stock.
func (c *CoordinadorStock) VentaRevertidaTx(tx *gorm.DB, ev EventoStock) error {
	p, err := c.bloquear(tx, ev.ProductoID)
	if err != nil {
		return err
	}
	if err := c.moverTx(tx, p, ev.Cantidad, model.OrigenAnulacion, ev); err != nil {
		return err
	}
	infra.EventosStock.WithLabelValues("reversion").Inc()
	return nil
}

// AplicarLineaTx sells an invoice line once. A line already marked as applied
// is left alone.
func (c *CoordinadorStock) AplicarLineaTx(tx *gorm.DB, f *model.Factura, d *model.DetalleFactura, usuarioID uuid.UUID) error {
	if d.StockAplicado {
		c.violacionIdempotencia("línea ya descontada", d.ProductoID, &f.ID)
		return nil
	}
	ref := f.ID
	err := c.VentaRegistradaTx(tx, EventoStock{
		ProductoID:   d.ProductoID,
		Cantidad:     d.Cantidad,
		Motivo:       fmt.Sprintf("Venta - Factura #%s", f.NumeroFactura),
		ReferenciaID: &ref,
		UsuarioID:    usuarioID,
	})
	if err != nil {
		return err
	}
	if err := c.facturas.SetStockAplicadoTx(tx, d.ID, true); err != nil {
		return err
	}
	d.StockAplicado = true
	return nil
}

// RevertirLineaTx gives an applied invoice line back to stock once. A line that
// was never applied, or was already given back, is left alone.
func (c *CoordinadorStock) RevertirLineaTx(tx *gorm.DB, f *model.Factura, d *model.DetalleFactura, motivo string, usuarioID uuid.UUID) error {
	if !d.StockAplicado {
		c.violacionIdempotencia("línea sin stock aplicado", d.ProductoID, &f.ID)
		return nil
	}
	ref := f.ID
	err := c.VentaRevertidaTx(tx, EventoStock{
		ProductoID:   d.ProductoID,
		Cantidad:     d.Cantidad,
		Motivo:       motivo,
		ReferenciaID: &ref,
		UsuarioID:    usuarioID,
	})
	if err != nil {
		return err
	}
	if err := c.facturas.SetStockAplicadoTx(tx, d.ID, false); err != nil {
		return err
	}
	d.StockAplicado = false
	return nil
}

// moverTx applies delta to the locked product p and writes the audit row.
func (c *CoordinadorStock) moverTx(tx *gorm.DB, p *model.Producto, delta int, origen string, ev EventoStock) error {
	antes := p.StockActual
	nuevo := antes + delta
	if nuevo < 0 {
		return &StockInsuficienteError{Faltantes: []Faltante{{
			ProductoID: p.ID, Codigo: p.Codigo, Solicitado: -delta, Disponible: antes,
		}}}
	}
	if err := c.productos.UpdateStockTx(tx, p.ID, nuevo); err != nil {
		return err
	}

	tipo := model.AjusteEntrada
	if delta < 0 {
		tipo = model.AjusteSalida
	}
	audit := &model.AjusteInventario{
		ProductoID:       p.ID,
		TipoAjuste:       tipo,
		CantidadAnterior: antes,
		CantidadNueva:    nuevo,
		Diferencia:       delta,
		Motivo:           ev.Motivo,
		Origen:           origen,
		ReferenciaID:     ev.ReferenciaID,
		UsuarioRegistro:  ev.UsuarioID,
		FechaAjuste:      c.ahora(),
	}
	if err := c.ajustes.CreateTx(tx, audit); err != nil {
		return err
	}

	log.Debug().
		Str("producto_id", p.ID.String()).
		Str("origen", origen).
		Int("stock_anterior", antes).
		Int("stock_nuevo", nuevo).
		Msg("stock actualizado")

	p.StockActual = nuevo
	return nil
}

func (c *CoordinadorStock) violacionIdempotencia(detalle string, productoID uuid.UUID, ref *uuid.UUID) {
	infra.ViolacionesIdempotencia.Inc()
	ev := log.Warn().Str("producto_id", productoID.String())
	if ref != nil {
		ev = ev.Str("referencia_id", ref.String())
	}
	ev.Msg("evento de stock ignorado: " + detalle)
}
