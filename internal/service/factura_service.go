package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sistemainventario/internal/config"
	"sistemainventario/internal/dto"
	"sistemainventario/internal/infra"
	"sistemainventario/internal/model"
	"sistemainventario/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxReintentosNumero bounds how often a generated invoice number is retried
// after losing a race on the unique index.
const maxReintentosNumero = 3

// FacturaService owns the invoice lifecycle. Stock moves only through the
// coordinator and only while an invoice is COMPLETADA.
type FacturaService interface {
	CrearFactura(ctx context.Context, vendedorID uuid.UUID, req dto.CrearFacturaRequest) (*dto.FacturaResponse, error)
	AnularFactura(ctx context.Context, id, usuarioID uuid.UUID) (*dto.FacturaResponse, error)
	CompletarFactura(ctx context.Context, id, usuarioID uuid.UUID) (*dto.FacturaResponse, error)
	AgregarLinea(ctx context.Context, id, usuarioID uuid.UUID, req dto.LineaFacturaRequest) (*dto.FacturaResponse, error)
	EliminarLinea(ctx context.Context, id, productoID, usuarioID uuid.UUID) (*dto.FacturaResponse, error)
	ObtenerFactura(ctx context.Context, id uuid.UUID) (*dto.FacturaResponse, error)
	ListarFacturas(ctx context.Context, filter dto.FacturaFilter) (*dto.FacturaListResponse, error)
	GenerarPDF(ctx context.Context, id uuid.UUID) (string, error)
}

type facturaService struct {
	repo        repository.FacturaRepository
	clientes    repository.ClienteRepository
	coordinador *CoordinadorStock
	cache       *infra.CacheSnapshots
	cfg         *config.Config
	ahora       func() time.Time
}

func NewFacturaService(
	repo repository.FacturaRepository,
	clientes repository.ClienteRepository,
	coordinador *CoordinadorStock,
	cache *infra.CacheSnapshots,
	cfg *config.Config,
) FacturaService {
	return &facturaService{
		repo:        repo,
		clientes:    clientes,
		coordinador: coordinador,
		cache:       cache,
		cfg:         cfg,
		ahora:       time.Now,
	}
}

// CalcularTotales derives subtotal and total from the current line set.
func CalcularTotales(detalles []model.DetalleFactura, descuento decimal.Decimal) (subtotal, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, d := range detalles {
		subtotal = subtotal.Add(d.Subtotal)
	}
	subtotal = subtotal.Round(2)
	return subtotal, subtotal.Sub(descuento).Round(2)
}

func subtotalLinea(precio decimal.Decimal, cantidad int) decimal.Decimal {
	return precio.Mul(decimal.NewFromInt(int64(cantidad))).Round(2)
}

// prefijoNumero is the per-day prefix of generated invoice numbers.
func prefijoNumero(fecha time.Time) string {
	return "FACT-" + fecha.Format("20060102") + "-"
}

// siguienteNumero returns prefijo + the sequence after ultimo, zero padded.
func siguienteNumero(prefijo, ultimo string) string {
	n := 1
	if ultimo != "" {
		if prev, err := strconv.Atoi(strings.TrimPrefix(ultimo, prefijo)); err == nil {
			n = prev + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefijo, n)
}

type lineaVenta struct {
	productoID uuid.UUID
	cantidad   int
}

func validarLineasVenta(req []dto.LineaFacturaRequest) ([]lineaVenta, error) {
	if len(req) == 0 {
		return nil, errValidacion("lineas", "la factura debe tener al menos una línea")
	}
	vistos := make(map[uuid.UUID]bool, len(req))
	lineas := make([]lineaVenta, 0, len(req))
	for i, l := range req {
		campo := fmt.Sprintf("lineas[%d]", i)
		id, err := parseUUID(campo+".producto_id", l.ProductoID)
		if err != nil {
			return nil, err
		}
		if vistos[id] {
			return nil, errValidacion(campo+".producto_id", "producto repetido en la factura")
		}
		vistos[id] = true
		if l.Cantidad < 1 {
			return nil, errValidacion(campo+".cantidad", "debe ser al menos 1")
		}
		lineas = append(lineas, lineaVenta{productoID: id, cantidad: l.Cantidad})
	}
	return lineas, nil
}

func (s *facturaService) resolverCliente(ctx context.Context, req dto.CrearFacturaRequest) (*uuid.UUID, *string, error) {
	nombre := req.ClienteNombre
	if nombre != nil {
		limpio := strings.TrimSpace(*nombre)
		nombre = &limpio
		if limpio == "" {
			nombre = nil
		}
	}
	if req.ClienteID == nil || *req.ClienteID == "" {
		return nil, nombre, nil
	}
	if nombre != nil {
		return nil, nil, errValidacion("cliente", "indique cliente_id o cliente_nombre, no ambos")
	}
	id, err := parseUUID("cliente_id", *req.ClienteID)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.clientes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errValidacion("cliente_id", "el cliente no existe")
		}
		return nil, nil, err
	}
	if !c.Activo {
		return nil, nil, errValidacion("cliente_id", "el cliente está inactivo")
	}
	return &id, nil, nil
}

func (s *facturaService) CrearFactura(ctx context.Context, vendedorID uuid.UUID, req dto.CrearFacturaRequest) (*dto.FacturaResponse, error) {
	lineas, err := validarLineasVenta(req.Lineas)
	if err != nil {
		return nil, err
	}
	if req.Descuento.IsNegative() {
		return nil, errValidacion("descuento", "no puede ser negativo")
	}
	estado := req.Estado
	if estado == "" {
		estado = model.FacturaCompletada
	}
	if estado != model.FacturaCompletada && estado != model.FacturaPendiente {
		return nil, errValidacion("estado", "debe ser PENDIENTE o COMPLETADA")
	}
	clienteID, clienteNombre, err := s.resolverCliente(ctx, req)
	if err != nil {
		return nil, err
	}

	fecha := s.ahora()
	if req.FechaVenta != nil {
		fecha = *req.FechaVenta
	}
	numeroFijo := ""
	if req.NumeroFactura != nil {
		numeroFijo = strings.TrimSpace(*req.NumeroFactura)
	}

	pedidos := make(map[uuid.UUID]int, len(lineas))
	ids := make([]uuid.UUID, 0, len(lineas))
	for _, l := range lineas {
		pedidos[l.productoID] = l.cantidad
		ids = append(ids, l.productoID)
	}
	ordenarIDs(ids)

	var factura *model.Factura
	for intento := 1; intento <= maxReintentosNumero; intento++ {
		factura = &model.Factura{
			ClienteID:     clienteID,
			ClienteNombre: clienteNombre,
			VendedorID:    vendedorID,
			FechaVenta:    fecha,
			Descuento:     req.Descuento.Round(2),
			Estado:        estado,
			Observaciones: req.Observaciones,
		}
		err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			return s.crearFacturaTx(tx, factura, numeroFijo, pedidos, ids)
		})
		if err == nil || numeroFijo != "" || !esDuplicado(err) {
			break
		}
		log.Warn().Int("intento", intento).Str("numero_factura", factura.NumeroFactura).
			Msg("número de factura duplicado, reintentando")
	}
	if err != nil {
		if esDuplicado(err) {
			return nil, errValidacion("numero_factura", "ya existe una factura con ese número")
		}
		return nil, traducirErrorDB(err)
	}

	if estado == model.FacturaCompletada {
		s.cache.Invalidar(ctx, ids...)
	}
	log.Info().
		Str("factura_id", factura.ID.String()).
		Str("numero_factura", factura.NumeroFactura).
		Str("estado", factura.Estado).
		Str("total", factura.Total.StringFixed(2)).
		Msg("factura creada")

	return s.ObtenerFactura(ctx, factura.ID)
}

func (s *facturaService) crearFacturaTx(tx *gorm.DB, f *model.Factura, numeroFijo string, pedidos map[uuid.UUID]int, ids []uuid.UUID) error {
	var productos map[uuid.UUID]model.Producto
	var err error
	if f.Estado == model.FacturaCompletada {
		productos, err = s.coordinador.VerificarStockTx(tx, pedidos)
	} else {
		productos, err = s.coordinador.BloquearProductosTx(tx, ids)
	}
	if err != nil {
		return err
	}
	for _, id := range ids {
		if p := productos[id]; !p.Activo {
			return errValidacion("producto_id", "el producto "+p.Codigo+" está inactivo")
		}
	}

	f.NumeroFactura = numeroFijo
	if f.NumeroFactura == "" {
		prefijo := prefijoNumero(f.FechaVenta)
		ultimo, err := s.repo.UltimoNumeroTx(tx, prefijo)
		if err != nil {
			return err
		}
		f.NumeroFactura = siguienteNumero(prefijo, ultimo)
	}

	detalles := make([]model.DetalleFactura, 0, len(ids))
	for _, id := range ids {
		p := productos[id]
		detalles = append(detalles, model.DetalleFactura{
			ProductoID:     id,
			Cantidad:       pedidos[id],
			PrecioUnitario: p.PrecioVenta,
			Subtotal:       subtotalLinea(p.PrecioVenta, pedidos[id]),
		})
	}
	f.Subtotal, f.Total = CalcularTotales(detalles, f.Descuento)
	if f.Total.IsNegative() {
		return errValidacion("descuento", "el descuento supera el subtotal")
	}
	if err := s.repo.CreateTx(tx, f); err != nil {
		return err
	}

	for i := range detalles {
		d := &detalles[i]
		d.FacturaID = f.ID
		if err := s.repo.CreateDetalleTx(tx, d); err != nil {
			return err
		}
		if f.Estado == model.FacturaCompletada {
			if err := s.coordinador.AplicarLineaTx(tx, f, d, f.VendedorID); err != nil {
				return err
			}
		}
	}
	return s.recalcularTotalesTx(tx, f)
}

// recalcularTotalesTx rewrites subtotal and total from the lines visible in tx.
func (s *facturaService) recalcularTotalesTx(tx *gorm.DB, f *model.Factura) error {
	detalles, err := s.repo.ListDetallesTx(tx, f.ID)
	if err != nil {
		return err
	}
	subtotal, total := CalcularTotales(detalles, f.Descuento)
	if total.IsNegative() {
		return errValidacion("descuento", "el descuento supera el subtotal")
	}
	if err := s.repo.UpdateTotalesTx(tx, f.ID, subtotal, total); err != nil {
		return err
	}
	f.Subtotal, f.Total = subtotal, total
	return nil
}

// bloquearFactura locks the invoice row and rejects voided invoices.
func (s *facturaService) bloquearFactura(tx *gorm.DB, id uuid.UUID) (*model.Factura, error) {
	f, err := s.repo.FindByIDForUpdateTx(tx, id)
	if err != nil {
		return nil, traducirErrorDB(err)
	}
	if f.Estado == model.FacturaAnulada {
		return nil, ErrFacturaYaAnulada
	}
	return f, nil
}

func productosDe(detalles []model.DetalleFactura) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(detalles))
	for _, d := range detalles {
		ids = append(ids, d.ProductoID)
	}
	ordenarIDs(ids)
	return ids
}

// ordenarPorProducto sorts lines into lock order.
func ordenarPorProducto(detalles []model.DetalleFactura) {
	ids := productosDe(detalles)
	pos := make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	ordenados := make([]model.DetalleFactura, len(detalles))
	for _, d := range detalles {
		ordenados[pos[d.ProductoID]] = d
	}
	copy(detalles, ordenados)
}

// AnularFactura voids an invoice. A COMPLETADA invoice gives every applied line
// back to stock exactly once; voiding twice fails with ErrFacturaYaAnulada.
func (s *facturaService) AnularFactura(ctx context.Context, id, usuarioID uuid.UUID) (*dto.FacturaResponse, error) {
	var tocados []uuid.UUID
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		f, err := s.bloquearFactura(tx, id)
		if err != nil {
			return err
		}
		if f.Estado == model.FacturaCompletada {
			detalles, err := s.repo.ListDetallesTx(tx, f.ID)
			if err != nil {
				return err
			}
			ordenarPorProducto(detalles)
			motivo := fmt.Sprintf("Anulación de Factura #%s", f.NumeroFactura)
			for i := range detalles {
				if err := s.coordinador.RevertirLineaTx(tx, f, &detalles[i], motivo, usuarioID); err != nil {
					return err
				}
			}
			tocados = productosDe(detalles)
		}
		return s.repo.UpdateEstadoTx(tx, f.ID, model.FacturaAnulada)
	})
	if err != nil {
		return nil, traducirErrorDB(err)
	}

	s.cache.Invalidar(ctx, tocados...)
	log.Info().Str("factura_id", id.String()).Int("lineas_revertidas", len(tocados)).Msg("factura anulada")
	return s.ObtenerFactura(ctx, id)
}

// CompletarFactura moves a PENDIENTE invoice to COMPLETADA, taking every line
// out of stock or none of them.
func (s *facturaService) CompletarFactura(ctx context.Context, id, usuarioID uuid.UUID) (*dto.FacturaResponse, error) {
	var tocados []uuid.UUID
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		f, err := s.bloquearFactura(tx, id)
		if err != nil {
			return err
		}
		if f.Estado != model.FacturaPendiente {
			return errValidacion("estado", "solo se pueden completar facturas pendientes")
		}
		detalles, err := s.repo.ListDetallesTx(tx, f.ID)
		if err != nil {
			return err
		}
		pedidos := make(map[uuid.UUID]int, len(detalles))
		for _, d := range detalles {
			pedidos[d.ProductoID] = d.Cantidad
		}
		if _, err := s.coordinador.VerificarStockTx(tx, pedidos); err != nil {
			return err
		}
		ordenarPorProducto(detalles)
		for i := range detalles {
			if err := s.coordinador.AplicarLineaTx(tx, f, &detalles[i], usuarioID); err != nil {
				return err
			}
		}
		tocados = productosDe(detalles)
		return s.repo.UpdateEstadoTx(tx, f.ID, model.FacturaCompletada)
	})
	if err != nil {
		return nil, traducirErrorDB(err)
	}

	s.cache.Invalidar(ctx, tocados...)
	return s.ObtenerFactura(ctx, id)
}

// AgregarLinea adds a product to an open invoice at its current sale price.
// On a COMPLETADA invoice the quantity is taken from stock in the same step.
func (s *facturaService) AgregarLinea(ctx context.Context, id, usuarioID uuid.UUID, req dto.LineaFacturaRequest) (*dto.FacturaResponse, error) {
	lineas, err := validarLineasVenta([]dto.LineaFacturaRequest{req})
	if err != nil {
		return nil, err
	}
	l := lineas[0]

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		f, err := s.bloquearFactura(tx, id)
		if err != nil {
			return err
		}
		detalles, err := s.repo.ListDetallesTx(tx, f.ID)
		if err != nil {
			return err
		}
		for _, d := range detalles {
			if d.ProductoID == l.productoID {
				return errValidacion("producto_id", "el producto ya está en la factura")
			}
		}
		productos, err := s.coordinador.BloquearProductosTx(tx, []uuid.UUID{l.productoID})
		if err != nil {
			return err
		}
		p := productos[l.productoID]
		if !p.Activo {
			return errValidacion("producto_id", "el producto "+p.Codigo+" está inactivo")
		}

		d := &model.DetalleFactura{
			FacturaID:      f.ID,
			ProductoID:     p.ID,
			Cantidad:       l.cantidad,
			PrecioUnitario: p.PrecioVenta,
			Subtotal:       subtotalLinea(p.PrecioVenta, l.cantidad),
		}
		if err := s.repo.CreateDetalleTx(tx, d); err != nil {
			return err
		}
		if f.Estado == model.FacturaCompletada {
			if err := s.coordinador.AplicarLineaTx(tx, f, d, usuarioID); err != nil {
				return err
			}
		}
		return s.recalcularTotalesTx(tx, f)
	})
	if err != nil {
		return nil, traducirErrorDB(err)
	}

	s.cache.Invalidar(ctx, l.productoID)
	return s.ObtenerFactura(ctx, id)
}

// EliminarLinea removes a product from an invoice, giving its quantity back to
// stock when it had been taken.
func (s *facturaService) EliminarLinea(ctx context.Context, id, productoID, usuarioID uuid.UUID) (*dto.FacturaResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		f, err := s.bloquearFactura(tx, id)
		if err != nil {
			return err
		}
		detalles, err := s.repo.ListDetallesTx(tx, f.ID)
		if err != nil {
			return err
		}
		var linea *model.DetalleFactura
		for i := range detalles {
			if detalles[i].ProductoID == productoID {
				linea = &detalles[i]
			}
		}
		if linea == nil {
			return ErrNoEncontrado
		}
		if len(detalles) == 1 {
			return errValidacion("lineas", "la factura debe conservar al menos una línea; anúlela en su lugar")
		}

		if linea.StockAplicado {
			motivo := fmt.Sprintf("Anulación/Corrección - Factura #%s", f.NumeroFactura)
			if err := s.coordinador.RevertirLineaTx(tx, f, linea, motivo, usuarioID); err != nil {
				return err
			}
		}
		if err := s.repo.DeleteDetalleTx(tx, linea.ID); err != nil {
			return err
		}
		return s.recalcularTotalesTx(tx, f)
	})
	if err != nil {
		return nil, traducirErrorDB(err)
	}

	s.cache.Invalidar(ctx, productoID)
	return s.ObtenerFactura(ctx, id)
}

func (s *facturaService) ObtenerFactura(ctx context.Context, id uuid.UUID) (*dto.FacturaResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducirErrorDB(err)
	}
	resp := facturaToResponse(f)
	return &resp, nil
}

func (s *facturaService) ListarFacturas(ctx context.Context, filter dto.FacturaFilter) (*dto.FacturaListResponse, error) {
	facturas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.FacturaResponse, 0, len(facturas))
	for i := range facturas {
		data = append(data, facturaToResponse(&facturas[i]))
	}
	return &dto.FacturaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// GenerarPDF renders the invoice into PDF_STORAGE_PATH and returns the file path.
func (s *facturaService) GenerarPDF(ctx context.Context, id uuid.UUID) (string, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", traducirErrorDB(err)
	}
	return infra.GenerarFacturaPDF(f, s.cfg.EmpresaNombre, s.cfg.PDFStoragePath)
}

func facturaToResponse(f *model.Factura) dto.FacturaResponse {
	resp := dto.FacturaResponse{
		ID:            f.ID.String(),
		NumeroFactura: f.NumeroFactura,
		Cliente:       f.NombreCliente(),
		VendedorID:    f.VendedorID.String(),
		FechaVenta:    f.FechaVenta,
		Subtotal:      f.Subtotal,
		Descuento:     f.Descuento,
		Total:         f.Total,
		Estado:        f.Estado,
		Observaciones: f.Observaciones,
		Detalles:      make([]dto.DetalleFacturaResponse, 0, len(f.Detalles)),
	}
	if f.ClienteID != nil {
		cid := f.ClienteID.String()
		resp.ClienteID = &cid
	}
	for _, d := range f.Detalles {
		item := dto.DetalleFacturaResponse{
			ProductoID:     d.ProductoID.String(),
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Subtotal:       d.Subtotal,
		}
		if d.Producto != nil {
			item.Codigo = d.Producto.Codigo
			item.Nombre = d.Producto.Nombre()
		}
		resp.Detalles = append(resp.Detalles, item)
	}
	return resp
}
