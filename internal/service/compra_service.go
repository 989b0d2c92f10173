package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/infra"
	"sistemainventario/internal/model"
	"sistemainventario/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CompraService records supplier deliveries: each line raises stock through
// the coordinator and recosts the product.
type CompraService interface {
	RegistrarEntrada(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarEntradaRequest) (*dto.EntradaCompraResponse, error)
	ObtenerEntrada(ctx context.Context, id uuid.UUID) (*dto.EntradaCompraResponse, error)
	ListarEntradas(ctx context.Context, filter dto.EntradaCompraFilter) (*dto.EntradaCompraListResponse, error)
}

type compraService struct {
	repo        repository.EntradaCompraRepository
	coordinador *CoordinadorStock
	costeo      *MotorCosteo
	cache       *infra.CacheSnapshots
	ahora       func() time.Time
}

func NewCompraService(
	repo repository.EntradaCompraRepository,
	coordinador *CoordinadorStock,
	costeo *MotorCosteo,
	cache *infra.CacheSnapshots,
) CompraService {
	return &compraService{repo: repo, coordinador: coordinador, costeo: costeo, cache: cache, ahora: time.Now}
}

type lineaCompra struct {
	productoID uuid.UUID
	cantidad   int
	precio     decimal.Decimal
}

func validarLineasCompra(req []dto.LineaEntradaRequest) ([]lineaCompra, error) {
	if len(req) == 0 {
		return nil, errValidacion("lineas", "la entrada debe tener al menos una línea")
	}
	vistos := make(map[uuid.UUID]bool, len(req))
	lineas := make([]lineaCompra, 0, len(req))
	for i, l := range req {
		campo := fmt.Sprintf("lineas[%d]", i)
		id, err := parseUUID(campo+".producto_id", l.ProductoID)
		if err != nil {
			return nil, err
		}
		if vistos[id] {
			return nil, errValidacion(campo+".producto_id", "producto repetido en la entrada")
		}
		vistos[id] = true
		if l.Cantidad < 1 {
			return nil, errValidacion(campo+".cantidad", "debe ser al menos 1")
		}
		if l.PrecioUnitario.IsNegative() {
			return nil, errValidacion(campo+".precio_unitario", "no puede ser negativo")
		}
		lineas = append(lineas, lineaCompra{productoID: id, cantidad: l.Cantidad, precio: l.PrecioUnitario.Round(2)})
	}
	return lineas, nil
}

func (s *compraService) RegistrarEntrada(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarEntradaRequest) (*dto.EntradaCompraResponse, error) {
	proveedor := strings.TrimSpace(req.Proveedor)
	numero := strings.TrimSpace(req.NumeroFactura)
	if proveedor == "" {
		return nil, errValidacion("proveedor", "requerido")
	}
	if numero == "" {
		return nil, errValidacion("numero_factura", "requerido")
	}
	lineas, err := validarLineasCompra(req.Lineas)
	if err != nil {
		return nil, err
	}

	fecha := s.ahora()
	if req.FechaCompra != nil {
		fecha = *req.FechaCompra
	}

	total := decimal.Zero
	for _, l := range lineas {
		total = total.Add(l.precio.Mul(decimal.NewFromInt(int64(l.cantidad))))
	}

	// Lines are processed in product-id order, the global lock order.
	ids := make([]uuid.UUID, 0, len(lineas))
	porProducto := make(map[uuid.UUID]lineaCompra, len(lineas))
	for _, l := range lineas {
		ids = append(ids, l.productoID)
		porProducto[l.productoID] = l
	}
	ordenarIDs(ids)

	entrada := &model.EntradaCompra{
		NumeroFactura:   numero,
		Proveedor:       proveedor,
		FechaCompra:     fecha,
		Total:           total.Round(2),
		Observaciones:   req.Observaciones,
		UsuarioRegistro: usuarioID,
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, entrada); err != nil {
			return err
		}
		ref := entrada.ID
		motivo := fmt.Sprintf("Entrada de compra - Factura #%s (%s)", numero, proveedor)
		for _, id := range ids {
			l := porProducto[id]
			p, err := s.coordinador.CompraRegistradaTx(tx, EventoStock{
				ProductoID:   id,
				Cantidad:     l.cantidad,
				Motivo:       motivo,
				ReferenciaID: &ref,
				UsuarioID:    usuarioID,
			})
			if err != nil {
				return err
			}
			detalle := &model.DetalleEntradaCompra{
				EntradaCompraID: entrada.ID,
				ProductoID:      id,
				Cantidad:        l.cantidad,
				PrecioUnitario:  l.precio,
				Subtotal:        l.precio.Mul(decimal.NewFromInt(int64(l.cantidad))).Round(2),
			}
			if err := s.repo.CreateDetalleTx(tx, detalle); err != nil {
				return err
			}
			if err := s.costeo.RecalcularTx(tx, p, entrada.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, traducirErrorDB(err)
	}

	s.cache.Invalidar(ctx, ids...)
	log.Info().
		Str("entrada_id", entrada.ID.String()).
		Str("numero_factura", numero).
		Int("lineas", len(lineas)).
		Str("total", entrada.Total.StringFixed(2)).
		Msg("entrada de compra registrada")

	return s.ObtenerEntrada(ctx, entrada.ID)
}

func (s *compraService) ObtenerEntrada(ctx context.Context, id uuid.UUID) (*dto.EntradaCompraResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducirErrorDB(err)
	}
	resp := entradaToResponse(e)
	return &resp, nil
}

func (s *compraService) ListarEntradas(ctx context.Context, filter dto.EntradaCompraFilter) (*dto.EntradaCompraListResponse, error) {
	entradas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.EntradaCompraResponse, 0, len(entradas))
	for i := range entradas {
		data = append(data, entradaToResponse(&entradas[i]))
	}
	return &dto.EntradaCompraListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func entradaToResponse(e *model.EntradaCompra) dto.EntradaCompraResponse {
	resp := dto.EntradaCompraResponse{
		ID:              e.ID.String(),
		NumeroFactura:   e.NumeroFactura,
		Proveedor:       e.Proveedor,
		FechaCompra:     e.FechaCompra,
		Total:           e.Total,
		Observaciones:   e.Observaciones,
		UsuarioRegistro: e.UsuarioRegistro.String(),
		Detalles:        make([]dto.DetalleEntradaResponse, 0, len(e.Detalles)),
	}
	for _, d := range e.Detalles {
		item := dto.DetalleEntradaResponse{
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
