package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/infra"
	"sistemainventario/internal/model"
	"sistemainventario/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	ListarPorAgotarse(ctx context.Context, categoriaID *uuid.UUID) ([]dto.ProductoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
	Eliminar(ctx context.Context, id uuid.UUID) error
	Snapshot(ctx context.Context, id uuid.UUID) (*dto.SnapshotProductoResponse, error)
	ListarHistorial(ctx context.Context, id uuid.UUID, filter dto.HistorialPrecioFilter) (*dto.HistorialPrecioListResponse, error)
}

type productoService struct {
	repo      repository.ProductoRepository
	nombres   repository.NombreProductoRepository
	historial repository.HistorialPrecioRepository
	cache     *infra.CacheSnapshots
}

func NewProductoService(
	repo repository.ProductoRepository,
	nombres repository.NombreProductoRepository,
	historial repository.HistorialPrecioRepository,
	cache *infra.CacheSnapshots,
) ProductoService {
	return &productoService{repo: repo, nombres: nombres, historial: historial, cache: cache}
}

// validarNombre checks that the shared name exists and belongs to categoriaID.
func (s *productoService) validarNombre(ctx context.Context, nombreID, categoriaID uuid.UUID) error {
	n, err := s.nombres.FindByID(ctx, nombreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errValidacion("nombre_producto_id", "el nombre de producto no existe")
		}
		return err
	}
	if n.CategoriaID != categoriaID {
		return errValidacion("categoria_id", "no coincide con la categoría del nombre de producto")
	}
	return nil
}

func (s *productoService) validarCodigoLibre(ctx context.Context, codigo string, propio uuid.UUID) error {
	existente, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existente != nil && existente.ID != propio {
		return errValidacion("codigo", "ya existe un producto con ese código")
	}
	return nil
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	codigo := strings.TrimSpace(req.Codigo)
	if codigo == "" {
		return nil, errValidacion("codigo", "es obligatorio")
	}
	nombreID, err := parseUUID("nombre_producto_id", req.NombreProductoID)
	if err != nil {
		return nil, err
	}
	categoriaID, err := parseUUID("categoria_id", req.CategoriaID)
	if err != nil {
		return nil, err
	}
	if req.StockInicial < 0 || req.StockMinimo < 0 {
		return nil, errValidacion("stock", "no puede ser negativo")
	}
	if err := s.validarNombre(ctx, nombreID, categoriaID); err != nil {
		return nil, err
	}
	if err := s.validarCodigoLibre(ctx, codigo, uuid.Nil); err != nil {
		return nil, err
	}

	p := &model.Producto{
		Codigo:                     codigo,
		NombreProductoID:           nombreID,
		CategoriaID:                categoriaID,
		Descripcion:                req.Descripcion,
		PrecioCompra:               req.PrecioCompra.Round(2),
		PrecioVenta:                req.PrecioVenta.Round(2),
		PorcentajeGanancia:         req.PorcentajeGanancia.Round(2),
		ActualizarPrecioAutomatico: req.ActualizarPrecioAutomatico,
		StockActual:                req.StockInicial,
		StockMinimo:                req.StockMinimo,
		Activo:                     true,
	}
	if p.ActualizarPrecioAutomatico {
		p.PrecioVenta = PrecioVentaConGanancia(p.PrecioCompra, p.PorcentajeGanancia)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if esDuplicado(err) {
			return nil, errValidacion("codigo", "ya existe un producto con ese código")
		}
		return nil, traducirErrorDB(err)
	}

	log.Info().Str("producto_id", p.ID.String()).Str("codigo", p.Codigo).
		Int("stock_inicial", p.StockActual).Msg("producto creado")
	return s.ObtenerPorID(ctx, p.ID)
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducirErrorDB(err)
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, productoToResponse(&productos[i]))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	return &dto.ProductoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *productoService) ListarPorAgotarse(ctx context.Context, categoriaID *uuid.UUID) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.ListPorAgotarse(ctx, categoriaID)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, productoToResponse(&productos[i]))
	}
	return data, nil
}

// Actualizar edits catalog fields. Stock and average cost are never touched
// here; a changed sale price is recorded in the price history. The row is
// re-read under lock and only the columns present in req are written, so a
// purchase recosting the product concurrently is never overwritten.
func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	actual, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducirErrorDB(err)
	}

	cambios := map[string]interface{}{}
	if req.Codigo != nil {
		codigo := strings.TrimSpace(*req.Codigo)
		if codigo == "" {
			return nil, errValidacion("codigo", "es obligatorio")
		}
		if codigo != actual.Codigo {
			if err := s.validarCodigoLibre(ctx, codigo, actual.ID); err != nil {
				return nil, err
			}
		}
		cambios["codigo"] = codigo
	}
	nombreID, categoriaID := actual.NombreProductoID, actual.CategoriaID
	if req.NombreProductoID != nil {
		if nombreID, err = parseUUID("nombre_producto_id", *req.NombreProductoID); err != nil {
			return nil, err
		}
		cambios["nombre_producto_id"] = nombreID
	}
	if req.CategoriaID != nil {
		if categoriaID, err = parseUUID("categoria_id", *req.CategoriaID); err != nil {
			return nil, err
		}
		cambios["categoria_id"] = categoriaID
	}
	if req.NombreProductoID != nil || req.CategoriaID != nil {
		if err := s.validarNombre(ctx, nombreID, categoriaID); err != nil {
			return nil, err
		}
	}
	if req.Descripcion != nil {
		cambios["descripcion"] = req.Descripcion
	}
	if req.PrecioCompra != nil {
		cambios["precio_compra"] = req.PrecioCompra.Round(2)
	}
	if req.PrecioVenta != nil {
		cambios["precio_venta"] = req.PrecioVenta.Round(2)
	}
	if req.PorcentajeGanancia != nil {
		cambios["porcentaje_ganancia"] = req.PorcentajeGanancia.Round(2)
	}
	if req.ActualizarPrecioAutomatico != nil {
		cambios["actualizar_precio_automatico"] = *req.ActualizarPrecioAutomatico
	}
	if req.StockMinimo != nil {
		if *req.StockMinimo < 0 {
			return nil, errValidacion("stock_minimo", "no puede ser negativo")
		}
		cambios["stock_minimo"] = *req.StockMinimo
	}
	if len(cambios) == 0 {
		return s.ObtenerPorID(ctx, id)
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return err
		}
		ventaAntes := p.PrecioVenta

		recalcular := false
		if req.PrecioCompra != nil {
			p.PrecioCompra = req.PrecioCompra.Round(2)
		}
		if req.PrecioVenta != nil {
			p.PrecioVenta = req.PrecioVenta.Round(2)
		}
		if req.PorcentajeGanancia != nil {
			recalcular = !req.PorcentajeGanancia.Equal(p.PorcentajeGanancia)
			p.PorcentajeGanancia = req.PorcentajeGanancia.Round(2)
		}
		if req.ActualizarPrecioAutomatico != nil {
			recalcular = recalcular || (*req.ActualizarPrecioAutomatico && !p.ActualizarPrecioAutomatico)
			p.ActualizarPrecioAutomatico = *req.ActualizarPrecioAutomatico
		}
		if recalcular && p.ActualizarPrecioAutomatico && req.PrecioVenta == nil {
			p.PrecioVenta = PrecioVentaConGanancia(p.CostoUnitario(), p.PorcentajeGanancia)
			cambios["precio_venta"] = p.PrecioVenta
		}

		if err := s.repo.UpdateCatalogoTx(tx, id, cambios); err != nil {
			return err
		}
		if p.PrecioVenta.Equal(ventaAntes) {
			return nil
		}
		return s.historial.CreateTx(tx, &model.HistorialPrecio{
			ProductoID:         p.ID,
			CostoAntes:         p.CostoPromedio,
			CostoDespues:       p.CostoPromedio,
			VentaAntes:         ventaAntes,
			VentaDespues:       p.PrecioVenta,
			PorcentajeAplicado: p.PorcentajeGanancia,
			Motivo:             model.MotivoPrecioManual,
		})
	})
	if err != nil {
		if esDuplicado(err) {
			return nil, errValidacion("codigo", "ya existe un producto con ese código")
		}
		return nil, traducirErrorDB(err)
	}

	s.cache.Invalidar(ctx, id)
	return s.ObtenerPorID(ctx, id)
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetActivo(ctx, id, false); err != nil {
		return traducirErrorDB(err)
	}
	s.cache.Invalidar(ctx, id)
	return nil
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetActivo(ctx, id, true); err != nil {
		return traducirErrorDB(err)
	}
	s.cache.Invalidar(ctx, id)
	return nil
}

// Eliminar hard-deletes a product that no ledger row references yet.
// Referenced products can only be deactivated.
func (s *productoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return traducirErrorDB(err)
	}
	n, err := s.repo.ContarReferencias(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrEnUso
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return traducirErrorBorrado(err)
	}
	s.cache.Invalidar(ctx, id)
	return nil
}

// Snapshot serves the point-of-sale view from the cache when possible.
// Inactive products are not sellable and report as not found.
func (s *productoService) Snapshot(ctx context.Context, id uuid.UUID) (*dto.SnapshotProductoResponse, error) {
	var snap dto.SnapshotProductoResponse
	if s.cache.Obtener(ctx, id, &snap) {
		return &snap, nil
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducirErrorDB(err)
	}
	if !p.Activo {
		return nil, ErrNoEncontrado
	}
	snap = dto.SnapshotProductoResponse{
		ProductoID:  p.ID.String(),
		Codigo:      p.Codigo,
		Nombre:      p.Nombre(),
		PrecioVenta: p.PrecioVenta,
		Stock:       p.StockActual,
		Unidad:      p.UnidadMedida(),
	}
	s.cache.Guardar(ctx, id, snap)
	return &snap, nil
}

func (s *productoService) ListarHistorial(ctx context.Context, id uuid.UUID, filter dto.HistorialPrecioFilter) (*dto.HistorialPrecioListResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducirErrorDB(err)
	}
	rows, total, err := s.historial.ListByProducto(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.HistorialPrecioListResponse{
		ProductoID: p.ID.String(),
		Codigo:     p.Codigo,
		Data:       make([]dto.HistorialPrecioItem, 0, len(rows)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	for _, h := range rows {
		item := dto.HistorialPrecioItem{
			ID:                 h.ID.String(),
			Motivo:             h.Motivo,
			CostoAntes:         h.CostoAntes,
			CostoDespues:       h.CostoDespues,
			VentaAntes:         h.VentaAntes,
			VentaDespues:       h.VentaDespues,
			PorcentajeAplicado: h.PorcentajeAplicado,
			Fecha:              h.CreatedAt.Format(time.RFC3339),
		}
		if h.ReferenciaID != nil {
			ref := h.ReferenciaID.String()
			item.EntradaCompraID = &ref
		}
		resp.Data = append(resp.Data, item)
	}
	return resp, nil
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	resp := dto.ProductoResponse{
		ID:                         p.ID.String(),
		Codigo:                     p.Codigo,
		Nombre:                     p.Nombre(),
		NombreProductoID:           p.NombreProductoID.String(),
		CategoriaID:                p.CategoriaID.String(),
		UnidadMedida:               p.UnidadMedida(),
		Descripcion:                p.Descripcion,
		PrecioCompra:               p.PrecioCompra,
		PrecioVenta:                p.PrecioVenta,
		CostoPromedio:              p.CostoPromedio,
		PorcentajeGanancia:         p.PorcentajeGanancia,
		ActualizarPrecioAutomatico: p.ActualizarPrecioAutomatico,
		StockActual:                p.StockActual,
		StockMinimo:                p.StockMinimo,
		PorAgotarse:                p.EstaPorAgotarse(),
		ValorInventario:            p.ValorInventario(),
		Activo:                     p.Activo,
	}
	if p.Categoria != nil {
		resp.Categoria = p.Categoria.Nombre
	}
	return resp
}
