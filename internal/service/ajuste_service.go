package service

import (
	"context"
	"strings"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/infra"
	"sistemainventario/internal/model"
	"sistemainventario/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AjusteService records manual stock corrections and lists the full
// adjustment ledger, audit rows included.
type AjusteService interface {
	RegistrarAjuste(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarAjusteRequest) (*dto.AjusteResponse, error)
	ListarAjustes(ctx context.Context, filter dto.AjusteFilter) (*dto.AjusteListResponse, error)
}

type ajusteService struct {
	repo        repository.AjusteRepository
	db          *gorm.DB
	coordinador *CoordinadorStock
	cache       *infra.CacheSnapshots
}

func NewAjusteService(
	repo repository.AjusteRepository,
	db *gorm.DB,
	coordinador *CoordinadorStock,
	cache *infra.CacheSnapshots,
) AjusteService {
	return &ajusteService{repo: repo, db: db, coordinador: coordinador, cache: cache}
}

func (s *ajusteService) RegistrarAjuste(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarAjusteRequest) (*dto.AjusteResponse, error) {
	productoID, err := parseUUID("producto_id", req.ProductoID)
	if err != nil {
		return nil, err
	}
	if !model.TipoAjusteValido(req.TipoAjuste) {
		return nil, errValidacion("tipo_ajuste", "debe ser ENTRADA, SALIDA o CORRECCION")
	}
	if req.CantidadNueva == nil {
		return nil, errValidacion("cantidad_nueva", "requerido")
	}
	motivo := strings.TrimSpace(req.Motivo)
	if motivo == "" {
		return nil, errValidacion("motivo", "requerido")
	}

	ajuste := &model.AjusteInventario{
		ProductoID:      productoID,
		TipoAjuste:      req.TipoAjuste,
		CantidadNueva:   *req.CantidadNueva,
		Motivo:          motivo,
		Origen:          model.OrigenManual,
		UsuarioRegistro: usuarioID,
	}
	err = runTx(ctx, s.db, func(tx *gorm.DB) error {
		return s.coordinador.AjusteRegistradoTx(tx, ajuste)
	})
	if err != nil {
		return nil, traducirErrorDB(err)
	}

	s.cache.Invalidar(ctx, productoID)
	log.Info().
		Str("producto_id", productoID.String()).
		Str("tipo", ajuste.TipoAjuste).
		Int("anterior", ajuste.CantidadAnterior).
		Int("nueva", ajuste.CantidadNueva).
		Msg("ajuste de inventario registrado")

	resp := ajusteToResponse(ajuste)
	return &resp, nil
}

func (s *ajusteService) ListarAjustes(ctx context.Context, filter dto.AjusteFilter) (*dto.AjusteListResponse, error) {
	ajustes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.AjusteResponse, 0, len(ajustes))
	for i := range ajustes {
		data = append(data, ajusteToResponse(&ajustes[i]))
	}
	return &dto.AjusteListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func ajusteToResponse(a *model.AjusteInventario) dto.AjusteResponse {
	resp := dto.AjusteResponse{
		ID:               a.ID.String(),
		ProductoID:       a.ProductoID.String(),
		TipoAjuste:       a.TipoAjuste,
		CantidadAnterior: a.CantidadAnterior,
		CantidadNueva:    a.CantidadNueva,
		Diferencia:       a.Diferencia,
		Motivo:           a.Motivo,
		Origen:           a.Origen,
		UsuarioRegistro:  a.UsuarioRegistro.String(),
		FechaAjuste:      a.FechaAjuste,
	}
	if a.Producto != nil {
		resp.Codigo = a.Producto.Codigo
	}
	if a.ReferenciaID != nil {
		ref := a.ReferenciaID.String()
		resp.ReferenciaID = &ref
	}
	return resp
}
