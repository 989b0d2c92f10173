package service

import (
	"context"
	"io"
	"time"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/infra"
	"sistemainventario/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReporteService builds read-only reports over the ledgers.
type ReporteService interface {
	VentasDelDia(ctx context.Context, fecha time.Time) (*dto.VentasDiaResponse, error)
	PorAgotarse(ctx context.Context, categoriaID *uuid.UUID) ([]dto.ProductoPorAgotarseResponse, error)
	Valorizacion(ctx context.Context, categoriaID *uuid.UUID) (*dto.ValorizacionResponse, error)
	ExportarValorizacionXLSX(ctx context.Context, w io.Writer, categoriaID *uuid.UUID) error
}

type reporteService struct {
	productos repository.ProductoRepository
	facturas  repository.FacturaRepository
}

func NewReporteService(productos repository.ProductoRepository, facturas repository.FacturaRepository) ReporteService {
	return &reporteService{productos: productos, facturas: facturas}
}

// VentasDelDia counts and sums the COMPLETADA invoices dated on fecha's
// calendar day, in fecha's location.
func (s *reporteService) VentasDelDia(ctx context.Context, fecha time.Time) (*dto.VentasDiaResponse, error) {
	desde := time.Date(fecha.Year(), fecha.Month(), fecha.Day(), 0, 0, 0, 0, fecha.Location())
	facturas, err := s.facturas.ListCompletadasEntre(ctx, desde, desde.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, f := range facturas {
		total = total.Add(f.Total)
	}
	return &dto.VentasDiaResponse{
		Fecha:            desde.Format("2006-01-02"),
		CantidadFacturas: len(facturas),
		Total:            total.Round(2),
	}, nil
}

func (s *reporteService) PorAgotarse(ctx context.Context, categoriaID *uuid.UUID) ([]dto.ProductoPorAgotarseResponse, error) {
	productos, err := s.productos.ListPorAgotarse(ctx, categoriaID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductoPorAgotarseResponse, 0, len(productos))
	for i := range productos {
		p := &productos[i]
		item := dto.ProductoPorAgotarseResponse{
			ProductoID:  p.ID.String(),
			Codigo:      p.Codigo,
			Nombre:      p.Nombre(),
			StockActual: p.StockActual,
			StockMinimo: p.StockMinimo,
		}
		if p.Categoria != nil {
			item.Categoria = p.Categoria.Nombre
		}
		out = append(out, item)
	}
	return out, nil
}

// Valorizacion values every active product's stock at its cost basis.
func (s *reporteService) Valorizacion(ctx context.Context, categoriaID *uuid.UUID) (*dto.ValorizacionResponse, error) {
	productos, err := s.productos.ListActivos(ctx, categoriaID)
	if err != nil {
		return nil, err
	}
	resp := &dto.ValorizacionResponse{
		Items: make([]dto.ValorizacionItem, 0, len(productos)),
		Total: decimal.Zero,
	}
	for i := range productos {
		p := &productos[i]
		item := dto.ValorizacionItem{
			ProductoID:    p.ID.String(),
			Codigo:        p.Codigo,
			Nombre:        p.Nombre(),
			StockActual:   p.StockActual,
			CostoUnitario: p.CostoUnitario(),
			Valor:         p.ValorInventario(),
		}
		if p.Categoria != nil {
			item.Categoria = p.Categoria.Nombre
		}
		resp.Items = append(resp.Items, item)
		resp.Total = resp.Total.Add(item.Valor)
	}
	return resp, nil
}

func (s *reporteService) ExportarValorizacionXLSX(ctx context.Context, w io.Writer, categoriaID *uuid.UUID) error {
	v, err := s.Valorizacion(ctx, categoriaID)
	if err != nil {
		return err
	}
	return infra.EscribirValorizacionXLSX(w, v)
}
