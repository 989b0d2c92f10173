package service

import (
	"context"
	"strings"

	"sistemainventario/internal/dto"
	"sistemainventario/internal/model"
	"sistemainventario/internal/repository"

	"github.com/google/uuid"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type clienteService struct {
	repo     repository.ClienteRepository
	facturas repository.FacturaRepository
}

func NewClienteService(repo repository.ClienteRepository, facturas repository.FacturaRepository) ClienteService {
	return &clienteService{repo: repo, facturas: facturas}
}

// opcional trims s and maps blank input to nil so unique columns stay NULL.
func opcional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func errCedulaDuplicada() error {
	return errValidacion("cedula", "ya existe un cliente con esa cédula")
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	tipo := req.TipoCliente
	if tipo == "" {
		tipo = model.ClienteRegular
	}
	c := &model.Cliente{
		Nombre:      strings.TrimSpace(req.Nombre),
		Cedula:      opcional(req.Cedula),
		Telefono:    opcional(req.Telefono),
		Email:       opcional(req.Email),
		Direccion:   opcional(req.Direccion),
		TipoCliente: tipo,
		Activo:      true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if esDuplicado(err) {
			return nil, errCedulaDuplicada()
		}
		return nil, err
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducirErrorDB(err)
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	clientes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		data = append(data, clienteToResponse(&clientes[i]))
	}
	return &dto.ClienteListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducirErrorDB(err)
	}
	if req.Nombre != nil {
		c.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Cedula != nil {
		c.Cedula = opcional(req.Cedula)
	}
	if req.Telefono != nil {
		c.Telefono = opcional(req.Telefono)
	}
	if req.Email != nil {
		c.Email = opcional(req.Email)
	}
	if req.Direccion != nil {
		c.Direccion = opcional(req.Direccion)
	}
	if req.TipoCliente != nil {
		c.TipoCliente = *req.TipoCliente
	}
	if req.Activo != nil {
		c.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, c); err != nil {
		if esDuplicado(err) {
			return nil, errCedulaDuplicada()
		}
		return nil, err
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

// Eliminar removes a customer without invoices; invoiced customers can only
// be deactivated.
func (s *clienteService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return traducirErrorDB(err)
	}
	n, err := s.facturas.ContarPorCliente(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrEnUso
	}
	return traducirErrorBorrado(s.repo.Delete(ctx, id))
}

func clienteToResponse(c *model.Cliente) dto.ClienteResponse {
	return dto.ClienteResponse{
		ID:          c.ID.String(),
		Nombre:      c.Nombre,
		Cedula:      c.Cedula,
		Telefono:    c.Telefono,
		Email:       c.Email,
		Direccion:   c.Direccion,
		TipoCliente: c.TipoCliente,
		Activo:      c.Activo,
	}
}
