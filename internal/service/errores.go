package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNoEncontrado     = errors.New("registro no encontrado")
	ErrEnUso            = errors.New("no se puede eliminar, está en uso")
	ErrFacturaYaAnulada = errors.New("la factura ya está anulada")
)

// ValidacionError rejects a request before anything is written.
type ValidacionError struct {
	Campos map[string]string
}

func (e *ValidacionError) Error() string {
	claves := make([]string, 0, len(e.Campos))
	for k := range e.Campos {
		claves = append(claves, k)
	}
	sort.Strings(claves)
	partes := make([]string, 0, len(claves))
	for _, k := range claves {
		partes = append(partes, k+": "+e.Campos[k])
	}
	return "validacion: " + strings.Join(partes, "; ")
}

func errValidacion(campo, msg string) *ValidacionError {
	return &ValidacionError{Campos: map[string]string{campo: msg}}
}

// Faltante describes one invoice line that could not be served from stock.
type Faltante struct {
	ProductoID uuid.UUID
	Codigo     string
	Solicitado int
	Disponible int
}

// StockInsuficienteError lists every offending line of a rejected sale.
type StockInsuficienteError struct {
	Faltantes []Faltante
}

func (e *StockInsuficienteError) Error() string {
	partes := make([]string, 0, len(e.Faltantes))
	for _, f := range e.Faltantes {
		partes = append(partes, fmt.Sprintf("%s (solicitado %d, disponible %d)", f.Codigo, f.Solicitado, f.Disponible))
	}
	return "stock insuficiente: " + strings.Join(partes, ", ")
}

// traducirErrorDB maps store errors of a write onto the service error
// taxonomy. A foreign key failure here means a referenced row is missing.
// Unknown errors are returned unchanged.
func traducirErrorDB(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoEncontrado
	}
	if esViolacionFK(err) {
		return errValidacion("referencia", "hace referencia a un registro inexistente")
	}
	return err
}

// traducirErrorBorrado is traducirErrorDB for deletes, where a foreign key
// failure means the row is still referenced.
func traducirErrorBorrado(err error) error {
	if esViolacionFK(err) {
		return ErrEnUso
	}
	return traducirErrorDB(err)
}

func esViolacionFK(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// esDuplicado reports a unique-constraint violation from either driver.
func esDuplicado(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
