package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const formatoFecha = "2006-01-02"

// paginar normalises page/limit and returns the offset to use.
func paginar(page, limit, defLimit, maxLimit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = defLimit
	}
	return page, limit, (page - 1) * limit
}

// filtrarActivo applies the "true" | "false" | "all" convention used by every
// list endpoint; an empty value falls back to def.
func filtrarActivo(q *gorm.DB, columna, valor, def string) *gorm.DB {
	if valor == "" {
		valor = def
	}
	switch valor {
	case "false":
		return q.Where(columna+" = ?", false)
	case "all":
		return q
	default:
		return q.Where(columna+" = ?", true)
	}
}

// filtrarFechas restricts columna to [desde 00:00, hasta+1 00:00). Both bounds
// are optional calendar dates in the server's local zone.
func filtrarFechas(q *gorm.DB, columna, desde, hasta string) (*gorm.DB, error) {
	if desde != "" {
		d, err := time.ParseInLocation(formatoFecha, desde, time.Local)
		if err != nil {
			return nil, fmt.Errorf("desde: %w", err)
		}
		q = q.Where(columna+" >= ?", d)
	}
	if hasta != "" {
		h, err := time.ParseInLocation(formatoFecha, hasta, time.Local)
		if err != nil {
			return nil, fmt.Errorf("hasta: %w", err)
		}
		q = q.Where(columna+" < ?", h.AddDate(0, 0, 1))
	}
	return q, nil
}
