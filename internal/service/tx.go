package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction bound to ctx. Returning an error
// from fn rolls everything back.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// ordenarIDs sorts ids ascending, the order in which product rows are locked.
func ordenarIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}

func parseUUID(campo, valor string) (uuid.UUID, error) {
	id, err := uuid.Parse(valor)
	if err != nil {
		return uuid.Nil, errValidacion(campo, "UUID inválido")
	}
	return id, nil
}
