package model

import "github.com/google/uuid"

// asignarID fills a primary key before insert so rows get the same UUID
// whether the store is Postgres or SQLite.
func asignarID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
