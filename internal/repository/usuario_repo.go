package repository

import (
	"context"

	"sistemainventario/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsuarioRepository interface {
	// Upsert creates the user or refreshes name, email, role and hash of an existing username.
	Upsert(ctx context.Context, u *model.Usuario) error
	FindByUsername(ctx context.Context, username string) (*model.Usuario, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) Upsert(ctx context.Context, u *model.Usuario) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"nombre", "email", "password_hash", "rol", "activo", "updated_at"}),
	}).Create(u).Error
	if err != nil {
		return err
	}
	// On conflict the generated ID is not the stored one.
	stored, err := r.FindByUsername(ctx, u.Username)
	if err != nil {
		return err
	}
	u.ID = stored.ID
	return nil
}

func (r *usuarioRepo) FindByUsername(ctx context.Context, username string) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).Where("username = ? AND activo = ?", username, true).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *usuarioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
