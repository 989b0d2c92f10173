// cmd/seeduser/main.go: crea/actualiza un usuario de desarrollo e imprime un token.
// Uso: go run ./cmd/seeduser -username admin -password 1234 -rol administrador
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"sistemainventario/internal/config"
	"sistemainventario/internal/infra"
	"sistemainventario/internal/repository"
	"sistemainventario/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := flag.String("username", "admin", "nombre de usuario")
	password := flag.String("password", "1234", "contraseña en texto plano")
	nombre := flag.String("nombre", "Admin Demo", "nombre visible")
	rol := flag.String("rol", "administrador", "administrador | vendedor | bodeguero")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.AutoMigrate)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	authSvc := service.NewAuthService(repository.NewUsuarioRepository(db), cfg)
	u, err := authSvc.Sembrar(context.Background(), *username, *nombre, *password, *rol, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	token, err := authSvc.EmitirToken(u)
	if err != nil {
		log.Fatal().Err(err).Msg("token generation failed")
	}

	fmt.Printf("Usuario '%s' (%s) creado/actualizado con password '%s'\n", u.Username, u.Rol, *password)
	fmt.Printf("Token (%dh): %s\n", cfg.JWTExpirationHours, token)
}
