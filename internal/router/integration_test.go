//go:build integration

package router

// Integration tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"sistemainventario/internal/config"
	"sistemainventario/internal/infra"
	"sistemainventario/internal/model"
	"sistemainventario/internal/repository"
	"sistemainventario/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func nuevaAPIPostgres(t *testing.T) *api {
	t.Helper()
	ctx := context.Background()
	gin.SetMode(gin.TestMode)

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("inventario_test"),
		tcPostgres.WithUsername("inventario"),
		tcPostgres.WithPassword("inventario"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                "test",
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		SnapshotCacheTTL:   time.Minute,
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 1,
		EmpresaNombre:      "Inventario E2E",
		PDFStoragePath:     t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, true)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	auth := service.NewAuthService(repository.NewUsuarioRepository(db), cfg)
	a := &api{t: t, r: New(cfg, db, rdb), tokens: map[string]string{}, passwds: map[string]string{}}
	for _, rol := range []string{model.RolAdministrador, model.RolVendedor} {
		u, err := auth.Sembrar(ctx, rol, "E2E "+rol, "clave-"+rol, rol, nil)
		require.NoError(t, err)
		tok, err := auth.EmitirToken(u)
		require.NoError(t, err)
		a.tokens[rol] = tok
	}
	return a
}

// crearProductoConStock sets up category, name, product and one purchase.
func (a *api) crearProductoConStock(codigo string, stock int) string {
	a.t.Helper()
	admin := model.RolAdministrador

	w := a.hacer(http.MethodPost, "/v1/categorias", admin, map[string]any{"nombre": "Cat " + codigo})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	catID := decodificar(a.t, w)["id"].(string)

	w = a.hacer(http.MethodPost, "/v1/nombres-producto", admin, map[string]any{"nombre": "Nombre " + codigo, "categoria_id": catID})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	nomID := decodificar(a.t, w)["id"].(string)

	w = a.hacer(http.MethodPost, "/v1/productos", admin, map[string]any{
		"codigo": codigo, "nombre_producto_id": nomID, "categoria_id": catID,
		"precio_compra": "1.00", "precio_venta": "2.00",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	id := decodificar(a.t, w)["id"].(string)

	w = a.hacer(http.MethodPost, "/v1/compras", admin, map[string]any{
		"proveedor": "Proveedor E2E", "numero_factura": "C-" + codigo,
		"lineas": []map[string]any{{"producto_id": id, "cantidad": stock, "precio_unitario": "1.00"}},
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return id
}

func TestIntegracion_UltimaUnidadSeVendeUnaSolaVez(t *testing.T) {
	a := nuevaAPIPostgres(t)
	productoID := a.crearProductoConStock("ULT-01", 1)

	const vendedores = 8
	codigos := make(chan int, vendedores)
	var wg sync.WaitGroup
	for i := 0; i < vendedores; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := a.hacer(http.MethodPost, "/v1/facturas", model.RolVendedor, map[string]any{
				"lineas": []map[string]any{{"producto_id": productoID, "cantidad": 1}},
			})
			codigos <- w.Code
		}()
	}
	wg.Wait()
	close(codigos)

	creadas, conflictos := 0, 0
	for c := range codigos {
		switch c {
		case http.StatusCreated:
			creadas++
		case http.StatusConflict:
			conflictos++
		default:
			t.Errorf("status inesperado %d", c)
		}
	}
	assert.Equal(t, 1, creadas)
	assert.Equal(t, vendedores-1, conflictos)

	w := a.hacer(http.MethodGet, "/v1/productos/"+productoID, model.RolAdministrador, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decodificar(t, w)["stock_actual"])
}

func TestIntegracion_NumeracionConcurrenteSinHuecos(t *testing.T) {
	a := nuevaAPIPostgres(t)
	productoID := a.crearProductoConStock("NUM-01", 50)

	const ventas = 6
	numeros := make(chan string, ventas)
	var wg sync.WaitGroup
	for i := 0; i < ventas; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := a.hacer(http.MethodPost, "/v1/facturas", model.RolVendedor, map[string]any{
				"lineas": []map[string]any{{"producto_id": productoID, "cantidad": 1}},
			})
			if w.Code == http.StatusCreated {
				numeros <- decodificar(t, w)["numero_factura"].(string)
			}
		}()
	}
	wg.Wait()
	close(numeros)

	vistos := map[string]bool{}
	for n := range numeros {
		assert.False(t, vistos[n], "número repetido %s", n)
		vistos[n] = true
	}
	assert.NotEmpty(t, vistos)
}

func TestIntegracion_SnapshotSeInvalidaTrasVenta(t *testing.T) {
	a := nuevaAPIPostgres(t)
	productoID := a.crearProductoConStock("SNAP-01", 5)

	w := a.hacer(http.MethodGet, "/v1/productos/"+productoID+"/snapshot", model.RolVendedor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 5, decodificar(t, w)["stock"])

	w = a.hacer(http.MethodPost, "/v1/facturas", model.RolVendedor, map[string]any{
		"lineas": []map[string]any{{"producto_id": productoID, "cantidad": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.hacer(http.MethodGet, "/v1/productos/"+productoID+"/snapshot", model.RolVendedor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decodificar(t, w)["stock"])

	w = a.hacer(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "connected", decodificar(t, w)["redis"])
}
