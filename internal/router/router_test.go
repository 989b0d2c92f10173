package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sistemainventario/internal/config"
	"sistemainventario/internal/infra/sqlitetest"
	"sistemainventario/internal/model"
	"sistemainventario/internal/repository"
	"sistemainventario/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type api struct {
	t       *testing.T
	r       *gin.Engine
	tokens  map[string]string
	passwds map[string]string
}

func nuevaAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := sqlitetest.Open(t)
	cfg := &config.Config{
		Env:                "test",
		CORSOrigins:        "*",
		JWTSecret:          "secreto-de-prueba",
		JWTExpirationHours: 1,
		EmpresaNombre:      "Ferretería Prueba",
		PDFStoragePath:     t.TempDir(),
	}

	auth := service.NewAuthService(repository.NewUsuarioRepository(db), cfg)
	a := &api{t: t, r: New(cfg, db, nil), tokens: map[string]string{}, passwds: map[string]string{}}
	for _, rol := range []string{model.RolAdministrador, model.RolVendedor, model.RolBodeguero} {
		u, err := auth.Sembrar(context.Background(), rol, "Usuario "+rol, "clave-"+rol, rol, nil)
		require.NoError(t, err)
		tok, err := auth.EmitirToken(u)
		require.NoError(t, err)
		a.tokens[rol] = tok
		a.passwds[rol] = "clave-" + rol
	}
	return a
}

func (a *api) hacer(metodo, ruta, rol string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(metodo, ruta, &buf)
	req.Header.Set("Content-Type", "application/json")
	if rol != "" {
		req.Header.Set("Authorization", "Bearer "+a.tokens[rol])
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func decodificar(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	a := nuevaAPI(t)
	w := a.hacer(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodificar(t, w)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestLogin(t *testing.T) {
	a := nuevaAPI(t)

	w := a.hacer(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": model.RolVendedor, "password": a.passwds[model.RolVendedor],
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodificar(t, w)
	assert.NotEmpty(t, body["access_token"])
	assert.Equal(t, "bearer", body["token_type"])

	w = a.hacer(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": model.RolVendedor, "password": "incorrecta"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.hacer(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPermisosPorRol(t *testing.T) {
	a := nuevaAPI(t)

	tests := []struct {
		name   string
		metodo string
		ruta   string
		rol    string
		status int
	}{
		{"sin token", http.MethodGet, "/v1/productos", "", http.StatusUnauthorized},
		{"bodeguero lee catalogo", http.MethodGet, "/v1/productos", model.RolBodeguero, http.StatusOK},
		{"vendedor no crea productos", http.MethodPost, "/v1/productos", model.RolVendedor, http.StatusForbidden},
		{"bodeguero no factura", http.MethodPost, "/v1/facturas", model.RolBodeguero, http.StatusForbidden},
		{"vendedor no registra compras", http.MethodPost, "/v1/compras", model.RolVendedor, http.StatusForbidden},
		{"vendedor no ve reportes", http.MethodGet, "/v1/reportes/inventario", model.RolVendedor, http.StatusForbidden},
		{"admin ve reportes", http.MethodGet, "/v1/reportes/inventario", model.RolAdministrador, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.hacer(tt.metodo, tt.ruta, tt.rol, map[string]any{})
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestFlujoCompraVentaAnulacion(t *testing.T) {
	a := nuevaAPI(t)
	const (
		admin     = model.RolAdministrador
		vendedor  = model.RolVendedor
		bodeguero = model.RolBodeguero
	)

	w := a.hacer(http.MethodPost, "/v1/categorias", admin, map[string]any{"nombre": "Herramientas"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	categoriaID := decodificar(t, w)["id"].(string)

	w = a.hacer(http.MethodPost, "/v1/nombres-producto", admin, map[string]any{"nombre": "Martillo", "categoria_id": categoriaID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	nombreID := decodificar(t, w)["id"].(string)

	w = a.hacer(http.MethodPost, "/v1/productos", admin, map[string]any{
		"codigo":                       "MART-01",
		"nombre_producto_id":           nombreID,
		"categoria_id":                 categoriaID,
		"precio_compra":                "10.00",
		"precio_venta":                 "13.00",
		"porcentaje_ganancia":          "30",
		"actualizar_precio_automatico": true,
		"stock_minimo":                 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	productoID := decodificar(t, w)["id"].(string)

	w = a.hacer(http.MethodPost, "/v1/compras", bodeguero, map[string]any{
		"proveedor":      "Distribuidora Norte",
		"numero_factura": "A-100",
		"lineas":         []map[string]any{{"producto_id": productoID, "cantidad": 10, "precio_unitario": "12.00"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.hacer(http.MethodGet, "/v1/productos/"+productoID+"/snapshot", vendedor, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap := decodificar(t, w)
	assert.Equal(t, "15.6", snap["precio_venta"])
	assert.EqualValues(t, 10, snap["stock"])

	w = a.hacer(http.MethodPost, "/v1/facturas", vendedor, map[string]any{"lineas": []map[string]any{}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Contains(t, decodificar(t, w)["fields"], "lineas")

	w = a.hacer(http.MethodPost, "/v1/facturas", vendedor, map[string]any{
		"lineas": []map[string]any{{"producto_id": productoID, "cantidad": 11}},
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	faltantes := decodificar(t, w)["faltantes"].([]any)
	require.Len(t, faltantes, 1)
	assert.Equal(t, "MART-01", faltantes[0].(map[string]any)["codigo"])
	assert.EqualValues(t, 10, faltantes[0].(map[string]any)["disponible"])

	w = a.hacer(http.MethodPost, "/v1/facturas", vendedor, map[string]any{
		"lineas": []map[string]any{{"producto_id": productoID, "cantidad": 6}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	factura := decodificar(t, w)
	facturaID := factura["id"].(string)
	assert.Equal(t, "93.6", factura["total"])

	w = a.hacer(http.MethodGet, "/v1/productos/por-agotarse", vendedor, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "MART-01")

	w = a.hacer(http.MethodPost, "/v1/facturas/"+facturaID+"/anular", vendedor, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.hacer(http.MethodPost, "/v1/facturas/"+facturaID+"/anular", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = a.hacer(http.MethodPost, "/v1/facturas/"+facturaID+"/anular", admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.hacer(http.MethodGet, "/v1/productos/"+productoID, bodeguero, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 10, decodificar(t, w)["stock_actual"])

	w = a.hacer(http.MethodDelete, "/v1/productos/"+productoID, admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.hacer(http.MethodGet, "/v1/ajustes?producto_id="+productoID, bodeguero, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 3, decodificar(t, w)["total"])

	w = a.hacer(http.MethodGet, "/v1/productos/no-es-uuid", vendedor, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = a.hacer(http.MethodGet, "/v1/facturas/"+productoID, vendedor, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
