package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"sistemainventario/internal/apierror"
	"sistemainventario/internal/middleware"
	"sistemainventario/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// report json / form names instead of Go field names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

func camposInvalidos(err error) map[string]string {
	fields := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return fields
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(camposInvalidos(err)))
		return false
	}
	return true
}

// bindQueryAndValidate is bindAndValidate for query-string filters.
func bindQueryAndValidate(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	if err := validate.Struct(filter); err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(camposInvalidos(err)))
		return false
	}
	return true
}

// parseID reads a UUID path parameter, answering 400 when malformed.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// parseIDQuery reads an optional UUID query parameter.
func parseIDQuery(c *gin.Context, param string) (*uuid.UUID, bool) {
	raw := c.Query(param)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{param: "uuid"}))
		return nil, false
	}
	return &id, true
}

// usuarioActual returns the acting user taken from the JWT claims.
func usuarioActual(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
		return uuid.Nil, false
	}
	id, err := claims.UsuarioID()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
		return uuid.Nil, false
	}
	return id, true
}

// responderError maps service errors onto status codes and envelopes.
// Anything unrecognised is handed to the ErrorHandler middleware as a 500.
func responderError(c *gin.Context, err error) {
	var verr *service.ValidacionError
	var serr *service.StockInsuficienteError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(verr.Campos))
	case errors.As(err, &serr):
		faltantes := make([]apierror.Faltante, 0, len(serr.Faltantes))
		for _, f := range serr.Faltantes {
			faltantes = append(faltantes, apierror.Faltante{
				ProductoID: f.ProductoID.String(),
				Codigo:     f.Codigo,
				Solicitado: f.Solicitado,
				Disponible: f.Disponible,
			})
		}
		c.JSON(http.StatusConflict, apierror.NewStockInsuficiente(faltantes))
	case errors.Is(err, service.ErrCredencialesInvalidas):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New("Recurso no encontrado"))
	case errors.Is(err, service.ErrEnUso), errors.Is(err, service.ErrFacturaYaAnulada):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}
