package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"contact-book/internal/domain"
	"contact-book/internal/service"
)

// Todas las respuestas de error usan {"detail": "..."}.
func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func writeServiceError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		abortWithDetail(c, http.StatusUnprocessableEntity, verr.Error())
	case errors.Is(err, service.ErrDuplicateEmail):
		abortWithDetail(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		abortWithDetail(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrInvalidToken):
		abortWithDetail(c, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		abortWithDetail(c, http.StatusBadRequest, "Invalid or expired token")
	case errors.Is(err, service.ErrUserNotFound):
		abortWithDetail(c, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrEmailNotVerified):
		abortWithDetail(c, http.StatusForbidden, "Email not verified")
	case errors.Is(err, service.ErrContactNotFound):
		abortWithDetail(c, http.StatusNotFound, "Contact not found")
	case errors.Is(err, service.ErrAvatarUpload):
		abortWithDetail(c, http.StatusServiceUnavailable, "Avatar storage unavailable")
	default:
		logger.Error(op+" failed", zap.Error(err))
		abortWithDetail(c, http.StatusInternalServerError, "Internal server error")
	}
}

// writeBindError distingue errores de campo y de tipo (422) de cuerpos ilegibles (400).
func writeBindError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &verrs) && len(verrs) > 0:
		abortWithDetail(c, http.StatusUnprocessableEntity, describeFieldError(verrs[0]))
		return
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		abortWithDetail(c, http.StatusUnprocessableEntity, fmt.Sprintf("%s: expected %s, got %s", field, jsonKind(typeErr.Type), typeErr.Value))
		return
	case errors.Is(err, domain.ErrInvalidDate):
		abortWithDetail(c, http.StatusUnprocessableEntity, "birthday: "+domain.ErrInvalidDate.Error())
		return
	case errors.Is(err, io.EOF):
		abortWithDetail(c, http.StatusUnprocessableEntity, "body: field required")
		return
	}
	logger.Warn("invalid "+op+" request", zap.Error(err))
	abortWithDetail(c, http.StatusBadRequest, "invalid request")
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: field required", fe.Field())
	case emailTag:
		return fmt.Sprintf("%s: value is not a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s: must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s: must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s: must be greater than or equal to %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s: failed on %s", fe.Field(), fe.Tag())
	}
}

// jsonKind nombra el tipo JSON que corresponde a t.
func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

// emailTag valida con el mismo chequeo que usa la capa de servicio.
const emailTag = "email_address"

var configureOnce sync.Once

// configureValidator hace que los errores del validador usen los nombres json/form
// y registra emailTag.
func configureValidator() {
	configureOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
		_ = v.RegisterValidation(emailTag, func(fl validator.FieldLevel) bool {
			return service.ValidEmail(fl.Field().String())
		})
	})
}
