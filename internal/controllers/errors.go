package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// SetLogLevel aligns the controller logger with the application level
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// respondError maps a service error to the API error format. Unknown errors
// are logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		conflictErr   *services.ConflictError
		notFoundErr   *services.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		code := models.ErrValidationFailed
		if isImageError(err) {
			code = models.ErrImageInvalid
		}
		c.JSON(http.StatusBadRequest, models.NewAPIError(code, validationErr.Message,
			map[string]interface{}{"field": validationErr.Field, "reason": validationErr.Reason}))
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, models.NewAPIError(models.ErrConflict, conflictErr.Message))
	case errors.As(err, &notFoundErr):
		code := models.ErrNotFound
		if notFoundErr.Resource == "recipe" {
			code = models.ErrRecipeNotFound
		}
		c.JSON(http.StatusNotFound, models.NewAPIError(code, capitalize(notFoundErr.Error())))
	case errors.Is(err, services.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrShoppingCartEmpty, "Shopping cart is empty"))
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, models.NewAPIError(models.ErrRecipeEditForbidden,
			"Only the author or an admin can change this recipe"))
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrInvalidCredentials,
			"Unable to log in with provided credentials"))
	default:
		log.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Internal server error"))
	}
}

func isImageError(err error) bool {
	return errors.Is(err, storage.ErrEmptyImage) ||
		errors.Is(err, storage.ErrInvalidImage) ||
		errors.Is(err, storage.ErrNotAnImage)
}

// respondBindError reports a request body that could not be bound. Validator
// failures are listed per field under details.fields.
func respondBindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]interface{}, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Request validation failed",
			map[string]interface{}{"fields": fields}))
		return
	}
	c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid request body"))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid "+param+" format"))
		return 0, false
	}
	return uint(id), true
}
