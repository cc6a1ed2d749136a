package adminapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/toughcrm/internal/domain"
	"go.uber.org/zap"
)

// Response is the success envelope
type Response struct {
	Code string      `json:"code"`
	Data interface{} `json:"data"`
}

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Field   string      `json:"field,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Code: "SUCCESS", Data: data})
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, ErrorResponse{Code: code, Message: message, Details: details})
}

// failErr maps the domain error taxonomy onto HTTP statuses
func failErr(c echo.Context, err error) error {
	var (
		ve *domain.ValidationError
		ce *domain.ConflictError
		nf *domain.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION_ERROR", Message: ve.Message, Field: ve.Field})
	case errors.As(err, &ce):
		return c.JSON(http.StatusConflict, ErrorResponse{Code: "CONFLICT", Message: ce.Message, Field: ce.Field})
	case errors.As(err, &nf):
		return c.JSON(http.StatusNotFound, ErrorResponse{Code: "NOT_FOUND", Message: nf.Error(), Details: nf})
	default:
		zap.L().Error("operation failed", zap.String("path", c.Path()), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
