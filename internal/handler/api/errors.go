package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rivermark/aqualink/internal/domain"
	"github.com/rivermark/aqualink/internal/telemetry"
)

// ErrorResponse is the JSON error envelope returned by every endpoint.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries a machine-readable code, a user-facing message, and
// field-level detail for validation failures.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// NewHTTPErrorHandler maps domain errors onto HTTP statuses. Business
// failures that need distinct client handling (insufficient stock, invalid
// transition, empty cart) get their own codes so the UI never has to parse
// messages.
func NewHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, ErrorResponse{Error: ErrorBody{
				Code:    "http_error",
				Message: fmt.Sprint(he.Message),
			}})
			return
		}

		status, code := classify(err)
		body := ErrorBody{
			Code:    code,
			Message: domain.ErrorMessage(err),
			Fields:  domain.GetValidationFields(err),
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"error", err,
			)
			// Retry-safe infrastructure blips stay in the logs; only
			// genuine internal failures go to Sentry.
			if !domain.IsCode(err, domain.EUNAVAILABLE) {
				telemetry.CaptureError(err, map[string]interface{}{
					"method": c.Request().Method,
					"path":   c.Request().URL.Path,
				})
			}
		}

		_ = c.JSON(status, ErrorResponse{Error: body})
	}
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest, "empty_cart"
	}

	switch domain.ErrorCode(err) {
	case domain.EINVALID:
		if domain.IsValidationError(err) {
			return http.StatusBadRequest, "validation_error"
		}
		return http.StatusBadRequest, domain.EINVALID
	case domain.ENOTFOUND:
		return http.StatusNotFound, domain.ENOTFOUND
	case domain.ECONFLICT:
		return http.StatusConflict, domain.ECONFLICT
	case domain.EUNAVAILABLE:
		return http.StatusServiceUnavailable, domain.EUNAVAILABLE
	default:
		return http.StatusInternalServerError, domain.EINTERNAL
	}
}
