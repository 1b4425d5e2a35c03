package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"orchard-bridge/repositories/base"
	"orchard-bridge/utils"

	"github.com/labstack/echo/v4"
)

var errorLogger *slog.Logger

// SetErrorLogger sets the logger for error handling.
func SetErrorLogger(logger *slog.Logger) {
	errorLogger = logger.With("component", "error_handler")
}

// CustomHTTPErrorHandler is the central error handler for the Echo application.
// Repository errors map to HTTP codes here so handlers never inspect them.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	// Repository-level errors carry enough context to pick the status code.
	if base.IsEntityNotFound(err) {
		c.JSON(http.StatusNotFound, utils.ErrorResponse(err.Error()))
		return
	}
	if base.IsDuplicateEntity(err) {
		c.JSON(http.StatusConflict, utils.ErrorResponse(err.Error()))
		return
	}

	if appErr, ok := err.(*utils.AppError); ok {
		if internalErr := appErr.Unwrap(); internalErr != nil && errorLogger != nil {
			errorLogger.Info("Error handled",
				"status_code", appErr.Code,
				"error_message", appErr.Message,
				slog.Any("internal_error", internalErr))
		}
		c.JSON(appErr.Code, utils.ErrorResponse(appErr.Message))
		return
	}

	if httpErr, ok := err.(*echo.HTTPError); ok {
		c.JSON(httpErr.Code, utils.ErrorResponse(fmt.Sprintf("%v", httpErr.Message)))
		return
	}

	if errorLogger != nil {
		errorLogger.Error("Unhandled error occurred",
			"error_type", fmt.Sprintf("%T", err),
			"error_message", err.Error(),
			slog.Any("error", err))
	}
	c.JSON(http.StatusInternalServerError, utils.ErrorResponse("An unexpected internal error occurred."))
}
