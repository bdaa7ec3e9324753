package handler

import (
	"context"
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/script-workspace/errors"
	usecaseErrors "github.com/johnquangdev/script-workspace/internal/usecase/errors"
	"github.com/johnquangdev/script-workspace/pkg/ai"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    errors.ErrorCode_HTTP_OK,
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			level := logger.Warn
			if appErr.HTTPCode >= http.StatusInternalServerError {
				level = logger.Error
			}
			level("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		body := errs{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}

		return c.JSON(appErr.HTTPCode, body)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
	}

	return c.JSON(http.StatusInternalServerError, body)
}

// NewHTTPErrorHandler renders errors returned by middleware and unknown
// routes in the same envelope as handler errors.
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var httpErr *echo.HTTPError
		if stdErrors.As(err, &httpErr) {
			message := http.StatusText(httpErr.Code)
			if m, ok := httpErr.Message.(string); ok && m != "" {
				message = m
			}
			code := errors.ErrorCode_INTERNAL
			switch httpErr.Code {
			case http.StatusNotFound, http.StatusMethodNotAllowed:
				code = errors.ErrorCode_NOT_FOUND
			case http.StatusUnauthorized:
				code = errors.ErrorCode_UNAUTHENTICATED
			case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
				code = errors.ErrorCode_INVALID_ARGUMENT
			}
			err = errors.AppError{Raw: httpErr.Internal, HTTPCode: httpErr.Code, Code: code, Message: message}
		}

		_ = HandleError(logger, c, err)
	}
}

// toAppError maps use case failures onto API errors. service names the
// remote collaborator behind op.
func toAppError(op, service string, err error) error {
	msg := usecaseErrors.UserMessage(err)

	var appErr errors.AppError
	var apiErr *ai.APIError
	switch {
	case stdErrors.Is(err, usecaseErrors.ErrAlreadyRunning):
		return errors.ErrOperationInFlight(op, msg)
	case stdErrors.Is(err, usecaseErrors.ErrSuperseded):
		return errors.ErrOperationSuperseded(op, msg)
	case stdErrors.Is(err, usecaseErrors.ErrTranscriptEmpty):
		return errors.ErrTranscriptMissing(msg)
	case stdErrors.Is(err, usecaseErrors.ErrScriptUnparseable):
		return errors.ErrScriptUnparseable(msg)
	case stdErrors.Is(err, usecaseErrors.ErrNothingToSynthesize):
		return errors.ErrNothingToSynthesize(msg)
	case stdErrors.Is(err, usecaseErrors.ErrNothingToExport):
		return errors.ErrNothingToExport(msg)
	case stdErrors.As(err, &apiErr):
		return errors.ErrExternalAPIFailed(service, msg, apiErr.Status, err)
	case stdErrors.As(err, &appErr):
		return appErr
	case stdErrors.Is(err, context.DeadlineExceeded):
		return errors.ErrExternalAPIFailed(service, msg, http.StatusGatewayTimeout, err)
	default:
		return errors.ErrInternal(err)
	}
}
