package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nguyentantai21042004/voice-insights/internal/apperror"
	"github.com/nguyentantai21042004/voice-insights/internal/logger"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

var statusByKind = map[apperror.Kind]int{
	apperror.KindMissingField:      http.StatusBadRequest,
	apperror.KindUnsupportedFormat: http.StatusUnsupportedMediaType,
	apperror.KindDecode:            http.StatusUnprocessableEntity,
	apperror.KindEmptyAudio:        http.StatusUnprocessableEntity,
	apperror.KindInference:         http.StatusBadGateway,
	apperror.KindPersistence:       http.StatusInternalServerError,
	apperror.KindSummaryService:    http.StatusBadGateway,
}

// StatusOf maps an error to its HTTP status code.
func StatusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	if code, ok := statusByKind[apperror.KindOf(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

func errorHandler(log logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := StatusOf(err)
		body := errorBody{
			Kind:    string(apperror.KindOf(err)),
			Message: apperror.MessageOf(err),
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			body.Kind = "http_error"
			body.Message = fmt.Sprint(he.Message)
		}

		if code >= http.StatusInternalServerError {
			log.Error(c.Request().Context(), "Request %s %s failed: %v", c.Request().Method, c.Request().URL.Path, err)
		}

		if err := c.JSON(code, errorResponse{Error: body}); err != nil {
			log.Error(c.Request().Context(), "Failed to write error response: %v", err)
		}
	}
}
