package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/glowlab/backend/internal/domain/tracking"
	"github.com/glowlab/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common response helpers.
type BaseHandler struct{}

// Success sends a 200 response with the given body.
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Error sends an error response, deriving the status code from the kind.
func (h *BaseHandler) Error(c *gin.Context, kind, message string) {
	c.JSON(dto.HTTPStatus(kind), dto.NewErrorResponse(kind, message))
}

// BadRequest sends a 400 validation error.
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.KindValidationFailed, message)
}

// HandleError maps a domain error onto the HTTP surface. Rate-limited errors
// carry a Retry-After header when the platform supplied a hint.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	if retryAfter, ok := tracking.RetryAfterHint(err); ok && retryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	}
	kind := tracking.ErrorKind(err)
	c.JSON(dto.HTTPStatus(kind), dto.NewErrorResponse(kind, err.Error()))
}
