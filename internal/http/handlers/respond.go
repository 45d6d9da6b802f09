package handlers

import (
	"net/http"

	"github.com/geocoder89/clinicdesk/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

const ctxExposeDetails = "handlers.exposeDetails"

// ExposeErrorDetails decides whether 500 responses carry the underlying error text.
func ExposeErrorDetails(expose bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxExposeDetails, expose)
		c.Next()
	}
}

func detailsExposed(ctx *gin.Context) bool {
	v, ok := ctx.Get(ctxExposeDetails)
	if !ok {
		return true
	}
	b, _ := v.(bool)
	return b
}

func requestIDFrom(ctx *gin.Context) string {
	if id := middlewares.RequestIDFromContext(ctx); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	body := gin.H{
		"success": false,
		"error":   code,
		"message": message,
	}

	if id := requestIDFrom(ctx); id != "" {
		body["requestId"] = id
	}

	if details != nil {
		body["details"] = details
	}

	ctx.AbortWithStatusJSON(status, body)
}

func RespondBadRequest(ctx *gin.Context, code, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, code, message, details)
}

func RespondNotFound(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusNotFound, code, message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, "FORBIDDEN", message, nil)
}

// RespondInternal answers 500 SERVER_ERROR. The error text always reaches the request log
// and reaches the client only when details are exposed.
func RespondInternal(ctx *gin.Context, message string, err error) {
	var details interface{}

	if err != nil {
		ctx.Set(middlewares.CtxErrorDetails, err.Error())
		if detailsExposed(ctx) {
			details = err.Error()
		}
	}

	RespondError(ctx, http.StatusInternalServerError, "SERVER_ERROR", message, details)
}

// EndpointNotFound is the NoRoute handler.
func EndpointNotFound(ctx *gin.Context) {
	RespondNotFound(ctx, "ENDPOINT_NOT_FOUND", "API endpoint not found")
}
