package middlewares

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)

		if id == "" {
			id = uuid.NewString()
		}

		ctx.Writer.Header().Set(requestIDHeader, id)

		ctx.Set(CtxRequestID, id)

		ctx.Next()
	}
}

func RequestIDFromContext(c *gin.Context) string {
	v, _ := c.Get(CtxRequestID)
	id, _ := v.(string)
	return id
}

func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx *gin.Context) {
		start := time.Now()

		route := ctx.FullPath()
		if route == "" {
			route = ctx.Request.URL.Path // fallback (e.g. 404)
		}

		method := ctx.Request.Method

		ctx.Next()

		lat := time.Since(start)
		status := ctx.Writer.Status()

		logAttrs := []any{
			"method", method,
			"route", route,
			"status", status,
			"latency_ms", lat.Milliseconds(),
			"request_id", RequestIDFromContext(ctx),
		}

		if id, ok := UserIDFromContext(ctx); ok {
			logAttrs = append(logAttrs, "user_id", id)
		}

		if details, ok := ctx.Get(CtxErrorDetails); ok {
			logAttrs = append(logAttrs, "error", details)
		}

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		log.Log(ctx.Request.Context(), level, "http_request", logAttrs...)
	}
}

// Recovery turns a panic into the UNHANDLED_ERROR envelope. exposeDetails adds the panic text.
func Recovery(log *slog.Logger, exposeDetails bool) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			details := fmt.Sprint(rec)
			c.Set(CtxErrorDetails, details)

			log.ErrorContext(c.Request.Context(), "panic recovered",
				"panic", details,
				"route", c.FullPath(),
				"request_id", RequestIDFromContext(c),
			)

			body := gin.H{
				"success": false,
				"error":   "UNHANDLED_ERROR",
				"message": "Internal server error",
			}
			if exposeDetails {
				body["details"] = details
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()

		c.Next()
	}
}
