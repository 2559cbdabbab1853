package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/memodb-io/notespace/internal/config"
	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/serializer"
	"github.com/memodb-io/notespace/internal/modules/service"
)

// Authenticator resolves a session token; service.AccountService satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// SessionToken returns the bearer token from the Authorization header, falling back
// to the session cookie.
func SessionToken(c *gin.Context, cfg *config.Config) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cfg.Auth.CookieName != "" {
		if v, err := c.Cookie(cfg.Auth.CookieName); err == nil {
			return v
		}
	}
	return ""
}

// SessionAuth authenticates the request with a session token and stores the user in
// the context under "user". It also tags the current span with the user id.
func SessionAuth(cfg *config.Config, accounts Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, authSpan := otel.Tracer("middleware").Start(c.Request.Context(), "session_auth",
			trace.WithAttributes(attribute.String("middleware", "session_auth")))

		token := SessionToken(c, cfg)
		if token == "" {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		user, err := accounts.Authenticate(ctx, token)
		if err != nil {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			switch {
			case errors.Is(err, service.ErrUnauthenticated):
				authSpan.End()
				c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			case errors.Is(err, service.ErrInactiveAccount):
				authSpan.End()
				c.AbortWithStatusJSON(http.StatusForbidden, serializer.ForbiddenErr(err.Error()))
			default:
				authSpan.RecordError(err)
				authSpan.End()
				c.AbortWithStatusJSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "session lookup failed", err))
			}
			return
		}

		rootSpan := trace.SpanFromContext(c.Request.Context())
		if rootSpan.SpanContext().IsValid() {
			rootSpan.SetAttributes(attribute.String("user_id", user.ID.String()))
		}
		authSpan.SetAttributes(
			attribute.String("user_id", user.ID.String()),
			attribute.Bool("authenticated", true),
		)
		authSpan.End()

		c.Set("user", user)
		c.Set("session_token", token)
		c.Next()
	}
}
