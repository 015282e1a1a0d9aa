package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fluttalk/fluttalk-server/internal/domain"
	"github.com/fluttalk/fluttalk-server/internal/present/rest/presenter"
	"github.com/fluttalk/fluttalk-server/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

// RequireIdentity resolves the bearer credential and stores the principal
// in the request context. Requests without a valid credential are rejected.
func (m *AuthMiddleware) RequireIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.RequireIdentity")
		defer span.End()

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return presenter.Unauthorized(c, "missing authorization header")
		}

		split := strings.Split(authHeader, " ")
		if len(split) != 2 || split[0] != "Bearer" {
			return presenter.Unauthorized(c, "only Bearer is acceptable")
		}

		principal, err := m.auth.Authenticate(ctx, split[1])
		if err != nil {
			span.RecordError(errors.Wrap(err, "AuthMiddleware.RequireIdentity: authentication failed"))
			return presenter.Unauthorized(c, "invalid credential")
		}

		ctx = context.WithValue(ctx, domain.RequesterUIDCtxKey, principal.UID)
		ctx = context.WithValue(ctx, domain.RequesterEmailCtxKey, principal.Email)
		span.SetAttributes(attribute.String("RequesterUid", principal.UID))

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
