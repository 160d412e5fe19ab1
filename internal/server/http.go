package server

import (
	"errors"
	"strings"

	"github.com/kataras/iris/v12"

	"github.com/example/goshop/internal/auth"
	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/errs"
)

// writeErr maps the shared error taxonomy onto HTTP status codes and the
// {code, msg} envelope. Insufficient stock names the blocking product so the
// client can highlight the cart line.
func writeErr(ctx iris.Context, err error) {
	if ise, ok := errs.AsInsufficientStock(err); ok {
		ctx.StopWithJSON(409, iris.Map{
			"code":       409,
			"msg":        ise.Error(),
			"product_id": ise.ProductID,
		})
		return
	}

	status := 500
	switch {
	case errors.Is(err, errs.ErrNotFound):
		status = 404
	case errors.Is(err, errs.ErrEmptyCart),
		errors.Is(err, errs.ErrInvalidTransition):
		status = 400
	case errors.Is(err, errs.ErrUnauthorized):
		status = 403
	case errors.Is(err, errs.ErrConcurrentModification),
		errors.Is(err, errs.ErrProductReferenced):
		status = 409
	case errors.Is(err, errs.ErrTimeout):
		status = 504
	}

	body := iris.Map{"code": status, "msg": err.Error()}
	if errs.Retriable(err) {
		body["retriable"] = true
	}
	ctx.StopWithJSON(status, body)
}

// authHandler verifies the IdP token (cache first) and stashes the caller's
// identity in the request values.
func authHandler(cfg *config.JWTConfig, cache *auth.TokenCache) iris.Handler {
	return func(ctx iris.Context) {
		token := strings.TrimSpace(strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer"))
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "missing token"})
			return
		}

		rctx := ctx.Request().Context()
		claims, hit, err := cache.Get(rctx, token)
		if err != nil || !hit {
			claims, err = auth.ParseToken(cfg, token)
			if err != nil {
				ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "invalid token"})
				return
			}
			_ = cache.Set(rctx, token, claims)
		}

		ctx.Values().Set("user_id", claims.UserID)
		ctx.Values().Set("role", claims.Role)
		ctx.Next()
	}
}

// requireAdmin gates admin-only routes on the role claim.
func requireAdmin() iris.Handler {
	return func(ctx iris.Context) {
		if ctx.Values().GetString("role") != auth.RoleAdmin {
			ctx.StopWithJSON(403, iris.Map{"code": 403, "msg": errs.ErrUnauthorized.Error()})
			return
		}
		ctx.Next()
	}
}

func currentUserID(ctx iris.Context) string {
	return ctx.Values().GetString("user_id")
}
