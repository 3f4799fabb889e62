package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
)

const principalKey = "principal"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Principal, error)
}

// AuthRequired resolves the bearer token and stores the caller in the gin context.
func AuthRequired(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			Abort(c, apperr.Auth("missing token"))
			return
		}
		tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))

		p, err := a.Authenticate(c.Request.Context(), tok)
		if err != nil {
			Abort(c, err)
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireRoles rejects callers whose role is not listed.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			Abort(c, apperr.Auth("missing user"))
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		Abort(c, apperr.Permission("Not authorized"))
	}
}

func Principal(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}

// Abort writes the error body every endpoint shares and stops the chain.
func Abort(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		err = apperr.New(apperr.ErrTimeout, "request timed out")
	}
	detail := apperr.Detail(err)
	code := apperr.Code(err)
	if code == "internal_error" {
		detail = "internal server error"
	}
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{"error": code, "detail": detail})
}
