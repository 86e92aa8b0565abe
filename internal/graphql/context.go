// Package graphql exposes the VTuber read-query service and the admin
// mutation over a GraphQL endpoint.
package graphql

import (
	"context"

	"github.com/gin-gonic/gin"
)

type ctxKey string

const ginCtxKey ctxKey = "gin"

// WithGinContext stores the gin context on a request context so
// resolvers can read query flags and set response headers.
func WithGinContext(ctx context.Context, c *gin.Context) context.Context {
	return context.WithValue(ctx, ginCtxKey, c)
}

func ginFromContext(ctx context.Context) *gin.Context {
	c, _ := ctx.Value(ginCtxKey).(*gin.Context)
	return c
}
