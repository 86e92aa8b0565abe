package graphql

import (
	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
)

// NewHandler wraps the schema in an HTTP handler mounted on gin. The
// gin context travels inside the request context so resolvers can set
// Cache-Control and read the nocache flag.
func NewHandler(schema graphql.Schema) gin.HandlerFunc {
	h := handler.New(&handler.Config{
		Schema:   &schema,
		Pretty:   true,
		GraphiQL: true,
	})
	return func(c *gin.Context) {
		ctx := WithGinContext(c.Request.Context(), c)
		h.ContextHandler(ctx, c.Writer, c.Request)
	}
}
