package graphql

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ihateani-me/ihaapi-go/internal/models"
)

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	v, ok := args[key].(int)
	return v, ok
}

func stringListArg(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func platformListArg(args map[string]interface{}) []models.Platform {
	names := stringListArg(args, "platforms")
	out := make([]models.Platform, 0, len(names))
	for _, n := range names {
		out = append(out, models.Platform(n))
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

func setCacheControl(gc *gin.Context, ttl time.Duration) {
	if gc == nil {
		return
	}
	gc.Header("Cache-Control", fmt.Sprintf("private, max-age=%d", int(ttl.Seconds())))
}
