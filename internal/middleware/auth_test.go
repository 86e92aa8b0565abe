package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedRouter(auth *APIKeyAuth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(auth.Middleware())
	r.DELETE("/v2/vtuber/cache", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestNewAPIKeyAuth(t *testing.T) {
	t.Parallel()

	t.Run("creates auth with valid keys", func(t *testing.T) {
		t.Parallel()

		auth := NewAPIKeyAuth([]string{"key1", "key2", "key3"})

		require.NotNil(t, auth)
		assert.Equal(t, 3, len(auth.apiKeys))
		assert.True(t, auth.apiKeys["key1"])
	})

	t.Run("filters out empty keys", func(t *testing.T) {
		t.Parallel()

		auth := NewAPIKeyAuth([]string{"key1", "", "key2", ""})

		require.NotNil(t, auth)
		assert.Equal(t, 2, len(auth.apiKeys))
	})

	t.Run("handles empty key slice", func(t *testing.T) {
		t.Parallel()

		auth := NewAPIKeyAuth([]string{})

		require.NotNil(t, auth)
		assert.Equal(t, 0, len(auth.apiKeys))
	})
}

func TestAPIKeyAuth_Middleware_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headerName string
		apiKey     string
		validKeys  []string
	}{
		{
			name:       "valid X-API-Key header",
			headerName: headerAPIKey,
			apiKey:     "valid-key-123",
			validKeys:  []string{"valid-key-123"},
		},
		{
			name:       "valid Authorization Bearer header",
			headerName: headerAuth,
			apiKey:     "Bearer valid-key-456",
			validKeys:  []string{"valid-key-456"},
		},
		{
			name:       "matches one of multiple valid keys",
			headerName: headerAPIKey,
			apiKey:     "key2",
			validKeys:  []string{"key1", "key2", "key3"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := protectedRouter(NewAPIKeyAuth(tt.validKeys))

			req := httptest.NewRequest(http.MethodDelete, "/v2/vtuber/cache", nil)
			req.Header.Set(tt.headerName, tt.apiKey)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestAPIKeyAuth_Middleware_Unauthorized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headerName string
		apiKey     string
		validKeys  []string
	}{
		{
			name:      "missing API key",
			validKeys: []string{"valid-key"},
		},
		{
			name:       "invalid API key in X-API-Key header",
			headerName: headerAPIKey,
			apiKey:     "invalid-key",
			validKeys:  []string{"valid-key"},
		},
		{
			name:       "invalid API key in Authorization header",
			headerName: headerAuth,
			apiKey:     "Bearer invalid-key",
			validKeys:  []string{"valid-key"},
		},
		{
			name:       "no valid keys configured",
			headerName: headerAPIKey,
			apiKey:     "any-key",
			validKeys:  []string{},
		},
		{
			name:       "malformed Authorization header without Bearer",
			headerName: headerAuth,
			apiKey:     "valid-key",
			validKeys:  []string{"valid-key"},
		},
		{
			name:       "case sensitive mismatch",
			headerName: headerAPIKey,
			apiKey:     "Valid-Key",
			validKeys:  []string{"valid-key"},
		},
		{
			name:       "partial key match",
			headerName: headerAPIKey,
			apiKey:     "valid",
			validKeys:  []string{"valid-key"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := protectedRouter(NewAPIKeyAuth(tt.validKeys))

			req := httptest.NewRequest(http.MethodDelete, "/v2/vtuber/cache", nil)
			if tt.headerName != "" && tt.apiKey != "" {
				req.Header.Set(tt.headerName, tt.apiKey)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
		})
	}
}

func TestAPIKeyAuth_ExtractAPIKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{
			name:     "extracts from X-API-Key header",
			headers:  map[string]string{headerAPIKey: "my-api-key"},
			expected: "my-api-key",
		},
		{
			name:     "extracts from Authorization Bearer header",
			headers:  map[string]string{headerAuth: "Bearer my-bearer-token"},
			expected: "my-bearer-token",
		},
		{
			name: "prefers X-API-Key over Authorization",
			headers: map[string]string{
				headerAPIKey: "api-key",
				headerAuth:   "Bearer bearer-token",
			},
			expected: "api-key",
		},
		{
			name:     "returns empty for missing headers",
			headers:  map[string]string{},
			expected: "",
		},
		{
			name:     "returns empty for non-Bearer Authorization",
			headers:  map[string]string{headerAuth: "Basic username:password"},
			expected: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			auth := NewAPIKeyAuth([]string{"test-key"})

			gin.SetMode(gin.TestMode)
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}

			assert.Equal(t, tt.expected, auth.extractAPIKey(c))
		})
	}
}

func TestAPIKeyAuth_IsValidAPIKey(t *testing.T) {
	t.Parallel()

	auth := NewAPIKeyAuth([]string{"key1", "key2", "very-long-key-123456789"})

	tests := []struct {
		name        string
		providedKey string
		expected    bool
	}{
		{name: "valid key 1", providedKey: "key1", expected: true},
		{name: "valid long key", providedKey: "very-long-key-123456789", expected: true},
		{name: "invalid key", providedKey: "invalid-key", expected: false},
		{name: "empty key", providedKey: "", expected: false},
		{name: "case sensitive uppercase", providedKey: "KEY1", expected: false},
		{name: "key with extra characters", providedKey: "key1-extra", expected: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, auth.isValidAPIKey(tt.providedKey))
		})
	}
}

func TestAPIKeyAuth_IsValidAPIKey_NoKeysConfigured(t *testing.T) {
	t.Parallel()

	auth := NewAPIKeyAuth(nil)
	assert.False(t, auth.isValidAPIKey("any-key"), "should reject all keys when none are configured")
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("generates id when absent", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
		assert.Equal(t, rec.Header().Get(RequestIDHeader), rec.Body.String())
	})

	t.Run("echoes caller supplied id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "fixed-id")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, "fixed-id", rec.Header().Get(RequestIDHeader))
		assert.Equal(t, "fixed-id", rec.Body.String())
	})
}
