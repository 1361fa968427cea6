package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
	"github.com/noah-isme/cellbroadcast-api/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens() *service.TokenService {
	return service.NewTokenService(service.TokenConfig{Secret: "test-secret", Issuer: "cellbroadcast-api", Expiry: time.Hour})
}

func protectedRouter(tokens *service.TokenService, enabled bool, roles ...models.Role) *gin.Engine {
	router := gin.New()
	router.Use(JWT(tokens), RequireRoles(enabled, roles...))
	router.GET("/protected", func(c *gin.Context) {
		role := ""
		if claims, ok := CurrentClaims(c); ok {
			role = string(claims.Role)
		}
		c.String(http.StatusOK, role)
	})
	return router
}

func serve(router http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTAndRBAC(t *testing.T) {
	tokens := newTokens()
	router := protectedRouter(tokens, true, models.RoleSettings)

	settingsToken, _, err := tokens.Generate("ui", models.RoleSettings)
	require.NoError(t, err)
	viewerToken, _, err := tokens.Generate("viewer", models.RoleViewer)
	require.NoError(t, err)

	rec := serve(router, "Bearer "+settingsToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "settings", rec.Body.String())

	assert.Equal(t, http.StatusForbidden, serve(router, "Bearer "+viewerToken).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "Token "+settingsToken).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "Bearer garbage").Code)
}

func TestAuthDisabledPassesThrough(t *testing.T) {
	rec := serve(protectedRouter(nil, false, models.RoleSettings), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	defer rl.Close()

	router := gin.New()
	router.POST("/ingest", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusAccepted, http.StatusAccepted, http.StatusTooManyRequests}, codes)

	// another client has its own bucket
	req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	defer rl.Close()
	router := gin.New()
	router.POST("/ingest", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ingest", nil))
		assert.Equal(t, http.StatusAccepted, rec.Code)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	metrics := service.NewMetricsService(service.GaugeSources{})
	router := gin.New()
	router.Use(Metrics(metrics, "/health"))
	router.GET("/api/v1/broadcasts/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/broadcasts/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	count, err := testutil.GatherAndCount(metrics.Registry(), "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "path" && strings.Contains(label.GetValue(), ":id") {
					found = true
				}
			}
		}
	}
	assert.True(t, found)
}

func TestAuditLogsSuccessfulMutations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.PUT("/settings/:name", Audit(zap.New(core), "setting.update"), func(c *gin.Context) {
		if c.Param("name") == "bad" {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	for _, name := range []string{"enable_alert_tone", "bad"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/settings/"+name, nil))
	}

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "setting.update", entry.Message)
	assert.Equal(t, "audit", entry.LoggerName)
	fields := entry.ContextMap()
	assert.Equal(t, "anonymous", fields["actor"])
	assert.Equal(t, "enable_alert_tone", fields["resource_id"])
	assert.Equal(t, "/settings/:name", fields["path"])
}
