package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	portssvc "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/handlers"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/middleware"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/platform/config"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/repositories/database/memory"
)

const (
	testSecret = "test-secret-key-that-is-long-enough"
	testIssuer = "motolibre"
	testUser   = "user-1"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:            testSecret,
		JWTIssuer:            testIssuer,
		IsProduction:         true,
		Locale:               "es",
		CashAccountCodes:     services.DefaultCashAccountCodes,
		MatchAmountTolerance: decimal.NewFromFloat(0.01),
	}
}

func memoryServices(cfg *config.Config) *portssvc.ServiceContainer {
	return services.NewServiceContainer(cfg, memory.NewRepositoryProvider(memory.NewStore()))
}

func newRouter(cfg *config.Config, svc *portssvc.ServiceContainer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	handlers.RegisterRoutes(r, cfg, svc, nil)
	return r
}

func generateTestToken(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    testIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// do sends an authenticated request. A string body is sent as text, anything
// else is encoded as JSON.
func do(t *testing.T, r http.Handler, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	contentType := "application/json"
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
		contentType = "text/plain"
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+generateTestToken(t, testUser))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
