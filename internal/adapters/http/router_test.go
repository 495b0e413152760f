package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/careline/internal/adapters/signal"
	"github.com/dkeye/careline/internal/app/orch"
	"github.com/dkeye/careline/internal/config"
	"github.com/dkeye/careline/internal/core"
	"github.com/dkeye/careline/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "jwt-test-secret"

type nopConn struct{ frames []core.Frame }

func (n *nopConn) TrySend(f core.Frame) error {
	n.frames = append(n.frames, f)
	return nil
}

func (n *nopConn) Close() {}

func testConfig() *config.Config {
	return &config.Config{
		Mode:           "test",
		Secret:         "cookie-secret",
		JWTSecret:      testSecret,
		AllowedOrigins: []string{"https://app.example.org"},
		MetricsPath:    "/metrics",
		ICEServers:     []config.ICEServer{{URLs: []string{"stun:stun.example.org:3478"}}},
	}
}

func newRouter(t *testing.T, cfg *config.Config) (*gin.Engine, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	o := orch.New(core.NewHub(), orch.Options{})
	ctrl := signal.NewSignalWSController(o, nil, signal.Options{})
	return SetupRouter(context.Background(), cfg, o, ctrl), o
}

func signToken(t *testing.T, secret, user string) string {
	t.Helper()
	claims := JWTClaims{
		UserID: user,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r, _ := newRouter(t, testConfig())
	w := do(r, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Result().Cookies(), "device session cookie")
}

func TestRouter_ICEServersAndPresence(t *testing.T) {
	r, o := newRouter(t, testConfig())
	o.OnConnect(domain.NewMember("c1", "dev"), &nopConn{})
	o.RegisterUser("c1", "d1")

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/ice-servers", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var ice struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ice))
	require.Len(t, ice.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.example.org:3478"}, ice.ICEServers[0].URLs)

	w = do(r, httptest.NewRequest(http.MethodGet, "/api/presence", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"users":["d1"]}`, w.Body.String())
}

func TestRouter_NotifyRequiresToken(t *testing.T) {
	r, o := newRouter(t, testConfig())
	admin := &nopConn{}
	o.OnConnect(domain.NewMember("a1", "dev"), admin)
	o.JoinAdmin("a1")

	body := `{"room":"admins","event":"newReview","data":{"rating":5}}`

	w := do(r, httptest.NewRequest(http.MethodPost, "/api/notify", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/notify", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signToken(t, "wrong-secret", "svc"))
	w = do(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/notify", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "svc"))
	req.Header.Set("Content-Type", "application/json")
	w = do(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"delivered":1}`, w.Body.String())

	require.Len(t, admin.frames, 2)
	assert.JSONEq(t, `{"event":"newReview","data":{"rating":5}}`, string(admin.frames[1]))
}

func TestRouter_NotifyBadRequest(t *testing.T) {
	r, _ := newRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/notify", strings.NewReader(`{"room":"admins"}`))
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "svc"))
	req.Header.Set("Content-Type", "application/json")

	w := do(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOriginFilter(t *testing.T) {
	r, _ := newRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.org")
	w := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example.org", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/notify", nil)
	req.Header.Set("Origin", "https://app.example.org")
	assert.Equal(t, http.StatusNoContent, do(r, req).Code)

	// same-origin requests carry no Origin header
	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}

func TestJWTAuth_QueryTokenAndDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", JWTAuth(testSecret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserIDKey))
	})
	r.GET("/open", JWTAuth(""), func(c *gin.Context) {
		c.String(http.StatusOK, "open")
	})

	w := do(r, httptest.NewRequest(http.MethodGet, "/guarded?token="+signToken(t, testSecret, "p1"), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p1", w.Body.String())

	w = do(r, httptest.NewRequest(http.MethodGet, "/guarded?token=garbage", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_MetricsExposed(t *testing.T) {
	r, _ := newRouter(t, testConfig())
	w := do(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "careline_")
}
