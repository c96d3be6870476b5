package keyregistry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, err := logSDK.NewConsoleWithName("test", logSDK.LevelError)
	require.NoError(t, err)

	registry := New()
	handler := NewHandler(registry, logger)

	router := gin.New()
	router.POST("/auth/register", handler.Register)
	router.DELETE("/auth/keys/:kid", handler.Revoke)
	router.GET("/.well-known/jwks.json", handler.JWKS)
	return router, registry
}

func postRegister(t *testing.T, router *gin.Engine, pem, kid string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]string{"public_key_pem": pem, "kid": kid})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postRegister(t, router, newPublicKeyPEM(t), "client-a")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp["status"])
	require.Equal(t, float64(1), resp["registered_keys"])
}

func TestRegisterEndpointRejectsBadPEM(t *testing.T) {
	router, registry := newTestRouter(t)

	rec := postRegister(t, router, "not a pem", "client-a")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 0, registry.Size())
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	router, registry := newTestRouter(t)
	material := newPublicKeyPEM(t)

	rec := postRegister(t, router, material, "client-a")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postRegister(t, router, material, "client-a")
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "already_registered", resp["status"])
	require.Equal(t, 1, registry.Size())
}

func TestJWKSEndpoint(t *testing.T) {
	router, registry := newTestRouter(t)
	registry.Register(newPublicKeyPEM(t), "client-a")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var doc struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Keys, 1)
	require.Equal(t, "client-a", doc.Keys[0]["kid"])
}

func TestJWKSEndpointNotCached(t *testing.T) {
	router, registry := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Empty(t, doc.Keys)

	// a registration after the first fetch must show up without restart
	registry.Register(newPublicKeyPEM(t), "late-client")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Keys, 1)
}

func TestRevokeEndpoint(t *testing.T) {
	router, registry := newTestRouter(t)
	registry.Register(newPublicKeyPEM(t), "client-a")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/auth/keys/client-a", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 0, registry.Size())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/auth/keys/client-a", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
