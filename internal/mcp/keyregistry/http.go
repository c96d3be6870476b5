package keyregistry

import (
	"net/http"
	"strings"

	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// registerRequest is the JSON body accepted by the registration endpoint.
type registerRequest struct {
	PublicKeyPEM string `json:"public_key_pem"`
	KID          string `json:"kid"`
}

// Handler exposes the registry over HTTP: key registration, revocation, and
// the JWKS discovery document.
type Handler struct {
	registry *Registry
	logger   logSDK.Logger
}

// NewHandler builds a Handler bound to the provided registry.
func NewHandler(registry *Registry, logger logSDK.Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger,
	}
}

// Register handles POST /auth/register. The PEM is parsed here, at the edge;
// the registry itself only compares raw encodings.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req.PublicKeyPEM = strings.TrimSpace(req.PublicKeyPEM)
	req.KID = strings.TrimSpace(req.KID)
	if req.PublicKeyPEM == "" || req.KID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "public_key_pem and kid are required"})
		return
	}

	if _, err := jwk.ParseKey([]byte(req.PublicKeyPEM), jwk.WithPEM(true)); err != nil {
		h.logger.Warn("reject malformed public key", zap.Error(err), zap.String("kid", req.KID))
		c.JSON(http.StatusBadRequest, gin.H{"error": "public_key_pem is not a valid PEM-encoded public key"})
		return
	}

	added, size := h.registry.Register(req.PublicKeyPEM, req.KID)
	if !added {
		h.logger.Info("duplicate key registration", zap.String("kid", req.KID))
		c.JSON(http.StatusConflict, gin.H{
			"status":          "already_registered",
			"registered_keys": size,
		})
		return
	}

	h.logger.Info("registered client key", zap.String("kid", req.KID), zap.Int("registered_keys", size))
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"registered_keys": size,
	})
}

// Revoke handles DELETE /auth/keys/:kid.
func (h *Handler) Revoke(c *gin.Context) {
	kid := strings.TrimSpace(c.Param("kid"))
	if kid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kid is required"})
		return
	}

	if !h.registry.Revoke(kid) {
		c.JSON(http.StatusNotFound, gin.H{"error": "kid is not registered"})
		return
	}

	h.logger.Info("revoked client key", zap.String("kid", kid))
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"registered_keys": h.registry.Size(),
	})
}

// JWKS handles GET /.well-known/jwks.json. The document is recomputed on
// every request so it always reflects the latest registrations.
func (h *Handler) JWKS(c *gin.Context) {
	set, err := h.registry.KeySet()
	if err != nil {
		h.logger.Error("build jwks document", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build key set"})
		return
	}

	c.JSON(http.StatusOK, set)
}
