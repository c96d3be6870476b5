// Package web gin server
package web

import (
	"net/http"

	ginMw "github.com/Laisky/gin-middlewares/v7"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	mcpServer "github.com/Laisky/websearch-mcp/internal/mcp"
	"github.com/Laisky/websearch-mcp/internal/mcp/keyregistry"
	"github.com/Laisky/websearch-mcp/library/log"
)

var (
	server = gin.New()
)

// RunServer mounts the MCP transport and the key registration surface on a
// single gin server and blocks serving it.
func RunServer(addr string, mcpSrv *mcpServer.Server, registry *keyregistry.Registry) {
	server.Use(
		gin.Recovery(),
		ginMw.NewLoggerMiddleware(
			ginMw.WithLoggerMwColored(),
			ginMw.WithLevel(log.Logger.Level().String()),
			ginMw.WithLogger(log.Logger.Named("gin")),
		),
	)
	if !gconfig.Shared.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := ginMw.EnableMetric(server); err != nil {
		log.Logger.Panic("enable metric server", zap.Error(err))
	}

	server.Any("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world")
	})

	registerRoutes(server, mcpSrv, registry)

	log.Logger.Info("listening on http", zap.String("addr", addr))
	log.Logger.Panic("httpServer exit", zap.Error(server.Run(addr)))
}

func registerRoutes(router *gin.Engine, mcpSrv *mcpServer.Server, registry *keyregistry.Registry) {
	if registry != nil {
		keys := keyregistry.NewHandler(registry, log.Logger.Named("keyregistry"))
		router.POST("/auth/register", keys.Register)
		router.DELETE("/auth/keys/:kid", keys.Revoke)
		router.GET("/.well-known/jwks.json", keys.JWKS)
	}

	router.Any("/mcp", ginMw.FromStd(mcpSrv.Handler().ServeHTTP))
	router.Any("/mcp/*path", ginMw.FromStd(mcpSrv.Handler().ServeHTTP))
}
