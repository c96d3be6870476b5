package cmd

import (
	"context"

	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	mcpServer "github.com/Laisky/websearch-mcp/internal/mcp"
	"github.com/Laisky/websearch-mcp/internal/mcp/auth"
	"github.com/Laisky/websearch-mcp/internal/mcp/calllog"
	"github.com/Laisky/websearch-mcp/internal/mcp/keyregistry"
	"github.com/Laisky/websearch-mcp/internal/web"
	"github.com/Laisky/websearch-mcp/library/log"
	"github.com/Laisky/websearch-mcp/library/search/tavily"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `run the remote MCP search server`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		settings := mcpServer.LoadSettingsFromConfig()

		var engineOpts []tavily.Option
		if endpoint := gconfig.Shared.GetString("settings.tavily.endpoint"); endpoint != "" {
			engineOpts = append(engineOpts, tavily.WithEndpoint(endpoint))
		}
		engine := tavily.NewSearchEngine(engineOpts...)

		registry := keyregistry.New()

		var verifier *auth.Verifier
		if settings.BearerAuthEnabled {
			var err error
			if verifier, err = auth.NewVerifier(registry); err != nil {
				log.Logger.Panic("build bearer verifier", zap.Error(err))
			}
		}

		var recorder mcpServer.CallRecorder
		if dsn := gconfig.Shared.GetString("settings.db.dsn"); dsn != "" {
			pool, err := pgxpool.New(ctx, dsn)
			if err != nil {
				log.Logger.Panic("connect call log database", zap.Error(err))
			}
			defer pool.Close()

			svc, err := calllog.NewService(pool, log.Logger.Named("calllog"), nil)
			if err != nil {
				log.Logger.Panic("build call log service", zap.Error(err))
			}
			if err = svc.EnsureSchema(ctx); err != nil {
				log.Logger.Panic("ensure call log schema", zap.Error(err))
			}

			recorder = svc
		}

		srv, err := mcpServer.NewServer(settings, engine, verifier, recorder, log.Logger)
		if err != nil {
			log.Logger.Panic("build mcp server", zap.Error(err))
		}

		web.RunServer(gconfig.Shared.GetString("listen"), srv, registry)
	},
}

func init() {
	rootCMD.AddCommand(apiCMD)
}
