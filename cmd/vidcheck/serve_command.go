package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"vidcheck/internal/api"
	"vidcheck/internal/logging"
	"vidcheck/internal/pipeline"
	"vidcheck/internal/preflight"
	"vidcheck/internal/triggers"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var debugLog string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve checks over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireOracle(); err != nil {
				return err
			}
			if strings.TrimSpace(bind) != "" {
				cfg.API.Bind = strings.TrimSpace(bind)
			}

			logger, err := ctx.newLogger("cli-serve")
			if err != nil {
				return err
			}
			if path := strings.TrimSpace(debugLog); path != "" {
				debugLogger, err := logging.New(logging.Options{Level: "debug", Format: "json", OutputPaths: []string{path}})
				if err != nil {
					return fmt.Errorf("open debug log: %w", err)
				}
				logger = logging.TeeLogger(logger, debugLogger.Handler())
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			for _, result := range preflight.Failed(preflight.RunAll(signalCtx, cfg)) {
				logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
					logging.String("check", result.Name),
					logging.String("detail", result.Detail),
					logging.String(logging.FieldImpact, "checks touching this component may fail"),
				)
			}

			list, err := triggers.Load(cfg.Triggers.Path)
			if err != nil {
				return fmt.Errorf("load trigger words: %w", err)
			}
			live, err := pipeline.NewLive(signalCtx, cfg, logger, ctx.liveOptions...)
			if err != nil {
				return err
			}
			defer live.Close()

			runner := pipeline.NewRunner(live, list, logger)
			server := api.New(cfg, runner, logger, api.WithVersion(version))
			if err := server.ListenAndServe(signalCtx, cfg.API.Bind); err != nil {
				return err
			}
			logger.Info("vidcheck server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Override api.bind (host:port)")
	cmd.Flags().StringVar(&debugLog, "debug-log", "", "Also write debug-level JSON logs to this file")
	return cmd
}
