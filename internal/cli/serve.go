package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/soyeahso/arena/internal/config"
	"github.com/soyeahso/arena/internal/gateway"
	"github.com/soyeahso/arena/internal/logging"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			// The sink backs GET /api/logs; rebuild the logger so every
			// subsystem feeds it.
			sink := logging.NewSink(cfg.Logging.BufferSize)
			consoleLevel := cfg.Logging.ConsoleLevel
			if logLevel != "" {
				consoleLevel = logLevel
			}
			log = logging.NewWithSink(nil, sink, cfg.Logging.Level, consoleLevel)

			rt, err := buildRuntime(log, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			if port != 0 {
				rt.cfg.Gateway.Port = port
			}
			if bind != "" {
				rt.cfg.Gateway.Bind = bind
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := gateway.New(rt.cfg.Gateway, rt.loop, rt.sessions, sink, log)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (auto, lan, loopback, custom)")

	return cmd
}
