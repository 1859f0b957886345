package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/inspect"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [scene]",
		Short: "Start the scene inspector",
		Long: `Start an HTTP inspector for a scene.

The inspector steps through frames on request and streams every
document mutation to websocket subscribers.

Endpoints:
  GET  /tree           current HTML
  GET  /ops?format=    op log (text, json, msgpack)
  POST /frames/next    patch the next frame
  POST /frames/reset   unmount and rewind
  GET  /ws             live op stream
  GET  /metrics        Prometheus metrics

Examples:
  vrt serve scenes/keyed-reorder.yaml
  vrt serve --addr=127.0.0.1:8080 scenes/text-to-list.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if addr != "" {
				e.cfg.Inspect.Addr = addr
			}
			if len(args) == 1 {
				e.cfg.Inspect.Scene = args[0]
			}
			if e.cfg.Inspect.Scene == "" {
				return errors.New("I400").
					WithDetail("No scene given.").
					WithSuggestion("Pass a scene file or set inspect.scene in the config")
			}
			return runServe(e)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")

	return cmd
}

func runServe(e *env) error {
	p, err := e.player(e.cfg.Inspect.Scene)
	if err != nil {
		return err
	}

	srv := inspect.New(p,
		inspect.WithAddr(e.cfg.Inspect.Addr),
		inspect.WithLogger(e.logger),
		inspect.WithMetrics(e.metrics),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printBanner()
	fmt.Println("  serve")
	fmt.Println()
	success(e.printer, "Inspecting %s", p.Scene().String())
	info("Listening on %s", e.cfg.Inspect.Addr)
	info("Press Ctrl+C to stop")
	fmt.Println()

	return srv.ListenAndServe(ctx)
}
