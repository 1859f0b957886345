package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/export"
	"github.com/vango-dev/vrt/pkg/metrics"
	"github.com/vango-dev/vrt/pkg/oplog"
)

// renderOptions are the render flags that do not override config.
type renderOptions struct {
	region  string
	quiet   bool
	metrics bool
}

func renderCmd(opts *rootOptions) *cobra.Command {
	var (
		format   string
		exportTo string
		ro       renderOptions
	)

	cmd := &cobra.Command{
		Use:   "render <scene>",
		Short: "Play a scene and print the result",
		Long: `Play every frame of a scene and print the final HTML and the op log.

The op log is printed in the chosen format. msgpack is binary, so on
stdout it is replaced by text; exported snapshots keep msgpack.

Runtime diagnostics raised while playing (reads of undeclared names,
non-listener event props) are summarised on stderr by code.

Examples:
  vrt render scenes/keyed-reorder.yaml
  vrt render scenes/text-to-list.yaml --format=json
  vrt render scenes/keyed-reorder.yaml --export=out/
  vrt render scenes/keyed-reorder.yaml --export=s3://bucket/snapshots --format=msgpack
  vrt render scenes/counter.yaml --metrics`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				e.cfg.Render.Format = format
			}
			if cmd.Flags().Changed("export") {
				e.cfg.Render.Export = exportTo
			}
			if err := e.cfg.Validate(); err != nil {
				return err
			}
			return runRender(cmd.Context(), e, args[0], ro, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Op log format: text, json or msgpack (default from config)")
	cmd.Flags().StringVarP(&exportTo, "export", "e", "", "Write a snapshot to a directory or s3://bucket/prefix")
	cmd.Flags().StringVar(&ro.region, "region", "", "AWS region for s3 exports (default: AWS_REGION)")
	cmd.Flags().BoolVarP(&ro.quiet, "quiet", "q", false, "Print only the final HTML")
	cmd.Flags().BoolVar(&ro.metrics, "metrics", false, "Print the run's Prometheus metrics after the op log")

	return cmd
}

func runRender(ctx context.Context, e *env, path string, ro renderOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := e.player(path)
	if err != nil {
		return err
	}
	ops, err := p.PlayAll()
	if !ro.quiet {
		e.printer.Diagnostics(e.diags.Diagnostics())
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, p.HTML())
	if !ro.quiet {
		f := e.cfg.OpFormat()
		if f == oplog.FormatMsgpack {
			f = oplog.FormatText
		}
		fmt.Fprintln(out)
		if err := oplog.Encode(out, ops, f); err != nil {
			return errors.New("X301").Wrap(err)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%d frames, %s\n", p.Scene().Len(), summarize(ops))
	}
	if ro.metrics {
		fmt.Fprintln(out)
		if err := writeMetrics(out, e.metrics); err != nil {
			return err
		}
	}

	if e.cfg.Render.Export == "" {
		return nil
	}
	target, err := export.ParseTarget(e.cfg.Render.Export)
	if err != nil {
		return err
	}
	sink, err := target.Sink(nil, ro.region)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	snap := export.Snapshot{HTML: p.HTML(), Ops: ops}
	written, err := snap.Write(ctx, sink, name, e.cfg.OpFormat())
	if err != nil {
		return err
	}
	for _, w := range written {
		fmt.Fprintf(out, "exported %s/%s\n", target.String(), w)
	}
	e.logger.Info("snapshot exported", "target", target.String(), "objects", len(written))
	return nil
}

// summarize renders op counts as "append=3 create=4".
func summarize(ops []oplog.Op) string {
	counts := oplog.Count(ops)
	parts := make([]string, 0, len(counts))
	for kind, n := range counts {
		parts = append(parts, fmt.Sprintf("%s=%d", kind, n))
	}
	sort.Strings(parts)
	if len(parts) == 0 {
		return "no ops"
	}
	return strings.Join(parts, " ")
}

// writeMetrics prints the collector's metrics in the Prometheus text format.
func writeMetrics(out io.Writer, m *metrics.Collector) error {
	families, err := m.Registry().Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return err
		}
	}
	return nil
}
