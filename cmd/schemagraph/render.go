package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AaronLay10/schemagraph/internal/config"
	"github.com/AaronLay10/schemagraph/internal/events"
	"github.com/AaronLay10/schemagraph/internal/mqtt"
	"github.com/AaronLay10/schemagraph/internal/printer"
)

type renderOptions struct {
	target     printer.Target
	kind       string
	pretty     bool
	watch      bool
	mqtt       bool
	mqttPrefix string
	metrics    string
}

func newRenderCommand(global *globalOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the graph document of one page",
		Example: `  schemagraph render --kind singular --id 10
  schemagraph render --kind search --query "go tools" --pretty
  schemagraph render --kind taxonomy --id 7 --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.target.Kind = printer.Kind(opts.kind)
			return runRender(cmd.Context(), global, opts, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.kind, "kind", string(printer.KindSingular), "page kind")
	flags.IntVar(&opts.target.ID, "id", 0, "post, term or user id")
	flags.StringVar(&opts.target.URL, "url", "", "canonical page url")
	flags.StringVar(&opts.target.Query, "query", "", "search query")
	flags.IntVar(&opts.target.Year, "year", 0, "date archive year")
	flags.IntVar(&opts.target.Month, "month", 0, "date archive month")
	flags.IntVar(&opts.target.Day, "day", 0, "date archive day")
	flags.StringVar(&opts.target.PostType, "post-type", "", "post type of a post type archive")
	flags.BoolVar(&opts.target.Comments, "comments", false, "include the comment tree")
	flags.BoolVar(&opts.pretty, "pretty", false, "indent the output")
	flags.BoolVar(&opts.watch, "watch", false, "render again whenever an input file changes")
	flags.BoolVar(&opts.mqtt, "mqtt", false, "also publish the document to MQTT_URL")
	flags.StringVar(&opts.mqttPrefix, "mqtt-prefix", "schemagraph", "MQTT topic prefix")
	flags.StringVar(&opts.metrics, "metrics", "", "write build metrics in Prometheus text format to this file (- for stderr)")
	return cmd
}

func runRender(ctx context.Context, global *globalOptions, opts *renderOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, global)
	if err != nil {
		return err
	}
	defer a.close()

	var printerOpts []printer.Option
	if opts.mqtt {
		client, err := mqtt.NewClient("schemagraph-render-" + hostname())
		if err != nil {
			return err
		}
		if err := client.Connect(); err != nil {
			return fmt.Errorf("failed to connect to %s: %w", mqtt.BrokerURL(), err)
		}
		defer client.Disconnect()
		printerOpts = append(printerOpts, printer.WithSink(mqtt.NewGraphSink(client, opts.mqttPrefix)))
	}

	render := func() error {
		return renderOnce(ctx, a, opts, out, printerOpts...)
	}

	if err := render(); err != nil {
		return err
	}
	if opts.watch {
		if err := watchAndRender(ctx, a, render); err != nil {
			return err
		}
	}
	return writeMetrics(a, opts.metrics)
}

func renderOnce(ctx context.Context, a *app, opts *renderOptions, out io.Writer, printerOpts ...printer.Option) error {
	p := a.printer(printerOpts...)
	req, err := opts.target.Resolve(a.repo.Load())
	if err != nil {
		return err
	}

	doc, err := p.Print(ctx, printer.NewBuildSession(), req)
	if err != nil {
		return err
	}
	if doc == nil {
		a.log.Info("no graph for this page", zap.String("kind", string(req.Kind)))
		return nil
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if opts.pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, b, "", "  "); err != nil {
			return err
		}
		b = buf.Bytes()
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

// watchAndRender renders again on every settled change until interrupted.
func watchAndRender(ctx context.Context, a *app, render func() error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := config.NewWatcher(a.log, config.DefaultDebounce, func(path string) {
		events.Emit("info", "watch.reload", "input changed", map[string]interface{}{"path": path})
		if err := a.reload(ctx); err != nil {
			a.log.Error("reload failed", zap.String("path", path), zap.Error(err))
			return
		}
		if err := render(); err != nil {
			a.log.Error("render failed", zap.Error(err))
		}
	}, a.watchPaths()...)
	if err != nil {
		return err
	}
	defer w.Stop()

	a.log.Info("watching for changes", zap.Strings("paths", a.watchPaths()))
	<-ctx.Done()
	return nil
}

func writeMetrics(a *app, path string) error {
	switch path {
	case "":
		return nil
	case "-":
		return a.metrics.WriteText(os.Stderr)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	defer f.Close()
	return a.metrics.WriteText(f)
}
