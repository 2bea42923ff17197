package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AaronLay10/schemagraph/internal/api"
	"github.com/AaronLay10/schemagraph/internal/config"
	"github.com/AaronLay10/schemagraph/internal/events"
	"github.com/AaronLay10/schemagraph/internal/mqtt"
	"github.com/AaronLay10/schemagraph/internal/printer"
)

type serveOptions struct {
	prefix        string
	forwardEvents bool
	metrics       string
	opsAddr       string
}

func newServeCommand(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Render pages on request over MQTT and publish their graphs",
		Long: `serve subscribes to <prefix>/render/request. Each message is a JSON
render target such as {"kind":"singular","id":10}; the resulting graph is
published, retained, on <prefix>/graphs/<kind>/<slug>.

With --ops-addr an operations server exposes /health, /metrics, /events
and /ws/events. Set SCHEMAGRAPH_ADMIN_USER/PASS to require basic auth and
SCHEMAGRAPH_TLS_CERT/KEY to serve it over TLS.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), global, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.prefix, "mqtt-prefix", "schemagraph", "MQTT topic prefix")
	flags.BoolVar(&opts.forwardEvents, "forward-events", true, "republish events on <prefix>/events/<name>")
	flags.StringVar(&opts.opsAddr, "ops-addr", config.Env("SCHEMAGRAPH_OPS_ADDR", ""), "operations server listen address; empty disables it")
	flags.StringVar(&opts.metrics, "metrics", "", "write build metrics in Prometheus text format to this file on shutdown (- for stderr)")
	return cmd
}

func runServe(ctx context.Context, global *globalOptions, opts *serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, global)
	if err != nil {
		return err
	}
	defer a.close()

	events.Emit("info", "system.startup", "schemagraph serve starting", map[string]interface{}{
		"hostname": hostname(),
		"pid":      os.Getpid(),
		"broker":   mqtt.BrokerURL(),
	})

	client, err := mqtt.NewClient("schemagraph-serve-" + hostname())
	if err != nil {
		return err
	}

	sink := mqtt.NewGraphSink(client, opts.prefix)
	requests := mqtt.NewRequestSubscriber(client, opts.prefix, func(t printer.Target) {
		serveRequest(ctx, a, sink, t)
	})

	client.OnConnect(func() {
		requests.ClearSubscriptions()
		if err := requests.Subscribe(); err != nil {
			a.log.Error("failed to subscribe to render requests", zap.String("topic", requests.Topic()), zap.Error(err))
			return
		}
		a.log.Info("listening for render requests", zap.String("topic", requests.Topic()))
	})

	if !client.Start(a.log) {
		return fmt.Errorf("failed to start mqtt on %s", mqtt.BrokerURL())
	}
	defer client.Disconnect()

	if opts.forwardEvents {
		done := mqtt.NewForwarder(client, opts.prefix, a.log).Start(ctx)
		defer func() {
			stop()
			<-done
		}()
	}

	w, err := config.NewWatcher(a.log, config.DefaultDebounce, func(path string) {
		events.Emit("info", "watch.reload", "input changed", map[string]interface{}{"path": path})
		if err := a.reload(ctx); err != nil {
			a.log.Error("reload failed", zap.String("path", path), zap.Error(err))
		}
	}, a.watchPaths()...)
	if err != nil {
		return err
	}
	defer w.Stop()

	if opts.opsAddr != "" {
		if err := startOps(ctx, a, opts.opsAddr); err != nil {
			return err
		}
	}

	<-ctx.Done()
	events.Emit("info", "system.shutdown", "schemagraph serve stopping", nil)
	return writeMetrics(a, opts.metrics)
}

// startOps runs the operations server until ctx is done.
func startOps(ctx context.Context, a *app, addr string) error {
	if err := api.InitAuth(); err != nil {
		return err
	}
	if err := api.InitTLS(); err != nil {
		return err
	}

	srv := api.NewServer(api.Config{Metrics: a.metrics, Logger: a.log})
	go func() {
		if err := srv.ListenAndServe(ctx, addr); err != nil {
			a.log.Error("operations server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	return nil
}

// serveRequest renders one request on its own session.
func serveRequest(ctx context.Context, a *app, sink *mqtt.GraphSink, t printer.Target) {
	req, err := t.Resolve(a.repo.Load())
	if err != nil {
		events.Emit("warn", "render.rejected", err.Error(), map[string]interface{}{"kind": string(t.Kind), "id": t.ID})
		return
	}
	if _, err := a.printer(printer.WithSink(sink)).Print(ctx, printer.NewBuildSession(), req); err != nil {
		a.log.Warn("render failed", zap.String("kind", string(t.Kind)), zap.Int("id", t.ID), zap.Error(err))
	}
}
