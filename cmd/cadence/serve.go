package main

import (
	"github.com/aretw0/cadence/internal/cli"
	"github.com/aretw0/cadence/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the operator HTTP API",
	Long: `Runs a station behind an HTTP API: catalog upload, session start and abort,
a server-sent event stream of phase changes and Prometheus metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		store, closeStore, err := cli.OpenStore(sc, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)

		emitter, err := cli.OpenEmitter(cfg, logger, metrics.ObserveOutcome)
		if err != nil {
			return err
		}
		defer emitter.Close()

		station := cli.NewStation(cfg, emitter, logger, metrics)

		return cli.Serve(sc, cli.ServeOptions{
			Addr:    cfg.HTTP.Addr,
			Station: station,
			Store:   store,
			Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			Logger:  logger,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (overrides http.addr)")
}
