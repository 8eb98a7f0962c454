package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	glspserver "github.com/tliron/glsp/server"

	"github.com/CWBudde/go-sysy-lsp/internal/lsp"
	"github.com/CWBudde/go-sysy-lsp/internal/server"
)

const name = "sysy-lsp"

type options struct {
	tcpMode     bool
	tcpPort     int
	logLevel    string
	logFile     string
	configPath  string
	metricsAddr string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           name,
		Short:         "Language Server Protocol implementation for SysY",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.tcpMode, "tcp", false, "Run server in TCP mode (for debugging)")
	flags.IntVar(&opts.tcpPort, "port", 8765, "TCP port to listen on (used with --tcp)")
	flags.StringVar(&opts.logLevel, "log-level", "error", "Log level: debug, info, notice, warn, error, none")
	flags.StringVar(&opts.logFile, "log-file", "", "Log file path (default: stderr)")
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")

	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", name, lsp.Version)
		},
	}
}

// verbosity maps a log level name to commonlog verbosity.
func verbosity(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return 2, nil
	case "info":
		return 1, nil
	case "notice":
		return 0, nil
	case "warn", "warning":
		return -1, nil
	case "error":
		return -2, nil
	case "none":
		return -4, nil
	}
	return 0, fmt.Errorf("unknown log level %q", level)
}

func run(opts *options) error {
	v, err := verbosity(opts.logLevel)
	if err != nil {
		return err
	}
	var logFile *string
	if opts.logFile != "" {
		logFile = &opts.logFile
	}
	commonlog.Configure(v, logFile)
	log := commonlog.GetLogger(name)

	cfg, err := server.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	srv := server.NewWithConfig(cfg, server.NewMetrics())
	lsp.SetServer(srv)

	if opts.metricsAddr != "" {
		serveMetrics(opts.metricsAddr, srv.Metrics(), log)
	}

	glspServer := glspserver.NewServer(lsp.NewHandler(), name, false)

	if opts.tcpMode {
		addr := fmt.Sprintf("127.0.0.1:%d", opts.tcpPort)
		log.Noticef("%s %s listening on %s", name, lsp.Version, addr)
		return glspServer.RunTCP(addr)
	}

	log.Noticef("%s %s on stdio", name, lsp.Version)
	return glspServer.RunStdio()
}

// serveMetrics exposes m on addr in the background. A failing listener is
// logged and does not stop the language server.
func serveMetrics(addr string, m *server.Metrics, log commonlog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("Serving metrics on http://%s/metrics", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics server: %s", err)
		}
	}()
}
