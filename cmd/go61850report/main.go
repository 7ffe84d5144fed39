// Command go61850report is the CLI front-end for the session/reports
// client: connect to an IED, subscribe a Report Control Block, or probe
// one with GetRCBValues. Its subcommand shape is adapted from
// original_source/mms_client.py's argv[1]=host, argv[2]=port-or-ref
// convention, generalized into subcommands the way a Go CLI built atop
// flag.FlagSet expresses the same usage pattern.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/slonegd/go61850report/client"
	"github.com/slonegd/go61850report/internal/config"
	"github.com/slonegd/go61850report/internal/diagnostics"
	"github.com/slonegd/go61850report/internal/logging"
	"github.com/slonegd/go61850report/mms"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "go61850report:", err)
		os.Exit(1)
	}
}

func usage() error {
	return fmt.Errorf(`usage:
  go61850report connect <host> [port]
  go61850report subscribe <host> <domain> <item> [port]
  go61850report get-rcb <host> <domain> <item> [port]

flags (all subcommands): -config <path> -timeout <duration>`)
}

func run(args []string) error {
	if len(args) < 1 {
		return usage()
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "connect":
		return runConnect(rest)
	case "subscribe":
		return runSubscribe(rest)
	case "get-rcb":
		return runGetRCB(rest)
	default:
		return usage()
	}
}

func loadConfig(configPath string) *config.Config {
	if configPath == "" {
		return config.Defaults()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logging.New("cli").Warn("cli: %s unreadable, using defaults: %v", configPath, err)
		return config.Defaults()
	}
	return cfg
}

// newSession builds a Session from cfg, starting the diagnostics HTTP
// server first (if enabled) so the collector exists before Connect
// registers the TCP connection with it.
func newSession(ctx context.Context, cfg *config.Config, logger logging.Logger) *client.Session {
	opts := []client.Option{
		client.WithLogger(logger),
		client.WithHeartbeat(cfg.HeartbeatTimeout),
		client.WithInvokeIDBase(cfg.InvokeIDBase),
	}

	if cfg.Diagnostics.Enabled {
		registry := prometheus.NewRegistry()
		collector := diagnostics.NewTCPInfoCollector(logger)
		registry.MustRegister(collector)
		srv := diagnostics.NewServer(cfg.Diagnostics.Addr, registry, logger)
		srv.Start(ctx)
		logger.Info("cli: diagnostics listening on %s", cfg.Diagnostics.Addr)
		opts = append(opts, client.WithDiagnostics(collector))
	}

	return client.New(opts...)
}

func runConnect(args []string) error {
	fs := flag.NewFlagSet("connect", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config.yaml")
	timeout := fs.Duration("timeout", 5*time.Second, "connect timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 1 {
		return usage()
	}
	host, port, err := hostAndPort(rest, 1)
	if err != nil {
		return err
	}

	cfg := loadConfig(*configPath)
	logger := logging.New("cli")
	ctx, cancel := signalContext()
	defer cancel()

	session := newSession(ctx, cfg, logger)
	defer session.Close()

	connectCtx, connectCancel := context.WithTimeout(ctx, *timeout)
	defer connectCancel()
	if err := session.Connect(connectCtx, host, port); err != nil {
		return err
	}
	logger.Info("cli: connected to %s:%d, state=%s", host, port, session.State())
	return nil
}

func runSubscribe(args []string) error {
	fs := flag.NewFlagSet("subscribe", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config.yaml")
	timeout := fs.Duration("timeout", 5*time.Second, "connect timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 3 {
		return usage()
	}
	host, domain, item := rest[0], rest[1], rest[2]
	port, err := portArg(rest, 3)
	if err != nil {
		return err
	}

	cfg := loadConfig(*configPath)
	logger := logging.New("cli")
	ctx, cancel := signalContext()
	defer cancel()

	session := newSession(ctx, cfg, logger)
	defer session.Close()

	connectCtx, connectCancel := context.WithTimeout(ctx, *timeout)
	defer connectCancel()
	if err := session.Connect(connectCtx, host, port); err != nil {
		return err
	}
	if err := session.EnableReporting(connectCtx, domain, item, true, cfg.RCB.IntgPdMillis); err != nil {
		return err
	}
	logger.Info("cli: subscribed %s$%s, entering report loop (Ctrl+C to stop)", domain, item)

	return session.LoopReports(ctx, func(report *mms.MMSReport) {
		fmt.Printf("report seq=%d rpt=%s dataset=%s degraded=%t\n",
			report.SeqNum, report.RptID, report.DataSetName, report.Degraded)
	})
}

func runGetRCB(args []string) error {
	fs := flag.NewFlagSet("get-rcb", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config.yaml")
	timeout := fs.Duration("timeout", 5*time.Second, "connect timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 3 {
		return usage()
	}
	host, domain, item := rest[0], rest[1], rest[2]
	port, err := portArg(rest, 3)
	if err != nil {
		return err
	}

	cfg := loadConfig(*configPath)
	logger := logging.New("cli")
	ctx, cancel := signalContext()
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, *timeout)
	defer connectCancel()

	session := newSession(ctx, cfg, logger)
	defer session.Close()

	if err := session.Connect(connectCtx, host, port); err != nil {
		return err
	}

	values, err := session.GetRCBValues(connectCtx, domain, item)
	if err != nil {
		return err
	}
	fmt.Printf("rptEna=%t datSet=%s\n", values.RptEna, values.DatSet)
	return nil
}

func hostAndPort(rest []string, portIdx int) (string, int, error) {
	port, err := portArg(rest, portIdx)
	if err != nil {
		return "", 0, err
	}
	return rest[0], port, nil
}

func portArg(rest []string, idx int) (int, error) {
	if len(rest) <= idx {
		return 102, nil
	}
	var port int
	if _, err := fmt.Sscanf(rest[idx], "%d", &port); err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", rest[idx], err)
	}
	return port, nil
}

// signalContext returns a context canceled on SIGINT/SIGTERM, so a
// running subscribe loop exits its LoopReports call (and the deferred
// session.Close runs) on Ctrl+C instead of leaving the socket open.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
