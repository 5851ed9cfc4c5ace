package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/yndnr/ecigate-go/internal/infra/buildinfo"
	"github.com/yndnr/ecigate-go/internal/infra/confloader"
	"github.com/yndnr/ecigate-go/internal/infra/keyring"
	"github.com/yndnr/ecigate-go/internal/infra/shutdown"
	"github.com/yndnr/ecigate-go/internal/infra/workpool"
	"github.com/yndnr/ecigate-go/internal/server/config"
	"github.com/yndnr/ecigate-go/internal/server/gatewayserver"
	"github.com/yndnr/ecigate-go/internal/server/httpserver"
	"github.com/yndnr/ecigate-go/internal/storage/journal"
	"github.com/yndnr/ecigate-go/internal/telemetry/logger"
	"github.com/yndnr/ecigate-go/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		journalTail = flag.Int("journal-tail", 0, "Print the newest N journal entries and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("ecigate-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if *journalTail > 0 {
		return printJournal(cfg, log, *journalTail)
	}

	log.Info("starting ecigate-server",
		"version", buildinfo.Get().Version,
		"commit", buildinfo.Get().Commit,
		"config", *configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	metrics := metric.NewRegistry()
	shutdownHandler := shutdown.NewHandler(shutdownTimeout)
	shutdownHandler.SetLogger(log)

	pool := workpool.NewCached(workpool.WithLogger(log), workpool.WithMetrics(metrics))
	shutdownHandler.OnShutdown("workpool", pool.Shutdown)

	opts := []gatewayserver.Option{
		gatewayserver.WithLogger(log),
		gatewayserver.WithMetrics(metrics),
		gatewayserver.WithPool(pool),
	}

	programs := gatewayserver.NewRegistry()
	if err := gatewayserver.InstallBuiltins(programs, cfg.Gateway.Programs); err != nil {
		return fmt.Errorf("install programs: %w", err)
	}
	opts = append(opts, gatewayserver.WithPrograms(programs))

	var flows *journal.Journal
	if cfg.Journal.Enabled {
		j, err := journal.Open(journal.Config{
			Dir:       cfg.Journal.Dir,
			Retention: cfg.Journal.Retention,
		}, log)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		j.RegisterMetrics(metrics.Prometheus())
		shutdownHandler.OnShutdown("journal", func(context.Context) error {
			return j.Close()
		})
		opts = append(opts, gatewayserver.WithJournal(j))
		flows = j
	}

	tlsConfig, err := initTLS(cfg, log, shutdownHandler)
	if err != nil {
		return fmt.Errorf("init tls: %w", err)
	}

	srv := gatewayserver.New(gatewayserver.Config{
		Addr:              cfg.Server.Addr,
		TLSConfig:         tlsConfig,
		Name:              cfg.Gateway.Name,
		Servers:           cfg.Gateway.Servers,
		Users:             cfg.Gateway.Users,
		RequestsPerSecond: cfg.Limits.RequestsPerSecond,
		Burst:             cfg.Limits.Burst,
		DefaultTimeout:    cfg.Limits.DefaultTimeout,
		MaxConnections:    cfg.Server.MaxConnections,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}, opts...)

	if err := srv.Start(context.Background()); err != nil {
		return fmt.Errorf("start gateway: %w", err)
	}
	shutdownHandler.OnShutdown("gateway", srv.Shutdown)

	if cfg.Server.MetricsAddr != "" {
		router := &httpserver.RouterConfig{
			Status:         srv,
			Metrics:        metrics.Handler(),
			Logger:         log,
			AdminAllowList: cfg.Server.AdminAllowList,
			EnableAudit:    true,
		}
		if flows != nil {
			router.Journal = flows
		}
		httpServer := httpserver.New(cfg.Server.MetricsAddr, httpserver.NewRouter(router), log)
		if err := httpServer.Start(func(error) { shutdownHandler.Trigger() }); err != nil {
			return err
		}
		shutdownHandler.OnShutdown("http", httpServer.Shutdown)
	}

	if *configFile != "" {
		if err := watchConfig(*configFile, srv, log, shutdownHandler); err != nil {
			log.Warn("config watch disabled", "error", err)
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(context.Background()); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger installs the redacting logger as the process default.
func initLogger(cfg *config.ServerConfig) (*slog.Logger, error) {
	l, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(l)
	return logger.Slog(l), nil
}

// initTLS builds the listener TLS config. With tls.watch set, the serving
// certificate follows changes to the keyring file.
func initTLS(cfg *config.ServerConfig, log *slog.Logger, h *shutdown.Handler) (*tls.Config, error) {
	t := cfg.Server.TLS
	if !t.Enabled {
		return nil, nil
	}

	ring, err := keyring.Load(t.Keyring, t.KeyringPassword)
	if err != nil {
		return nil, err
	}
	tlsConfig, err := ring.ServerConfig(t.ClientAuth, t.CipherSuites)
	if err != nil {
		return nil, err
	}

	if t.Watch {
		w, err := keyring.NewWatcher(t.Keyring, t.KeyringPassword, keyring.WithLogger(log))
		if err != nil {
			return nil, err
		}
		w.StartAsync()
		h.OnShutdown("keyring-watcher", func(context.Context) error {
			w.Stop()
			return nil
		})
		tlsConfig.Certificates = nil
		tlsConfig.GetCertificate = w.GetCertificate
	}
	return tlsConfig, nil
}

// watchConfig re-applies the log level and the user table when the
// configuration file changes. Other settings need a restart.
func watchConfig(path string, srv *gatewayserver.Server, log *slog.Logger, h *shutdown.Handler) error {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return err
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		prev := logger.GetLevel()
		logger.SetLevel(cfg.Log.Level)
		srv.SetUsers(cfg.Gateway.Users)
		log.Info("config reloaded",
			"log_level", logger.GetLevel(),
			"previous_log_level", prev,
			"users", len(cfg.Gateway.Users),
		)
	})
	w.StartAsync()

	h.OnShutdown("config-watcher", func(context.Context) error {
		return w.Stop()
	})
	return nil
}

// printJournal lists the newest journal entries. The daemon must not be
// running against the same directory.
func printJournal(cfg *config.ServerConfig, log *slog.Logger, n int) error {
	if !cfg.Journal.Enabled {
		return errors.New("journal is disabled")
	}
	j, err := journal.Open(journal.Config{Dir: cfg.Journal.Dir}, log)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	entries, err := j.List(context.Background(), journal.ListOptions{Limit: n, Newest: true})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tREMOTE\tUSER\tPROGRAM\tOPCODE\tRC\tABEND\tIN\tOUT\tDURATION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\t%d\t%d\t%s\n",
			e.ID, e.Time.Format(time.RFC3339), e.Remote, logger.RedactUser(e.UserID), e.Program,
			e.OperationCode, e.ReturnCode, e.AbendCode, e.RequestLength, e.ResponseLength, e.Duration)
	}
	return tw.Flush()
}
