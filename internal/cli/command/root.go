package command

import (
	"io"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ecigate-go/internal/cli/config"
	"github.com/yndnr/ecigate-go/internal/cli/output"
	"github.com/yndnr/ecigate-go/internal/infra/buildinfo"
	"github.com/yndnr/ecigate-go/internal/telemetry/logger"
	"github.com/yndnr/ecigate-go/pkg/ecigate"
)

// ProgramName is the binary name, also announced to the gateway.
const ProgramName = "ecigate-cli"

// Exit codes by failure kind.
const (
	ExitFailure    = 1
	ExitConnection = 2
	ExitEncoding   = 3
	ExitExecution  = 4
)

const (
	metaConfig = "config"
	metaLogger = "logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    ProgramName,
		Usage:   "Run CICS programs through an ECI gateway",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ExecCommand(),
			PingCommand(),
			BenchCommand(),
			ShellCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Before: setup,
	}
}

// flagBinding maps a global flag onto a configuration key.
type flagBinding struct {
	flag string
	key  string
	get  func(c *cli.Context, name string) any
}

func stringValue(c *cli.Context, name string) any { return c.String(name) }
func intValue(c *cli.Context, name string) any    { return c.Int(name) }
func sliceValue(c *cli.Context, name string) any  { return c.StringSlice(name) }

var flagBindings = []flagBinding{
	{"host", "gateway.host", stringValue},
	{"port", "gateway.port", intValue},
	{"cics-server", "gateway.cics_server", stringValue},
	{"connect-timeout", "gateway.socket_connect_timeout", intValue},
	{"user", "gateway.auth.user_id", stringValue},
	{"password", "gateway.auth.password", stringValue},
	{"keyring", "gateway.secure_socket.ssl_keyring", stringValue},
	{"keyring-password", "gateway.secure_socket.ssl_keyring_password", stringValue},
	{"cipher-suites", "gateway.secure_socket.ssl_cipher_suites", sliceValue},
	{"output", "output", stringValue},
	{"log-level", "log.level", stringValue},
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "configuration file",
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{Name: "host", Aliases: []string{"H"}, Usage: "gateway host"},
		&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "gateway port"},
		&cli.StringFlag{Name: "cics-server", Aliases: []string{"s"}, Usage: "CICS server name"},
		&cli.IntFlag{Name: "connect-timeout", Usage: "connect timeout in seconds, 0 for none"},
		&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "CICS user id"},
		&cli.StringFlag{Name: "password", Usage: "CICS password (prefer ECIGATE_GATEWAY__AUTH__PASSWORD)"},
		&cli.StringFlag{Name: "keyring", Usage: "TLS keyring: PKCS#12 file, PEM bundle or PEM directory"},
		&cli.StringFlag{Name: "keyring-password", Usage: "PKCS#12 keyring password"},
		&cli.StringSliceFlag{Name: "cipher-suites", Usage: "allowed TLS cipher suites"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output format: table, json, yaml, hex, raw"},
		&cli.StringFlag{Name: "log-level", Usage: "log level: debug, info, warn, error"},
	}
}

// setup loads the configuration, applies flags and builds the logger.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	flags := make(map[string]any)
	for _, b := range flagBindings {
		if c.IsSet(b.flag) {
			flags[b.key] = b.get(c, b.flag)
		}
	}
	if err := config.Merge(cfg, flags); err != nil {
		return err
	}
	if _, err := output.ParseFormat(cfg.Output); err != nil {
		return err
	}

	l, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return err
	}

	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaLogger] = logger.Slog(l)
	return nil
}

func loadedConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

func appLogger(c *cli.Context) *slog.Logger {
	if l, ok := c.App.Metadata[metaLogger].(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func outputFormat(c *cli.Context) output.Format {
	return output.Format(loadedConfig(c).Output)
}

func stdout(c *cli.Context) io.Writer {
	return c.App.Writer
}

func stderr(c *cli.Context) io.Writer {
	return c.App.ErrWriter
}

// connect opens a client from the loaded configuration.
func connect(c *cli.Context) (*ecigate.Client, error) {
	cfg := loadedConfig(c)
	return ecigate.Init(c.Context, cfg.ToConnectionConfig(),
		ecigate.WithLogger(appLogger(c)),
		ecigate.WithClientName(buildinfo.ClientName(ProgramName)),
	)
}

// ExitCode maps an error returned by App().Run to a process exit code.
func ExitCode(err error) int {
	switch ecigate.KindOf(err) {
	case ecigate.KindConnection:
		return ExitConnection
	case ecigate.KindEncoding:
		return ExitEncoding
	case ecigate.KindExecution:
		return ExitExecution
	}
	return ExitFailure
}
