package config

import "time"

// Default configuration values.
const (
	DefaultAddr           = "127.0.0.1:2006"
	DefaultMetricsAddr    = "127.0.0.1:9106"
	DefaultMaxConnections = 256
	DefaultIdleTimeout    = 5 * time.Minute
	DefaultGatewayName    = "ecigate-server"
	DefaultServerName     = "CICSA"

	DefaultBurst = 10

	DefaultJournalDir       = "/var/lib/ecigate-server/journal"
	DefaultJournalRetention = 24 * time.Hour

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:           DefaultAddr,
			MetricsAddr:    DefaultMetricsAddr,
			MaxConnections: DefaultMaxConnections,
			IdleTimeout:    DefaultIdleTimeout,
		},
		Gateway: GatewaySection{
			Name:    DefaultGatewayName,
			Servers: []string{DefaultServerName},
			Users:   map[string]string{},
		},
		Limits: LimitsSection{
			Burst: DefaultBurst,
		},
		Journal: JournalSection{
			Dir:       DefaultJournalDir,
			Retention: DefaultJournalRetention,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
