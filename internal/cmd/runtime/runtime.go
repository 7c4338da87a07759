// Package runtime parses runtime node flags and starts the node service.
package runtime

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/runtimekit/internal/platform/cmd"
	server "github.com/louisbranch/runtimekit/internal/services/runtime/app"
)

// Config holds runtime command configuration.
type Config struct {
	Addr        string `env:"RUNTIMEKIT_RUNTIME_ADDR"  envDefault:":8090"`
	AuditDBPath string `env:"RUNTIMEKIT_AUDIT_DB_PATH" envDefault:"data/audit.db"`
	Genesis     string `env:"RUNTIMEKIT_GENESIS"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The runtime node listen address")
	fs.StringVar(&cfg.AuditDBPath, "audit-db", cfg.AuditDBPath, "SQLite audit log path (empty disables auditing)")
	fs.StringVar(&cfg.Genesis, "genesis", cfg.Genesis, "Genesis balances as account=balance,...")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the runtime node.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRuntime, func(ctx context.Context) error {
		return server.Run(ctx, server.RunConfig{
			Addr:        cfg.Addr,
			AuditDBPath: cfg.AuditDBPath,
			Genesis:     cfg.Genesis,
		})
	})
}
