package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/runtimekit/internal/services/runtime/observability/audit"
	"github.com/louisbranch/runtimekit/internal/services/runtime/storage"
	"github.com/louisbranch/runtimekit/internal/services/runtime/storage/sqlite"
)

// RunConfig configures a runtime node process.
type RunConfig struct {
	// Addr is the listen address for HTTP and gRPC health.
	Addr string
	// AuditDBPath is the SQLite audit log path. Empty disables auditing.
	AuditDBPath string
	// Genesis is an account=balance list applied before block 1.
	Genesis string
}

// Run opens the audit store, seeds the node and serves until ctx ends.
func Run(ctx context.Context, cfg RunConfig) error {
	genesis, err := ParseGenesis(cfg.Genesis)
	if err != nil {
		return fmt.Errorf("parse genesis: %w", err)
	}

	var (
		emitter *audit.Emitter
		reader  storage.AuditEventReader
	)
	if path := strings.TrimSpace(cfg.AuditDBPath); path != "" {
		store, err := openAuditStore(ctx, path)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close audit store: %v", err)
			}
		}()
		emitter = audit.NewEmitter(store)
		reader = store
	} else {
		log.Printf("audit log disabled")
	}

	node, err := NewNode(NodeOptions{Emitter: emitter, Genesis: genesis})
	if err != nil {
		return err
	}
	server, err := NewServer(cfg.Addr, node, reader)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

func openAuditStore(ctx context.Context, path string) (*sqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit dir: %w", err)
		}
	}
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}
	return store, nil
}
