// Package timeouts defines shared timeout constants for runtimekit servers.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// ScenarioStep caps a single scenario step when it runs against a node.
const ScenarioStep = 10 * time.Second
