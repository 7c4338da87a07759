// Package grpc holds client-side helpers for probing runtimekit gRPC endpoints.
package grpc

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	probeCallTimeout  = time.Second
	probeFirstBackoff = 100 * time.Millisecond
	probeMaxBackoff   = time.Second
)

// ProbeStage names the step at which a probe gave up.
type ProbeStage string

const (
	ProbeStageConnect ProbeStage = "connect"
	ProbeStageHealth  ProbeStage = "health"
)

// ProbeError reports a failed probe and the stage it failed in.
type ProbeError struct {
	Stage ProbeStage
	Err   error
}

func (e *ProbeError) Error() string {
	if e == nil {
		return "gRPC probe error"
	}
	return fmt.Sprintf("gRPC probe %s: %v", e.Stage, e.Err)
}

func (e *ProbeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ClientOptions returns the plaintext, trace-propagating options used for
// in-cluster clients.
func ClientOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// Connect opens a client to addr and waits until service reports SERVING.
// The returned connection is closed on failure.
func Connect(ctx context.Context, addr, service string, logf func(string, ...any), opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(opts) == 0 {
		opts = ClientOptions()
	}
	conn, err := gogrpc.NewClient(addr, opts...)
	if err != nil {
		return nil, &ProbeError{Stage: ProbeStageConnect, Err: err}
	}
	if err := WaitForServing(ctx, conn, service, logf); err != nil {
		_ = conn.Close()
		return nil, &ProbeError{Stage: ProbeStageHealth, Err: err}
	}
	return conn, nil
}

// WaitForServing polls the health service on conn until service reports
// SERVING or ctx ends.
func WaitForServing(ctx context.Context, conn *gogrpc.ClientConn, service string, logf func(string, ...any)) error {
	if conn == nil {
		return fmt.Errorf("gRPC connection is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	client := grpc_health_v1.NewHealthClient(conn)
	backoff := probeFirstBackoff
	for {
		status, err := checkOnce(ctx, client, service)
		if err == nil && status == grpc_health_v1.HealthCheckResponse_SERVING {
			return nil
		}
		if err != nil {
			logf("health %q: %v", service, err)
		} else {
			logf("health %q: %s", service, status)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("wait for %q to serve: %w", service, ctx.Err())
		case <-timer.C:
		}
		backoff = nextBackoff(backoff)
	}
}

func checkOnce(ctx context.Context, client grpc_health_v1.HealthClient, service string) (grpc_health_v1.HealthCheckResponse_ServingStatus, error) {
	callCtx, cancel := context.WithTimeout(ctx, probeCallTimeout)
	defer cancel()
	resp, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > probeMaxBackoff {
		return probeMaxBackoff
	}
	return next
}
