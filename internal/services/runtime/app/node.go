package app

import (
	"context"
	"fmt"
	"log"
	"sync"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/runtime"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/support"
	"github.com/louisbranch/runtimekit/internal/services/runtime/observability/audit"
	"github.com/louisbranch/runtimekit/internal/services/runtime/observability/audit/events"
	"github.com/louisbranch/runtimekit/internal/services/runtime/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/runtimekit/internal/services/runtime/app"

// NodeOptions configures a Node.
type NodeOptions struct {
	// Emitter records block and extrinsic audit events. Nil disables auditing.
	Emitter *audit.Emitter
	// Logger receives per-extrinsic failures. Nil uses the standard logger.
	Logger *log.Logger
	// Genesis seeds balances before block 1.
	Genesis Genesis
	// Tracer overrides the global tracer.
	Tracer trace.Tracer
}

// Node owns one runtime and serializes access to it.
type Node struct {
	mu       sync.RWMutex
	runtime  *Runtime
	registry *CallRegistry
	emitter  *audit.Emitter
	logger   *log.Logger
	tracer   trace.Tracer
	pending  *FailureRecorder
}

// NewNode builds a node at block zero seeded with opts.Genesis.
func NewNode(opts NodeOptions) (*Node, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	registry, err := NewCallRegistry()
	if err != nil {
		return nil, fmt.Errorf("build call registry: %w", err)
	}

	pending := &FailureRecorder{}
	rt := NewRuntime(runtime.Sinks[AccountID, BlockNumber]{
		runtime.LogSink[AccountID, BlockNumber]{Logger: logger},
		audit.FailureSink[AccountID, BlockNumber]{Emitter: opts.Emitter, Logger: logger},
		pending,
	})
	if err := rt.ApplyGenesis(opts.Genesis); err != nil {
		return nil, fmt.Errorf("apply genesis: %w", err)
	}

	return &Node{
		runtime:  rt,
		registry: registry,
		emitter:  opts.Emitter,
		logger:   logger,
		tracer:   tracer,
		pending:  pending,
	}, nil
}

// FailureView is the reported form of one failed extrinsic.
type FailureView struct {
	Index   int    `json:"index"`
	Caller  string `json:"caller"`
	Call    string `json:"call"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BlockResult summarizes an executed block.
type BlockResult struct {
	BlockNumber BlockNumber   `json:"block_number"`
	Extrinsics  int           `json:"extrinsics"`
	Failures    []FailureView `json:"failures"`
}

// DecodeBlock resolves the calls of env.
func (n *Node) DecodeBlock(env BlockEnvelope) (Block, error) {
	return runtime.DecodeBlock(n.registry, env)
}

// ExecuteBlock applies block while holding the write lock.
func (n *Node) ExecuteBlock(ctx context.Context, block Block) (BlockResult, error) {
	ctx, span := n.tracer.Start(ctx, "runtime.execute_block", trace.WithAttributes(
		attribute.Int64("runtime.block_number", int64(block.Header.BlockNumber)),
		attribute.Int("runtime.extrinsics", len(block.Extrinsics)),
	))
	defer span.End()

	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.runtime.ExecuteBlock(ctx, block); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		n.logger.Printf("block %d rejected: %v", block.Header.BlockNumber, err)
		n.emit(ctx, blockRejectedEvent(block, err))
		return BlockResult{}, err
	}

	failures := n.pending.Drain()
	span.SetAttributes(attribute.Int("runtime.failures", len(failures)))

	result := BlockResult{
		BlockNumber: block.Header.BlockNumber,
		Extrinsics:  len(block.Extrinsics),
		Failures:    make([]FailureView, 0, len(failures)),
	}
	for _, f := range failures {
		result.Failures = append(result.Failures, FailureView{
			Index:   f.Index,
			Caller:  f.Caller,
			Call:    f.Call,
			Code:    string(f.Code()),
			Message: f.Err.Error(),
		})
	}
	n.emit(ctx, blockExecutedEvent(result))
	return result, nil
}

func (n *Node) emit(ctx context.Context, evt storage.AuditEvent) {
	if err := n.emitter.Emit(ctx, evt); err != nil {
		n.logger.Printf("audit: record %s: %v", evt.EventName, err)
	}
}

func blockExecutedEvent(result BlockResult) storage.AuditEvent {
	number := uint64(result.BlockNumber)
	return storage.AuditEvent{
		EventName:   events.BlockExecuted,
		Severity:    string(audit.SeverityInfo),
		BlockNumber: &number,
		Attributes: map[string]any{
			"extrinsics": result.Extrinsics,
			"failures":   len(result.Failures),
		},
	}
}

func blockRejectedEvent(block Block, err error) storage.AuditEvent {
	number := uint64(block.Header.BlockNumber)
	return storage.AuditEvent{
		EventName:   events.BlockRejected,
		Severity:    string(audit.SeverityWarn),
		BlockNumber: &number,
		ErrorCode:   string(apperrors.CodeOf(err)),
		Message:     err.Error(),
		Attributes: map[string]any{
			"extrinsics": len(block.Extrinsics),
		},
	}
}

// BlockNumber returns the number of the last executed block.
func (n *Node) BlockNumber() BlockNumber {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.runtime.BlockNumber()
}

// AccountView is the balance and nonce of one account.
type AccountView struct {
	Account AccountID `json:"account"`
	Balance Balance   `json:"balance"`
	Nonce   Nonce     `json:"nonce"`
}

// Account returns the balance and nonce of who. Unknown accounts read as zero.
func (n *Node) Account(who AccountID) AccountView {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return AccountView{Account: who, Balance: n.runtime.Balance(who), Nonce: n.runtime.Nonce(who)}
}

// Accounts returns every account holding a balance or a nonce, ordered by id.
func (n *Node) Accounts() []AccountView {
	state := n.Snapshot()
	views := make(map[AccountID]AccountView, len(state.Balances)+len(state.Nonces))
	for _, b := range state.Balances {
		view := views[b.Account]
		view.Account = b.Account
		view.Balance = b.Balance
		views[b.Account] = view
	}
	for _, nonce := range state.Nonces {
		view := views[nonce.Account]
		view.Account = nonce.Account
		view.Nonce = nonce.Nonce
		views[nonce.Account] = view
	}
	out := make([]AccountView, 0, len(views))
	for _, who := range support.SortedKeys(views) {
		out = append(out, views[who])
	}
	return out
}

// GetClaim returns the owner of claim.
func (n *Node) GetClaim(claim Claim) (AccountID, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.runtime.GetClaim(claim)
}

// Snapshot returns an ordered view of the whole state.
func (n *Node) Snapshot() State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.runtime.Snapshot()
}

// TotalIssuance sums every balance.
func (n *Node) TotalIssuance() (Balance, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.runtime.TotalIssuance()
}

// Calls returns the wire names of every dispatchable call.
func (n *Node) Calls() []string {
	keys := n.registry.Keys()
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, key.String())
	}
	return names
}
