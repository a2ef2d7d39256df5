// Package gate validates query text against a safety policy before it ever
// reaches the execution backend. Read-only violations are rejected without a
// backend call, and dangerous statements require an explicit confirmation
// that is bound to the exact text that triggered the prompt.
package gate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/querydesk/querydesk/internal/results"
)

// State is a phase of the gate's confirmation state machine.
type State string

// Gate states.
const (
	StateIdle                 State = "idle"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateExecuting            State = "executing"
	StateCompleted            State = "completed"
	StateFailed               State = "failed"
)

// Executor runs already-gated SQL against the backend. Implementations are
// trusted only with text that has passed policy checks.
type Executor interface {
	// Execute runs the statement and returns its result set.
	Execute(ctx context.Context, sql string) (*results.Table, error)

	// Explain runs an explain-style dry run of the statement.
	Explain(ctx context.Context, sql string) (*results.Table, error)
}

// Request describes one execution attempt.
type Request struct {
	Text      string `json:"text"`
	ReadOnly  bool   `json:"readOnly"`
	DryRun    bool   `json:"dryRun"`
	Confirmed bool   `json:"confirmed,omitempty"`
}

// Result is the outcome of an execution attempt. A terminal result carries
// exactly one of Table or Err. A result with RequiresConfirmation set is
// non-terminal: the caller must re-submit with Confirmed once the user has
// acknowledged the prompt.
type Result struct {
	Table                *results.Table
	Err                  error
	Duration             time.Duration
	RequiresConfirmation bool
	DangerousOperation   Kind
}

// Terminal reports whether the result ends the attempt.
func (r *Result) Terminal() bool {
	return !r.RequiresConfirmation
}

// PolicyViolationError is returned when read-only mode rejects a mutating
// statement. No backend call has been made when this error is produced.
type PolicyViolationError struct {
	Kind Kind
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("read-only mode: %s statements are not allowed", e.Kind)
}

// Policy configures which statements the gate blocks or confirms.
type Policy struct {
	// ReadOnly rejects every mutating statement outright.
	ReadOnly bool

	// Dangerous lists the kinds that require confirmation when not in
	// read-only mode. Nil means DefaultDangerous.
	Dangerous []Kind
}

// DefaultDangerous is the default confirmation-gated statement set.
var DefaultDangerous = []Kind{KindDelete, KindDrop, KindTruncate, KindUpdate, KindAlter}

func (p Policy) dangerous(k Kind) bool {
	set := p.Dangerous
	if set == nil {
		set = DefaultDangerous
	}
	for _, d := range set {
		if d == k {
			return true
		}
	}
	return false
}

// Gate is the per-tab execution gate. It is safe for concurrent use,
// although the workspace drives it from a single goroutine per tab.
type Gate struct {
	mu       sync.Mutex
	policy   Policy
	executor Executor
	logger   *slog.Logger

	state State
	// pendingHash binds an outstanding confirmation prompt to the exact
	// text that was inspected. A confirmation for different text is stale
	// and re-prompts instead of executing.
	pendingHash string
	pendingKind Kind
}

// New creates a gate with the given policy and executor.
func New(policy Policy, executor Executor, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gate{
		policy:   policy,
		executor: executor,
		logger:   logger,
		state:    StateIdle,
	}
}

// State returns the current gate state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Cancel resolves a pending confirmation prompt without executing.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pendingHash = ""
	g.pendingKind = ""
	g.state = StateIdle
}

// Execute validates the request and, if the policy allows it, delegates to
// the executor. Policy violations and backend failures are reported inside
// the Result so callers can record them; the returned error is reserved for
// gate misuse.
func (g *Gate) Execute(ctx context.Context, req Request) (*Result, error) {
	if g.executor == nil {
		return nil, fmt.Errorf("gate has no executor")
	}

	g.mu.Lock()
	kind := Classify(req.Text)

	if (req.ReadOnly || g.policy.ReadOnly) && kind.Mutating() {
		g.state = StateFailed
		g.pendingHash = ""
		g.mu.Unlock()
		g.logger.Warn("rejected by read-only policy", "kind", string(kind))
		return &Result{Err: &PolicyViolationError{Kind: kind}}, nil
	}

	hash := textHash(req.Text)

	// Dry runs forward as explain requests and never mutate, so they skip
	// the confirmation gate entirely.
	if !req.DryRun && (g.policy.dangerous(kind) || g.state == StateAwaitingConfirmation) {
		if !req.Confirmed || g.pendingHash != hash {
			if !g.policy.dangerous(kind) {
				// The text changed to something harmless while a prompt
				// was pending; drop the stale prompt and fall through.
				g.pendingHash = ""
				g.pendingKind = ""
			} else {
				g.state = StateAwaitingConfirmation
				g.pendingHash = hash
				g.pendingKind = kind
				g.mu.Unlock()
				g.logger.Info("awaiting confirmation", "kind", string(kind))
				return &Result{RequiresConfirmation: true, DangerousOperation: kind}, nil
			}
		} else {
			g.pendingHash = ""
			g.pendingKind = ""
		}
	}

	g.state = StateExecuting
	g.mu.Unlock()

	start := time.Now()
	var (
		table *results.Table
		err   error
	)
	if req.DryRun {
		table, err = g.executor.Explain(ctx, req.Text)
	} else {
		table, err = g.executor.Execute(ctx, req.Text)
	}
	duration := time.Since(start)

	g.mu.Lock()
	if err != nil {
		g.state = StateFailed
	} else {
		g.state = StateCompleted
	}
	g.mu.Unlock()

	if err != nil {
		g.logger.Debug("execution failed", "error", err, "duration", duration)
		return &Result{Err: err, Duration: duration}, nil
	}
	return &Result{Table: table, Duration: duration}, nil
}

// textHash fingerprints query text for confirmation binding.
func textHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
