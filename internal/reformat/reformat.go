// Package reformat turns free-text strategy input into a proposal for the
// primary strategy document. A proposal starts pending and settles exactly
// once, to accepted or rejected, on the strategy validation gate alone.
package reformat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/aiclient"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/apperr"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/storage"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/strategy"
)

// DefaultPath is the primary strategy document relative to the data root.
const DefaultPath = "strategy.md"

// maxReplyTokens caps the reshaped document.
const maxReplyTokens = 2000

// ErrUnconfirmed is returned by Apply when the caller did not confirm.
var ErrUnconfirmed = errors.New("reformat: apply requires confirmation")

// State is the lifecycle position of a Proposal.
type State string

const (
	StatePending  State = "pending"
	StateAccepted State = "accepted"
	StateRejected State = "rejected"
)

// Proposal is a candidate replacement for the strategy document.
type Proposal struct {
	ID       string             `json:"id"`
	State    State              `json:"state"`
	Original string             `json:"original"`
	Text     string             `json:"text"`
	Document *strategy.Document `json:"-"`
	Goals    int                `json:"goals"`
	// Reason explains a rejection.
	Reason string `json:"reason,omitempty"`
	// UpstreamError is set when the reasoning service failed and Text fell
	// back to Original.
	UpstreamError string `json:"upstream_error,omitempty"`
	Diff          string `json:"diff,omitempty"`
	// Artifact is where a rejected Text was preserved.
	Artifact     string `json:"artifact,omitempty"`
	BaseChecksum string `json:"base_checksum"`
	Applied      bool   `json:"applied"`
}

// settle moves a pending proposal to its final state. gateErr is the result
// of the validation gate.
func (p *Proposal) settle(gateErr error) error {
	if p.State != StatePending {
		return fmt.Errorf("reformat: proposal %s already %s", p.ID, p.State)
	}
	if gateErr != nil {
		p.State = StateRejected
		p.Reason = gateErr.Error()
		return nil
	}
	p.State = StateAccepted
	return nil
}

// CallRecorder receives one entry per reasoning-service call.
type CallRecorder interface {
	RecordCall(ctx context.Context, purpose, status, errMsg string, took time.Duration) error
}

// Reformatter proposes and applies strategy documents.
type Reformatter struct {
	ai    aiclient.Completer
	store storage.Provider
	path  string
	calls CallRecorder
}

// Option configures a Reformatter.
type Option func(*Reformatter)

// WithPath overrides the strategy document path.
func WithPath(path string) Option {
	return func(r *Reformatter) { r.path = path }
}

// WithCallRecorder records reasoning-service calls.
func WithCallRecorder(c CallRecorder) Option {
	return func(r *Reformatter) { r.calls = c }
}

// New creates a Reformatter. ai may be nil, which behaves like an
// unconfigured service.
func New(ai aiclient.Completer, store storage.Provider, opts ...Option) *Reformatter {
	r := &Reformatter{ai: ai, store: store, path: DefaultPath}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Propose reshapes raw through the reasoning service and gates the result.
// Service failures fall back to raw and are recorded on the proposal, which
// is then gated like any other text. Rejected text is preserved as an
// artifact; the primary document is never touched here.
func (r *Reformatter) Propose(ctx context.Context, raw string) (*Proposal, error) {
	current, err := r.current()
	if err != nil {
		return nil, err
	}

	p := &Proposal{
		ID:           uuid.NewString(),
		State:        StatePending,
		Original:     raw,
		Text:         raw,
		BaseChecksum: storage.Checksum([]byte(current)),
	}

	if text, err := r.reshape(ctx, raw); err != nil {
		p.UpstreamError = err.Error()
		slog.Warn("reformat: falling back to original text",
			slog.String("proposal", p.ID),
			slog.String("error", err.Error()),
		)
	} else {
		p.Text = text
	}

	p.Document = strategy.ParseString(p.Text)
	p.Goals = len(p.Document.Goals)
	if err := p.settle(p.Document.Validate()); err != nil {
		return nil, err
	}

	if p.State == StateRejected {
		path, err := r.store.SaveArtifact("strategy", ".md", []byte(p.Text))
		if err != nil {
			return nil, fmt.Errorf("reformat: preserve rejected text: %w", err)
		}
		p.Artifact = path
		slog.Info("reformat: proposal rejected",
			slog.String("proposal", p.ID),
			slog.String("reason", p.Reason),
			slog.String("artifact", path),
		)
		return p, nil
	}

	// Accepted text is stored in canonical form; anything the parser
	// skipped (prose, code fences) is dropped.
	p.Text = strategy.Render(p.Document)
	p.Diff, err = unifiedDiff(current, p.Text, r.path)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Reformatter) reshape(ctx context.Context, raw string) (string, error) {
	if r.ai == nil {
		return "", fmt.Errorf("reformat: %w", apperr.ErrNotConfigured)
	}
	start := time.Now()
	text, err := r.ai.Complete(ctx, aiclient.Request{System: strategy.ReformatInstruction, User: raw, MaxTokens: maxReplyTokens})
	status, msg := "ok", ""
	if err != nil {
		status, msg = "error", err.Error()
		if errors.Is(err, apperr.ErrNotConfigured) {
			status = "skipped"
		}
	}
	if r.calls != nil {
		if recErr := r.calls.RecordCall(ctx, "reformat", status, msg, time.Since(start)); recErr != nil {
			slog.Warn("reformat: record call", slog.String("error", recErr.Error()))
		}
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

// Apply writes an accepted proposal over the primary document. It refuses
// rejected proposals, unconfirmed calls, and documents that changed since
// the proposal was made.
func (r *Reformatter) Apply(p *Proposal, confirm bool) error {
	if p.State != StateAccepted {
		return &apperr.RejectedError{Reason: "reformat: proposal " + string(p.State) + ": " + p.Reason, Raw: p.Text, Artifact: p.Artifact}
	}
	if !confirm {
		return ErrUnconfirmed
	}
	if p.Applied {
		return nil
	}
	current, err := r.current()
	if err != nil {
		return err
	}
	if storage.Checksum([]byte(current)) != p.BaseChecksum {
		return fmt.Errorf("reformat: %s changed since proposal %s: %w", r.path, p.ID, apperr.ErrConflict)
	}
	if err := r.store.Write(r.path, []byte(p.Text)); err != nil {
		return fmt.Errorf("reformat: write %s: %w", r.path, err)
	}
	p.Applied = true
	slog.Info("reformat: strategy applied", slog.String("proposal", p.ID), slog.Int("goals", p.Goals))
	return nil
}

// current returns the primary document, or "" when it does not exist yet.
func (r *Reformatter) current() (string, error) {
	ok, err := r.store.Exists(r.path)
	if err != nil {
		return "", fmt.Errorf("reformat: %w", err)
	}
	if !ok {
		return "", nil
	}
	data, err := r.store.Read(r.path)
	if err != nil {
		return "", fmt.Errorf("reformat: %w", err)
	}
	return string(data), nil
}

func unifiedDiff(before, after, name string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "current/" + name,
		ToFile:   "proposed/" + name,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("reformat: diff: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return text, nil
}
