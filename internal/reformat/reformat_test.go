package reformat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/aiclient"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/apperr"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/storage"
)

const validDoc = `# Strategic Goals

## Goal: Cloud Migration
- id: cap.cloud
- target_date: 2026-06-30
- headcount_target: 2
- required_skills:
  - skill.k8s: Advanced
`

type fakeAI struct {
	reply string
	err   error
	calls int
}

func (f *fakeAI) Complete(_ context.Context, _ aiclient.Request) (string, error) {
	f.calls++
	return f.reply, f.err
}

type callLog []string

func (c *callLog) RecordCall(_ context.Context, purpose, status, _ string, _ time.Duration) error {
	*c = append(*c, purpose+":"+status)
	return nil
}

func newStore(t *testing.T) *storage.FS {
	t.Helper()
	s, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s
}

func TestPropose_Accepted(t *testing.T) {
	store := newStore(t)
	_ = store.Write(DefaultPath, []byte("# Strategic Goals\n"))
	calls := &callLog{}
	r := New(&fakeAI{reply: validDoc}, store, WithCallRecorder(calls))

	p, err := r.Propose(context.Background(), "we need two k8s people by mid 2026")
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if p.State != StateAccepted || p.Goals != 1 || p.UpstreamError != "" {
		t.Errorf("proposal = %+v", p)
	}
	if !strings.Contains(p.Diff, "+## Goal: Cloud Migration") {
		t.Errorf("diff = %q", p.Diff)
	}
	if len(*calls) != 1 || (*calls)[0] != "reformat:ok" {
		t.Errorf("calls = %v", *calls)
	}

	got, _ := store.Read(DefaultPath)
	if string(got) != "# Strategic Goals\n" {
		t.Error("Propose must not write the primary document")
	}
}

func TestPropose_AcceptedTextIsCanonical(t *testing.T) {
	store := newStore(t)
	reply := "Sure, here is your document:\n```markdown\n" + validDoc + "```\nLet me know if you need changes."
	r := New(&fakeAI{reply: reply}, store)

	p, err := r.Propose(context.Background(), "x")
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if p.State != StateAccepted {
		t.Fatalf("state = %s (%s)", p.State, p.Reason)
	}
	if p.Text != validDoc {
		t.Errorf("text = %q, want canonical document", p.Text)
	}
	if err := r.Apply(p, true); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got, _ := store.Read(DefaultPath)
	if strings.Contains(string(got), "Sure") || strings.Contains(string(got), "```") {
		t.Errorf("document = %q", got)
	}
}

func TestPropose_NonStrategyReplyRejected(t *testing.T) {
	store := newStore(t)
	_ = store.Write(DefaultPath, []byte(validDoc))
	reply := "Sorry, I cannot help with that."
	r := New(&fakeAI{reply: reply}, store)

	p, err := r.Propose(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if p.State != StateRejected || p.Reason == "" {
		t.Fatalf("proposal = %+v", p)
	}
	saved, err := store.Read(p.Artifact)
	if err != nil || string(saved) != reply {
		t.Errorf("artifact = %q, %v", saved, err)
	}
	if !strings.HasPrefix(p.Artifact, storage.RejectedDir+"/strategy-") {
		t.Errorf("artifact path = %q", p.Artifact)
	}

	err = r.Apply(p, true)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Apply(rejected) = %v, want ErrValidation", err)
	}
	got, _ := store.Read(DefaultPath)
	if string(got) != validDoc {
		t.Error("rejected proposal overwrote the primary document")
	}
}

func TestPropose_GoalsWithoutSkillsRejected(t *testing.T) {
	r := New(&fakeAI{reply: "## Goal: Empty\n- id: cap.empty\n"}, newStore(t))
	p, err := r.Propose(context.Background(), "x")
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if p.State != StateRejected {
		t.Errorf("state = %s, want rejected", p.State)
	}
}

func TestPropose_UpstreamFailureFallsBackToOriginal(t *testing.T) {
	store := newStore(t)
	calls := &callLog{}
	r := New(&fakeAI{err: apperr.ErrUpstream}, store, WithCallRecorder(calls))

	p, err := r.Propose(context.Background(), validDoc)
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if p.Text != validDoc || p.UpstreamError == "" {
		t.Errorf("proposal = %+v", p)
	}
	if p.State != StateAccepted {
		t.Errorf("state = %s: original text passes the gate", p.State)
	}
	if (*calls)[0] != "reformat:error" {
		t.Errorf("calls = %v", *calls)
	}
}

func TestPropose_UnconfiguredFallsBackAndGates(t *testing.T) {
	r := New(nil, newStore(t))
	p, err := r.Propose(context.Background(), "free text with no goals")
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if p.State != StateRejected || !strings.Contains(p.UpstreamError, "not configured") {
		t.Errorf("proposal = %+v", p)
	}
}

func TestApply(t *testing.T) {
	store := newStore(t)
	r := New(&fakeAI{reply: validDoc}, store, WithPath("plans/strategy.md"))

	p, err := r.Propose(context.Background(), "x")
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if err := r.Apply(p, false); !errors.Is(err, ErrUnconfirmed) {
		t.Errorf("Apply(unconfirmed) = %v", err)
	}
	if ok, _ := store.Exists("plans/strategy.md"); ok {
		t.Fatal("unconfirmed apply wrote the document")
	}
	if err := r.Apply(p, true); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got, _ := store.Read("plans/strategy.md")
	if string(got) != validDoc || !p.Applied {
		t.Errorf("document = %q", got)
	}
	if err := r.Apply(p, true); err != nil {
		t.Errorf("second Apply = %v", err)
	}
}

func TestApply_ConflictWhenDocumentChanged(t *testing.T) {
	store := newStore(t)
	r := New(&fakeAI{reply: validDoc}, store)
	p, _ := r.Propose(context.Background(), "x")

	_ = store.Write(DefaultPath, []byte("edited meanwhile"))

	if err := r.Apply(p, true); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("Apply = %v, want ErrConflict", err)
	}
}

func TestSettleOnlyOnce(t *testing.T) {
	p := &Proposal{ID: "p", State: StatePending}
	if err := p.settle(nil); err != nil || p.State != StateAccepted {
		t.Fatalf("settle = %v, state %s", err, p.State)
	}
	if err := p.settle(errors.New("late")); err == nil {
		t.Error("second settle should fail")
	}
	if p.State != StateAccepted {
		t.Errorf("state changed to %s", p.State)
	}
}
