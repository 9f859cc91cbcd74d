package model

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	domai "github.com/bryanwahyu/legalmind/internal/domain/ai"
)

type fakeBackend struct {
	mu        sync.Mutex
	available map[string]bool
	loads     []string

	aliases map[string]string
	hang    map[string]bool

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Load(ctx context.Context, model string) (*domai.ModelInfo, error) {
	b.mu.Lock()
	b.loads = append(b.loads, model)
	hang := b.hang[model]
	b.mu.Unlock()

	if hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !b.available[model] {
		return nil, errors.New("repository not found")
	}
	name := model
	if alias, ok := b.aliases[model]; ok {
		name = alias
	}
	return &domai.ModelInfo{Backend: "fake", Name: name, Task: "summarization"}, nil
}

func (b *fakeBackend) Generate(_ context.Context, model string, req domai.SummarizeRequest) (string, error) {
	n := b.inFlight.Add(1)
	defer b.inFlight.Add(-1)
	for {
		cur := b.maxInFlight.Load()
		if n <= cur || b.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	time.Sleep(b.delay)
	return model + ":" + req.Text, nil
}

func TestLoad_PrimaryWins(t *testing.T) {
	be := &fakeBackend{available: map[string]bool{"facebook/bart-large-cnn": true, "t5-small": true}}

	e, err := Load(context.Background(), be, Options{Candidates: []string{"facebook/bart-large-cnn", "t5-small"}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if e.Model() != "facebook/bart-large-cnn" {
		t.Fatalf("Model = %q", e.Model())
	}
	if len(be.loads) != 1 {
		t.Fatalf("loads = %v, want only the primary", be.loads)
	}
}

func TestLoad_FallsBack(t *testing.T) {
	be := &fakeBackend{available: map[string]bool{"t5-small": true}}

	e, err := Load(context.Background(), be, Options{Candidates: []string{"org/missing", "t5-small"}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if e.Model() != "t5-small" {
		t.Fatalf("Model = %q, want fallback", e.Model())
	}
	out, err := e.Summarize(context.Background(), domai.SummarizeRequest{Text: "x", MaxLength: 50, MinLength: 30})
	if err != nil || out != "t5-small:x" {
		t.Fatalf("Summarize = %q, %v", out, err)
	}
}

func TestLoad_AllFail(t *testing.T) {
	be := &fakeBackend{available: map[string]bool{}}

	_, err := Load(context.Background(), be, Options{Candidates: []string{"a", "", "a", "b"}})
	var le *domai.ModelLoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v, want *ModelLoadError", err)
	}
	if len(le.Attempts) != 2 || le.Attempts[0] != "a" || le.Attempts[1] != "b" {
		t.Fatalf("Attempts = %v, want [a b]", le.Attempts)
	}

	if _, err := Load(context.Background(), be, Options{}); !errors.As(err, &le) {
		t.Fatalf("no candidates: err = %v, want *ModelLoadError", err)
	}
}

func TestLoad_UsesCache(t *testing.T) {
	cache := NewCache(t.TempDir())
	be := &fakeBackend{available: map[string]bool{"t5-small": true}}

	if _, err := Load(context.Background(), be, Options{Candidates: []string{"t5-small"}, Cache: cache}); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if _, err := Load(context.Background(), be, Options{Candidates: []string{"t5-small"}, Cache: cache}); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if len(be.loads) != 1 {
		t.Fatalf("backend loads = %d, want 1 (second served from cache)", len(be.loads))
	}
}

func TestLoad_TimeoutIsPerCandidate(t *testing.T) {
	be := &fakeBackend{
		available: map[string]bool{"t5-small": true},
		hang:      map[string]bool{"facebook/bart-large-cnn": true},
	}

	e, err := Load(context.Background(), be, Options{
		Candidates: []string{"facebook/bart-large-cnn", "t5-small"},
		Timeout:    50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if e.Model() != "t5-small" {
		t.Fatalf("Model = %q, want fallback after primary timed out", e.Model())
	}
}

func TestLoad_CacheKeyedByCandidateName(t *testing.T) {
	cache := NewCache(t.TempDir())
	be := &fakeBackend{
		available: map[string]bool{"t5-small": true},
		aliases:   map[string]string{"t5-small": "google-t5/t5-small"},
	}
	opts := Options{Candidates: []string{"t5-small"}, Cache: cache}

	first, err := Load(context.Background(), be, opts)
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	second, err := Load(context.Background(), be, opts)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if len(be.loads) != 1 {
		t.Fatalf("backend loads = %v, want one", be.loads)
	}
	if first.Model() != "google-t5/t5-small" || second.Model() != first.Model() {
		t.Fatalf("models = %q, %q", first.Model(), second.Model())
	}
}

func TestSummarize_Serialized(t *testing.T) {
	be := &fakeBackend{available: map[string]bool{"m": true}, delay: 5 * time.Millisecond}
	e, err := Load(context.Background(), be, Options{Candidates: []string{"m"}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.Summarize(context.Background(), domai.SummarizeRequest{Text: "t"})
		}()
	}
	wg.Wait()

	if got := be.maxInFlight.Load(); got != 1 {
		t.Fatalf("max concurrent generations = %d, want 1", got)
	}
}

func TestCheck(t *testing.T) {
	var e *Engine
	if err := e.Check(context.Background()); err == nil {
		t.Fatalf("nil engine reported healthy")
	}
}
