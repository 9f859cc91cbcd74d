package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	domai "github.com/bryanwahyu/legalmind/internal/domain/ai"
	domain "github.com/bryanwahyu/legalmind/internal/domain/analysis"
)

type fakeSummarizer struct {
	summary string
	err     error
	got     []domai.SummarizeRequest
}

func (f *fakeSummarizer) Summarize(_ context.Context, req domai.SummarizeRequest) (string, error) {
	f.got = append(f.got, req)
	return f.summary, f.err
}

func (f *fakeSummarizer) Model() string { return "fake-model" }

// stepClock advances by step on every Now call
type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

type memRepo struct {
	mu      sync.Mutex
	texts   map[string]string
	records []*domain.Record
	err     error
}

func newMemRepo() *memRepo { return &memRepo{texts: map[string]string{}} }

func (r *memRepo) SaveAnalysis(_ context.Context, text string, res *domain.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	hash := domain.TextHash(text)
	if _, ok := r.texts[hash]; !ok {
		r.texts[hash] = text
	}
	r.records = append(r.records, &domain.Record{
		ID:             domain.RecordID(len(r.records) + 1),
		TextHash:       hash,
		OriginalLength: res.OriginalLength,
		Summary:        res.Summary,
		ProcessingTime: res.ProcessingTime,
		Content:        text,
	})
	return nil
}

func (r *memRepo) RecentAnalyses(_ context.Context, limit int) ([]*domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Record
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}

func (r *memRepo) GetAnalysis(_ context.Context, id domain.RecordID) (*domain.Record, error) {
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

type failingArchive struct{ calls int }

func (a *failingArchive) Put(context.Context, string, string) (string, error) {
	a.calls++
	return "", errors.New("bucket unreachable")
}

func newService(sum *fakeSummarizer, repo *memRepo) *Service {
	return &Service{
		Summarizer: sum,
		Repo:       repo,
		Clock:      &stepClock{t: time.Unix(1700000000, 0), step: 1500 * time.Millisecond},
	}
}

func TestAnalyze_ShortInputUsesFloors(t *testing.T) {
	sum := &fakeSummarizer{summary: "Greeting."}
	svc := newService(sum, newMemRepo())

	res, err := svc.Analyze(context.Background(), "  Hello world  ")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(sum.got) != 1 {
		t.Fatalf("summarizer calls = %d, want 1", len(sum.got))
	}
	req := sum.got[0]
	if req.Text != "Hello world" || req.MaxLength != 50 || req.MinLength != 30 {
		t.Fatalf("request = %+v", req)
	}
	if res.InputWordCount != 2 || res.OriginalLength != 11 || res.SummaryLength != 9 {
		t.Fatalf("result = %+v", res)
	}
	if math.Abs(res.CompressionRatio-11.0/9.0) > 1e-9 {
		t.Fatalf("CompressionRatio = %v", res.CompressionRatio)
	}
	if res.ProcessingTime != 1.5 {
		t.Fatalf("ProcessingTime = %v, want 1.5", res.ProcessingTime)
	}
	if res.Model != "fake-model" {
		t.Fatalf("Model = %q", res.Model)
	}
}

func TestAnalyze_TruncatesLongInput(t *testing.T) {
	sum := &fakeSummarizer{summary: "x"}
	svc := newService(sum, newMemRepo())

	raw := strings.Repeat("word ", 3000) // 15000 characters
	res, err := svc.Analyze(context.Background(), raw)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.OriginalLength != domain.DefaultMaxInputLength {
		t.Fatalf("OriginalLength = %d, want %d", res.OriginalLength, domain.DefaultMaxInputLength)
	}
	if got := len([]rune(sum.got[0].Text)); got != domain.DefaultMaxInputLength {
		t.Fatalf("model saw %d characters", got)
	}
	if sum.got[0].MaxLength != 300 || sum.got[0].MinLength != 100 {
		t.Fatalf("bounds = %d/%d, want 300/100", sum.got[0].MaxLength, sum.got[0].MinLength)
	}
}

func TestAnalyze_EmptySummaryDoesNotDivideByZero(t *testing.T) {
	svc := newService(&fakeSummarizer{summary: ""}, newMemRepo())

	res, err := svc.Analyze(context.Background(), "some contract text")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.CompressionRatio != float64(res.OriginalLength) {
		t.Fatalf("CompressionRatio = %v, want %d", res.CompressionRatio, res.OriginalLength)
	}
}

func TestAnalyze_ModelFailureIsAnalysisError(t *testing.T) {
	cause := errors.New("model exploded")
	svc := newService(&fakeSummarizer{err: cause}, newMemRepo())

	_, err := svc.Analyze(context.Background(), "text")
	if !domain.IsAnalysisError(err) {
		t.Fatalf("err = %v, want *AnalysisError", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("err does not wrap cause: %v", err)
	}
}

func TestAnalyzeAndStore_SavesTruncatedTextAndSurvivesArchiveFailure(t *testing.T) {
	repo := newMemRepo()
	archive := &failingArchive{}
	svc := newService(&fakeSummarizer{summary: "summary"}, repo)
	svc.Archive = archive
	svc.MaxInputLength = 20

	raw := "This agreement is made between the parties."
	res, err := svc.AnalyzeAndStore(context.Background(), raw)
	if err != nil {
		t.Fatalf("AnalyzeAndStore: %v", err)
	}
	if archive.calls != 1 {
		t.Fatalf("archive calls = %d, want 1", archive.calls)
	}
	if len(repo.records) != 1 {
		t.Fatalf("records = %d, want 1", len(repo.records))
	}
	if repo.records[0].TextHash != domain.TextHash(res.Text) || res.Text != raw[:20] {
		t.Fatalf("stored hash of %q, result text %q", repo.records[0].Content, res.Text)
	}
	if repo.records[0].OriginalLength != 20 {
		t.Fatalf("OriginalLength = %d, want 20", repo.records[0].OriginalLength)
	}
}

func TestAnalyzeAndStore_StorageErrorPropagates(t *testing.T) {
	repo := newMemRepo()
	repo.err = &domain.StorageError{Op: "save", Err: errors.New("disk full")}
	svc := newService(&fakeSummarizer{summary: "s"}, repo)

	if _, err := svc.AnalyzeAndStore(context.Background(), "text"); !domain.IsStorageError(err) {
		t.Fatalf("err = %v, want *StorageError", err)
	}
}

func TestHistory(t *testing.T) {
	repo := newMemRepo()
	svc := newService(&fakeSummarizer{summary: "sum"}, repo)
	svc.HistoryLimit = 2

	h, err := svc.History(context.Background(), 0)
	if err != nil {
		t.Fatalf("History(empty): %v", err)
	}
	if h.Stats.TotalAnalyses != 0 || h.Stats.AvgProcessingTime != nil || h.Stats.AvgCompressionRatio != nil {
		t.Fatalf("empty stats = %+v", h.Stats)
	}
	if h.Records == nil {
		t.Fatalf("Records is nil, want empty slice")
	}

	ctx := context.Background()
	for _, text := range []string{"first text", "second text", "third text"} {
		if _, err := svc.AnalyzeAndStore(ctx, text); err != nil {
			t.Fatalf("AnalyzeAndStore: %v", err)
		}
	}

	h, err = svc.History(ctx, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if h.Stats.TotalAnalyses != 2 || len(h.Records) != 2 {
		t.Fatalf("history = %d records, total %d; want 2", len(h.Records), h.Stats.TotalAnalyses)
	}
	if h.Records[0].Content != "third text" {
		t.Fatalf("newest = %q", h.Records[0].Content)
	}
	if h.Stats.AvgProcessingTime == nil || *h.Stats.AvgProcessingTime != 1.5 {
		t.Fatalf("AvgProcessingTime = %v", h.Stats.AvgProcessingTime)
	}

	if _, err := svc.Get(ctx, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get(99) err = %v", err)
	}
}
