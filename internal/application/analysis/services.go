package analysis

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/bryanwahyu/legalmind/internal/application"
	domai "github.com/bryanwahyu/legalmind/internal/domain/ai"
	domain "github.com/bryanwahyu/legalmind/internal/domain/analysis"
)

// Service implements use-cases untuk analisa kontrak.
// Safe for concurrent use; serialization of model calls is the summarizer's business.
type Service struct {
	Summarizer domai.Summarizer
	Repo       domain.Repository
	Archive    domain.DocumentArchive // optional
	Clock      application.Clock
	Logger     *zap.Logger

	MaxInputLength int // characters; <= 0 means domain.DefaultMaxInputLength
	HistoryLimit   int // <= 0 means the store default
}

type modelNamer interface {
	Model() string
}

func (s *Service) clock() application.Clock {
	if s.Clock == nil {
		return application.SystemClock{}
	}
	return s.Clock
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

//
// ==== USE CASES ====
//

// Analyze normalizes raw, derives the generation bounds, and asks the model for a summary.
// Only the model call is timed. Any model failure comes back as *domain.AnalysisError.
func (s *Service) Analyze(ctx context.Context, raw string) (*domain.Result, error) {
	if s.Summarizer == nil {
		return nil, &domain.AnalysisError{Err: errors.New("no summarizer configured")}
	}

	text := domain.Normalize(raw, s.MaxInputLength)
	words := domain.WordCount(text)
	bounds := domain.LengthBounds(words)

	clk := s.clock()
	start := clk.Now()
	summary, err := s.Summarizer.Summarize(ctx, domai.SummarizeRequest{
		Text:      text,
		MaxLength: bounds.MaxLength,
		MinLength: bounds.MinLength,
	})
	elapsed := application.SecondsSince(clk, start)
	if err != nil {
		return nil, &domain.AnalysisError{Err: err}
	}

	res := &domain.Result{
		Text:           text,
		Summary:        summary,
		InputWordCount: words,
		MaxLength:      bounds.MaxLength,
		MinLength:      bounds.MinLength,
		OriginalLength: domain.CharCount(text),
		SummaryLength:  domain.CharCount(summary),
		ProcessingTime: elapsed,
	}
	res.CompressionRatio = domain.CompressionRatio(res.OriginalLength, res.SummaryLength)
	if m, ok := s.Summarizer.(modelNamer); ok {
		res.Model = m.Model()
	}
	return res, nil
}

// AnalyzeAndStore runs Analyze, persists the result, then archives the text.
// Archive failures are logged only.
func (s *Service) AnalyzeAndStore(ctx context.Context, raw string) (*domain.Result, error) {
	res, err := s.Analyze(ctx, raw)
	if err != nil {
		s.logger().Warn("analysis failed", zap.Error(err))
		return nil, err
	}

	if err := s.Repo.SaveAnalysis(ctx, res.Text, res); err != nil {
		s.logger().Error("save analysis failed", zap.Error(err))
		return nil, err
	}

	hash := domain.TextHash(res.Text)
	if s.Archive != nil {
		if key, err := s.Archive.Put(ctx, hash, res.Text); err != nil {
			s.logger().Warn("archive document failed", zap.String("text_hash", hash), zap.Error(err))
		} else {
			s.logger().Debug("document archived", zap.String("key", key))
		}
	}

	s.logger().Info("analysis stored",
		zap.String("text_hash", hash),
		zap.String("model", res.Model),
		zap.Int("original_length", res.OriginalLength),
		zap.Int("summary_length", res.SummaryLength),
		zap.Float64("processing_time", res.ProcessingTime),
	)
	return res, nil
}

// Recent returns the newest analyses first.
func (s *Service) Recent(ctx context.Context, limit int) ([]*domain.Record, error) {
	if limit <= 0 {
		limit = s.HistoryLimit
	}
	return s.Repo.RecentAnalyses(ctx, limit)
}

// History returns recent analyses with aggregate statistics over exactly those records.
func (s *Service) History(ctx context.Context, limit int) (*domain.History, error) {
	recs, err := s.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []*domain.Record{}
	}
	return &domain.History{Records: recs, Stats: domain.Aggregate(recs)}, nil
}

// Get returns a single analysis with its source text.
func (s *Service) Get(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	return s.Repo.GetAnalysis(ctx, id)
}
