// Package model loads a summarization model once and serves it to the analysis pipeline.
package model

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	domai "github.com/bryanwahyu/legalmind/internal/domain/ai"
)

// Engine is the loaded model. It is built once at startup and shared by every request.
type Engine struct {
	backend    domai.Backend
	info       domai.ModelInfo
	concurrent bool
	mu         sync.Mutex
}

// Options for Load
type Options struct {
	// Candidates are tried in order; the first one that loads wins.
	Candidates []string
	Cache      *Cache
	// Timeout bounds each candidate's load separately; zero leaves only ctx.
	Timeout    time.Duration
	// Concurrent allows overlapping inference calls. Off by default: calls are serialized.
	Concurrent bool
	Logger     *zap.Logger
}

// Load resolves the first loadable candidate on backend.
// When every candidate fails the error is a *domai.ModelLoadError.
func Load(ctx context.Context, backend domai.Backend, opts Options) (*Engine, error) {
	if backend == nil {
		return nil, errors.New("model backend is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	loadErr := &domai.ModelLoadError{}
	seen := make(map[string]bool)
	for _, name := range opts.Candidates {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		// a cached candidate is trusted without querying the backend again
		if info, ok := opts.Cache.Lookup(backend.Name(), name); ok {
			logger.Info("model loaded from cache", zap.String("backend", backend.Name()), zap.String("model", name))
			return newEngine(backend, *info, opts.Concurrent), nil
		}

		info, err := loadOne(ctx, backend, name, opts.Timeout)
		if err != nil {
			logger.Warn("model load failed, trying next candidate",
				zap.String("backend", backend.Name()), zap.String("model", name), zap.Error(err))
			loadErr.Attempts = append(loadErr.Attempts, name)
			loadErr.Errs = append(loadErr.Errs, err)
			continue
		}
		if err := opts.Cache.Store(backend.Name(), name, info); err != nil {
			logger.Warn("model cache write failed", zap.String("model", name), zap.Error(err))
		}
		logger.Info("model loaded", zap.String("backend", backend.Name()), zap.String("model", info.Name))
		return newEngine(backend, *info, opts.Concurrent), nil
	}

	if len(loadErr.Attempts) == 0 {
		loadErr.Attempts = []string{"<none>"}
		loadErr.Errs = []error{errors.New("no model name configured")}
	}
	return nil, loadErr
}

func loadOne(ctx context.Context, backend domai.Backend, name string, timeout time.Duration) (*domai.ModelInfo, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return backend.Load(ctx, name)
}

func newEngine(backend domai.Backend, info domai.ModelInfo, concurrent bool) *Engine {
	return &Engine{backend: backend, info: info, concurrent: concurrent}
}

// Summarize runs one deterministic generation on the loaded model.
func (e *Engine) Summarize(ctx context.Context, req domai.SummarizeRequest) (string, error) {
	if !e.concurrent {
		e.mu.Lock()
		defer e.mu.Unlock()
	}
	return e.backend.Generate(ctx, e.info.Name, req)
}

// Model returns the name of the loaded model.
func (e *Engine) Model() string { return e.info.Name }

// Info returns the metadata of the loaded model.
func (e *Engine) Info() domai.ModelInfo { return e.info }

// Check satisfies the health checker contract; a constructed engine is always loaded.
func (e *Engine) Check(ctx context.Context) error {
	if e == nil || e.info.Name == "" {
		return errors.New("model not loaded")
	}
	return nil
}
