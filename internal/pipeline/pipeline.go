// Package pipeline runs the build, prune, propagate and flatten stages
// over one batch of comment records.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fragmede/threadprep/internal/comment"
	"github.com/fragmede/threadprep/internal/thread"
)

// Options configures a run. Zero is a meaningful MaxDepth (roots only)
// and ContextWindow (no context), so callers must set both; see
// DefaultOptions.
type Options struct {
	MaxDepth      int
	ContextWindow int
	ImageDir      string
	ImageWorkers  int
	// Resolver may be nil, in which case no images are fetched and only
	// inherited (empty) lists are produced.
	Resolver thread.Resolver
	Log      *zap.Logger
}

// DefaultOptions returns Options with the standard depth and context
// window and no image resolution.
func DefaultOptions() Options {
	return Options{
		MaxDepth:      thread.DefaultMaxDepth,
		ContextWindow: thread.DefaultContextWindow,
	}
}

// Result is everything one run produces.
type Result struct {
	Forest  *thread.Forest
	Rows    []thread.Row
	Build   thread.BuildReport
	Pruned  int
	Media   thread.PropagateStats
	Elapsed time.Duration
}

// Run executes the stages in order. A cycle in the input fails the whole
// batch; image failures never do. Cancellation aborts propagation and is
// returned.
func Run(ctx context.Context, recs []comment.Record, opts Options) (*Result, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxDepth < 0 || opts.ContextWindow < 0 {
		return nil, fmt.Errorf("invalid options: max depth %d, context window %d", opts.MaxDepth, opts.ContextWindow)
	}
	start := time.Now()

	f, rep, err := thread.Build(recs, log)
	if err != nil {
		return nil, fmt.Errorf("building forest: %w", err)
	}
	log.Info("forest built",
		zap.Int("records", rep.Records),
		zap.Int("roots", rep.Roots),
		zap.Int("skipped", rep.Skipped),
		zap.Int("duplicates", rep.Duplicates),
		zap.Int("orphans", rep.Orphans),
		zap.Int("max_depth", f.MaxDepth()))

	pruned := thread.Prune(f, opts.MaxDepth)
	log.Info("forest pruned", zap.Int("max_depth", opts.MaxDepth), zap.Int("removed", pruned))

	p := &thread.Propagator{
		Resolver: opts.Resolver,
		ImageDir: opts.ImageDir,
		Workers:  opts.ImageWorkers,
		Log:      log,
	}
	media, err := p.Run(ctx, f)
	if err != nil {
		return nil, err
	}
	log.Info("images propagated",
		zap.Int("found", media.Found),
		zap.Int("resolved", media.Resolved),
		zap.Int("failed", media.Failed),
		zap.Int("inherited", media.Inherited))

	rows := thread.Flatten(f, opts.ContextWindow)
	res := &Result{
		Forest:  f,
		Rows:    rows,
		Build:   rep,
		Pruned:  pruned,
		Media:   media,
		Elapsed: time.Since(start),
	}
	log.Info("rows flattened", zap.Int("rows", len(rows)), zap.Duration("elapsed", res.Elapsed))
	return res, nil
}
