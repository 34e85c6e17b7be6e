// Package label classifies comment text as informative or not.
package label

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fragmede/threadprep/internal/comment"
)

const (
	Informative    = "Informative"
	NotInformative = "Not Informative"
)

// Classifier labels a single piece of comment text.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
	Model() string
}

// Parse maps a free-form model reply to a label. Any reply that names
// "Informative" without a "Not" counts as informative.
func Parse(reply string) string {
	if strings.Contains(reply, Informative) && !strings.Contains(reply, "Not") {
		return Informative
	}
	return NotInformative
}

// Sink receives labels as they are produced.
type Sink func(commentID, label, model string) error

// Result counts an annotation pass.
type Result struct {
	Labeled int
	Failed  int
}

// Annotator labels batches of comments with bounded concurrency.
type Annotator struct {
	Classifier Classifier
	Workers    int
	Log        *zap.Logger
}

// Annotate classifies every record and hands each label to sink. A
// comment whose classification fails is left unlabeled and logged; the
// pass continues. Sink errors and cancellation stop the pass.
func (a *Annotator) Annotate(ctx context.Context, recs []comment.Record, sink Sink) (Result, error) {
	log := a.Log
	if log == nil {
		log = zap.NewNop()
	}
	var (
		mu  sync.Mutex
		res Result
	)
	model := a.Classifier.Model()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, a.Workers))
	for _, r := range recs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lbl, err := a.Classifier.Classify(gctx, r.Body)
			if err != nil {
				log.Warn("classification failed", zap.String("id", r.ID), zap.Error(err))
				mu.Lock()
				res.Failed++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			if err := sink(r.ID, lbl, model); err != nil {
				return err
			}
			res.Labeled++
			return nil
		})
	}
	err := g.Wait()
	return res, err
}
