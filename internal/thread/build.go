package thread

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/fragmede/threadprep/internal/comment"
)

var (
	// ErrInvalidInput marks a record that cannot be placed in a tree.
	ErrInvalidInput = errors.New("invalid comment record")
	// ErrCycle marks parent references that never reach a root.
	ErrCycle = errors.New("comment parent chain does not reach a root")
)

// CycleError lists the records that sit on or under a parent cycle.
type CycleError struct {
	IDs []string
}

func (e *CycleError) Error() string {
	const show = 10
	ids := e.IDs
	suffix := ""
	if len(ids) > show {
		suffix = fmt.Sprintf(" (+%d more)", len(ids)-show)
		ids = ids[:show]
	}
	return fmt.Sprintf("%v: %s%s", ErrCycle, strings.Join(ids, ", "), suffix)
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// BuildReport summarises what Build did with its input.
type BuildReport struct {
	Records    int // input records
	Skipped    int // dropped for a missing id
	Duplicates int // collapsed onto an earlier id
	Orphans    int // declared a parent that is not in the batch
	Roots      int
}

// Build assembles a forest from unordered records.
//
// A record is a root when its parent id is empty or names no record in
// the batch. Records without an id are logged and skipped. When an id
// repeats, the last record supplies the data and the first occurrence
// fixes the position. Records whose parent chain loops back on itself
// never reach a root; Build reports them with a *CycleError.
func Build(recs []comment.Record, log *zap.Logger) (*Forest, BuildReport, error) {
	if log == nil {
		log = zap.NewNop()
	}
	report := BuildReport{Records: len(recs)}

	byID := make(map[string]comment.Record, len(recs))
	order := make([]string, 0, len(recs))
	for i, rec := range recs {
		if rec.ID == "" {
			report.Skipped++
			log.Warn("skipping comment",
				zap.Int("index", i),
				zap.Error(fmt.Errorf("record %d has no id: %w", i, ErrInvalidInput)))
			continue
		}
		if _, seen := byID[rec.ID]; seen {
			report.Duplicates++
			log.Debug("duplicate comment id, keeping last", zap.String("id", rec.ID))
		} else {
			order = append(order, rec.ID)
		}
		byID[rec.ID] = rec
	}

	var roots []string
	buckets := make(map[string][]string)
	for _, id := range order {
		parent := byID[id].ParentID
		if parent == "" {
			roots = append(roots, id)
			continue
		}
		if _, ok := byID[parent]; !ok {
			report.Orphans++
			roots = append(roots, id)
			continue
		}
		buckets[parent] = append(buckets[parent], id)
	}

	f := newForest(len(order))
	f.Roots = roots
	stack := slices.Clone(roots)
	slices.Reverse(stack)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, done := f.nodes[id]; done {
			continue
		}
		kids := buckets[id]
		n := &Node{Record: byID[id], Children: make([]string, len(kids))}
		copy(n.Children, kids)
		f.nodes[id] = n
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	report.Roots = len(roots)

	if len(f.nodes) < len(order) {
		var stuck []string
		for _, id := range order {
			if _, ok := f.nodes[id]; !ok {
				stuck = append(stuck, id)
			}
		}
		return nil, report, &CycleError{IDs: stuck}
	}

	log.Debug("built forest",
		zap.Int("records", report.Records),
		zap.Int("roots", report.Roots),
		zap.Int("orphans", report.Orphans),
		zap.Int("skipped", report.Skipped))
	return f, report, nil
}
