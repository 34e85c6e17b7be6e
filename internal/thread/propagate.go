package thread

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fragmede/threadprep/internal/media"
)

// Resolver turns an image URL into a stored image at dest.
type Resolver interface {
	Resolve(ctx context.Context, url, dest string) (string, error)
}

// PropagateStats counts what a propagation pass did.
type PropagateStats struct {
	Found     int // URLs extracted
	Resolved  int
	Failed    int
	Inherited int // nodes that took an ancestor's images
}

func (s *PropagateStats) add(o PropagateStats) {
	s.Found += o.Found
	s.Resolved += o.Resolved
	s.Failed += o.Failed
	s.Inherited += o.Inherited
}

// Propagator attaches images to every node of a forest.
type Propagator struct {
	Resolver Resolver
	ImageDir string
	// Workers is the number of trees processed at once. Trees share no
	// nodes, so any value is safe; 0 or 1 runs them one after another.
	Workers int
	Log     *zap.Logger
}

// Run resolves each node's own image links and hands the result down the
// tree. A node without images of its own takes its parent's effective
// set, so inheritance carries through any number of image-less levels.
// Every node ends with a non-nil Images slice. Failed downloads only
// shrink the failing node's own set. Run returns an error only when ctx
// is cancelled, including cancellation in the middle of a tree.
func (p *Propagator) Run(ctx context.Context, f *Forest) (PropagateStats, error) {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	var (
		mu    sync.Mutex
		total PropagateStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.Workers))
	for _, root := range f.Roots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			st := p.tree(gctx, f, root, log)
			mu.Lock()
			total.add(st)
			mu.Unlock()
			return gctx.Err()
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return total, fmt.Errorf("propagating images: %w", err)
	}
	return total, nil
}

func (p *Propagator) tree(ctx context.Context, f *Forest, rootID string, log *zap.Logger) PropagateStats {
	var st PropagateStats
	f.WalkTree(rootID, func(v Visit) bool {
		if ctx.Err() != nil {
			return false
		}
		own := p.resolveOwn(ctx, v.Node, log, &st)
		switch {
		case len(own) > 0:
			v.Node.Images = own
		case v.Parent() != nil && len(v.Parent().Images) > 0:
			v.Node.Images = slices.Clone(v.Parent().Images)
			st.Inherited++
		default:
			v.Node.Images = []string{}
		}
		return true
	})
	log.Debug("propagated images",
		zap.String("root", rootID),
		zap.Int("resolved", st.Resolved),
		zap.Int("inherited", st.Inherited))
	return st
}

func (p *Propagator) resolveOwn(ctx context.Context, n *Node, log *zap.Logger, st *PropagateStats) []string {
	urls := media.ExtractImageURLs(n.SearchText())
	st.Found += len(urls)
	if len(urls) == 0 || p.Resolver == nil {
		return nil
	}

	var paths []string
	for i, u := range urls {
		if ctx.Err() != nil {
			break
		}
		dest := filepath.Join(p.ImageDir, fmt.Sprintf("%s_%d.png", fileSafe(n.ID), i))
		path, err := p.Resolver.Resolve(ctx, u, dest)
		if err != nil {
			st.Failed++
			log.Debug("image not resolved",
				zap.String("id", n.ID),
				zap.String("url", u),
				zap.Error(err))
			continue
		}
		if !slices.Contains(paths, path) {
			paths = append(paths, path)
		}
		st.Resolved++
	}
	return paths
}

// fileSafe percent-encodes the bytes that cannot appear in a file name.
// '%' is encoded too, so distinct ids never share a name.
func fileSafe(id string) string {
	var b strings.Builder
	for i := 0; i < len(id); i++ {
		switch c := id[i]; c {
		case '/', '\\', ':', '%', 0:
			fmt.Fprintf(&b, "%%%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
