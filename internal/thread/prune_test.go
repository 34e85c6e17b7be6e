package thread

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/threadprep/internal/comment"
)

// shape maps every reachable node to its children.
func shape(f *Forest) map[string][]string {
	out := map[string][]string{}
	f.Walk(func(v Visit) bool {
		out[v.Node.ID] = append([]string{}, v.Node.Children...)
		return true
	})
	return out
}

func TestPruneChainOfSeven(t *testing.T) {
	f, _, err := Build(chain(7), nil)
	require.NoError(t, err)

	removed := Prune(f, 5)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 6, f.Len())
	assert.Equal(t, 5, f.MaxDepth())
	assert.Empty(t, f.Node("c5").Children)
	assert.NotNil(t, f.Node("c5").Children)
	assert.Nil(t, f.Node("c6"))
	assert.Len(t, Flatten(f, DefaultContextWindow), 6)
}

func TestPruneDepthBound(t *testing.T) {
	recs := append(chain(12),
		rec("side", "c2", ""),
		rec("side2", "side", ""),
		rec("deep1", "c4", ""),
		rec("deep2", "deep1", ""),
		rec("other", "", ""),
	)
	f, _, err := Build(recs, nil)
	require.NoError(t, err)

	for _, d := range []int{0, 1, 3, 5} {
		t.Run(fmt.Sprintf("depth=%d", d), func(t *testing.T) {
			f, _, err := Build(recs, nil)
			require.NoError(t, err)
			Prune(f, d)
			f.Walk(func(v Visit) bool {
				assert.LessOrEqual(t, v.Depth, d)
				if v.Depth == d {
					assert.Empty(t, v.Node.Children, v.Node.ID)
				}
				return true
			})
		})
	}

	removed := Prune(f, 5)
	// c6..c11 and deep2 sit below depth 5.
	assert.Equal(t, 7, removed)
	assert.Equal(t, []string{"deep1"}, f.Node("c4").Children[1:])
	assert.Empty(t, f.Node("deep1").Children)
}

func TestPruneIdempotent(t *testing.T) {
	f, _, err := Build(append(chain(9), rec("b", "c1", ""), rec("bb", "b", "")), nil)
	require.NoError(t, err)

	Prune(f, DefaultMaxDepth)
	before := shape(f)
	assert.Zero(t, Prune(f, DefaultMaxDepth))
	if diff := cmp.Diff(before, shape(f)); diff != "" {
		t.Errorf("second prune changed the forest (-before +after):\n%s", diff)
	}
}

func TestPruneKeepsIdentity(t *testing.T) {
	f, _, err := Build(chain(8), nil)
	require.NoError(t, err)
	root := f.Node("c0")
	mid := f.Node("c3")

	Prune(f, 5)
	assert.Same(t, root, f.Node("c0"))
	assert.Same(t, mid, f.Node("c3"))
}

func TestPruneNegativeDepthKeepsRoots(t *testing.T) {
	f, _, err := Build([]comment.Record{rec("a", "", ""), rec("b", "a", "")}, nil)
	require.NoError(t, err)
	Prune(f, -3)
	assert.Equal(t, 1, f.Len())
	assert.Empty(t, f.Node("a").Children)
}
