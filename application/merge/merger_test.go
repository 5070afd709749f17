package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphqueryreader/domain/core"
)

func TestMergerWriteCreatesPath(t *testing.T) {
	tree := core.NewResultTree(nil)
	m := New(tree, nil)

	m.Write([]string{"uploads", "U1", "name"}, "demo", false)

	uploads, ok := tree.Root["uploads"].(map[string]interface{})
	require.True(t, ok)
	u1, ok := uploads["U1"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "demo", u1["name"])
}

func TestMergerWriteRefGoesToRefRoot(t *testing.T) {
	tree := core.NewResultTree(nil)
	m := New(tree, nil)

	m.WriteRef([]string{"refs", "R1"}, "target", false)

	assert.Empty(t, tree.Root)
	refs, ok := tree.RefRoot["refs"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "target", refs["R1"])
}

func TestMergerSeenConfigDedupesPerPath(t *testing.T) {
	tree := core.NewResultTree(nil)
	m := New(tree, nil)

	cfg := core.RequestConfig{Directive: core.DirectivePlain, Depth: 1}

	assert.False(t, m.SeenConfig("$.archive", cfg))
	assert.True(t, m.SeenConfig("$.archive", cfg), "identical config at the same path should be recognized as already materialized")
}

func TestConfigHashDiffersOnFieldChange(t *testing.T) {
	a := core.RequestConfig{Directive: core.DirectivePlain, Depth: 1}
	b := core.RequestConfig{Directive: core.DirectivePlain, Depth: 2}

	assert.NotEqual(t, ConfigHash(a), ConfigHash(b))
}

func TestConfigHashStableForEquivalentConfig(t *testing.T) {
	a := core.RequestConfig{Directive: core.DirectiveResolved, MaxListSize: 10}
	b := core.RequestConfig{Directive: core.DirectiveResolved, MaxListSize: 10}

	assert.Equal(t, ConfigHash(a), ConfigHash(b))
}
