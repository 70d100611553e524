package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGolden runs every testdata/*.tacit fixture in-process and compares its
// stdout against the matching .golden file. Regenerate the .golden files
// with scripts/gen_golden.go after a deliberate output change.
func TestGolden(t *testing.T) {
	matches, err := filepath.Glob("testdata/*.tacit")
	require.NoError(t, err)
	require.NotEmpty(t, matches, "expected at least one fixture under testdata/")

	for _, src := range matches {
		src := src
		name := filepath.Base(src)
		t.Run(name, func(t *testing.T) {
			source, err := os.ReadFile(src)
			require.NoError(t, err)

			goldenPath := src[:len(src)-len(filepath.Ext(src))] + ".golden"
			want, err := os.ReadFile(goldenPath)
			require.NoError(t, err, "missing golden file %s", goldenPath)

			var out bytes.Buffer
			vm, err := New(WithOutput(&out))
			require.NoError(t, err)
			require.NoError(t, vm.Compile(string(source)), "compile %s", src)
			require.NoError(t, vm.Run(), "run %s", src)

			assert.Equal(t, string(want), out.String())
		})
	}
}
