package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dts-bundle/internal/bundle"
)

func TestRenderStats(t *testing.T) {
	t.Parallel()

	res := &bundle.Result{
		Content:         "abc",
		Used:            []string{"/p/a.d.ts", "/ext/node.d.ts"},
		SourceTypings:   []string{"/p/a.d.ts", "/p/b.d.ts", "/p/c.d.ts"},
		ExternalTypings: []string{"/ext/node.d.ts"},
		Excluded:        []string{"/p/c.d.ts"},
	}
	out := renderStats(res)

	assert.Regexp(t, `used source\s+1`, out)
	assert.Regexp(t, `unused source\s+2`, out)
	assert.Regexp(t, `excluded\s+1`, out)
	assert.Regexp(t, `used external\s+1`, out)
	assert.Regexp(t, `external dependencies\s+0`, out)
	assert.Contains(t, out, "3 B")
}

func TestWriteDiffKeepsLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writeDiff(&buf, "--- a\n+++ b\n@@ -1 +1 @@\n-old\n+new\n")
	out := buf.String()
	for _, want := range []string{"--- a\n", "+++ b\n", "-old", "+new"} {
		assert.Contains(t, out, want)
	}
}

func TestRunStats(t *testing.T) {
	t.Parallel()

	dir := fixture(t)
	code, out, _ := runCLI(t, "--main", filepath.Join(dir, "index.d.ts"), "--name", "lib", "--stats")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "wrote ")
	assert.Regexp(t, `used source\s+2`, out)
}
