package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/pdftable/config"
	"github.com/lvillar/pdftable/tabledef"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvVar, "")

	var out, errw bytes.Buffer
	cmd := newCommand(strings.NewReader(stdin), &out, &errw)
	err := cmd.Run(context.Background(), append([]string{"pdftable"}, args...))
	return out.String(), err
}

func writeExample(t *testing.T, name, file string) string {
	t.Helper()
	data, _, err := tabledef.Example(name)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), file)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLayoutCommand(t *testing.T) {
	path := writeExample(t, "invoice", "invoice.yaml")

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "", "layout", "--json", path)
		require.NoError(t, err)

		var s tabledef.Summary
		require.NoError(t, json.Unmarshal([]byte(out), &s))
		assert.Equal(t, []float64{183, 182, 182}, s.Widths)
		assert.Equal(t, 240.0, s.FinalY)
		require.Len(t, s.Pages, 1)
		assert.Equal(t, []int{0, 1, 2}, s.Pages[0].BodyRows)
	})

	t.Run("report", func(t *testing.T) {
		out, err := run(t, "", "layout", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Body rows")
		assert.Contains(t, out, "0-2")
		assert.Contains(t, out, "183.00, 182.00, 182.00")
		assert.Contains(t, out, "240.00")
	})

	t.Run("stdin", func(t *testing.T) {
		out, err := run(t, "| A | B |\n|---|---|\n| 1 | 2 |\n", "layout", "--json", "-")
		require.NoError(t, err)
		assert.Contains(t, out, `"widths"`)
	})

	t.Run("missing file argument", func(t *testing.T) {
		_, err := run(t, "", "layout")
		assert.ErrorContains(t, err, "missing FILE")
	})
}

func TestRenderCommand(t *testing.T) {
	path := writeExample(t, "stock", "stock.md")

	_, err := run(t, "", "render", path)
	require.NoError(t, err)
	data, err := os.ReadFile(strings.TrimSuffix(path, ".md") + ".pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	out := filepath.Join(t.TempDir(), "out.pdf")
	_, err = run(t, "", "render", "--no-compress", "-o", out, path)
	require.NoError(t, err)
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "(Widgets) Tj")
}

func TestRenderCommandToStdout(t *testing.T) {
	out, err := run(t, "columns: [{header: Name}]\nbody: [[Ada]]\n", "render", "-f", "yaml", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
}

func TestMeasureCommand(t *testing.T) {
	out, err := run(t, "", "measure", "--width", "60", "the quick brown fox jumps over the lazy dog")
	require.NoError(t, err)
	assert.Contains(t, out, "Width")
	assert.Contains(t, out, "quick")

	_, err = run(t, "", "measure", "--width", "60", "--overflow", "shrink", "text")
	assert.Error(t, err)
}

func TestExamplesCommand(t *testing.T) {
	out, err := run(t, "", "examples")
	require.NoError(t, err)
	assert.Contains(t, out, "invoice")
	assert.Contains(t, out, "stock")

	out, err = run(t, "", "examples", "stock")
	require.NoError(t, err)
	assert.Contains(t, out, "**Widgets**")

	_, err = run(t, "", "examples", "nope")
	assert.Error(t, err)
}

func TestConfigFlag(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "pdftable.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: loud\n"), 0o644))

	_, err := run(t, "", "--config", cfgPath, "examples")
	assert.Error(t, err)
}

func TestRowRange(t *testing.T) {
	assert.Equal(t, "none", rowRange(nil))
	assert.Equal(t, "4", rowRange([]int{4}))
	assert.Equal(t, "0-5", rowRange([]int{0, 1, 2, 3, 4, 5}))
	assert.Equal(t, "1,3,4", rowRange([]int{1, 3, 4}))
}
