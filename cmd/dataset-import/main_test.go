package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-board/internal/dataset"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func row(id, name, cc, pop string) string {
	cols := make([]string, 19)
	cols[0], cols[1], cols[4], cols[5], cols[8], cols[14] = id, name, "1.5", "2.5", cc, pop
	return strings.Join(cols, "\t")
}

func TestCommand_WritesDataset(t *testing.T) {
	dir := t.TempDir()
	cities := writeFile(t, dir, "cities.txt", row("1", "Oslo", "NO", "700000")+"\n"+row("2", "Tiny", "NO", "50")+"\n")
	info := writeFile(t, dir, "countryInfo.txt", "#comment\nNO\tNOR\t578\tNO\tNorway\n")
	out := filepath.Join(dir, "cities.json")

	cmd := command()
	cmd.SetArgs([]string{cities, "--country-info", info, "-o", out, "--log-level", "disabled"})
	require.NoError(t, cmd.Execute())

	d, err := dataset.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())
	assert.Equal(t, []dataset.Option{{Value: "NO", Label: "Norway"}}, d.Options())
}

func TestCommand_Stdout(t *testing.T) {
	dir := t.TempDir()
	cities := writeFile(t, dir, "cities.txt", row("1", "Oslo", "NO", "700000")+"\n")

	var buf bytes.Buffer
	cmd := command()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{cities, "--min-population", "10", "--log-level", "disabled"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), `"label": "country NO not found"`)
}

func TestCommand_RequiresInput(t *testing.T) {
	cmd := command()
	cmd.SetArgs(nil)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
