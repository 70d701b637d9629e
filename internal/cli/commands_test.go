package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
app:
  log_level: warn
sim:
  initial_price: 200
  iterations: 5
  initial_stock: 50
  seed: 11
  agents:
    capital: 1000
    distribution:
      random: 3
      custom: 1
store:
  path: %q
report:
  console: false
`, filepath.Join(dir, "runs.db"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gpusim v")
}

func TestRunCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)
	_, err := execute(t, "run", "--config", cfgPath)
	assert.NoError(t, err)
}

func TestRunCommandWithChartFlag(t *testing.T) {
	cfgPath := writeTestConfig(t)
	chartPath := filepath.Join(t.TempDir(), "chart.html")

	_, err := execute(t, "run", "--config", cfgPath, "--chart", chartPath, "--iterations", "12")
	require.NoError(t, err)

	raw, err := os.ReadFile(chartPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "echarts")
}

func TestRunCommandBadConfigPath(t *testing.T) {
	_, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestUnknownCommand(t *testing.T) {
	_, err := execute(t, "frobnicate")
	assert.Error(t, err)
}
