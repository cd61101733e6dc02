package commands_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/rangeq/cmd/rangeq/commands"
	"github.com/Sumatoshi-tech/rangeq/pkg/config"
)

type cliResult struct {
	out    string
	errOut string
	err    error
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "rangeq.yaml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0o600))

	root := commands.NewRootCommand()

	var out, errOut bytes.Buffer

	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--config", cfgPath))

	err := root.Execute()

	return cliResult{out: out.String(), errOut: errOut.String(), err: err}
}

func TestRun(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "k 3\nk 7\nq 0 10\n", "run")
	require.NoError(t, res.err)
	assert.Equal(t, "2\n", res.out)
}

func TestRunFlags(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "k 5 q 1 10 q 10 1", "run", "--engine", "gods", "--separator", ",")
	require.NoError(t, res.err)
	assert.Equal(t, "1,0\n", res.out)
}

func TestRunReportsBadTokens(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "k 1 z q 0 x q 0 9", "run")
	require.NoError(t, res.err)
	assert.Equal(t, "1\n", res.out)
	assert.Contains(t, res.errOut, `invalid command "z"`)
	assert.Contains(t, res.errOut, `invalid argument "x" for q`)
}

func TestRunInputFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "commands.dat")
	require.NoError(t, os.WriteFile(path, []byte("k 10 k 20 q 8 31 q 6 9 k 30 k 40 q 15 40\n"), 0o600))

	res := runCLI(t, "", "run", "--input", path)
	require.NoError(t, res.err)
	assert.Equal(t, "2 0 3\n", res.out)

	res = runCLI(t, "", "run", "--input", filepath.Join(t.TempDir(), "absent.dat"))
	assert.Error(t, res.err)
}

func TestRunUnknownEngine(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "k 1", "run", "--engine", "skiplist")
	assert.ErrorIs(t, res.err, config.ErrUnknownEngine)
}

func TestRunDump(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tree.dot")

	res := runCLI(t, "k 1 k 2 k 3 q 1 3", "run", "--dump", path)
	require.NoError(t, res.err)
	assert.Equal(t, "3\n", res.out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `digraph "BinaryTree" {`)

	res = runCLI(t, "k 1", "run", "--engine", "btree", "--dump", path)
	assert.ErrorIs(t, res.err, commands.ErrDumpUnsupported)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "k 1 k 5 k 9 q 0 6 q 6 0 q -5 100", "check", "--no-color")
	require.NoError(t, res.err)

	for _, engine := range []string{"gods", "llrb", "rbtree"} {
		assert.Contains(t, res.out, "PASS "+engine)
	}

	assert.NotContains(t, res.out, "FAIL")
}

func TestCheckUnknownEngine(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "k 1", "check", "--engines", "rbtree,skiplist")
	assert.Error(t, res.err)
}

func TestDumpStdout(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "k 2 k 1 k 3", "dump", "-o", "-", "--graph-name", "Small")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.out, `digraph "Small" {`))
	assert.Equal(t, 3, strings.Count(res.out, "val: "))
}

func TestDumpCompressed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tree.dot.lz4")

	res := runCLI(t, "k 2 k 1 k 3", "dump", "--output", path)
	require.NoError(t, res.err)
	assert.Equal(t, "wrote 3 nodes to "+path+"\n", res.out)

	file, err := os.Open(path)
	require.NoError(t, err)

	defer file.Close()

	data, err := io.ReadAll(lz4.NewReader(file))
	require.NoError(t, err)
	assert.Contains(t, string(data), `digraph "BinaryTree" {`)
}

func TestStats(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "k 1 k 2 k 3 k 4 k 2 q 1 4 bad", "stats")
	require.NoError(t, res.err)

	for _, want := range []string{"keys", "height", "black height", "arena bytes", "invariants", "ok", "duplicates"} {
		assert.Contains(t, res.out, want)
	}
}

func TestConfig(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "", "config")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "engine:\n  name: rbtree\n")
	assert.Contains(t, res.out, "logging:\n  level: warn\n")
}

func TestVersion(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "", "version")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.out, "rangeq "))
}
