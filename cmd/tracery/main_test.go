package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags clears flag values left over from a previous Execute.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tracery version")
}

func TestFlatten_DefaultCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.yaml")
	require.NoError(t, os.WriteFile(path, []byte("origin: \"#word.capitalize#\"\nword: hello\n"), 0o644))

	out, err := execute(t, "--store", "memory", "--file", path, "#origin#")
	require.NoError(t, err)
	assert.Equal(t, "Hello\n", out)
}

func TestGrammars_ImportAndList(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(t.TempDir(), "tale.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"origin": "once"}`), 0o644))

	out, err := execute(t, "grammars", "import", "--dir", dir, src)
	require.NoError(t, err)
	assert.Equal(t, "Imported tale\n", out)

	out, err = execute(t, "grammars", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "tale\n", out)
}

func TestInvalidStoreFlag(t *testing.T) {
	_, err := execute(t, "grammars", "list", "--store", "tape")
	assert.Error(t, err)
}
