package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tracery/internal/config"
	"github.com/aretw0/tracery/internal/testutils"
	"github.com/aretw0/tracery/pkg/domain"
	"github.com/aretw0/tracery/pkg/grammar"
	"github.com/aretw0/tracery/pkg/runner"
)

const greetingYAML = `origin: "#greeting#, #name#!"
greeting: hello
name: world
`

func testConfig(t *testing.T, store string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Addr:         "127.0.0.1:0",
		LogLevel:     "error",
		MaxDepth:     domain.DefaultMaxDepth,
		Store:        store,
		GrammarDir:   dir,
		SQLitePath:   filepath.Join(dir, "tracery.db"),
		SessionTTL:   time.Minute,
		MaxInputSize: runner.DefaultMaxInputSize,
	}
}

func TestRunFlatten_Template(t *testing.T) {
	cfg := testConfig(t, config.StoreFile)
	testutils.WriteFiles(t, cfg.GrammarDir, map[string]string{"greeting.yaml": greetingYAML})

	var out bytes.Buffer
	err := RunFlatten(context.Background(), cfg, FlattenOptions{
		Grammar:  "greeting",
		Template: "#origin#",
		Count:    2,
		Out:      &out,
		Err:      &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello, world!\nhello, world!\n", out.String())
}

func TestRunFlatten_FileAndLines(t *testing.T) {
	cfg := testConfig(t, config.StoreMemory)
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{"g.json": `{"animal": ["cat"], "origin": "a #animal#"}`})

	var out bytes.Buffer
	err := RunFlatten(context.Background(), cfg, FlattenOptions{
		File:    filepath.Join(dir, "g.json"),
		Count:   1,
		Seed:    7,
		HasSeed: true,
		JSON:    true,
		In:      strings.NewReader("#origin#\n\n#animal.capitalize#\n"),
		Out:     &out,
	})
	require.NoError(t, err)

	var results []runner.Result
	dec := json.NewDecoder(&out)
	for dec.More() {
		var r runner.Result
		require.NoError(t, dec.Decode(&r))
		results = append(results, r)
	}
	require.Len(t, results, 2)
	assert.Equal(t, "a cat", results[0].Text)
	assert.Equal(t, "Cat", results[1].Text)
	assert.Equal(t, 1, results[1].Index)
}

func TestRunFlatten_RecursionLimit(t *testing.T) {
	cfg := testConfig(t, config.StoreMemory)
	cfg.MaxDepth = 5
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{"loop.yaml": "loop: \"#loop#\"\n"})

	err := RunFlatten(context.Background(), cfg, FlattenOptions{
		File:     filepath.Join(dir, "loop.yaml"),
		Template: "#loop#",
		Out:      &bytes.Buffer{},
		Err:      &bytes.Buffer{},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRecursionLimit)
}

func TestRunFlatten_NoGrammar(t *testing.T) {
	cfg := testConfig(t, config.StoreMemory)
	err := RunFlatten(context.Background(), cfg, FlattenOptions{Template: "x", Out: &bytes.Buffer{}})
	assert.Error(t, err)
}

func TestGrammarCommands_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.StoreSQLite)
	src := t.TempDir()
	testutils.WriteFiles(t, src, map[string]string{"greeting.yaml": greetingYAML})

	name, err := ImportGrammar(ctx, cfg, filepath.Join(src, "greeting.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, "greeting", name)

	var list bytes.Buffer
	require.NoError(t, ListGrammars(ctx, cfg, &list))
	assert.Equal(t, "greeting\n", list.String())

	var shown bytes.Buffer
	require.NoError(t, ShowGrammar(ctx, cfg, "greeting", grammar.FormatJSON, &shown))
	g, err := grammar.Decode(shown.Bytes(), grammar.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"greeting", "name", "origin"}, g.Symbols())

	require.NoError(t, DeleteGrammar(ctx, cfg, "greeting"))
	err = ShowGrammar(ctx, cfg, "greeting", grammar.FormatYAML, &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrGrammarNotFound)
}

func TestGrammarCommands_Redis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := testConfig(t, config.StoreRedis)
	cfg.RedisAddr = mr.Addr()

	src := t.TempDir()
	testutils.WriteFiles(t, src, map[string]string{"g.yaml": greetingYAML})
	_, err := ImportGrammar(ctx, cfg, filepath.Join(src, "g.yaml"), "hello")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, RunFlatten(ctx, cfg, FlattenOptions{
		Grammar:  "hello",
		Template: "#origin#",
		Out:      &out,
		Err:      &bytes.Buffer{},
	}))
	assert.Equal(t, "hello, world!\n", out.String())
}

func TestOpenBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	for _, store := range []string{config.StoreFile, config.StoreLoam, config.StoreMemory, config.StoreRedis, config.StoreSQLite} {
		t.Run(store, func(t *testing.T) {
			cfg := testConfig(t, store)
			cfg.RedisAddr = mr.Addr()
			if store == config.StoreLoam {
				dir, _ := testutils.SetupTestRepo(t)
				cfg.GrammarDir = dir
			}
			backend, err := OpenBackend(cfg)
			require.NoError(t, err)
			defer backend.Close()
			assert.NotNil(t, backend.Loader)
			assert.Equal(t, store == config.StoreRedis, backend.Locker != nil)
		})
	}

	_, err := OpenBackend(&config.Config{Store: "nope"})
	assert.Error(t, err)
}

func TestValidateGrammar(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.StoreMemory)
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"good.yaml": greetingYAML,
		"bad.yaml":  "origin: \"#ghost#\"\norphan: alone\n",
	})

	var out bytes.Buffer
	require.NoError(t, ValidateGrammar(ctx, cfg, filepath.Join(dir, "good.yaml"), "", "origin", &out))
	assert.Contains(t, out.String(), "3 rules")

	err := ValidateGrammar(ctx, cfg, filepath.Join(dir, "bad.yaml"), "", "origin", &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined symbol 'ghost' in rule 'origin'")
	assert.Contains(t, err.Error(), "Unreachable rule 'orphan'")

	err = ValidateGrammar(ctx, cfg, filepath.Join(dir, "good.yaml"), "", "missing", &bytes.Buffer{})
	assert.ErrorContains(t, err, "not defined")
}

func TestGraphGrammar(t *testing.T) {
	cfg := testConfig(t, config.StoreMemory)
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{"g.yaml": "origin: \"#ghost# #name#\"\nname: ada\n"})

	var out bytes.Buffer
	require.NoError(t, GraphGrammar(context.Background(), cfg, filepath.Join(dir, "g.yaml"), "", "origin", &out))
	s := out.String()
	assert.True(t, strings.HasPrefix(s, "graph TD\n"))
	assert.Contains(t, s, `origin(("origin"))`)
	assert.Contains(t, s, "origin --> name")
	assert.Contains(t, s, "class ghost missing;")
}

func TestRunMCP_UnknownTransport(t *testing.T) {
	cfg := testConfig(t, config.StoreMemory)
	err := RunMCP(context.Background(), cfg, MCPOptions{Transport: "carrier-pigeon"})
	assert.ErrorContains(t, err, "unknown transport")
}

func TestRunServe_Shutdown(t *testing.T) {
	cfg := testConfig(t, config.StoreMemory)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- RunServe(ctx, cfg) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestListGrammars_LoamDescriptions(t *testing.T) {
	cfg := testConfig(t, config.StoreLoam)
	dir, _ := testutils.SetupTestRepo(t)
	cfg.GrammarDir = dir
	testutils.WriteFiles(t, dir, map[string]string{
		"tavern.md": "---\ndescription: drinks and patrons\nrules:\n  drink: [ale, mead]\n---\nThe patron orders #drink.a#.\n",
		"plain.md":  "---\nrules:\n  origin: bare\n---\n",
	})

	var out bytes.Buffer
	require.NoError(t, ListGrammars(context.Background(), cfg, &out))
	assert.Equal(t, "plain\ntavern\tdrinks and patrons\n", out.String())

	var flat bytes.Buffer
	require.NoError(t, RunFlatten(context.Background(), cfg, FlattenOptions{
		Grammar:  "tavern",
		Template: "#origin#",
		Seed:     1,
		HasSeed:  true,
		Out:      &flat,
		Err:      &bytes.Buffer{},
	}))
	assert.Contains(t, []string{"The patron orders an ale.\n", "The patron orders a mead.\n"}, flat.String())
}
