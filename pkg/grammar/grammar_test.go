package grammar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tracery/pkg/domain"
)

func TestRule_Pick(t *testing.T) {
	calls := 0
	intn := func(n int) int { calls++; return n - 1 }

	assert.Equal(t, "only", Single("only").Pick(intn))
	assert.Equal(t, "one", Choices("one").Pick(intn))
	assert.Zero(t, calls, "single-variant rules never consume randomness")

	assert.Equal(t, "c", Choices("a", "b", "c").Pick(intn))
	assert.Equal(t, 1, calls)
}

func TestNewChoices_RejectsEmpty(t *testing.T) {
	_, err := NewChoices(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRule)
	assert.Panics(t, func() { Choices() })
}

func TestRule_VariantsAreCopies(t *testing.T) {
	src := []string{"a", "b"}
	r, err := NewChoices(src)
	require.NoError(t, err)

	src[0] = "z"
	v := r.Variants()
	v[1] = "y"
	assert.Equal(t, []string{"a", "b"}, r.Variants())
	assert.False(t, r.IsSingle())
	assert.Equal(t, 2, r.Len())
}

func TestGrammar_SymbolsAndClone(t *testing.T) {
	g := New(map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, []string{"a", "b"}, g.Symbols())

	cp := g.Clone()
	cp["a"] = Single("changed")
	assert.Equal(t, Single("1"), g["a"])
	assert.NotNil(t, Grammar(nil).Clone())
}

func TestFromMap(t *testing.T) {
	g, err := FromMap(map[string]any{
		"origin": "#animal#",
		"animal": []any{"cat", "dog"},
		"count":  []any{1, 2},
		"answer": 42,
	})
	require.NoError(t, err)

	assert.Equal(t, Single("#animal#"), g["origin"])
	assert.Equal(t, Choices("cat", "dog"), g["animal"])
	assert.Equal(t, Choices("1", "2"), g["count"])
	assert.Equal(t, Single("42"), g["answer"])

	_, err = FromMap(map[string]any{"x": []any{}})
	assert.ErrorIs(t, err, domain.ErrInvalidRule)

	_, err = FromMap(map[string]any{"": "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidGrammar)

	_, err = FromMap(map[string]any{"x": map[string]any{"nested": true}})
	assert.ErrorIs(t, err, domain.ErrInvalidRule)
}

func TestDecode(t *testing.T) {
	want := Grammar{
		"origin": Single("the #animal# sleeps"),
		"animal": Choices("cat", "dog"),
	}

	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"yaml", FormatYAML, "origin: \"the #animal# sleeps\"\nanimal:\n  - cat\n  - dog\n"},
		{"json", FormatJSON, `{"origin": "the #animal# sleeps", "animal": ["cat", "dog"]}`},
		{"hcl", FormatHCL, `
rule "origin" {
  text = "the #animal# sleeps"
}
rule "animal" {
  variants = ["cat", "dog"]
}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Decode([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, want, g)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
		want   error
	}{
		{"yaml empty list", FormatYAML, "x: []\n", domain.ErrInvalidRule},
		{"yaml nested map", FormatYAML, "x:\n  y: z\n", domain.ErrInvalidRule},
		{"json number", FormatJSON, `{"x": 3}`, domain.ErrInvalidRule},
		{"json syntax", FormatJSON, `{`, domain.ErrInvalidGrammar},
		{"hcl both", FormatHCL, "rule \"x\" {\n text = \"a\"\n variants = [\"b\"]\n}\n", domain.ErrInvalidRule},
		{"hcl neither", FormatHCL, "rule \"x\" {\n}\n", domain.ErrInvalidRule},
		{"hcl duplicate", FormatHCL, "rule \"x\" {\n text = \"a\"\n}\nrule \"x\" {\n text = \"b\"\n}\n", domain.ErrInvalidGrammar},
		{"unknown format", Format("toml"), "", domain.ErrInvalidGrammar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.format)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	g := Grammar{
		"origin": Single("#a#"),
		"a":      Choices("x", "y"),
	}
	for _, format := range []Format{FormatYAML, FormatJSON} {
		data, err := Encode(g, format)
		require.NoError(t, err)

		back, err := Decode(data, format)
		require.NoError(t, err)
		assert.Equal(t, g, back, string(format))
	}

	_, err := Encode(g, FormatHCL)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	hclPath := filepath.Join(dir, "demo.hcl")
	require.NoError(t, os.WriteFile(hclPath, []byte("rule \"origin\" {\n  text = \"hi\"\n}\n"), 0o644))

	g, err := LoadFile(hclPath)
	require.NoError(t, err)
	assert.Equal(t, Grammar{"origin": Single("hi")}, g)

	assert.Equal(t, FormatJSON, FormatFromPath("x.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("x.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("x"))

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
