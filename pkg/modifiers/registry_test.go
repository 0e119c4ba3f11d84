package modifiers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		spec      string
		name      string
		params    []string
		hasParams bool
	}{
		{"capitalize", "capitalize", nil, false},
		{"replace(a,b)", "replace", []string{"a", "b"}, true},
		{"replace()", "replace", nil, true},
		{"broken(a", "broken(a", nil, false},
	}
	for _, tt := range tests {
		name, params, has := ParseSpec(tt.spec)
		assert.Equal(t, tt.name, name, tt.spec)
		assert.Equal(t, tt.params, params, tt.spec)
		assert.Equal(t, tt.hasParams, has, tt.spec)
	}
}

func TestRegistry_Apply(t *testing.T) {
	r := Default()

	assert.Equal(t, "Owls", r.ApplyAll("owl", []string{"s", "capitalize"}))
	assert.Equal(t, "an Owl", r.ApplyAll("owl", []string{"capitalize", "a"}))
	assert.Equal(t, "owl", r.Apply("owl", "nope"), "unknown modifiers are identity")
	assert.Equal(t, "owl", r.Apply("owl", "capitalize(x)"), "plain modifier called with params")
	assert.Equal(t, "ewl", r.Apply("owl", "replace(o,e)"))
	assert.Equal(t, "text", r.ApplyAll("text", nil))
}

func TestRegistry_RegisterAndNames(t *testing.T) {
	r := New()
	assert.Empty(t, r.Names())

	r.Register("upper", strings.ToUpper)
	r.RegisterParam("wrap", func(text string, params []string) string {
		return strings.Join(params, "") + text + strings.Join(params, "")
	})

	assert.Equal(t, []string{"upper", "wrap"}, r.Names())
	assert.True(t, r.Lookup("upper"))
	assert.True(t, r.Lookup("wrap(*)"))
	assert.False(t, r.Lookup("wrap"))
	assert.Equal(t, "*HI*", r.ApplyAll("hi", []string{"upper", "wrap(*)"}))
}

func TestDefault_Names(t *testing.T) {
	assert.Equal(t, []string{
		"a", "capitalize", "capitalizeAll", "comma", "ed", "firstS",
		"inQuotes", "replace", "s", "spaceAfter", "spaceBefore",
	}, Default().Names())
}
