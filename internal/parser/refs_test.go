package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		symbols  []string
		bindings []string
	}{
		{"plain", "no tags", nil, nil},
		{"symbols with modifiers", "#a.capitalize# and #b# and #a.s#", []string{"a", "b"}, nil},
		{"action payload", "[hero:#name#]#hero#", []string{"name", "hero"}, []string{"hero"}},
		{"nested action", "[x:[y:#z#]]", []string{"z"}, []string{"x", "y"}},
		{"pop", "[x:POP]", nil, []string{"x"}},
		{"ignored action", "[junk]#a#", []string{"a"}, nil},
		{"escaped", `\#lit\# #real#`, []string{"real"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symbols, bindings := References(tt.input)
			assert.Equal(t, tt.symbols, symbols)
			assert.Equal(t, tt.bindings, bindings)
		})
	}
}
