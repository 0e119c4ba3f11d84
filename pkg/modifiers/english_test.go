package modifiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnglishModifiers(t *testing.T) {
	tests := []struct {
		name string
		fn   Func
		in   string
		want string
	}{
		{"capitalize", Capitalize, "hello world", "Hello world"},
		{"capitalize empty", Capitalize, "", ""},
		{"capitalize unicode", Capitalize, "élan", "Élan"},
		{"capitalizeAll", CapitalizeAll, "the  quick\tfox", "The  Quick\tFox"},

		{"s default", Pluralize, "cat", "cats"},
		{"s after s", Pluralize, "bus", "buses"},
		{"s after h", Pluralize, "witch", "witches"},
		{"s after x", Pluralize, "box", "boxes"},
		{"s consonant y", Pluralize, "pony", "ponies"},
		{"s vowel y", Pluralize, "key", "keys"},
		{"s single y", Pluralize, "y", "ys"},
		{"s empty", Pluralize, "", ""},

		{"firstS", FirstS, "cup of tea", "cups of tea"},
		{"firstS one word", FirstS, "fly", "flies"},

		{"a consonant", Article, "banana", "a banana"},
		{"a vowel", Article, "apple", "an apple"},
		{"a uppercase vowel", Article, "Owl", "an Owl"},
		{"a no exceptions", Article, "hour", "a hour"},
		{"a empty", Article, "", "a "},

		{"ed default", PastTense, "jump", "jumped"},
		{"ed after e", PastTense, "bake", "baked"},
		{"ed consonant y", PastTense, "try", "tried"},
		{"ed vowel y", PastTense, "obey", "obeyd"},
		{"ed single y", PastTense, "y", "yed"},
		{"ed empty", PastTense, "", ""},

		{"spaceBefore", SpaceBefore, "x", " x"},
		{"spaceBefore empty", SpaceBefore, "", ""},
		{"spaceAfter", SpaceAfter, "x", "x "},
		{"spaceAfter empty", SpaceAfter, "", ""},

		{"inQuotes", InQuotes, "hi", `"hi"`},
		{"comma", Comma, "well", "well,"},
		{"comma after punctuation", Comma, "well!", "well!"},
		{"comma empty", Comma, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}

func TestReplace(t *testing.T) {
	assert.Equal(t, "b-b", Replace("a-a", []string{"a", "b"}))
	assert.Equal(t, "--", Replace("a-a", []string{"a"}))
	assert.Equal(t, "a-a", Replace("a-a", nil))
	assert.Equal(t, "a-a", Replace("a-a", []string{"", "x"}))
}
