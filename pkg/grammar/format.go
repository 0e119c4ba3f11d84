package grammar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/tracery/pkg/domain"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"gopkg.in/yaml.v3"
)

// Format identifies a grammar file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// Extensions lists the file extensions understood by FormatFromPath.
var Extensions = []string{".yaml", ".yml", ".json", ".hcl"}

// FormatFromPath picks the format from a file extension. Unknown extensions default to YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".hcl":
		return FormatHCL
	default:
		return FormatYAML
	}
}

// hclFile is the HCL shape of a grammar:
//
//	rule "animal" {
//	  variants = ["cat", "dog"]
//	}
//	rule "origin" {
//	  text = "the #animal# sleeps"
//	}
type hclFile struct {
	Rules []hclRule `hcl:"rule,block"`
}

type hclRule struct {
	Name     string   `hcl:"name,label"`
	Text     *string  `hcl:"text,optional"`
	Variants []string `hcl:"variants,optional"`
}

// Decode parses grammar data in the given format.
func Decode(data []byte, format Format) (Grammar, error) {
	var g Grammar
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("%w: json: %w", domain.ErrInvalidGrammar, err)
		}
	case FormatHCL:
		decoded, err := decodeHCL("grammar.hcl", data)
		if err != nil {
			return nil, err
		}
		g = decoded
	case FormatYAML, "":
		if err := yaml.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("%w: yaml: %w", domain.ErrInvalidGrammar, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", domain.ErrInvalidGrammar, format)
	}

	if g == nil {
		g = Grammar{}
	}
	if err := g.Check(); err != nil {
		return nil, err
	}
	return g, nil
}

func decodeHCL(filename string, data []byte) (Grammar, error) {
	var file hclFile
	if err := hclsimple.Decode(filename, data, nil, &file); err != nil {
		return nil, fmt.Errorf("%w: hcl: %w", domain.ErrInvalidGrammar, err)
	}

	g := make(Grammar, len(file.Rules))
	for _, r := range file.Rules {
		if _, dup := g[r.Name]; dup {
			return nil, fmt.Errorf("%w: hcl: rule %q defined twice", domain.ErrInvalidGrammar, r.Name)
		}
		switch {
		case r.Text != nil && r.Variants != nil:
			return nil, fmt.Errorf("%w: hcl: rule %q sets both text and variants", domain.ErrInvalidRule, r.Name)
		case r.Text != nil:
			g[r.Name] = Single(*r.Text)
		default:
			rule, err := NewChoices(r.Variants)
			if err != nil {
				return nil, fmt.Errorf("hcl: rule %q: %w", r.Name, err)
			}
			g[r.Name] = rule
		}
	}
	return g, nil
}

// Encode serializes a grammar. HCL output is not supported.
func Encode(g Grammar, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(g, "", "  ")
	case FormatYAML, "":
		return yaml.Marshal(g)
	default:
		return nil, fmt.Errorf("%w: cannot encode format %q", domain.ErrInvalidGrammar, format)
	}
}

// LoadFile reads and decodes a grammar file, choosing the format by extension.
func LoadFile(path string) (Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar: %w", err)
	}
	format := FormatFromPath(path)
	if format == FormatHCL {
		g, err := decodeHCL(filepath.Base(path), data)
		if err != nil {
			return nil, err
		}
		return g, g.Check()
	}
	return Decode(data, format)
}
