package loam

// GrammarMetadata is the frontmatter of a grammar document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
//
//	---
//	name: tavern
//	rules:
//	  drink: [ale, mead, cider]
//	  patron: "a #mood# #job#"
//	---
//	The #patron# orders #drink.a#.
//
// The markdown body, when present, becomes the "origin" rule unless rules
// already define one.
type GrammarMetadata struct {
	Name        string         `json:"name" mapstructure:"name"`
	Description string         `json:"description" mapstructure:"description"`
	Rules       map[string]any `json:"rules" mapstructure:"rules"`
}
