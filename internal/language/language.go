// Package language maps file extensions to human-readable language labels.
package language

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Unknown is returned for extensions missing from the table.
const Unknown = "Unknown"

var builtin = map[string]string{
	"js":      "JavaScript",
	"jsx":     "JavaScript (JSX)",
	"ts":      "TypeScript",
	"tsx":     "TypeScript (TSX)",
	"vue":     "Vue",
	"svelte":  "Svelte",
	"java":    "Java",
	"py":      "Python",
	"c":       "C",
	"h":       "C/C++ Header",
	"cpp":     "C++",
	"cc":      "C++",
	"cxx":     "C++",
	"hpp":     "C++ Header",
	"cs":      "C#",
	"go":      "Go",
	"rs":      "Rust",
	"rb":      "Ruby",
	"php":     "PHP",
	"swift":   "Swift",
	"kt":      "Kotlin",
	"kts":     "Kotlin",
	"scala":   "Scala",
	"dart":    "Dart",
	"lua":     "Lua",
	"r":       "R",
	"m":       "Objective-C",
	"mm":      "Objective-C++",
	"pl":      "Perl",
	"pm":      "Perl",
	"sh":      "Shell",
	"bash":    "Shell",
	"zsh":     "Shell",
	"bat":     "Batch",
	"cmd":     "Batch",
	"ps1":     "PowerShell",
	"sql":     "SQL",
	"html":    "HTML",
	"htm":     "HTML",
	"css":     "CSS",
	"scss":    "SCSS",
	"sass":    "Sass",
	"less":    "Less",
	"xml":     "XML",
	"json":    "JSON",
	"yaml":    "YAML",
	"yml":     "YAML",
	"toml":    "TOML",
	"md":      "Markdown",
	"txt":     "Text",
	"gradle":  "Groovy",
	"groovy":  "Groovy",
	"ex":      "Elixir",
	"exs":     "Elixir",
	"erl":     "Erlang",
	"hrl":     "Erlang",
	"hs":      "Haskell",
	"ml":      "OCaml",
	"fs":      "F#",
	"fsx":     "F#",
	"clj":     "Clojure",
	"cljs":    "Clojure",
	"proto":   "Protocol Buffers",
	"graphql": "GraphQL",
	"gql":     "GraphQL",
	"tf":      "Terraform",
	"wxss":    "WXSS",
	"wxml":    "WXML",
	"wxs":     "WXS",
	"prisma":  "Prisma",
	"astro":   "Astro",
}

// Classifier resolves an extension to a language label.
type Classifier interface {
	Classify(ext string) string
}

// Table is an immutable extension -> label lookup. The zero value is not
// usable; build one with Default or Load.
type Table struct {
	byExt map[string]string
}

var defaultTable = &Table{byExt: builtin}

// Default returns the built-in table.
func Default() *Table {
	return defaultTable
}

// Classify returns the label for ext, which may carry a leading dot.
// Unknown extensions map to Unknown.
func (t *Table) Classify(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if lang, ok := t.byExt[ext]; ok {
		return lang
	}
	return Unknown
}

// Len reports the number of known extensions.
func (t *Table) Len() int {
	return len(t.byExt)
}

// Classify looks ext up in the built-in table.
func Classify(ext string) string {
	return defaultTable.Classify(ext)
}

// LanguageInfo is one entry of a languages.yml file.
type LanguageInfo struct {
	Type       string   `yaml:"type"` // e.g., programming, data, markup
	Extensions []string `yaml:"extensions"`
}

// LanguageMap maps language names (e.g., "Zig") to their details.
type LanguageMap map[string]LanguageInfo

// Load builds a table from the built-in entries plus the languages declared in
// the YAML file at path. Built-in entries are never overridden.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading language file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse is Load for in-memory YAML.
func Parse(data []byte) (*Table, error) {
	var langs LanguageMap
	if err := yaml.Unmarshal(data, &langs); err != nil {
		return nil, fmt.Errorf("error parsing language definitions: %w", err)
	}

	byExt := make(map[string]string, len(builtin))
	for ext, lang := range builtin {
		byExt[ext] = lang
	}
	for name, info := range langs {
		for _, ext := range info.Extensions {
			key := strings.ToLower(strings.TrimPrefix(ext, "."))
			if key == "" {
				continue
			}
			// When several languages claim one extension the lexically
			// smallest name is kept.
			if existing, ok := byExt[key]; ok {
				if _, isBuiltin := builtin[key]; isBuiltin || existing <= name {
					continue
				}
			}
			byExt[key] = name
		}
	}
	return &Table{byExt: byExt}, nil
}
