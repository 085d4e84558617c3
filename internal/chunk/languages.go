package chunk

import (
	"path/filepath"
	"strings"
)

// textLanguages are chunked at heading boundaries.
var textLanguages = map[string]bool{
	"markdown": true,
	"mdx":      true,
	"rst":      true,
	"asciidoc": true,
}

// braceLanguages are chunked by brace-depth tracking.
var braceLanguages = map[string]bool{
	"go":         true,
	"javascript": true,
	"typescript": true,
	"java":       true,
	"c":          true,
	"cpp":        true,
	"csharp":     true,
	"rust":       true,
	"kotlin":     true,
	"swift":      true,
	"scala":      true,
	"php":        true,
	"dart":       true,
}

// extensionLanguages maps file extensions to language hints.
var extensionLanguages = map[string]string{
	".go":       "go",
	".js":       "javascript",
	".jsx":      "javascript",
	".mjs":      "javascript",
	".ts":       "typescript",
	".tsx":      "typescript",
	".java":     "java",
	".c":        "c",
	".h":        "c",
	".cc":       "cpp",
	".cpp":      "cpp",
	".hpp":      "cpp",
	".cs":       "csharp",
	".rs":       "rust",
	".kt":       "kotlin",
	".swift":    "swift",
	".scala":    "scala",
	".php":      "php",
	".dart":     "dart",
	".py":       "python",
	".rb":       "ruby",
	".sh":       "shell",
	".md":       "markdown",
	".markdown": "markdown",
	".mdx":      "mdx",
	".rst":      "rst",
	".adoc":     "asciidoc",
	".txt":      "text",
	".yaml":     "yaml",
	".yml":      "yaml",
	".json":     "json",
	".toml":     "toml",
}

// ClassOf returns the chunking policy class for a language hint.
func ClassOf(language string) ContentClass {
	lang := strings.ToLower(language)
	switch {
	case textLanguages[lang]:
		return ClassText
	case braceLanguages[lang]:
		return ClassCode
	default:
		return ClassPlain
	}
}

// LanguageForPath guesses the language hint from a file extension.
// Unknown extensions return "text".
func LanguageForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}
	return "text"
}
