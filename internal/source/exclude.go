package source

import (
	"path/filepath"
	"strings"
)

// binaryExtensions are never indexed regardless of exclude patterns.
var binaryExtensions = map[string]bool{
	".exe": true, ".dll": true, ".so": true, ".dylib": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".7z": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true, ".webp": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".bin": true, ".dat": true, ".db": true, ".sqlite": true,
	".pyc": true, ".pyo": true, ".class": true, ".o": true, ".a": true,
	".wasm": true, ".jar": true,
}

// IsBinaryPath reports whether the extension marks a binary file.
func IsBinaryPath(path string) bool {
	return binaryExtensions[strings.ToLower(filepath.Ext(path))]
}

// Excluded reports whether path matches any exclude pattern. Patterns
// use a restricted glob dialect: "**/name/**" excludes a directory
// anywhere in the tree, "**/glob" matches against the base name, plain
// patterns match the full relative path.
func Excluded(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchPattern(path, pattern) {
			return true
		}
	}
	return false
}

func matchPattern(path, pattern string) bool {
	switch {
	case strings.HasPrefix(pattern, "**/") && strings.HasSuffix(pattern, "/**"):
		segment := strings.TrimSuffix(strings.TrimPrefix(pattern, "**/"), "/**")
		for _, part := range strings.Split(filepath.ToSlash(path), "/") {
			if part == segment {
				return true
			}
		}
		return false

	case strings.HasPrefix(pattern, "**/"):
		glob := strings.TrimPrefix(pattern, "**/")
		ok, err := filepath.Match(glob, filepath.Base(path))
		return err == nil && ok

	default:
		ok, err := filepath.Match(pattern, filepath.ToSlash(path))
		return err == nil && ok
	}
}
