// Package ignore decides which files a scan leaves out.
//
// Rules are evaluated as an ordered pipeline; the first rule that matches
// excludes the file:
//
//  1. a parent directory is a built-in ignored directory
//  2. the file name is a built-in ignored file
//  3. the extension is a built-in ignored extension
//  4. the file is a minified .js/.css asset
//  5. a custom or .gitignore pattern matches
//
// Rules 1-4 cannot be disabled.
package ignore

import (
	"path"
	"strings"

	"github.com/gobwas/glob"
	gitignore "github.com/monochromegane/go-gitignore"
)

// DefaultDirs are directory names excluded at any depth.
var DefaultDirs = setOf(
	"node_modules",
	"dist",
	"build",
	"out",
	"output",
	".git",
	".svn",
	".hg",
	".idea",
	".vscode",
	".vs",
	"__pycache__",
	".pytest_cache",
	"target",
	"bin",
	"obj",
	"vendor",
	"bower_components",
	".next",
	".nuxt",
	".output",
	"coverage",
	".nyc_output",
	".gradle",
	".mvn",
	".cache",
	".tmp",
)

// DefaultFiles are exact file names that are always excluded.
var DefaultFiles = setOf(
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",
)

// DefaultExtensions are lowercase extensions (no dot) of binary, generated and
// lock files.
var DefaultExtensions = setOf(
	"map", "lock", "exe", "dll", "so", "dylib", "o", "a",
	"png", "jpg", "jpeg", "gif", "svg", "ico", "bmp", "webp",
	"mp3", "mp4", "avi", "mov", "wav", "flac",
	"zip", "tar", "gz", "rar", "7z", "bz2",
	"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx",
	"woff", "woff2", "ttf", "eot", "otf",
	"sqlite", "db", "mdb", "pyc", "pyo", "class",
)

var minifiedSuffixes = []string{".min.js", ".min.css"}

func setOf(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, item := range items {
		m[item] = struct{}{}
	}
	return m
}

// Ext returns the lowercase extension of name without the dot. Dotfiles such
// as ".gitignore" have no extension.
func Ext(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// InIgnoredDir reports whether any parent directory of relPath is a built-in
// ignored directory. relPath uses forward slashes.
func InIgnoredDir(relPath string) bool {
	segments := strings.Split(relPath, "/")
	for _, seg := range segments[:len(segments)-1] {
		if _, ok := DefaultDirs[seg]; ok {
			return true
		}
	}
	return false
}

// IsIgnoredFile reports whether name is a built-in ignored file name.
func IsIgnoredFile(name string) bool {
	_, ok := DefaultFiles[name]
	return ok
}

// HasIgnoredExt reports whether the extension of name is built-in ignored.
func HasIgnoredExt(name string) bool {
	ext := Ext(name)
	if ext == "" {
		return false
	}
	_, ok := DefaultExtensions[ext]
	return ok
}

// IsMinified reports whether name is a minified asset such as app.min.js.
func IsMinified(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range minifiedSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

type check func(relPath, name string) bool

var builtinChecks = []check{
	func(relPath, _ string) bool { return InIgnoredDir(relPath) },
	func(_, name string) bool { return IsIgnoredFile(name) },
	func(_, name string) bool { return HasIgnoredExt(name) },
	func(_, name string) bool { return IsMinified(name) },
}

// pattern is a compiled custom or .gitignore entry.
type pattern struct {
	raw  string
	bare bool
	glob glob.Glob // nil when the pattern does not compile
}

// globLiterals escapes the characters gobwas/glob would otherwise read as
// alternation or escapes. Patterns only support * ? and [...] classes.
var globLiterals = strings.NewReplacer(`\`, `\\`, "{", `\{`, "}", `\}`)

func compile(raw string) (pattern, bool) {
	raw = strings.TrimRight(raw, "/")
	if raw == "" {
		return pattern{}, false
	}
	p := pattern{
		raw:  raw,
		bare: !strings.ContainsAny(raw, "*/"),
	}
	if g, err := glob.Compile(globLiterals.Replace(raw)); err == nil {
		p.glob = g
	}
	return p, true
}

func (p pattern) match(relPath, name string) bool {
	if p.bare {
		if name == p.raw {
			return true
		}
		for _, seg := range strings.Split(relPath, "/") {
			if seg == p.raw {
				return true
			}
		}
	}
	if p.glob != nil {
		return p.glob.Match(relPath) || p.glob.Match(name)
	}
	return false
}

// Rules is the rule set for one scan. It is immutable once built.
type Rules struct {
	patterns []pattern
	git      gitignore.IgnoreMatcher
	gitBase  string
}

// New compiles custom patterns followed by .gitignore-derived patterns.
// Malformed globs are kept inert rather than rejected.
func New(custom, gitignorePatterns []string) *Rules {
	r := &Rules{}
	for _, list := range [][]string{custom, gitignorePatterns} {
		for _, raw := range list {
			if p, ok := compile(raw); ok {
				r.patterns = append(r.patterns, p)
			}
		}
	}
	return r
}

// WithGitMatcher returns a copy of r that also consults m, a full-semantics
// .gitignore matcher rooted at base (an absolute directory).
func (r *Rules) WithGitMatcher(base string, m gitignore.IgnoreMatcher) *Rules {
	cp := *r
	cp.git = m
	cp.gitBase = base
	return &cp
}

// Match reports whether the file at relPath (forward slashes, relative to the
// scan root) with final segment name must be excluded.
func (r *Rules) Match(relPath, name string) bool {
	for _, c := range builtinChecks {
		if c(relPath, name) {
			return true
		}
	}
	for _, p := range r.patterns {
		if p.match(relPath, name) {
			return true
		}
	}
	if r.git != nil {
		return r.matchGit(relPath)
	}
	return false
}

// matchGit checks every ancestor directory first, since git never descends
// into an ignored directory.
func (r *Rules) matchGit(relPath string) bool {
	dir := path.Dir(relPath)
	if dir != "." {
		parts := strings.Split(dir, "/")
		for i := range parts {
			prefix := path.Join(r.gitBase, path.Join(parts[:i+1]...))
			if r.git.Match(fromSlash(prefix), true) {
				return true
			}
		}
	}
	return r.git.Match(fromSlash(path.Join(r.gitBase, relPath)), false)
}

// IsIgnored evaluates the full pipeline for a single file.
func IsIgnored(relPath, name string, custom, gitignorePatterns []string) bool {
	return New(custom, gitignorePatterns).Match(relPath, name)
}
