package ignore

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/jadenpxrk/codeshelf/internal/logging"
)

// Mode selects how the root .gitignore is interpreted.
type Mode string

const (
	// ModeSimple treats every non-comment line as a bare name or glob.
	// Negation and anchoring are not supported.
	ModeSimple Mode = "simple"
	// ModeGit applies git's own matching rules to the root .gitignore.
	ModeGit Mode = "git"
)

// ParseMode validates a mode name; the empty string means ModeSimple.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSimple:
		return ModeSimple, nil
	case ModeGit:
		return ModeGit, nil
	default:
		return "", fmt.Errorf("unsupported gitignore mode %q: use %q or %q", s, ModeSimple, ModeGit)
	}
}

// ParsePatterns splits .gitignore content into patterns: lines are trimmed and
// empty or '#' lines are dropped.
func ParsePatterns(data []byte) []string {
	var patterns []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// LoadGitignore reads <root>/.gitignore. A missing or unreadable file yields
// no patterns.
func LoadGitignore(root string) []string {
	gitIgnorePath := filepath.Join(root, ".gitignore")
	data, err := os.ReadFile(gitIgnorePath)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Debug("could not read .gitignore",
				logging.String("path", gitIgnorePath), logging.Err(err))
		}
		return nil
	}
	return ParsePatterns(data)
}

// ForRoot builds the rule set for one scan of root.
func ForRoot(root string, custom []string, useGitignore bool, mode Mode) *Rules {
	if !useGitignore {
		return New(custom, nil)
	}
	if mode != ModeGit {
		return New(custom, LoadGitignore(root))
	}

	rules := New(custom, nil)
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return rules
	}
	gitIgnorePath := filepath.Join(absRoot, ".gitignore")
	f, err := os.Open(gitIgnorePath)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Debug("could not read .gitignore",
				logging.String("path", gitIgnorePath), logging.Err(err))
		}
		return rules
	}
	defer f.Close()
	matcher := gitignore.NewGitIgnoreFromReader(absRoot, f)
	return rules.WithGitMatcher(filepath.ToSlash(absRoot), matcher)
}

func fromSlash(p string) string {
	return filepath.FromSlash(p)
}
