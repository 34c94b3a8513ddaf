package export

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jadenpxrk/codeshelf/internal/scan"
)

// entryNames are source entry points, most important first. The index of a
// name is part of its weight.
var entryNames = []string{
	"main.rs", "main.go", "main.py", "main.c", "main.cpp", "main.java",
	"Main.java", "Main.kt", "App.java", "Application.java",
	"main.js", "main.ts", "main.jsx", "main.tsx",
	"index.js", "index.ts", "index.jsx", "index.tsx",
	"index.html", "index.htm",
	"App.vue", "App.jsx", "App.tsx", "App.js", "App.ts",
	"app.py", "app.js", "app.ts",
	"manage.py", "wsgi.py", "asgi.py",
	"server.js", "server.ts", "server.go",
	"Program.cs", "Startup.cs",
	"lib.rs", "mod.rs",
}

var entryStems = map[string]bool{
	"main": true, "index": true, "app": true, "application": true, "program": true,
	"server": true, "bootstrap": true, "startup": true, "init": true, "entry": true,
}

var dataExts = map[string]bool{
	".json": true, ".yaml": true, ".yml": true, ".toml": true, ".ini": true,
	".cfg": true, ".conf": true, ".xml": true, ".svg": true, ".csv": true,
	".md": true, ".txt": true, ".log": true, ".lock": true, ".env": true,
}

var (
	toolConfigRe = regexp.MustCompile(`(?i)^(vite|webpack|rollup|tsconfig|babel|next|nuxt|tailwind|postcss|jest|vitest)\.config|config\.(js|ts)$|settings\.(py|js|ts)$`)
	routerRe     = regexp.MustCompile(`(?i)router|routes|routing`)
	layoutRe     = regexp.MustCompile(`(?i)layout|page|view`)
	componentRe  = regexp.MustCompile(`(?i)component|widget|module`)
	serviceRe    = regexp.MustCompile(`(?i)service|api|repository|dao|mapper`)
	utilRe       = regexp.MustCompile(`(?i)util|helper|lib|common|shared|constant|enum|type`)
	styleRe      = regexp.MustCompile(`(?i)\.(css|scss|sass|less|styl)$`)
	testRes      = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\.test\.(js|ts|jsx|tsx|py)$`),
		regexp.MustCompile(`(?i)\.spec\.(js|ts|jsx|tsx)$`),
		regexp.MustCompile(`(?i)test_.*\.py$`),
		regexp.MustCompile(`(?i).*_test\.py$`),
		regexp.MustCompile(`(?i).*_test\.go$`),
		regexp.MustCompile(`(?i).*Test\.java$`),
		regexp.MustCompile(`(?i)^tests?/`),
		regexp.MustCompile(`(?i)^__tests__/`),
		regexp.MustCompile(`(?i)^spec/`),
	}
)

// Weight ranks a file for export; lower weights come first. Entry points lead,
// then configuration code, routing, views, components, services, utilities,
// styles, data files and finally tests. ext includes the leading dot.
func Weight(relPath, name, ext string) float64 {
	relPath = strings.ReplaceAll(relPath, `\`, "/")
	depth := float64(segments(relPath) - 1)

	if dataExts[strings.ToLower(ext)] {
		return 850 + depth*5
	}
	for i, n := range entryNames {
		if n == name {
			return float64(i)*0.01 + depth*0.001
		}
	}
	if entryStems[strings.ToLower(stem(name))] {
		return 100 + depth*10
	}

	switch {
	case toolConfigRe.MatchString(name):
		return 200
	case routerRe.MatchString(name):
		return 300
	case layoutRe.MatchString(relPath):
		return 400 + depth*5
	case componentRe.MatchString(relPath):
		return 500 + depth*5
	case serviceRe.MatchString(relPath):
		return 600 + depth*5
	case utilRe.MatchString(relPath):
		return 700 + depth*5
	case styleRe.MatchString(name):
		return 800
	case isTest(relPath, name):
		return 900 + depth*5
	}
	return 500 + depth*5
}

// SortFiles returns a copy of files ordered by Weight, ties broken by
// relative path.
func SortFiles(files []scan.FileRecord) []scan.FileRecord {
	sorted := make([]scan.FileRecord, len(files))
	copy(sorted, files)

	weights := make(map[string]float64, len(sorted))
	for _, f := range sorted {
		weights[f.RelativePath] = Weight(f.RelativePath, f.Name, f.Extension)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		wi, wj := weights[sorted[i].RelativePath], weights[sorted[j].RelativePath]
		if wi != wj {
			return wi < wj
		}
		return sorted[i].RelativePath < sorted[j].RelativePath
	})
	return sorted
}

func isTest(relPath, name string) bool {
	for _, re := range testRes {
		if re.MatchString(name) || re.MatchString(relPath) {
			return true
		}
	}
	return false
}

func segments(relPath string) int {
	n := 0
	for _, s := range strings.Split(relPath, "/") {
		if s != "" {
			n++
		}
	}
	return n
}

// stem drops the last extension: "main.test.go" -> "main.test".
func stem(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}
