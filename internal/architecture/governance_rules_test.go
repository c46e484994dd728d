package architecture_test

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const modulePath = "semantic-compiler"

type layerRule struct {
	sourcePrefix string
	forbidden    []string
	hint         string
}

var architectureRules = []layerRule{
	{
		sourcePrefix: modulePath + "/internal/domain",
		forbidden: []string{
			modulePath + "/internal/compiler",
			modulePath + "/internal/filter",
			modulePath + "/internal/declarative",
			modulePath + "/internal/config",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "domain may only import domain",
	},
	{
		sourcePrefix: modulePath + "/internal/filter",
		forbidden: []string{
			modulePath + "/internal/compiler",
			modulePath + "/internal/declarative",
			modulePath + "/internal/config",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "filter should depend on domain only",
	},
	{
		sourcePrefix: modulePath + "/internal/compiler",
		forbidden: []string{
			modulePath + "/internal/declarative",
			modulePath + "/internal/config",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "compiler should depend on domain and filter",
	},
	{
		sourcePrefix: modulePath + "/internal/declarative",
		forbidden: []string{
			modulePath + "/internal/compiler",
			modulePath + "/internal/filter",
			modulePath + "/internal/config",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "declarative produces domain inputs and nothing else",
	},
	{
		sourcePrefix: modulePath + "/internal/config",
		forbidden: []string{
			modulePath + "/internal/compiler",
			modulePath + "/internal/declarative",
			modulePath + "/cmd",
			modulePath + "/pkg/cli",
		},
		hint: "config should depend on domain and filter",
	},
}

// pureRules lists standard library packages the compilation core must not
// import: it performs no I/O and never logs.
var pureRules = []layerRule{
	{
		sourcePrefix: modulePath + "/internal/domain",
		forbidden:    []string{"log", "log/slog", "os", "net", "database"},
		hint:         "domain is pure data and helpers",
	},
	{
		sourcePrefix: modulePath + "/internal/compiler",
		forbidden:    []string{"log", "log/slog", "os", "net", "database"},
		hint:         "compilation is a pure function of its inputs",
	},
	{
		sourcePrefix: modulePath + "/internal/filter",
		forbidden:    []string{"log", "log/slog", "os", "net", "database"},
		hint:         "rendering is a pure function of its inputs and the clock",
	},
}

func collectGoFiles(root string) ([]string, error) {
	files := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "testdata" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".go") {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func repoRootDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

func internalRootDir() string {
	return filepath.Join(repoRootDir(), "internal")
}

func findRule(rules []layerRule, sourcePkg string) (layerRule, bool) {
	for _, rule := range rules {
		if hasPathPrefix(sourcePkg, rule.sourcePrefix) {
			return rule, true
		}
	}
	return layerRule{}, false
}

func violatesRule(importPath string, forbidden []string) bool {
	for _, prefix := range forbidden {
		if hasPathPrefix(importPath, prefix) {
			return true
		}
	}
	return false
}

func hasPathPrefix(value string, prefix string) bool {
	return value == prefix || strings.HasPrefix(value, prefix+"/")
}

func packageImportPath(file string) string {
	path := filepath.ToSlash(file)
	idx := strings.Index(path, "/internal/")
	if idx >= 0 {
		return modulePath + filepath.ToSlash(filepath.Dir(path[idx:]))
	}
	return modulePath + "/" + filepath.ToSlash(filepath.Dir(path))
}

func isTestFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), "_test.go")
}

func parseImports(t *testing.T, file string) []string {
	t.Helper()

	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
	require.NoErrorf(t, err, "parse imports for %s", file)

	imports := make([]string, 0, len(parsed.Imports))
	for _, imp := range parsed.Imports {
		imports = append(imports, strings.Trim(imp.Path.Value, "\""))
	}
	return imports
}

func relToRepoRoot(path string) string {
	rel, err := filepath.Rel(repoRootDir(), path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
