package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "fidbaq"

// Envelope types are the one piece of runtime code every service may share.
const sharedEvents = modulePath + "/internal/shared/events"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

type layerRule struct {
	name    string
	allowed func(service string) []string
}

var layerRules = map[string]layerRule{
	"domain": {
		name: "domain",
		allowed: func(service string) []string {
			return []string{service + "/domain"}
		},
	},
	"application": {
		name: "application",
		allowed: func(service string) []string {
			return []string{
				service + "/application",
				service + "/domain",
				service + "/ports",
				sharedEvents,
			}
		},
	},
	"ports": {
		name: "ports",
		allowed: func(service string) []string {
			return []string{
				service + "/domain",
				sharedEvents,
			}
		},
	},
}

func main() {
	root := "contexts"
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	violations, err := collectViolations(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "boundary check failed: %v\n", err)
		os.Exit(2)
	}
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		if violations[i].Line != violations[j].Line {
			return violations[i].Line < violations[j].Line
		}
		return violations[i].Import < violations[j].Import
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

// collectViolations walks contexts/<context>/<service>/<layer>/... and checks
// each non-test file's imports against its layer.
func collectViolations(root string) ([]violation, error) {
	var violations []violation
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		normalized := filepath.ToSlash(path)
		parts := strings.Split(normalized, "/")
		if len(parts) < 4 {
			return nil
		}
		service := fmt.Sprintf("%s/%s/%s/%s", modulePath, parts[0], parts[1], parts[2])
		layer := ""
		if len(parts) > 4 {
			layer = parts[3]
		}
		found, err := validateFile(path, normalized, layer, service)
		if err != nil {
			return err
		}
		violations = append(violations, found...)
		return nil
	})
	return violations, err
}

func validateFile(path string, normalizedPath string, layer string, service string) ([]violation, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", normalizedPath, err)
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line
		add := func(rule string) {
			violations = append(violations, violation{
				File:   normalizedPath,
				Line:   line,
				Import: importPath,
				Rule:   rule,
			})
		}

		if hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, service) {
			add("cross-service imports are forbidden")
		}

		rule, ok := layerRules[layer]
		if !ok {
			continue
		}
		if strings.Contains(importPath, "/adapters/") || strings.HasSuffix(importPath, "/adapters") {
			add(rule.name + " must not import adapters")
			continue
		}
		if isStdlib(importPath) {
			continue
		}
		if !isAllowed(importPath, rule.allowed(service)) {
			add(rule.name + " import is outside explicit allowlist")
		}
	}
	return violations, nil
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isAllowed(importPath string, allowedPrefixes []string) bool {
	for _, p := range allowedPrefixes {
		if hasPrefix(importPath, p) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	if hasPrefix(importPath, modulePath) {
		return false
	}
	first := importPath
	if idx := strings.Index(first, "/"); idx != -1 {
		first = first[:idx]
	}
	return !strings.Contains(first, ".")
}
