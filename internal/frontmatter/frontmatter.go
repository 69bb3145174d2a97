// Package frontmatter loads Pulse component files: a declarative
// frontmatter block fenced by '---' lines followed by the dialect
// body. The loader attaches the detected syntax version and, for
// modern bodies only, the modern-feature record.
package frontmatter

import (
	"fmt"
	"os"
	"strings"

	semver "github.com/Masterminds/semver/v3"

	"github.com/pulse-lang/pulse/internal/frontend"
)

// EngineVersion is the dialect engine version a component's 'engine'
// constraint is checked against.
const EngineVersion = "2.1.0"

const fence = "---"

// Document is a loaded component file.
type Document struct {
	Frontmatter   map[string]string
	Content       string
	SyntaxVersion frontend.SyntaxVersion

	// ModernFeatures is populated only for modern bodies. Its absence,
	// not a zero value, is what signals a legacy file.
	ModernFeatures *frontend.ModernFeatures
}

// ParseFile loads and parses a component file from disk.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(path, string(data))
}

// Parse splits frontmatter from content, validates the engine
// constraint when present, and classifies the body's dialect.
func Parse(name, src string) (*Document, error) {
	meta, content, err := split(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if constraint, ok := meta["engine"]; ok {
		if err := checkEngineConstraint(constraint); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	doc := &Document{
		Frontmatter:   meta,
		Content:       content,
		SyntaxVersion: frontend.DetectSyntaxVersion(content),
	}
	if doc.SyntaxVersion == frontend.Modern {
		features := frontend.DetectModernFeatures(content)
		doc.ModernFeatures = &features
	}
	return doc, nil
}

// split separates the fenced frontmatter block from the body. A file
// without a leading fence is all body.
func split(src string) (map[string]string, string, error) {
	meta := make(map[string]string)

	lines := strings.Split(src, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != fence {
		return meta, src, nil
	}

	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == fence {
			return meta, strings.Join(lines[i+1:], "\n"), nil
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, "", fmt.Errorf("frontmatter line %d: missing ':' separator", i+1)
		}
		meta[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return nil, "", fmt.Errorf("frontmatter block is not closed by '%s'", fence)
}

// checkEngineConstraint validates the declared engine constraint
// against the current engine version.
func checkEngineConstraint(constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid engine constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(EngineVersion)
	if err != nil {
		return fmt.Errorf("invalid engine version %q: %w", EngineVersion, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("engine version %s does not satisfy constraint %q", EngineVersion, constraint)
	}
	return nil
}
