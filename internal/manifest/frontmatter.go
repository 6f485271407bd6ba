package manifest

import (
	"regexp"

	"gopkg.in/yaml.v3"
)

// header is the optional YAML block at the top of a manifest.
// Unknown fields cause parse errors.
type header struct {
	Package     string `yaml:"package"`
	Qualifier   string `yaml:"qualifier"`
	Import      string `yaml:"import"`
	Description string `yaml:"description"`
}

// headerPattern matches /*--- ... ---*/ blocks at the start of a file.
var headerPattern = regexp.MustCompile(`(?s)^\s*/\*---\s*\n(.*?)\s*---\*/`)

var knownHeaderFields = map[string]bool{
	"package":     true,
	"qualifier":   true,
	"import":      true,
	"description": true,
}

// extractHeader pulls the YAML header off the front of content. It returns
// the parsed header (nil when absent) and the byte offset where the entry
// body starts, so entry positions stay file-accurate.
func extractHeader(content, path string) (*header, int, error) {
	loc := headerPattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return nil, 0, nil
	}
	yamlContent := content[loc[2]:loc[3]]
	bodyStart := loc[1]

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(yamlContent), &raw); err != nil {
		return nil, 0, newParseErrorf(path, 1, "invalid YAML header: %v", err)
	}
	for field := range raw {
		if !knownHeaderFields[field] {
			return nil, 0, newParseErrorf(path, 1, "unknown header field %q", field)
		}
	}

	var h header
	if err := yaml.Unmarshal([]byte(yamlContent), &h); err != nil {
		return nil, 0, newParseErrorf(path, 1, "invalid YAML header: %v", err)
	}
	return &h, bodyStart, nil
}

// validateHeader rejects header values that could not survive generation.
func validateHeader(h *header, path string) error {
	if h == nil {
		return nil
	}
	if h.Package != "" && !isIdent(h.Package) {
		return newParseErrorf(path, 1, "invalid package name %q in header", h.Package)
	}
	if h.Qualifier != "" && !isIdent(h.Qualifier) {
		return newParseErrorf(path, 1, "invalid qualifier %q in header", h.Qualifier)
	}
	return nil
}
