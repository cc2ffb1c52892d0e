package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
	"gopkg.in/yaml.v3"
)

// Format is how a catalog file is interpreted.
type Format string

const (
	FormatStructured Format = "structured"
	FormatText       Format = "text"
)

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".yaml", ".yml":
		return FormatStructured, nil
	case ".txt", ".md", ".markdown":
		return FormatText, nil
	case "":
		return "", fmt.Errorf("%w: file has no extension", contractx.ErrUnsupportedDocument)
	default:
		return "", fmt.Errorf("%w: %s", contractx.ErrUnsupportedDocument, ext)
	}
}

func readCatalog(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", filepath.Base(path), err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: %s", contractx.ErrEmptyDocument, filepath.Base(path))
	}
	return raw, nil
}

type packageFile struct {
	Packages []statex.CatalogPackage `json:"packages" yaml:"packages"`
}

// parsePackages accepts either a bare list of packages or an object with a
// "packages" list.
func parsePackages(path string, raw []byte) ([]statex.CatalogPackage, error) {
	var pkgs []statex.CatalogPackage
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &pkgs); err != nil {
				return nil, fmt.Errorf("decode catalog json: %w", err)
			}
		} else {
			var f packageFile
			if err := json.Unmarshal(trimmed, &f); err != nil {
				return nil, fmt.Errorf("decode catalog json: %w", err)
			}
			pkgs = f.Packages
		}
	default:
		var node yaml.Node
		if err := yaml.Unmarshal(raw, &node); err != nil {
			return nil, fmt.Errorf("decode catalog yaml: %w", err)
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			if err := node.Content[0].Decode(&pkgs); err != nil {
				return nil, fmt.Errorf("decode catalog yaml: %w", err)
			}
		} else {
			var f packageFile
			if err := node.Decode(&f); err != nil {
				return nil, fmt.Errorf("decode catalog yaml: %w", err)
			}
			pkgs = f.Packages
		}
	}

	out := make([]statex.CatalogPackage, 0, len(pkgs))
	for _, p := range pkgs {
		p.Destination = strings.TrimSpace(p.Destination)
		if p.Destination == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no packages in %s", contractx.ErrEmptyDocument, filepath.Base(path))
	}
	return out, nil
}
