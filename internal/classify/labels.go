package classify

import (
	"fmt"
	"os"

	"github.com/ayusman/signscribe/internal/label"
	"gopkg.in/yaml.v3"
)

// labelsFile is the on-disk layout of a model's output order.
type labelsFile struct {
	Labels []string `yaml:"labels"`
}

// LoadLabels reads a YAML labels file. An empty path returns the default set.
func LoadLabels(path string) ([]label.Label, error) {
	if path == "" {
		return label.Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}

	return ParseLabels(data)
}

// ParseLabels decodes a labels document and checks every entry is a letter,
// space or blank, with no duplicates.
func ParseLabels(data []byte) ([]label.Label, error) {
	var file labelsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse labels: %w", err)
	}
	if len(file.Labels) == 0 {
		return nil, fmt.Errorf("labels file has no labels")
	}

	seen := make(map[label.Label]bool, len(file.Labels))
	labels := make([]label.Label, 0, len(file.Labels))
	for _, raw := range file.Labels {
		l := label.Label(raw)
		if !l.IsLetter() && l != label.Space && l != label.Blank {
			return nil, fmt.Errorf("unknown label %q", raw)
		}
		if seen[l] {
			return nil, fmt.Errorf("duplicate label %q", raw)
		}
		seen[l] = true
		labels = append(labels, l)
	}

	return labels, nil
}
