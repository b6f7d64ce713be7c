package mailer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Overrides lets a deployment replace mail subjects or template bodies
// without rebuilding. Keys are template names, e.g. "voting_token" for
// subjects and "voting_token_text" for templates.
type Overrides struct {
	Subjects  map[string]string `yaml:"subjects"`
	Templates map[string]string `yaml:"templates"`
}

// LoadOverrides reads an overrides file. An empty path yields no overrides.
func LoadOverrides(path string) (Overrides, error) {
	if path == "" {
		return Overrides{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("read mail overrides: %w", err)
	}

	var o Overrides
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return Overrides{}, fmt.Errorf("parse mail overrides: %w", err)
	}
	return o, nil
}

// apply redefines embedded templates with the override bodies.
func (o Overrides) apply(e *Engine) error {
	for name, body := range o.Templates {
		if e.templates.Lookup(name) == nil {
			return fmt.Errorf("mail override for unknown template %q", name)
		}
		if _, err := e.templates.New(name).Parse(body); err != nil {
			return fmt.Errorf("parse mail override %q: %w", name, err)
		}
	}
	return nil
}
