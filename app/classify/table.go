package classify

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_table.yaml
var defaultTableYAML []byte

type Table struct {
	Themes []Theme `yaml:"themes" json:"themes"`
	Scales Scales  `yaml:"scales" json:"scales"`
}

type Theme struct {
	Name      string     `yaml:"name" json:"name"`
	Keywords  []string   `yaml:"keywords" json:"keywords"`
	Subthemes []Subtheme `yaml:"subthemes" json:"subthemes"`
}

type Subtheme struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

type Scales struct {
	Relevance  Scale `yaml:"relevance" json:"relevance"`
	Impact     Scale `yaml:"impact" json:"impact"`
	Innovation Scale `yaml:"innovation" json:"innovation"`
}

// Scale adds KeywordPoints once per distinct keyword present, then every
// bonus whose trigger list has at least one hit.
type Scale struct {
	Keywords []string `yaml:"keywords" json:"keywords"`
	Bonuses  []Bonus  `yaml:"bonuses" json:"bonuses"`
}

type Bonus struct {
	Points   int      `yaml:"points" json:"points"`
	Triggers []string `yaml:"triggers" json:"triggers"`
}

const (
	KeywordPoints = 10
	MinScore      = 0
	MaxScore      = 100
)

// DefaultTable returns a fresh copy of the embedded table.
func DefaultTable() (*Table, error) {
	return ParseTable(defaultTableYAML)
}

// LoadTable reads a table from path, or returns the embedded default when
// path is empty.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	table, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("invalid table %s: %w", path, err)
	}
	return table, nil
}

func ParseTable(data []byte) (*Table, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := table.validate(); err != nil {
		return nil, err
	}

	return &table, nil
}

func (t *Table) validate() error {
	if len(t.Themes) == 0 {
		return fmt.Errorf("at least one theme is required")
	}

	seen := make(map[string]bool)
	for i, theme := range t.Themes {
		if strings.TrimSpace(theme.Name) == "" {
			return fmt.Errorf("theme name is required at index %d", i)
		}
		if seen[theme.Name] {
			return fmt.Errorf("duplicate theme: %s", theme.Name)
		}
		seen[theme.Name] = true

		if err := validateKeywords(theme.Name, theme.Keywords); err != nil {
			return err
		}

		for j, sub := range theme.Subthemes {
			if strings.TrimSpace(sub.Name) == "" {
				return fmt.Errorf("subtheme name is required at index %d of theme %s", j, theme.Name)
			}
			if err := validateKeywords(theme.Name+"/"+sub.Name, sub.Keywords); err != nil {
				return err
			}
		}
	}

	scales := map[string]Scale{
		"relevance":  t.Scales.Relevance,
		"impact":     t.Scales.Impact,
		"innovation": t.Scales.Innovation,
	}

	for name, scale := range scales {
		for _, kw := range scale.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("%s scale has an empty keyword", name)
			}
		}
		for i, bonus := range scale.Bonuses {
			if bonus.Points < 0 {
				return fmt.Errorf("%s bonus at index %d must be non-negative", name, i)
			}
			if err := validateKeywords(fmt.Sprintf("%s bonus %d", name, i), bonus.Triggers); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateKeywords(owner string, keywords []string) error {
	if len(keywords) == 0 {
		return fmt.Errorf("%s must have at least one keyword", owner)
	}
	for _, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("%s has an empty keyword", owner)
		}
	}
	return nil
}
