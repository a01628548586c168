package source

import (
	"fmt"
	"log/slog"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

var validFilterFields = map[string]bool{
	"titulo":    true,
	"sumario":   true,
	"relator":   true,
	"colegiado": true,
}

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run drops the rulings rejected by the source's filters and returns the
// rest in their original order, plus the number dropped.
func (f *Filterer) Run(rulings []ruling.Ruling, sourceConfig *Config) ([]ruling.Ruling, int) {
	if len(sourceConfig.Filters) == 0 {
		return rulings, 0
	}

	kept := make([]ruling.Ruling, 0, len(rulings))
	dropped := 0
	for _, r := range rulings {
		if isFiltered, reason := f.applyFilters(r, sourceConfig.Filters); isFiltered {
			slog.Debug("Ruling filtered", "source", sourceConfig.Name, "key", r.Key, "reason", reason)
			dropped++
			continue
		}
		kept = append(kept, r)
	}

	return kept, dropped
}

func (f *Filterer) applyFilters(r ruling.Ruling, filters []ConfigFilter) (bool, string) {
	for _, filter := range filters {
		value := ruling.Normalize(f.getFieldValue(r, filter.Field))

		for _, exclude := range filter.Excludes {
			if ruling.Contains(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if ruling.Contains(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) getFieldValue(r ruling.Ruling, field string) string {
	switch field {
	case "titulo":
		return r.Title
	case "sumario":
		return r.Summary
	case "relator":
		return r.Rapporteur
	case "colegiado":
		return r.Panel
	default:
		return ""
	}
}
