package alert

import (
	"fmt"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

type Group struct {
	Contact string          `json:"contact"`
	Rulings []ruling.Ruling `json:"rulings"`
}

type Result struct {
	// Groups are ordered by first appearance of their contact.
	Groups    []Group
	Evaluated int
	Skipped   int
	Errors    []error
	// Matched lists the ids of subscriptions that matched at least one ruling.
	Matched []string
}

func (r Result) Recipients() int {
	return len(r.Groups)
}

type Matcher struct{}

func NewMatcher() *Matcher {
	return &Matcher{}
}

// MatchAndGroup evaluates every active subscription against rulings and
// merges matches per contact. A ruling appears at most once per contact even
// when several subscriptions share that contact. Subscriptions with an
// invalid or unreadable filter are skipped and reported in Result.Errors.
func (m *Matcher) MatchAndGroup(rulings []ruling.Ruling, subs []Subscription) Result {
	var result Result

	texts := make([]string, len(rulings))
	for i, r := range rulings {
		texts[i] = r.AnalysisText()
	}

	groupIndex := make(map[string]int)
	seen := make(map[string]map[string]bool)

	for _, sub := range subs {
		if !sub.Active {
			continue
		}

		if sub.LoadErr != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Errorf("subscription %s: %w: %w", sub.ID, ErrInvalidFilter, sub.LoadErr))
			continue
		}

		if err := sub.Filter.Validate(); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Errorf("subscription %s: %w", sub.ID, err))
			continue
		}
		result.Evaluated++

		filter := compileFilter(sub.Filter)
		matched := false

		for i, r := range rulings {
			if !filter.matches(r, texts[i]) {
				continue
			}
			matched = true

			idx, ok := groupIndex[sub.Contact]
			if !ok {
				idx = len(result.Groups)
				groupIndex[sub.Contact] = idx
				result.Groups = append(result.Groups, Group{Contact: sub.Contact})
				seen[sub.Contact] = make(map[string]bool)
			}

			if seen[sub.Contact][r.Key] {
				continue
			}
			seen[sub.Contact][r.Key] = true
			result.Groups[idx].Rulings = append(result.Groups[idx].Rulings, r)
		}

		if matched {
			result.Matched = append(result.Matched, sub.ID)
		}
	}

	return result
}

// Matches reports whether a single ruling satisfies the filter.
func Matches(f Filter, r ruling.Ruling) (bool, error) {
	if err := f.Validate(); err != nil {
		return false, err
	}
	return compileFilter(f).matches(r, r.AnalysisText()), nil
}

type compiledFilter struct {
	themes    map[string]bool
	subthemes map[string]bool
	keywords  []string
}

func compileFilter(f Filter) compiledFilter {
	cf := compiledFilter{
		themes:    make(map[string]bool, len(f.Themes)),
		subthemes: make(map[string]bool, len(f.Subthemes)),
	}
	for _, t := range f.Themes {
		cf.themes[t] = true
	}
	for _, s := range f.Subthemes {
		cf.subthemes[s] = true
	}
	for _, kw := range f.Keywords {
		cf.keywords = append(cf.keywords, ruling.Normalize(kw))
	}
	return cf
}

func (cf compiledFilter) matches(r ruling.Ruling, text string) bool {
	for _, t := range r.Themes {
		if cf.themes[t] {
			return true
		}
	}
	for _, s := range r.Subthemes {
		if cf.subthemes[s] {
			return true
		}
	}
	for _, kw := range cf.keywords {
		if ruling.Contains(text, kw) {
			return true
		}
	}
	return false
}
