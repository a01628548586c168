package classify

import (
	"github.com/lysyi3m/juris-comb/app/ruling"
)

type Classifier struct {
	themes     []compiledTheme
	relevance  compiledScale
	impact     compiledScale
	innovation compiledScale
}

type compiledTheme struct {
	name      string
	keywords  []string
	subthemes []compiledTheme
}

type compiledScale struct {
	keywords []string
	bonuses  []compiledBonus
}

type compiledBonus struct {
	points   int
	triggers []string
}

// Breakdown explains how each score was reached.
type Breakdown struct {
	Relevance  ScaleBreakdown `json:"relevance"`
	Impact     ScaleBreakdown `json:"impact"`
	Innovation ScaleBreakdown `json:"innovation"`
}

type ScaleBreakdown struct {
	Keywords []string `json:"keywords"`
	Bonuses  []int    `json:"bonuses"`
	Raw      int      `json:"raw"`
	Score    int      `json:"score"`
}

func New(table *Table) *Classifier {
	c := &Classifier{
		relevance:  compileScale(table.Scales.Relevance),
		impact:     compileScale(table.Scales.Impact),
		innovation: compileScale(table.Scales.Innovation),
	}

	for _, theme := range table.Themes {
		ct := compiledTheme{name: theme.Name, keywords: normalizeAll(theme.Keywords)}
		for _, sub := range theme.Subthemes {
			ct.subthemes = append(ct.subthemes, compiledTheme{name: sub.Name, keywords: normalizeAll(sub.Keywords)})
		}
		c.themes = append(c.themes, ct)
	}

	return c
}

// Classify returns a copy of r with themes, subthemes and scores filled in.
// It depends only on the title and summary.
func (c *Classifier) Classify(r ruling.Ruling) ruling.Ruling {
	classified, _ := c.Analyze(r)
	return classified
}

// ClassifyAll classifies each ruling into a new slice in input order.
func (c *Classifier) ClassifyAll(rulings []ruling.Ruling) []ruling.Ruling {
	result := make([]ruling.Ruling, len(rulings))
	for i, r := range rulings {
		result[i] = c.Classify(r)
	}
	return result
}

func (c *Classifier) Analyze(r ruling.Ruling) (ruling.Ruling, Breakdown) {
	text := r.AnalysisText()

	r.Themes, r.Subthemes = c.matchThemes(text)

	var b Breakdown
	b.Relevance = c.relevance.score(text)
	b.Impact = c.impact.score(text)
	b.Innovation = c.innovation.score(text)

	r.Relevance = b.Relevance.Score
	r.Impact = b.Impact.Score
	r.Innovation = b.Innovation.Score

	return r, b
}

func (c *Classifier) matchThemes(text string) ([]string, []string) {
	themes := []string{}
	subthemes := []string{}

	for _, theme := range c.themes {
		if !containsAny(text, theme.keywords) {
			continue
		}
		themes = append(themes, theme.name)

		for _, sub := range theme.subthemes {
			if containsAny(text, sub.keywords) {
				subthemes = appendUnique(subthemes, sub.name)
			}
		}
	}

	return themes, subthemes
}

func (s compiledScale) score(text string) ScaleBreakdown {
	b := ScaleBreakdown{Keywords: []string{}, Bonuses: []int{}}

	for _, kw := range s.keywords {
		if ruling.Contains(text, kw) {
			b.Keywords = append(b.Keywords, kw)
			b.Raw += KeywordPoints
		}
	}

	for _, bonus := range s.bonuses {
		if containsAny(text, bonus.triggers) {
			b.Bonuses = append(b.Bonuses, bonus.points)
			b.Raw += bonus.points
		}
	}

	b.Score = clamp(b.Raw)
	return b
}

func compileScale(scale Scale) compiledScale {
	cs := compiledScale{keywords: dedupe(normalizeAll(scale.Keywords))}
	for _, bonus := range scale.Bonuses {
		cs.bonuses = append(cs.bonuses, compiledBonus{points: bonus.Points, triggers: normalizeAll(bonus.Triggers)})
	}
	return cs
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if ruling.Contains(text, kw) {
			return true
		}
	}
	return false
}

func normalizeAll(keywords []string) []string {
	result := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		result = append(result, ruling.Normalize(kw))
	}
	return result
}

func dedupe(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		result = appendUnique(result, v)
	}
	return result
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
