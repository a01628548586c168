package ruling

import (
	"strings"
	"time"
)

// Query narrows a list of rulings the way the public search form does.
// Zero-valued fields are ignored.
type Query struct {
	Panel        string
	Rapporteur   string
	Year         string
	From         *time.Time
	To           *time.Time
	ExcludeTerms []string
	// ExcludeListings drops "acórdão de relação" rulings (bulk listings
	// with no individual reasoning).
	ExcludeListings bool
	Text            string
}

func (q Query) Apply(rulings []Ruling) []Ruling {
	result := make([]Ruling, 0, len(rulings))
	for _, r := range rulings {
		if q.Match(r) {
			result = append(result, r)
		}
	}
	return result
}

func (q Query) Match(r Ruling) bool {
	if q.Panel != "" && r.Panel != q.Panel {
		return false
	}
	if q.Rapporteur != "" && r.Rapporteur != q.Rapporteur {
		return false
	}
	if q.Year != "" && r.Year != q.Year {
		return false
	}

	if q.From != nil || q.To != nil {
		session, ok := r.SessionTime()
		if !ok {
			return false
		}
		if q.From != nil && session.Before(truncateDay(*q.From)) {
			return false
		}
		if q.To != nil && session.After(truncateDay(*q.To)) {
			return false
		}
	}

	if len(q.ExcludeTerms) > 0 {
		summary := Normalize(r.Summary)
		for _, term := range q.ExcludeTerms {
			if Contains(summary, term) {
				return false
			}
		}
	}

	if q.ExcludeListings && IsListing(r) {
		return false
	}

	if q.Text != "" && !matchesText(r, q.Text) {
		return false
	}

	return true
}

// IsListing reports whether the ruling title marks it as a "relação" ruling.
func IsListing(r Ruling) bool {
	title := Normalize(r.Title)
	return strings.Contains(title, "relação") || strings.Contains(title, "relacao")
}

func matchesText(r Ruling, text string) bool {
	for _, field := range []string{r.Title, r.Summary, r.Rapporteur, r.Panel} {
		if Contains(Normalize(field), text) {
			return true
		}
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
