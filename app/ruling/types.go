package ruling

import (
	"fmt"
	"time"
)

// SessionDateLayout is the dd/mm/yyyy layout the upstream uses for dataSessao.
const SessionDateLayout = "02/01/2006"

type Ruling struct {
	Key         string `json:"key"`
	Number      string `json:"numeroAcordao"`
	Year        string `json:"anoAcordao"`
	Panel       string `json:"colegiado"`
	Rapporteur  string `json:"relator"`
	SessionDate string `json:"dataSessao"`
	Title       string `json:"titulo"`
	Summary     string `json:"sumario"`
	URL         string `json:"urlAcordao"`

	// Classification output
	Themes     []string `json:"temas"`
	Subthemes  []string `json:"subtemas"`
	Relevance  int      `json:"relevancia"`
	Impact     int      `json:"impacto"`
	Innovation int      `json:"inovacao"`
}

// Reference returns the "number/year" citation, e.g. "1234/2023".
func (r Ruling) Reference() string {
	return fmt.Sprintf("%s/%s", r.Number, r.Year)
}

func (r Ruling) AnalysisText() string {
	return AnalysisText(r.Title, r.Summary)
}

func (r Ruling) SessionTime() (time.Time, bool) {
	if r.SessionDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(SessionDateLayout, r.SessionDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (r Ruling) HasTheme(theme string) bool {
	for _, t := range r.Themes {
		if t == theme {
			return true
		}
	}
	return false
}

func (r Ruling) HasSubtheme(subtheme string) bool {
	for _, s := range r.Subthemes {
		if s == subtheme {
			return true
		}
	}
	return false
}
