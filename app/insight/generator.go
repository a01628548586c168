package insight

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

var ErrUnknownTemplate = errors.New("unknown insight template")

type Template string

const (
	TemplateStandard Template = "post_padrao"
	TemplateDetailed Template = "analise_detalhada"
	TemplateQuickTip Template = "dica_rapida"
)

const (
	pointCount       = 3
	minPointLength   = 20
	pointPlaceholder = "Ponto a ser analisado pelo especialista"
)

var (
	sentenceSplitter = regexp.MustCompile(`[.;]`)
	fallbackHashtags = []string{"TCU", "Jurisprudência", "ControleExterno"}
)

type postData struct {
	Number      string
	Year        string
	Panel       string
	Rapporteur  string
	Date        string
	Topic       string
	Summary     string
	Points      []string
	ImpactNote  string
	Conclusion  string
	Quote       string
	Explanation string
	Hashtags    []string
}

type Generator struct {
	templates map[Template]*template.Template
}

func NewGenerator() *Generator {
	funcs := template.FuncMap{"hashtags": renderHashtags}

	return &Generator{
		templates: map[Template]*template.Template{
			TemplateStandard: template.Must(template.New(string(TemplateStandard)).Funcs(funcs).Parse(postPadrao)),
			TemplateDetailed: template.Must(template.New(string(TemplateDetailed)).Funcs(funcs).Parse(analiseDetalhada)),
			TemplateQuickTip: template.Must(template.New(string(TemplateQuickTip)).Funcs(funcs).Parse(dicaRapida)),
		},
	}
}

// Generate renders a social-media post for a classified ruling. An empty
// name selects post_padrao.
func (g *Generator) Generate(r ruling.Ruling, name Template) (string, error) {
	if name == "" {
		name = TemplateStandard
	}

	tmpl, ok := g.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, newPostData(r)); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return b.String(), nil
}

func newPostData(r ruling.Ruling) postData {
	points := MainPoints(r.Summary)
	topic := "contratações públicas"
	if len(r.Themes) > 0 {
		topic = strings.ToLower(r.Themes[0])
	}

	return postData{
		Number:      r.Number,
		Year:        r.Year,
		Panel:       r.Panel,
		Rapporteur:  cmp.Or(r.Rapporteur, "N/A"),
		Date:        cmp.Or(r.SessionDate, "N/A"),
		Topic:       topic,
		Summary:     cmp.Or(strings.TrimSpace(r.Summary), "Sumário não disponível"),
		Points:      points,
		ImpactNote:  impactNote(r.Impact),
		Conclusion:  conclusion(r.Relevance, r.Innovation),
		Quote:       points[0],
		Explanation: fmt.Sprintf("gestores e licitantes devem observar este entendimento em matéria de %s.", topic),
		Hashtags:    Hashtags(r),
	}
}

// MainPoints returns the first three summary sentences longer than twenty
// characters, padded with a placeholder when the summary is short.
func MainPoints(summary string) []string {
	points := make([]string, 0, pointCount)
	for _, s := range sentenceSplitter.Split(summary, -1) {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) <= minPointLength {
			continue
		}
		points = append(points, s)
		if len(points) == pointCount {
			break
		}
	}
	for len(points) < pointCount {
		points = append(points, pointPlaceholder)
	}
	return points
}

// Hashtags derives tags from themes (dropping " e " and spaces) and
// subthemes (dropping spaces), without duplicates.
func Hashtags(r ruling.Ruling) []string {
	seen := make(map[string]bool)
	var tags []string
	add := func(tag string) {
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	for _, theme := range r.Themes {
		add(strings.ReplaceAll(strings.ReplaceAll(theme, " e ", ""), " ", ""))
	}
	for _, subtheme := range r.Subthemes {
		add(strings.ReplaceAll(subtheme, " ", ""))
	}
	return tags
}

func renderHashtags(tags []string, n int) string {
	picked := make([]string, 0, n)
	picked = append(picked, tags[:min(n, len(tags))]...)
	for _, f := range fallbackHashtags {
		if len(picked) == n {
			break
		}
		if !contains(picked, f) {
			picked = append(picked, f)
		}
	}
	for i, tag := range picked {
		picked[i] = "#" + tag
	}
	return strings.Join(picked, " ")
}

func impactNote(impact int) string {
	switch {
	case impact >= 60:
		return "Decisão com alto impacto prático: exige revisão imediata de procedimentos pelos órgãos jurisdicionados."
	case impact >= 30:
		return "Decisão com impacto moderado: recomenda-se atenção dos gestores na condução de casos semelhantes."
	default:
		return "Decisão com impacto pontual, restrito ao caso concreto."
	}
}

func conclusion(relevance, innovation int) string {
	switch {
	case innovation >= 50:
		return "O acórdão sinaliza mudança de entendimento e merece acompanhamento próximo."
	case relevance >= 50:
		return "O acórdão reforça jurisprudência consolidada do Tribunal."
	default:
		return "O acórdão aplica entendimento já conhecido ao caso concreto."
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
