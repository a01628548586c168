package delivery

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "#", `\#`,
)

// Digest is one recipient's alert, rendered as markdown, HTML and the
// subject line.
type Digest struct {
	Subject  string
	Markdown string
	HTML     string
}

func BuildDigest(rulings []ruling.Ruling) (Digest, error) {
	subject := "Alerta de Jurisprudência TCU: 1 novo acórdão"
	if len(rulings) != 1 {
		subject = fmt.Sprintf("Alerta de Jurisprudência TCU: %d novos acórdãos", len(rulings))
	}

	var b strings.Builder
	b.WriteString("# Novos acórdãos do TCU\n\n")
	b.WriteString("Os acórdãos abaixo correspondem aos seus alertas cadastrados.\n\n")

	for _, r := range rulings {
		heading := cmp.Or(r.Title, fmt.Sprintf("Acórdão %s", r.Reference()))
		if r.URL != "" {
			fmt.Fprintf(&b, "## [%s](%s)\n\n", md(heading), r.URL)
		} else {
			fmt.Fprintf(&b, "## %s\n\n", md(heading))
		}

		fmt.Fprintf(&b, "- **Acórdão:** %s - %s\n", md(r.Reference()), md(cmp.Or(r.Panel, "N/A")))
		fmt.Fprintf(&b, "- **Relator:** %s\n", md(cmp.Or(r.Rapporteur, "N/A")))
		fmt.Fprintf(&b, "- **Data da sessão:** %s\n", md(cmp.Or(r.SessionDate, "N/A")))
		if len(r.Themes) > 0 {
			fmt.Fprintf(&b, "- **Temas:** %s\n", md(strings.Join(r.Themes, ", ")))
		}
		fmt.Fprintf(&b, "- **Relevância:** %d | **Impacto:** %d | **Inovação:** %d\n\n", r.Relevance, r.Impact, r.Innovation)

		if summary := strings.TrimSpace(r.Summary); summary != "" {
			fmt.Fprintf(&b, "%s\n\n", md(summary))
		}
	}

	markdown := b.String()

	var html strings.Builder
	renderer := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := renderer.Convert([]byte(markdown), &html); err != nil {
		return Digest{}, fmt.Errorf("markdown convert: %w", err)
	}

	return Digest{
		Subject:  subject,
		Markdown: markdown,
		HTML:     html.String(),
	}, nil
}

func md(s string) string {
	return markdownEscaper.Replace(s)
}
