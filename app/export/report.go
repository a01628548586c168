package export

import (
	"cmp"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

// RulingsPerPage is how many rulings the PDF report prints before forcing
// a page break.
const RulingsPerPage = 3

const reportTitle = "Acórdãos do TCU - Relatório"

var (
	markdownEscaper = strings.NewReplacer(
		`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
		"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "#", `\#`, "|", `\|`,
	)
	rulingHeading = regexp.MustCompile(`<h2>`)
)

// BuildReportMarkdown renders the report body, one "##" section per ruling.
func BuildReportMarkdown(rulings []ruling.Ruling) string {
	var b strings.Builder

	b.WriteString("# " + reportTitle + "\n\n")

	for _, r := range rulings {
		fmt.Fprintf(&b, "## ACÓRDÃO Nº %s/%s - %s\n\n",
			md(cmp.Or(r.Number, "N/A")), md(cmp.Or(r.Year, "N/A")), md(cmp.Or(r.Panel, "N/A")))

		fmt.Fprintf(&b, "**Relator:** %s | **Data:** %s\n\n",
			md(cmp.Or(r.Rapporteur, "N/A")), md(cmp.Or(r.SessionDate, "N/A")))

		if len(r.Themes) > 0 {
			fmt.Fprintf(&b, "**Temas:** %s\n\n", md(strings.Join(r.Themes, ", ")))
		}
		if len(r.Subthemes) > 0 {
			fmt.Fprintf(&b, "**Subtemas:** %s\n\n", md(strings.Join(r.Subthemes, ", ")))
		}

		fmt.Fprintf(&b, "**Relevância:** %d | **Impacto:** %d | **Inovação:** %d\n\n",
			r.Relevance, r.Impact, r.Innovation)

		fmt.Fprintf(&b, "**Sumário:**\n\n%s\n\n", md(cmp.Or(r.Summary, "Sumário não disponível")))

		if r.URL != "" {
			fmt.Fprintf(&b, "**URL:** <%s>\n\n", r.URL)
		} else {
			b.WriteString("**URL:** Link não disponível\n\n")
		}
	}

	return b.String()
}

// BuildReportHTML converts the markdown report to a standalone HTML
// document ready for printing.
func BuildReportHTML(rulings []ruling.Ruling) (string, error) {
	var content strings.Builder
	mdRenderer := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := mdRenderer.Convert([]byte(BuildReportMarkdown(rulings)), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}

	return "<!DOCTYPE html><html><head><meta charset=\"UTF-8\"><title>Acórdãos do TCU</title>" +
		"<style>" +
		"body{font-family:Arial,sans-serif;margin:20px;} " +
		"h1{text-align:center;margin-bottom:30px;} " +
		"h2{font-size:16px;margin:24px 0 10px;padding-top:12px;border-top:1px solid #ccc;} " +
		"p{font-size:14px;color:#333;} a{color:#0066cc;} " +
		`h2[data-page-break-before="true"]{break-before:page;page-break-before:always;border-top:0;} ` +
		"@media print{ @page{size:A4;margin:12mm;} }" +
		"</style></head><body>" +
		applyPageBreaks(content.String()) +
		"</body></html>", nil
}

// applyPageBreaks starts a new page before every RulingsPerPage-th ruling
// section except the first.
func applyPageBreaks(contentHTML string) string {
	n := 0
	return rulingHeading.ReplaceAllStringFunc(contentHTML, func(match string) string {
		n++
		if n > 1 && (n-1)%RulingsPerPage == 0 {
			return `<h2 data-page-break-before="true">`
		}
		return match
	})
}

func md(s string) string {
	return markdownEscaper.Replace(s)
}
