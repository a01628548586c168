package export

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

func WriteRSS(w io.Writer, channel Channel, rulings []ruling.Ruling) error {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	writeElement(&buf, "title", cmp.Or(channel.Title, "Acórdãos do TCU"), 4)
	writeElement(&buf, "link", channel.Link, 4)
	writeElement(&buf, "description", cmp.Or(channel.Description, "Acórdãos classificados"), 4)

	if channel.SelfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(channel.SelfLink)))
	}

	lastBuildDate := time.Now().In(time.Local)
	if len(rulings) > 0 {
		if t, ok := rulings[0].SessionTime(); ok {
			lastBuildDate = t
		}
	}

	writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	writeElement(&buf, "generator", channel.Generator, 4)
	writeElement(&buf, "language", "pt-BR", 4)

	for _, r := range rulings {
		writeItem(&buf, r)
	}

	buf.WriteString("  </channel>\n</rss>")

	_, err := w.Write(buf.Bytes())
	return err
}

func writeItem(buf *bytes.Buffer, r ruling.Ruling) {
	buf.WriteString("    <item>\n")

	if r.Key != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", isURL(r.Key)))
		xml.EscapeText(buf, []byte(r.Key))
		buf.WriteString("</guid>\n")
	}

	title := r.Title
	if title == "" && r.Number != "" {
		title = fmt.Sprintf("Acórdão %s - %s", r.Reference(), r.Panel)
	}
	writeElement(buf, "title", title, 6)
	writeElement(buf, "link", r.URL, 6)
	writeElement(buf, "description", cmp.Or(r.Summary, "Sumário não disponível"), 6)

	if t, ok := r.SessionTime(); ok {
		writeElement(buf, "pubDate", t.Format(time.RFC1123Z), 6)
	}

	writeElement(buf, "author", r.Rapporteur, 6)

	for _, category := range append(append([]string{}, r.Themes...), r.Subthemes...) {
		if strings.TrimSpace(category) != "" {
			writeElement(buf, "category", category, 6)
		}
	}

	buf.WriteString("    </item>\n")
}

func writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
