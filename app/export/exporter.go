package export

import (
	"context"
	"fmt"
	"io"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

// PDFRenderer turns a complete HTML document into PDF bytes.
type PDFRenderer interface {
	Render(ctx context.Context, htmlDoc string) ([]byte, error)
}

var _ PDFRenderer = (*ChromiumPDFRenderer)(nil)

// Channel describes the RSS channel the rss format writes.
type Channel struct {
	Title       string
	Link        string
	SelfLink    string
	Description string
	Generator   string
}

type Exporter struct {
	renderer PDFRenderer
	channel  Channel
}

func NewExporter(renderer PDFRenderer, channel Channel) *Exporter {
	return &Exporter{
		renderer: renderer,
		channel:  channel,
	}
}

func (e *Exporter) Export(ctx context.Context, w io.Writer, format Format, rulings []ruling.Ruling) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rulings)
	case FormatJSON:
		return WriteJSON(w, rulings)
	case FormatRSS:
		return WriteRSS(w, e.channel, rulings)
	case FormatPDF:
		if e.renderer == nil {
			return fmt.Errorf("pdf export is not configured")
		}
		htmlDoc, err := BuildReportHTML(rulings)
		if err != nil {
			return err
		}
		pdf, err := e.renderer.Render(ctx, htmlDoc)
		if err != nil {
			return fmt.Errorf("render pdf: %w", err)
		}
		_, err = w.Write(pdf)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
