package export

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
	FormatRSS  Format = "rss"
)

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatCSV, FormatJSON, FormatPDF, FormatRSS:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatRSS:
		return "application/rss+xml; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func (f Format) Extension() string {
	if f == FormatRSS {
		return ".xml"
	}
	return "." + string(f)
}
