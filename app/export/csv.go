package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

var csvHeader = []string{
	"numeroAcordao", "anoAcordao", "colegiado", "relator",
	"dataSessao", "titulo", "sumario", "urlAcordao",
	"relevancia", "impacto", "inovacao", "temas", "subtemas",
}

// utf8BOM keeps spreadsheet tools from guessing a legacy code page.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func WriteCSV(w io.Writer, rulings []ruling.Ruling) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, r := range rulings {
		record := []string{
			r.Number, r.Year, r.Panel, r.Rapporteur,
			r.SessionDate, r.Title, r.Summary, r.URL,
			strconv.Itoa(r.Relevance), strconv.Itoa(r.Impact), strconv.Itoa(r.Innovation),
			strings.Join(r.Themes, "; "), strings.Join(r.Subthemes, "; "),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write CSV record %s: %w", r.Key, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
