package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

func WriteJSON(w io.Writer, rulings []ruling.Ruling) error {
	if rulings == nil {
		rulings = []ruling.Ruling{}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(rulings); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}
