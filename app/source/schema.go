package source

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

//go:embed page.schema.json
var pageSchemaJSON string

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// flexString accepts a JSON string, number or null. The upstream is not
// consistent about quoting numeroAcordao and anoAcordao.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = flexString(n.String())
	return nil
}

type pageRecord struct {
	Key           flexString `json:"key"`
	NumeroAcordao flexString `json:"numeroAcordao"`
	AnoAcordao    flexString `json:"anoAcordao"`
	Colegiado     flexString `json:"colegiado"`
	Relator       flexString `json:"relator"`
	DataSessao    flexString `json:"dataSessao"`
	Titulo        flexString `json:"titulo"`
	Sumario       flexString `json:"sumario"`
	URLAcordao    flexString `json:"urlAcordao"`
}

func (p pageRecord) toRuling() ruling.Ruling {
	return ruling.Ruling{
		Key:         strings.TrimSpace(string(p.Key)),
		Number:      strings.TrimSpace(string(p.NumeroAcordao)),
		Year:        strings.TrimSpace(string(p.AnoAcordao)),
		Panel:       string(p.Colegiado),
		Rapporteur:  string(p.Relator),
		SessionDate: strings.TrimSpace(string(p.DataSessao)),
		Title:       string(p.Titulo),
		Summary:     string(p.Sumario),
		URL:         strings.TrimSpace(string(p.URLAcordao)),
	}
}

// DecodePage validates one upstream page against the embedded schema and
// returns its records in page order. Records without a key are kept; the
// poll cycle counts them as classification skips.
func DecodePage(payload []byte) ([]ruling.Ruling, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode page JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize page JSON: %w", err)
	}

	var records []pageRecord
	if err := json.Unmarshal(normalized, &records); err != nil {
		return nil, fmt.Errorf("unmarshal page: %w", err)
	}

	rulings := make([]ruling.Ruling, 0, len(records))
	for _, rec := range records {
		rulings = append(rulings, rec.toRuling())
	}
	return rulings, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("page.schema.json", strings.NewReader(pageSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("page.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}
