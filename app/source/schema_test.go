package source

import (
	"strings"
	"testing"
)

func TestDecodePage(t *testing.T) {
	payload := `[
		{"key": "ACORDAO-COMPLETO-1", "numeroAcordao": 1234, "anoAcordao": "2023",
		 "colegiado": "Plenário", "relator": "Ministro Teste", "dataSessao": "15/03/2023",
		 "titulo": "Acórdão 1234/2023", "sumario": "Licitação. Pregão eletrônico.",
		 "urlAcordao": "https://pesquisa.apps.tcu.gov.br/1", "tipo": "extra"},
		{"key": 99, "titulo": null}
	]`

	rulings, err := DecodePage([]byte(payload))
	if err != nil {
		t.Fatalf("DecodePage failed: %v", err)
	}

	if len(rulings) != 2 {
		t.Fatalf("Expected 2 rulings, got %d", len(rulings))
	}

	r := rulings[0]
	if r.Key != "ACORDAO-COMPLETO-1" {
		t.Errorf("Expected key 'ACORDAO-COMPLETO-1', got '%s'", r.Key)
	}
	if r.Number != "1234" {
		t.Errorf("Expected number '1234', got '%s'", r.Number)
	}
	if r.Year != "2023" {
		t.Errorf("Expected year '2023', got '%s'", r.Year)
	}
	if r.Panel != "Plenário" {
		t.Errorf("Expected panel 'Plenário', got '%s'", r.Panel)
	}
	if r.SessionDate != "15/03/2023" {
		t.Errorf("Expected session date '15/03/2023', got '%s'", r.SessionDate)
	}

	if rulings[1].Key != "99" {
		t.Errorf("Expected numeric key '99', got '%s'", rulings[1].Key)
	}
	if rulings[1].Title != "" {
		t.Errorf("Expected null title to decode empty, got '%s'", rulings[1].Title)
	}
}

func TestDecodePageMissingKeyKept(t *testing.T) {
	rulings, err := DecodePage([]byte(`[{"titulo": "sem chave"}]`))
	if err != nil {
		t.Fatalf("DecodePage failed: %v", err)
	}
	if len(rulings) != 1 || rulings[0].Key != "" {
		t.Errorf("Expected one record with empty key, got %v", rulings)
	}
}

func TestDecodePageInvalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{"empty", "", "payload is empty"},
		{"not json", "<html>", "decode page JSON"},
		{"object instead of array", `{"key": "1"}`, "schema validation failed"},
		{"non-object item", `["1"]`, "schema validation failed"},
		{"wrong field type", `[{"titulo": 5}]`, "schema validation failed"},
		{"trailing content", `[] []`, "trailing content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePage([]byte(tt.payload))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
