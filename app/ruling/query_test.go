package ruling

import (
	"testing"
	"time"
)

func sampleRulings() []Ruling {
	return []Ruling{
		{Key: "1", Panel: "Plenário", Rapporteur: "Ministro A", Year: "2023", SessionDate: "10/05/2023", Summary: "Teste de licitação"},
		{Key: "2", Panel: "Primeira Câmara", Rapporteur: "Ministro B", Year: "2022", SessionDate: "01/02/2022", Summary: "Teste de aposentadoria"},
		{Key: "3", Panel: "Plenário", Rapporteur: "Ministro A", Year: "2023", SessionDate: "invalid", Summary: "Teste de relação", Title: "Acórdão de relação"},
	}
}

func TestQuery_Panel(t *testing.T) {
	result := Query{Panel: "Plenário"}.Apply(sampleRulings())
	if len(result) != 2 {
		t.Errorf("Expected 2 rulings, got %d", len(result))
	}
}

func TestQuery_Rapporteur(t *testing.T) {
	result := Query{Rapporteur: "Ministro B"}.Apply(sampleRulings())
	if len(result) != 1 {
		t.Errorf("Expected 1 ruling, got %d", len(result))
	}
}

func TestQuery_ExcludeTerms(t *testing.T) {
	result := Query{ExcludeTerms: []string{"APOSENTADORIA"}}.Apply(sampleRulings())
	if len(result) != 2 {
		t.Errorf("Expected 2 rulings, got %d", len(result))
	}
}

func TestQuery_ExcludeListings(t *testing.T) {
	result := Query{ExcludeListings: true}.Apply(sampleRulings())
	if len(result) != 2 {
		t.Errorf("Expected 2 rulings, got %d", len(result))
	}
}

func TestQuery_Combined(t *testing.T) {
	result := Query{Panel: "Plenário", ExcludeListings: true}.Apply(sampleRulings())
	if len(result) != 1 {
		t.Fatalf("Expected 1 ruling, got %d", len(result))
	}
	if result[0].Summary != "Teste de licitação" {
		t.Errorf("Expected 'Teste de licitação', got '%s'", result[0].Summary)
	}
}

func TestQuery_Period(t *testing.T) {
	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC)

	result := Query{From: &from, To: &to}.Apply(sampleRulings())
	if len(result) != 1 {
		t.Fatalf("Expected 1 ruling, got %d", len(result))
	}
	if result[0].Key != "1" {
		t.Errorf("Expected ruling 1, got %s", result[0].Key)
	}
}

func TestQuery_Text(t *testing.T) {
	result := Query{Text: "primeira câmara"}.Apply(sampleRulings())
	if len(result) != 1 || result[0].Key != "2" {
		t.Errorf("Expected only ruling 2, got %v", result)
	}
}

func TestQuery_Empty(t *testing.T) {
	result := Query{}.Apply(sampleRulings())
	if len(result) != 3 {
		t.Errorf("Expected all 3 rulings, got %d", len(result))
	}
}

func TestRuling_Reference(t *testing.T) {
	r := Ruling{Number: "1234", Year: "2023"}
	if r.Reference() != "1234/2023" {
		t.Errorf("Expected '1234/2023', got '%s'", r.Reference())
	}
}
