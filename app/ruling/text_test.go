package ruling

import (
	"reflect"
	"testing"
)

func TestAnalysisText(t *testing.T) {
	got := AnalysisText("LICITAÇÃO Pública", "Sumário do CONVÊNIO")
	expected := "licitação pública sumário do convênio"
	if got != expected {
		t.Errorf("Expected '%s', got '%s'", expected, got)
	}
}

func TestNormalize_ComposesDecomposedAccents(t *testing.T) {
	// "licitação" written with combining diacritics
	decomposed := "licitac\u0327a\u0303o"
	if Normalize(decomposed) != "licitação" {
		t.Errorf("Expected decomposed input to normalize to 'licitação', got '%s'", Normalize(decomposed))
	}
}

func TestContains(t *testing.T) {
	text := AnalysisText("Tomada de Contas Especial", "Apurou-se dano ao erário")

	tests := []struct {
		needle   string
		expected bool
	}{
		{"TCE", false},
		{"Dano ao Erário", true},
		{"tomada de contas especial", true},
		{"   ", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := Contains(text, tt.needle); got != tt.expected {
			t.Errorf("Contains(%q): expected %v, got %v", tt.needle, tt.expected, got)
		}
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("A licitação de TI e o pregão: 2023, x!")
	expected := []string{"licitação", "ti", "pregão", "2023"}

	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("Expected %v, got %v", expected, tokens)
	}
}

func TestTokenize_OnlyStopwords(t *testing.T) {
	if tokens := Tokenize("de que para com"); len(tokens) != 0 {
		t.Errorf("Expected no tokens, got %v", tokens)
	}
}

func TestIsStopword(t *testing.T) {
	if !IsStopword("de") {
		t.Error("Expected \"de\" to be a stopword")
	}
	if IsStopword("licitação") {
		t.Error("Expected \"licitação\" not to be a stopword")
	}
}
