package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCollectorMergesByKey(t *testing.T) {
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"key": "A", "titulo": "primeiro"}, {"key": "B"}]`)
	}))
	defer first.Close()

	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"key": "B", "titulo": "duplicado"}, {"key": "C"}, {"titulo": "sem chave"}]`)
	}))
	defer second.Close()

	configCache := NewConfigCache(t.TempDir())
	for name, url := range map[string]string{"a-first": first.URL, "b-second": second.URL} {
		err := configCache.AddConfig(&Config{Name: name, URL: url, Settings: ConfigSettings{Enabled: true}})
		if err != nil {
			t.Fatal(err)
		}
	}

	collector := NewCollector(configCache, "test")
	rulings, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(rulings) != 4 {
		t.Fatalf("Expected 4 rulings, got %d", len(rulings))
	}

	wantKeys := []string{"A", "B", "C", ""}
	for i, want := range wantKeys {
		if rulings[i].Key != want {
			t.Errorf("Expected key %q at %d, got %q", want, i, rulings[i].Key)
		}
	}
	if rulings[1].Title != "" {
		t.Errorf("Expected first occurrence of B to win, got title %q", rulings[1].Title)
	}
}

func TestCollectorAbortsOnSourceError(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"key": "A"}]`)
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	configCache := NewConfigCache(t.TempDir())
	_ = configCache.AddConfig(&Config{Name: "good", URL: good.URL, Settings: ConfigSettings{Enabled: true}})
	_ = configCache.AddConfig(&Config{Name: "bad", URL: bad.URL, Settings: ConfigSettings{Enabled: true}})

	_, err := NewCollector(configCache, "test").Collect(context.Background())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestCollectorNoSources(t *testing.T) {
	_, err := NewCollector(NewConfigCache(t.TempDir()), "test").Collect(context.Background())
	if !errors.Is(err, ErrNoSources) {
		t.Errorf("Expected ErrNoSources, got %v", err)
	}
}

func TestCollectorBackfillsSummary(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[{"key": "A", "urlAcordao": "%s/acordao/A"}, {"key": "B", "sumario": "já preenchido"}]`, server.URL)
	})
	mux.HandleFunc("/acordao/A", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Acórdão A</title></head><body><article>
			<p>O Tribunal de Contas da União julgou irregular a contratação direta sem licitação,
			determinando ao órgão que promova a anulação do contrato e aplique as sanções cabíveis
			aos responsáveis pelo sobrepreço identificado na auditoria.</p>
			<p>Os ministros acordaram, por unanimidade, em aplicar multa aos gestores envolvidos
			e em encaminhar cópia da deliberação ao Ministério Público junto ao TCU.</p>
		</article></body></html>`)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	configCache := NewConfigCache(t.TempDir())
	err := configCache.AddConfig(&Config{
		Name:     "tcu",
		URL:      server.URL + "/api",
		Settings: ConfigSettings{Enabled: true, ExtractSummary: true},
	})
	if err != nil {
		t.Fatal(err)
	}

	rulings, err := NewCollector(configCache, "test").Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if rulings[0].Summary == "" {
		t.Error("Expected summary of A to be backfilled")
	}
	if rulings[1].Summary != "já preenchido" {
		t.Errorf("Expected summary of B to be untouched, got %q", rulings[1].Summary)
	}
}
