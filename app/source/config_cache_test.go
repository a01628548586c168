package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	content := `
type: tcu
url: "https://dados-abertos.apps.tcu.gov.br/api/acordao/recupera-acordaos"

settings:
  enabled: true
  page_size: 25
  pages: 2
  timeout: 15

filters:
  - field: "titulo"
    excludes:
      - "relação"
`

	err := os.WriteFile(filepath.Join(tempDir, "tcu.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 sourceConfig, got %d", configCache.GetConfigCount())
	}

	sourceConfig, err := configCache.GetConfig("tcu")
	if err != nil {
		t.Fatal(err)
	}

	if sourceConfig.Name != "tcu" {
		t.Errorf("Expected name 'tcu', got '%s'", sourceConfig.Name)
	}
	if sourceConfig.Type != TypeTCU {
		t.Errorf("Expected type 'tcu', got '%s'", sourceConfig.Type)
	}
	if sourceConfig.Settings.PageSize != 25 {
		t.Errorf("Expected page size 25, got %d", sourceConfig.Settings.PageSize)
	}
	if sourceConfig.Settings.Pages != 2 {
		t.Errorf("Expected 2 pages, got %d", sourceConfig.Settings.Pages)
	}
	if len(sourceConfig.Filters) != 1 {
		t.Errorf("Expected 1 filter, got %d", len(sourceConfig.Filters))
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://example.com/api"

settings:
  enabled: true
`

	if err := os.WriteFile(filepath.Join(tempDir, "minimal.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	sourceConfig, err := configCache.GetConfig("minimal")
	if err != nil {
		t.Fatal(err)
	}

	if sourceConfig.Type != TypeTCU {
		t.Errorf("Expected default type 'tcu', got '%s'", sourceConfig.Type)
	}
	if sourceConfig.Settings.PageSize != 50 {
		t.Errorf("Expected default page size 50, got %d", sourceConfig.Settings.PageSize)
	}
	if sourceConfig.Settings.Pages != 1 {
		t.Errorf("Expected default pages 1, got %d", sourceConfig.Settings.Pages)
	}
	if sourceConfig.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", sourceConfig.Settings.Timeout)
	}
}

func TestConfigCacheInvalidConfigs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing url",
			content: "settings:\n  enabled: true\n",
			wantErr: "source URL is required",
		},
		{
			name:    "unknown type",
			content: "type: soap\nurl: https://example.com\n",
			wantErr: "unknown source type",
		},
		{
			name:    "invalid filter field",
			content: "url: https://example.com\nfilters:\n  - field: author\n    includes: [x]\n",
			wantErr: "invalid filter field",
		},
		{
			name:    "empty filter",
			content: "url: https://example.com\nfilters:\n  - field: titulo\n",
			wantErr: "at least one include or exclude",
		},
		{
			name:    "negative page size",
			content: "url: https://example.com\nsettings:\n  page_size: -1\n",
			wantErr: "page size must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			if err := os.WriteFile(filepath.Join(tempDir, "bad.yml"), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := NewConfigCache(tempDir).LoadConfig("bad")
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "missing"))
	if err := configCache.Run(); err != nil {
		t.Fatalf("Expected no error for missing directory, got %v", err)
	}
	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 configs, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheEnabledConfigsSorted(t *testing.T) {
	configCache := NewConfigCache(t.TempDir())

	for _, name := range []string{"zeta", "alpha", "mid"} {
		err := configCache.AddConfig(&Config{
			Name:     name,
			URL:      "https://example.com/" + name,
			Settings: ConfigSettings{Enabled: name != "mid"},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	enabled := configCache.GetEnabledConfigs()
	if len(enabled) != 2 {
		t.Fatalf("Expected 2 enabled configs, got %d", len(enabled))
	}
	if enabled[0].Name != "alpha" || enabled[1].Name != "zeta" {
		t.Errorf("Expected [alpha zeta], got [%s %s]", enabled[0].Name, enabled[1].Name)
	}
}
