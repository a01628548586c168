package source

const (
	TypeTCU  = "tcu"
	TypeFeed = "feed"
)

// Config describes one upstream, loaded from <sources-dir>/<name>.yml.
type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	Type     string         `yaml:"type"`
	URL      string         `yaml:"url"`
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled        bool `yaml:"enabled"`
	PageSize       int  `yaml:"page_size"`       // records per request (quantidade)
	Pages          int  `yaml:"pages"`           // requests per fetch
	Timeout        int  `yaml:"timeout"`         // seconds
	ExtractSummary bool `yaml:"extract_summary"` // fill empty summaries from the ruling page
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
