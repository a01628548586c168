package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath     string `long:"db-path" env:"DB_PATH" description:"SQLite database file (default: $XDG_DATA_HOME/juris-comb/juris.db)"`
	SourcesDir string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing upstream source configuration files"`
	ThemesFile string `long:"themes-file" env:"THEMES_FILE" description:"YAML theme and score table (default: built-in table)"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://alertas.example.com)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of workers for background tasks and classification"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"3600" description:"Poll interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Delivery
	SMTPHost     string `long:"smtp-host" env:"SMTP_HOST" description:"SMTP server host; alerts are only logged when empty"`
	SMTPPort     int    `long:"smtp-port" env:"SMTP_PORT" default:"587" description:"SMTP server port"`
	SMTPUser     string `long:"smtp-user" env:"SMTP_USER" description:"SMTP username"`
	SMTPPassword string `long:"smtp-password" env:"SMTP_PASSWORD" description:"SMTP password"`
	SMTPFrom     string `long:"smtp-from" env:"SMTP_FROM" default:"alertas@juris-comb.local" description:"Sender address for alert emails"`

	// Export and observability
	ChromePath   string `long:"chrome-path" env:"CHROME_PATH" description:"Chromium binary used for PDF export (default: autodetect)"`
	OTLPEndpoint string `long:"otlp-endpoint" env:"OTLP_ENDPOINT" description:"OTLP/HTTP endpoint for traces (disabled when empty)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Juris Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"America/Sao_Paulo" description:"Timezone for timestamps (e.g., UTC, America/Sao_Paulo)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses args on top of the environment. It returns nil, nil when
// help was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            cmp.Or(raw.DBPath, defaultDBPath()),
		SourcesDir:        raw.SourcesDir,
		ThemesFile:        raw.ThemesFile,
		Port:              raw.Port,
		BaseUrl:           strings.TrimSuffix(raw.BaseUrl, "/"),
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		SMTPHost:          raw.SMTPHost,
		SMTPPort:          raw.SMTPPort,
		SMTPUser:          raw.SMTPUser,
		SMTPPassword:      raw.SMTPPassword,
		SMTPFrom:          raw.SMTPFrom,
		ChromePath:        raw.ChromePath,
		OTLPEndpoint:      raw.OTLPEndpoint,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func validate(cfg *Cfg) error {
	positiveFields := map[string]int{
		"worker count":       cfg.WorkerCount,
		"scheduler interval": cfg.SchedulerInterval,
		"SMTP port":          cfg.SMTPPort,
	}
	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}
	return nil
}

// loadEnvFile reads ENV_FILE, or ./.env when present. Variables
// already set in the environment win.
func loadEnvFile() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func defaultDBPath() string {
	return filepath.Join(xdg.DataHome, "juris-comb", "juris.db")
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
