package cfg

type Cfg struct {
	// Storage
	DBPath     string
	SourcesDir string
	ThemesFile string

	// Application configuration
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Delivery
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// Export and observability
	ChromePath   string
	OTLPEndpoint string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// SMTPEnabled reports whether alert digests go out by email rather than
// to the log.
func (c *Cfg) SMTPEnabled() bool {
	return c.SMTPHost != ""
}
