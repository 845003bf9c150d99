package config

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Event   EventConfig   `mapstructure:"event"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Report  ReportConfig  `mapstructure:"report"`
	Mail    MailConfig    `mapstructure:"mail"`
	Dropbox DropboxConfig `mapstructure:"dropbox"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// EventConfig locates the repository_dispatch event payload. Path defaults
// to the GITHUB_EVENT_PATH environment variable set by the runner.
type EventConfig struct {
	Path   string `mapstructure:"path"`
	RunURL string `mapstructure:"run_url"`
}

// LedgerConfig holds settings for the append-only complaint ledger.
// LockPath enables the optional cross-process mutual-exclusion scope
// around allocate-then-append; empty disables it.
type LedgerConfig struct {
	Path     string `mapstructure:"path"`
	LockPath string `mapstructure:"lock_path"`
}

// ReportConfig holds settings for the rendered PDF artifact.
type ReportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// MailConfig selects and configures the outbound mail provider.
type MailConfig struct {
	Provider string `mapstructure:"provider"` // "smtp" or "ses"
	LabEmail string `mapstructure:"lab_email"`
	Subject  string `mapstructure:"subject"`
	Body     string `mapstructure:"body"`

	SMTP SMTPConfig `mapstructure:"smtp"`
	SES  SESConfig  `mapstructure:"ses"`
}

type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	From        string `mapstructure:"from"`
	UseSSL      bool   `mapstructure:"use_ssl"`
	UseStartTLS bool   `mapstructure:"use_starttls"`
}

type SESConfig struct {
	Region    string `mapstructure:"region"`
	FromEmail string `mapstructure:"from_email"`
}

type DropboxConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	AccessToken  string `mapstructure:"access_token"`
	Folder       string `mapstructure:"folder"`
	TeamMemberID string `mapstructure:"team_member_id"`
}

// MetricsConfig holds pushgateway settings. The pipeline is a one-shot
// job, so metrics are pushed rather than scraped. Empty URL disables it.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	JobName        string `mapstructure:"job_name"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
