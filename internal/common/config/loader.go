package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Enable ENV override like MAIL_SMTP_PASSWORD
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideFromEnv(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideFromEnv(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// overrideFromEnv fills secrets and runner-provided values that are
// usually absent from the YAML file.
func overrideFromEnv(cfg *Config) {
	if cfg.Event.Path == "" {
		cfg.Event.Path = os.Getenv("GITHUB_EVENT_PATH")
	}
	if cfg.Event.RunURL == "" {
		if server, run := os.Getenv("GITHUB_SERVER_URL"), os.Getenv("GITHUB_RUN_ID"); server != "" && run != "" {
			cfg.Event.RunURL = fmt.Sprintf("%s/%s/actions/runs/%s", server, os.Getenv("GITHUB_REPOSITORY"), run)
		}
	}

	if cfg.Mail.LabEmail == "" {
		cfg.Mail.LabEmail = strings.TrimSpace(os.Getenv("LAB_EMAIL"))
	}
	if val := os.Getenv("MAIL_SUBJECT"); val != "" {
		cfg.Mail.Subject = val
	}
	if val := os.Getenv("MAIL_BODY"); val != "" {
		cfg.Mail.Body = val
	}

	if cfg.Mail.SMTP.Host == "" {
		cfg.Mail.SMTP.Host = strings.TrimSpace(os.Getenv("SMTP_HOST"))
	}
	if cfg.Mail.SMTP.Username == "" {
		cfg.Mail.SMTP.Username = strings.TrimSpace(os.Getenv("SMTP_USER"))
	}
	if cfg.Mail.SMTP.Password == "" {
		cfg.Mail.SMTP.Password = strings.TrimSpace(os.Getenv("SMTP_PASSWORD"))
	}
	if cfg.Mail.SMTP.From == "" {
		cfg.Mail.SMTP.From = strings.TrimSpace(os.Getenv("SMTP_FROM"))
	}
	if cfg.Mail.SMTP.From == "" {
		cfg.Mail.SMTP.From = cfg.Mail.SMTP.Username
	}

	if cfg.Dropbox.AccessToken == "" {
		cfg.Dropbox.AccessToken = strings.TrimSpace(os.Getenv("DROPBOX_ACCESS_TOKEN"))
	}
	if cfg.Dropbox.Folder == "" {
		cfg.Dropbox.Folder = strings.TrimSpace(os.Getenv("DROPBOX_FOLDER"))
	}
	if cfg.Dropbox.TeamMemberID == "" {
		cfg.Dropbox.TeamMemberID = strings.TrimSpace(os.Getenv("DROPBOX_TEAM_MEMBER_ID"))
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "complaint-pipeline"
	}

	if cfg.Ledger.Path == "" {
		cfg.Ledger.Path = filepath.Join("data", "complaints_metadata.csv")
	}

	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = "out"
	}

	if cfg.Mail.Provider == "" {
		cfg.Mail.Provider = "smtp"
	}
	if cfg.Mail.Body == "" {
		cfg.Mail.Body = "Please find attached the generated complaint PDF."
	}
	if cfg.Mail.SMTP.Port == 0 {
		cfg.Mail.SMTP.Port = 587
	}
	if !cfg.Mail.SMTP.UseSSL {
		cfg.Mail.SMTP.UseStartTLS = true
	}

	if cfg.Metrics.JobName == "" {
		cfg.Metrics.JobName = "complaint_pipeline"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if cfg.Ledger.Path == "" {
		return fmt.Errorf("ledger.path is required")
	}

	switch cfg.Mail.Provider {
	case "smtp", "ses", "none":
	default:
		return fmt.Errorf("mail.provider must be one of smtp, ses, none")
	}

	if cfg.Dropbox.Enabled && cfg.Dropbox.AccessToken == "" {
		return fmt.Errorf("dropbox.access_token is required when dropbox is enabled")
	}
	if cfg.Dropbox.Enabled && cfg.Dropbox.Folder == "" {
		return fmt.Errorf("dropbox.folder is required when dropbox is enabled")
	}

	return nil
}
