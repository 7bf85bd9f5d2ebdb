// Package config provides environment-backed configuration parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/fgeck/godump-s3/internal/models"
	"github.com/spf13/viper"
)

// envKeys is the full configuration surface. Every key is bound to the
// environment variable of the same name; an optional dotenv file supplies
// fallback values for keys absent from the environment.
var envKeys = []string{
	"DB_HOST",
	"DB_PORT",
	"DB_USER",
	"DB_PASS",
	"DB_NAME",
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"AWS_BUCKET_NAME",
	"AWS_BUCKET_REGION",
	"AWS_ENDPOINT_URL",
	"BACKUP_PREFIX",
	"BACKUP_DIR",
	"BACKUP_COMPRESSION",
	"BACKUP_TIMEOUT",
	"WOL_MAC_ADDRESS",
	"WOL_BROADCAST_IP",
	"WOL_POLL_URL",
	"WOL_TIMEOUT",
	"WOL_POLL_INTERVAL",
	"WOL_STABILIZE_WAIT",
	"SSH_SHUTDOWN_HOST",
	"SSH_SHUTDOWN_PORT",
	"SSH_SHUTDOWN_USER",
	"SSH_SHUTDOWN_KEY_PATH",
	"SSH_SHUTDOWN_DELAY",
	"SSH_SHUTDOWN_OS",
	"TELEGRAM_BOT_TOKEN",
	"TELEGRAM_CHAT_ID",
}

// Parser handles configuration parsing.
type Parser struct {
	v *viper.Viper
}

// NewParser creates a new configuration parser bound to the process
// environment.
func NewParser() *Parser {
	v := viper.New()
	v.SetConfigType("env")
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	return &Parser{v: v}
}

// Load reads configuration from the process environment.
func (p *Parser) Load() (*models.Config, error) {
	return p.parse()
}

// LoadDotenv reads a dotenv file as a fallback layer. Real environment
// variables take precedence over file values.
func (p *Parser) LoadDotenv(path string) (*models.Config, error) {
	p.v.SetConfigFile(path)

	if err := p.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}

	return p.parse()
}

//nolint:gocognit,gocyclo // parsing config requires checking many fields
func (p *Parser) parse() (*models.Config, error) {
	cfg := &models.Config{}

	// Parse database connection parameters (required).
	cfg.MySQL = models.MySQLConfig{
		Host:     p.v.GetString("DB_HOST"),
		Port:     p.v.GetInt("DB_PORT"),
		User:     p.v.GetString("DB_USER"),
		Password: p.expandEnv(p.v.GetString("DB_PASS")),
		Database: p.v.GetString("DB_NAME"),
	}

	if cfg.MySQL.User == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	if cfg.MySQL.Password == "" {
		return nil, fmt.Errorf("DB_PASS is required")
	}
	if cfg.MySQL.Database == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}

	// Set connection defaults.
	if cfg.MySQL.Host == "" {
		cfg.MySQL.Host = "localhost"
	}
	if cfg.MySQL.Port == 0 {
		cfg.MySQL.Port = 3306
	}

	// Parse storage credentials and location (required).
	cfg.S3 = models.S3Config{
		AccessKey: p.expandEnv(p.v.GetString("AWS_ACCESS_KEY_ID")),
		SecretKey: p.expandEnv(p.v.GetString("AWS_SECRET_ACCESS_KEY")),
		Bucket:    p.v.GetString("AWS_BUCKET_NAME"),
		Region:    p.v.GetString("AWS_BUCKET_REGION"),
		Endpoint:  p.v.GetString("AWS_ENDPOINT_URL"),
	}

	if cfg.S3.AccessKey == "" {
		return nil, fmt.Errorf("AWS_ACCESS_KEY_ID is required")
	}
	if cfg.S3.SecretKey == "" {
		return nil, fmt.Errorf("AWS_SECRET_ACCESS_KEY is required")
	}
	if cfg.S3.Bucket == "" {
		return nil, fmt.Errorf("AWS_BUCKET_NAME is required")
	}
	if cfg.S3.Region == "" {
		return nil, fmt.Errorf("AWS_BUCKET_REGION is required")
	}

	// Parse backup settings.
	cfg.Backup = models.BackupSettings{
		Prefix:      p.v.GetString("BACKUP_PREFIX"),
		Dir:         p.v.GetString("BACKUP_DIR"),
		Compression: p.v.GetString("BACKUP_COMPRESSION"),
		Timeout:     p.v.GetDuration("BACKUP_TIMEOUT"),
	}

	// Set defaults.
	if cfg.Backup.Prefix == "" {
		cfg.Backup.Prefix = "db-backups"
	}
	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = os.TempDir()
	}
	if cfg.Backup.Compression == "" {
		cfg.Backup.Compression = "none"
	}

	validCompression := map[string]bool{"none": true, "gzip": true, "zstd": true, "lz4": true}
	if !validCompression[cfg.Backup.Compression] {
		return nil, fmt.Errorf("BACKUP_COMPRESSION must be one of: none, gzip, zstd, lz4")
	}
	if cfg.Backup.Timeout < 0 {
		return nil, fmt.Errorf("BACKUP_TIMEOUT must not be negative")
	}

	// Parse optional Wake-on-LAN config.
	if p.v.GetString("WOL_MAC_ADDRESS") != "" { //nolint:nestif // config parsing with defaults
		cfg.WOL = &models.WOLConfig{
			MACAddress:    p.v.GetString("WOL_MAC_ADDRESS"),
			BroadcastIP:   p.v.GetString("WOL_BROADCAST_IP"),
			PollURL:       p.v.GetString("WOL_POLL_URL"),
			Timeout:       p.v.GetDuration("WOL_TIMEOUT"),
			PollInterval:  p.v.GetDuration("WOL_POLL_INTERVAL"),
			StabilizeWait: p.v.GetDuration("WOL_STABILIZE_WAIT"),
		}

		// Set defaults.
		if cfg.WOL.BroadcastIP == "" {
			cfg.WOL.BroadcastIP = "255.255.255.255"
		}
		if cfg.WOL.Timeout == 0 {
			cfg.WOL.Timeout = 5 * time.Minute
		}
		if cfg.WOL.PollInterval == 0 {
			cfg.WOL.PollInterval = 10 * time.Second
		}
		if cfg.WOL.StabilizeWait == 0 {
			cfg.WOL.StabilizeWait = 10 * time.Second
		}
	}

	// Parse optional SSH shutdown config.
	if p.v.GetString("SSH_SHUTDOWN_HOST") != "" { //nolint:nestif // config parsing with defaults
		cfg.SSHShutdown = &models.SSHShutdownConfig{
			Host:          p.v.GetString("SSH_SHUTDOWN_HOST"),
			Port:          p.v.GetInt("SSH_SHUTDOWN_PORT"),
			Username:      p.v.GetString("SSH_SHUTDOWN_USER"),
			KeyPath:       p.expandEnv(p.v.GetString("SSH_SHUTDOWN_KEY_PATH")),
			ShutdownDelay: p.v.GetInt("SSH_SHUTDOWN_DELAY"),
			OS:            p.v.GetString("SSH_SHUTDOWN_OS"),
		}

		if cfg.SSHShutdown.KeyPath == "" {
			return nil, fmt.Errorf("SSH_SHUTDOWN_KEY_PATH is required when SSH_SHUTDOWN_HOST is set")
		}

		// Set defaults.
		if cfg.SSHShutdown.Port == 0 {
			cfg.SSHShutdown.Port = 22
		}
		if cfg.SSHShutdown.Username == "" {
			cfg.SSHShutdown.Username = "root"
		}
		if cfg.SSHShutdown.ShutdownDelay == 0 {
			cfg.SSHShutdown.ShutdownDelay = 1
		}
		if cfg.SSHShutdown.OS == "" {
			cfg.SSHShutdown.OS = "linux"
		}

		validOS := map[string]bool{"linux": true, "windows": true}
		if !validOS[cfg.SSHShutdown.OS] {
			return nil, fmt.Errorf("SSH_SHUTDOWN_OS must be one of: linux, windows")
		}
	}

	// Parse optional Telegram config. Both values or neither.
	botToken := p.expandEnv(p.v.GetString("TELEGRAM_BOT_TOKEN"))
	chatID := p.expandEnv(p.v.GetString("TELEGRAM_CHAT_ID"))

	if botToken != "" || chatID != "" {
		if botToken == "" {
			return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required when TELEGRAM_CHAT_ID is set")
		}
		if chatID == "" {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
		}
		cfg.Telegram = &models.TelegramConfig{
			BotToken: botToken,
			ChatID:   chatID,
		}
	}

	return cfg, nil
}

// expandEnv expands environment variables in the format ${VAR} or $VAR.
func (p *Parser) expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Validate performs validation on the loaded configuration.
func Validate(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if cfg.MySQL.User == "" || cfg.MySQL.Password == "" || cfg.MySQL.Database == "" {
		return fmt.Errorf("database user, password and name are required")
	}

	if cfg.S3.AccessKey == "" || cfg.S3.SecretKey == "" {
		return fmt.Errorf("storage credentials are required")
	}

	if cfg.S3.Bucket == "" || cfg.S3.Region == "" {
		return fmt.Errorf("storage bucket and region are required")
	}

	return nil
}
