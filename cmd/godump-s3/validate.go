package main

import (
	"fmt"
	"os"

	"github.com/fgeck/godump-s3/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long:  `Validate the configuration without executing any backup operations.`,
	RunE:  validateConfig,
}

func validateConfig(cmd *cobra.Command, args []string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			log.Error().Str("file", envFile).Msg("env file not found")
			return fmt.Errorf("env file not found: %s", envFile)
		}
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("failed to parse config")
		return err
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Error().Err(err).Msg("configuration validation failed")
		return err
	}

	// Print configuration summary; secrets stay redacted.
	fmt.Println("Configuration is valid!")
	fmt.Println()
	fmt.Println("MySQL:")
	fmt.Printf("  Host: %s\n", cfg.MySQL.Host)
	fmt.Printf("  Port: %d\n", cfg.MySQL.Port)
	fmt.Printf("  User: %s\n", cfg.MySQL.User)
	fmt.Printf("  Password: (configured)\n")
	fmt.Printf("  Database: %s\n", cfg.MySQL.Database)
	fmt.Println()
	fmt.Println("S3:")
	fmt.Printf("  Bucket: %s\n", cfg.S3.Bucket)
	fmt.Printf("  Region: %s\n", cfg.S3.Region)
	if cfg.S3.Endpoint != "" {
		fmt.Printf("  Endpoint: %s\n", cfg.S3.Endpoint)
	}
	fmt.Printf("  Access Key: (configured)\n")
	fmt.Println()
	fmt.Println("Backup:")
	fmt.Printf("  Prefix: %s\n", cfg.Backup.Prefix)
	fmt.Printf("  Directory: %s\n", cfg.Backup.Dir)
	fmt.Printf("  Compression: %s\n", cfg.Backup.Compression)
	if cfg.Backup.Timeout > 0 {
		fmt.Printf("  Timeout: %s\n", cfg.Backup.Timeout)
	}
	fmt.Println()
	fmt.Println("Optional Features:")
	fmt.Printf("  Wake-on-LAN: %v\n", cfg.WOL != nil)
	fmt.Printf("  SSH Shutdown: %v\n", cfg.SSHShutdown != nil)
	fmt.Printf("  Telegram: %v\n", cfg.Telegram != nil)

	if cfg.WOL != nil {
		fmt.Println()
		fmt.Println("WOL Configuration:")
		fmt.Printf("  MAC Address: %s\n", cfg.WOL.MACAddress)
		fmt.Printf("  Broadcast IP: %s\n", cfg.WOL.BroadcastIP)
		if cfg.WOL.PollURL != "" {
			fmt.Printf("  Poll URL: %s\n", cfg.WOL.PollURL)
		}
		fmt.Printf("  Timeout: %s\n", cfg.WOL.Timeout)
	}

	if cfg.SSHShutdown != nil {
		fmt.Println()
		fmt.Println("SSH Shutdown Configuration:")
		fmt.Printf("  Host: %s\n", cfg.SSHShutdown.Host)
		fmt.Printf("  Port: %d\n", cfg.SSHShutdown.Port)
		fmt.Printf("  Username: %s\n", cfg.SSHShutdown.Username)
		fmt.Printf("  Key Path: %s\n", cfg.SSHShutdown.KeyPath)
		fmt.Printf("  OS: %s\n", cfg.SSHShutdown.OS)
		fmt.Printf("  Shutdown Delay: %d minute(s)\n", cfg.SSHShutdown.ShutdownDelay)
	}

	if cfg.Telegram != nil {
		fmt.Println()
		fmt.Println("Telegram Configuration:")
		fmt.Printf("  Chat ID: %s\n", cfg.Telegram.ChatID)
		fmt.Printf("  Bot Token: (configured)\n")
	}

	return nil
}
