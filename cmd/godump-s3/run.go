package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fgeck/godump-s3/internal/config"
	"github.com/fgeck/godump-s3/internal/models"
	"github.com/fgeck/godump-s3/internal/services/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the backup pipeline",
	Long: `Execute the complete backup pipeline:
1. Dump the MySQL database with mysqldump
2. Write the dump into a local artifact (compressed if configured)
3. Wake-on-LAN (if configured)
4. Upload the artifact to S3
5. SSH shutdown of the storage target (if configured)
6. Send Telegram notification (if configured)

The process exit code reports the outcome: 0 on success, mysqldump's
own exit code when the dump fails, 127 when mysqldump cannot be
started, and 1 for any other failure.`,
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return err
	}

	if err := config.Validate(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}

	log.Info().
		Str("database", cfg.MySQL.Database).
		Str("bucket", cfg.S3.Bucket).
		Str("compression", cfg.Backup.Compression).
		Msg("configuration loaded")

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Backup.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, cfg.Backup.Timeout)
		defer cancelTimeout()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("received signal, shutting down")
		cancel()
	}()

	// Run backup
	runnerSvc := runner.New(log.Logger)
	report := runnerSvc.Run(ctx, *cfg)
	if report.ExitCode != runner.ExitSuccess {
		// The scheduler needs the pipeline's exit code verbatim.
		os.Exit(report.ExitCode)
	}

	log.Info().Msg("backup completed successfully")
	return nil
}

// defaultEnvFile is read from the working directory when --env-file is
// not given and the file exists.
const defaultEnvFile = ".env"

func loadConfig() (*models.Config, error) {
	parser := config.NewParser()
	if envFile != "" {
		return parser.LoadDotenv(envFile)
	}
	if _, err := os.Stat(defaultEnvFile); err == nil {
		return parser.LoadDotenv(defaultEnvFile)
	}
	return parser.Load()
}
