// Package runner orchestrates the backup pipeline.
package runner

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fgeck/godump-s3/internal/format"
	"github.com/fgeck/godump-s3/internal/models"
	"github.com/fgeck/godump-s3/internal/services/artifact"
	"github.com/fgeck/godump-s3/internal/services/compress"
	"github.com/fgeck/godump-s3/internal/services/mysql"
	"github.com/fgeck/godump-s3/internal/services/s3"
	"github.com/fgeck/godump-s3/internal/services/ssh"
	"github.com/fgeck/godump-s3/internal/services/telegram"
	"github.com/fgeck/godump-s3/internal/services/wol"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Exit codes surfaced at the process boundary. A failed dump propagates
// the dump utility's own exit code instead.
const (
	ExitSuccess      = 0
	ExitFailure      = 1   // upload and artifact failures share the generic code
	ExitSpawnFailure = 127 // dump utility could not be started
)

// Step names used in logs and notifications.
const (
	stepArtifact = "artifact"
	stepDump     = "dump"
	stepWake     = "wake"
	stepUpload   = "upload"
)

// Service defines the interface for the backup pipeline.
type Service interface {
	Run(ctx context.Context, cfg models.Config) *models.PipelineReport
}

// Impl implements the runner Service interface.
type Impl struct {
	mysqlSvc    mysql.Service
	s3Svc       s3.Service
	wolSvc      wol.Service
	sshSvc      ssh.Service
	telegramSvc telegram.Service
	logger      zerolog.Logger
	newStore    func(dir string) artifact.Store
	nowFunc     func() time.Time
}

// New creates a new runner service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		mysqlSvc:    mysql.New(logger),
		s3Svc:       s3.New(logger),
		wolSvc:      wol.New(logger),
		sshSvc:      ssh.New(logger),
		telegramSvc: telegram.New(logger),
		logger:      logger,
		newStore: func(dir string) artifact.Store {
			return artifact.New(dir, logger)
		},
		nowFunc: time.Now,
	}
}

// NewWithServices creates a new runner service with custom collaborators
// (for testing). nowFunc feeds artifact naming, so a fixed clock yields a
// deterministic object key.
func NewWithServices(
	logger zerolog.Logger,
	mysqlSvc mysql.Service,
	s3Svc s3.Service,
	wolSvc wol.Service,
	sshSvc ssh.Service,
	telegramSvc telegram.Service,
	store artifact.Store,
	nowFunc func() time.Time,
) *Impl {
	return &Impl{
		mysqlSvc:    mysqlSvc,
		s3Svc:       s3Svc,
		wolSvc:      wolSvc,
		sshSvc:      sshSvc,
		telegramSvc: telegramSvc,
		logger:      logger,
		newStore: func(string) artifact.Store {
			return store
		},
		nowFunc: nowFunc,
	}
}

// Run executes one backup: dump the database into a transient local
// artifact, upload it, report. The artifact is removed on every exit path,
// and the upload never starts unless the dump exited 0.
//
//nolint:gocognit,gocyclo // backup pipeline has multiple steps by design
func (s *Impl) Run(ctx context.Context, cfg models.Config) *models.PipelineReport {
	startTime := time.Now()
	report := &models.PipelineReport{RunID: uuid.NewString()}
	logger := s.logger.With().Str("run_id", report.RunID).Logger()

	logger.Info().
		Str("database", cfg.MySQL.Database).
		Str("bucket", cfg.S3.Bucket).
		Msg("starting backup run")

	defer func() {
		report.Duration = time.Since(startTime)
		if cfg.Telegram != nil {
			// Notify even when the run was cancelled or timed out.
			s.sendNotification(context.WithoutCancel(ctx), cfg, startTime, report)
		}
	}()

	codec, err := compress.ForName(cfg.Backup.Compression)
	if err != nil {
		return s.fail(report, logger, stepArtifact, ExitFailure, err)
	}

	// The artifact name is fixed before anything touches disk so cleanup
	// covers every exit path, including one where the file never appears.
	name := artifact.Filename(s.nowFunc(), codec.Extension())
	key := artifact.ObjectKey(cfg.Backup.Prefix, name)
	report.ArtifactName = name

	store := s.newStore(cfg.Backup.Dir)
	defer func() {
		if err := store.Remove(name); err != nil {
			logger.Warn().Err(err).Msg("artifact cleanup failed")
		}
	}()

	// Step 1: MySQL dump
	sink, err := store.Create(name)
	if err != nil {
		return s.fail(report, logger, stepArtifact, ExitFailure, err)
	}

	encoder, err := codec.NewWriter(sink)
	if err != nil {
		_ = sink.Close()
		return s.fail(report, logger, stepArtifact, ExitFailure, err)
	}

	dumpResult, err := s.mysqlSvc.Dump(ctx, cfg.MySQL, encoder)

	encoderErr := encoder.Close()
	sinkErr := sink.Close()

	if err != nil {
		return s.fail(report, logger, stepDump, ExitSpawnFailure, fmt.Errorf("dump failed: %w", err))
	}
	if dumpResult.Error != nil {
		return s.fail(report, logger, stepDump, ExitSpawnFailure, fmt.Errorf("dump failed: %w", dumpResult.Error))
	}
	if dumpResult.ExitCode != 0 {
		dumpErr := fmt.Errorf("mysqldump exited with code %d", dumpResult.ExitCode)
		if msg := strings.TrimSpace(dumpResult.Stderr); msg != "" {
			dumpErr = fmt.Errorf("mysqldump exited with code %d: %s", dumpResult.ExitCode, msg)
		}
		return s.fail(report, logger, stepDump, dumpResult.ExitCode, dumpErr)
	}
	if encoderErr != nil {
		return s.fail(report, logger, stepArtifact, ExitFailure, fmt.Errorf("flushing artifact: %w", encoderErr))
	}
	if sinkErr != nil {
		return s.fail(report, logger, stepArtifact, ExitFailure, fmt.Errorf("closing artifact: %w", sinkErr))
	}

	// Step 2: Wake-on-LAN (if configured)
	if cfg.WOL != nil {
		if err := s.runWake(ctx, cfg.WOL, logger); err != nil {
			return s.fail(report, logger, stepWake, ExitFailure, err)
		}
	}

	// Step 3: Upload
	size, err := store.Size(name)
	if err != nil {
		return s.fail(report, logger, stepArtifact, ExitFailure, err)
	}
	report.SizeBytes = size

	body, err := store.Open(name)
	if err != nil {
		return s.fail(report, logger, stepArtifact, ExitFailure, err)
	}
	defer func() { _ = body.Close() }()

	metadata := map[string]string{
		"run-id":   report.RunID,
		"database": cfg.MySQL.Database,
	}

	uploadResult, err := s.s3Svc.Upload(ctx, cfg.S3, key, body, metadata)
	if err != nil {
		return s.fail(report, logger, stepUpload, ExitFailure, err)
	}
	if uploadResult.Error != nil {
		return s.fail(report, logger, stepUpload, ExitFailure, uploadResult.Error)
	}
	report.Key = uploadResult.Key
	report.ExitCode = ExitSuccess

	logger.Info().
		Str("artifact", name).
		Str("size", humanSize(size)).
		Str("bucket", cfg.S3.Bucket).
		Str("key", report.Key).
		Str("elapsed", humanDuration(time.Since(startTime))).
		Msg("backup uploaded successfully")

	// Step 4: SSH shutdown (if configured). The upload already succeeded,
	// so a failure here never changes the exit code.
	if cfg.SSHShutdown != nil {
		if err := s.runShutdown(ctx, cfg.SSHShutdown, logger); err != nil {
			logger.Warn().Err(err).Msg("storage target shutdown failed")
		}
	}

	return report
}

func (s *Impl) fail(report *models.PipelineReport, logger zerolog.Logger, step string, exitCode int, err error) *models.PipelineReport {
	report.FailedStep = step
	report.ExitCode = exitCode
	report.Err = err

	logger.Error().
		Err(err).
		Str("step", step).
		Int("exit_code", exitCode).
		Msg("backup run failed")

	return report
}

func (s *Impl) runWake(ctx context.Context, cfg *models.WOLConfig, logger zerolog.Logger) error {
	logger.Info().
		Str("mac", cfg.MACAddress).
		Str("target", cfg.PollURL).
		Msg("waking storage target")

	result, err := s.wolSvc.Wake(ctx, *cfg)
	if err != nil {
		return fmt.Errorf("wake failed: %w", err)
	}
	if result.Error != nil {
		return fmt.Errorf("wake failed: %w", result.Error)
	}
	if !result.TargetReady && cfg.PollURL != "" {
		return fmt.Errorf("storage target did not become ready")
	}

	logger.Info().
		Bool("packet_sent", result.PacketSent).
		Bool("target_ready", result.TargetReady).
		Dur("wait_duration", result.WaitDuration).
		Msg("storage target awake")

	return nil
}

func (s *Impl) runShutdown(ctx context.Context, cfg *models.SSHShutdownConfig, logger zerolog.Logger) error {
	logger.Info().
		Str("host", cfg.Host).
		Int("delay", cfg.ShutdownDelay).
		Msg("shutting storage target down")

	// Load the private key if only a path was configured.
	if cfg.PrivateKey == nil && cfg.KeyPath != "" {
		key, err := os.ReadFile(cfg.KeyPath)
		if err != nil {
			return fmt.Errorf("failed to read SSH key: %w", err)
		}
		cfg.PrivateKey = key
	}

	result, err := s.sshSvc.Shutdown(ctx, *cfg)
	if err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if result.Error != nil {
		// The connection may drop while the command is acknowledged.
		if !result.CommandRun {
			return fmt.Errorf("shutdown failed: %w", result.Error)
		}
		logger.Warn().
			Err(result.Error).
			Str("output", result.Output).
			Msg("shutdown command returned error (may be expected)")
	}

	logger.Info().
		Bool("command_run", result.CommandRun).
		Msg("storage target shutdown requested")

	return nil
}

func (s *Impl) sendNotification(ctx context.Context, cfg models.Config, startTime time.Time, report *models.PipelineReport) {
	msg := models.TelegramMessage{
		Success:   report.Succeeded(),
		Database:  cfg.MySQL.Database,
		Bucket:    cfg.S3.Bucket,
		StartTime: startTime,
		Duration:  report.Duration,
		RunID:     report.RunID,
		ObjectKey: report.Key,
		SizeBytes: report.SizeBytes,
	}

	if report.Err != nil {
		msg.FailedStep = report.FailedStep
		msg.ErrorMessage = report.Err.Error()
		msg.ExitCode = report.ExitCode
	}

	result, err := s.telegramSvc.SendNotification(ctx, *cfg.Telegram, msg)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to send Telegram notification")
		return
	}
	if result.Error != nil {
		s.logger.Error().Err(result.Error).Msg("failed to send Telegram notification")
		return
	}

	s.logger.Info().Msg("Telegram notification sent")
}

// humanSize falls back to a raw byte count when the size cannot be scaled.
func humanSize(n int64) string {
	h, err := format.Size(float64(n))
	if err != nil {
		return fmt.Sprintf("%d B", n)
	}
	return h
}

// humanDuration falls back to Go's own rendering when the duration cannot
// be scaled.
func humanDuration(d time.Duration) string {
	h, err := format.Duration(d)
	if err != nil {
		return d.Round(time.Second).String()
	}
	return h
}
