// Package mysql provides MySQL dump operations.
package mysql

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/fgeck/godump-s3/internal/models"
	"github.com/rs/zerolog"
)

// Service defines the interface for MySQL dump operations.
type Service interface {
	Dump(ctx context.Context, cfg models.MySQLConfig, sink io.Writer) (*models.DumpResult, error)
}

// CommandExecutor allows mocking exec.Command in tests.
type CommandExecutor interface {
	ExecuteWithEnv(ctx context.Context, env []string, stdout io.Writer, name string, args ...string) (exitCode int, stderr string, err error)
}

// DefaultExecutor is the default command executor using os/exec.
type DefaultExecutor struct{}

// ExecuteWithEnv runs the command, streaming stdout into the given sink and
// capturing stderr. The returned error is set only when the process could
// not be started; a started process that exits non-zero reports its exit
// code with a nil error.
func (e *DefaultExecutor) ExecuteWithEnv(ctx context.Context, env []string, stdout io.Writer, name string, args ...string) (int, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = stdout

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return 0, stderr.String(), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Killed by a signal; there is no exit code to propagate.
			code = 1
		}
		return code, stderr.String(), nil
	}

	return 0, stderr.String(), fmt.Errorf("starting %s: %w", name, err)
}

// Impl implements the MySQL Service interface.
type Impl struct {
	executor CommandExecutor
	logger   zerolog.Logger
}

// New creates a new MySQL service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		executor: &DefaultExecutor{},
		logger:   logger,
	}
}

// NewWithExecutor creates a new MySQL service with a custom executor (for testing).
func NewWithExecutor(logger zerolog.Logger, executor CommandExecutor) *Impl {
	return &Impl{
		executor: executor,
		logger:   logger,
	}
}

// Dump runs mysqldump, streaming the full export into sink. The password
// travels via MYSQL_PWD in the child environment, never the command line.
func (s *Impl) Dump(ctx context.Context, cfg models.MySQLConfig, sink io.Writer) (*models.DumpResult, error) {
	s.logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("starting MySQL dump")

	start := time.Now()
	result := &models.DumpResult{}

	args := []string{
		"-h", cfg.Host,
		"-P", fmt.Sprintf("%d", cfg.Port),
		"-u", cfg.User,
		"--single-transaction",
		"--quick",
		cfg.Database,
	}

	env := []string{}
	if cfg.Password != "" {
		env = append(env, fmt.Sprintf("MYSQL_PWD=%s", cfg.Password))
	}

	exitCode, stderr, execErr := s.executor.ExecuteWithEnv(ctx, env, sink, "mysqldump", args...)
	result.ExitCode = exitCode
	result.Stderr = stderr
	result.Duration = time.Since(start)

	if execErr != nil {
		result.Error = execErr
		s.logger.Error().Err(execErr).Msg("failed to start mysqldump")
		return result, nil //nolint:nilerr // error is stored in result struct by design
	}

	switch {
	case result.ExitCode != 0:
		s.logger.Error().
			Int("exit_code", result.ExitCode).
			Str("stderr", result.Stderr).
			Msg("mysqldump failed")
	case result.Stderr != "":
		s.logger.Warn().Str("stderr", result.Stderr).Msg("mysqldump wrote diagnostics")
	}

	if result.ExitCode == 0 {
		s.logger.Info().
			Str("database", cfg.Database).
			Dur("duration", result.Duration).
			Msg("MySQL dump completed")
	}

	return result, nil
}
