package models

import "time"

// TelegramConfig holds Telegram notification settings.
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// TelegramMessage holds the data for a backup notification.
type TelegramMessage struct {
	Success   bool
	Database  string
	Bucket    string
	StartTime time.Time
	Duration  time.Duration

	// Upload details (if successful).
	RunID     string
	ObjectKey string
	SizeBytes int64

	// Error info (if failed).
	ErrorMessage string
	FailedStep   string
	ExitCode     int
}

// TelegramResult holds the result of a Telegram notification.
type TelegramResult struct {
	MessageSent bool
	Error       error
}
