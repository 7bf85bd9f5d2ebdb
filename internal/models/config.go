// Package models contains the data structures used throughout godump-s3.
package models

import "time"

// Config holds the complete configuration for one backup run.
type Config struct {
	MySQL       MySQLConfig
	S3          S3Config
	Backup      BackupSettings
	WOL         *WOLConfig         // nil if not configured
	SSHShutdown *SSHShutdownConfig // nil if not configured
	Telegram    *TelegramConfig    // nil if not configured
}

// MySQLConfig holds the connection parameters handed to mysqldump.
type MySQLConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// S3Config holds bucket location and credentials for the upload target.
type S3Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string // optional; empty means the SDK derives it from Region
}

// BackupSettings holds artifact naming and handling options.
type BackupSettings struct {
	Prefix      string        // object key prefix, e.g. "db-backups"
	Dir         string        // directory holding the transient local artifact
	Compression string        // "none" (default), "gzip", "zstd" or "lz4"
	Timeout     time.Duration // optional deadline for the whole run; 0 = none
}
