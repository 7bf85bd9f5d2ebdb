package models

import "time"

// DumpResult holds the result of a mysqldump invocation.
type DumpResult struct {
	ExitCode int           // exit code of the dump process; 0 on success
	Stderr   string        // everything the dump wrote to stderr
	Duration time.Duration // wall time of the dump
	Error    error         // set when the process could not be started
}
