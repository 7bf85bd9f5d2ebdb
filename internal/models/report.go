package models

import "time"

// PipelineReport summarizes one backup run end to end.
type PipelineReport struct {
	RunID        string
	ArtifactName string        // local filename of the dump artifact
	Key          string        // S3 object key, set once the upload succeeds
	SizeBytes    int64         // artifact size handed to the uploader
	Duration     time.Duration // wall time of the whole run
	FailedStep   string        // empty on success
	ExitCode     int           // process exit code the run maps to
	Err          error         // terminal error, nil on success
}

// Succeeded reports whether the run completed without a terminal error.
func (r *PipelineReport) Succeeded() bool {
	return r.Err == nil && r.FailedStep == ""
}
