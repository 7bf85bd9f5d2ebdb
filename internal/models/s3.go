package models

import "time"

// UploadResult holds the result of an S3 upload.
type UploadResult struct {
	Key      string        // object key the artifact was stored under
	Location string        // URL of the stored object, if the SDK reported one
	Duration time.Duration // wall time of the upload
	Error    error         // set when the upload failed
}
