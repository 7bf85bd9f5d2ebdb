// Package format renders byte counts and durations as short human-readable
// magnitude strings for logs and notifications.
package format

import (
	"errors"
	"fmt"
	"time"
)

// ErrSizeTooLarge reports a byte count at or above 1024 YB.
var ErrSizeTooLarge = errors.New("size too large to format")

// ErrDurationTooLarge reports a duration of 60 hours or more.
var ErrDurationTooLarge = errors.New("duration too large to format")

var sizeUnits = [...]string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// Size renders a non-negative byte count scaled to the first unit where the
// magnitude drops below 1024, e.g. "12.3 MB".
func Size(bytes float64) (string, error) {
	if bytes < 0 {
		return "", fmt.Errorf("cannot format negative size %.0f", bytes)
	}
	for _, unit := range sizeUnits {
		if bytes < 1024 {
			return fmt.Sprintf("%3.1f %s", bytes, unit), nil
		}
		bytes /= 1024
	}
	return "", ErrSizeTooLarge
}

// Duration renders a non-negative duration scaled to seconds, minutes or
// hours, e.g. "1.45m".
func Duration(d time.Duration) (string, error) {
	if d < 0 {
		return "", fmt.Errorf("cannot format negative duration %s", d)
	}
	v := d.Seconds()
	for _, unit := range [...]string{"s", "m", "h"} {
		if v < 60 {
			return fmt.Sprintf("%.2f%s", v, unit), nil
		}
		v /= 60
	}
	return "", ErrDurationTooLarge
}
