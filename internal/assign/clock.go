package assign

import "time"

// SystemClock reads wall-clock time via the standard library.
type SystemClock struct{}

// NowMillis returns the current time in milliseconds since the Unix epoch.
func (SystemClock) NowMillis() int64 {
	return time.Now().UnixMilli()
}
