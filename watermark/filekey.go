package watermark

import (
	"fmt"
	"regexp"
	"strconv"
)

// reFileKey matches <timestamp>_<index> immediately before a data file extension.
// An optional compression suffix may follow the extension.
var reFileKey = regexp.MustCompile(`(\d+)_(\d+)\.(?:parquet|jsonl|json)(?:\.(?:gz|snappy|zst|bz2))?$`)

// MalformedKeyError is returned when a file name does not encode a watermark.
// Callers must not skip these files.
type MalformedKeyError struct {
	Key    string
	Reason string
}

func (e *MalformedKeyError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("malformed file key %q: %v", e.Key, e.Reason)
	}
	return fmt.Sprintf("malformed file key %q: expected <timestamp>_<index>.<parquet|jsonl|json>", e.Key)
}

// ParseKey extracts the watermark from key.
func ParseKey(key string) (Watermark, error) {
	m := reFileKey.FindStringSubmatch(key)
	if m == nil {
		return Watermark{}, &MalformedKeyError{Key: key}
	}
	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return Watermark{}, &MalformedKeyError{Key: key, Reason: fmt.Sprintf("timestamp %v out of range", m[1])}
	}
	idx, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return Watermark{}, &MalformedKeyError{Key: key, Reason: fmt.Sprintf("index %v out of range", m[2])}
	}
	return Watermark{Timestamp: ts, Index: idx}, nil
}
