// Package watermark finds the files under a prefix that have not been ingested yet.
// Each file name carries a (timestamp, index) pair and files are loaded in ascending pair order.
package watermark

import (
	"fmt"
	"time"
)

// Watermark is the (timestamp, index) pair found in a file name.
// Watermarks are ordered by timestamp and then by index.
type Watermark struct {
	Timestamp int64 `json:"timestamp" yaml:"timestamp"`
	Index     int64 `json:"index" yaml:"index"`
}

// Compare returns -1, 0 or +1 when w is lower than, equal to or greater than o.
func (w Watermark) Compare(o Watermark) int {
	switch {
	case w.Timestamp < o.Timestamp:
		return -1
	case w.Timestamp > o.Timestamp:
		return 1
	case w.Index < o.Index:
		return -1
	case w.Index > o.Index:
		return 1
	}
	return 0
}

func (w Watermark) Less(o Watermark) bool {
	return w.Compare(o) < 0
}

// After reports whether w is strictly beyond boundary.
// A nil boundary is the bottom watermark so everything is after it.
func (w Watermark) After(boundary *Watermark) bool {
	if boundary == nil {
		return true
	}
	return w.Compare(*boundary) > 0
}

func (w Watermark) String() string {
	return fmt.Sprintf("%d_%d", w.Timestamp, w.Index)
}

// Object is one entry returned by a listing of a bucket or stage.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// FileDescriptor is a listed object together with the watermark parsed from its key.
// It is built once per listing and never modified.
type FileDescriptor struct {
	Key          string    `json:"key" yaml:"key"`
	Size         int64     `json:"size" yaml:"size"`
	LastModified time.Time `json:"lastModified" yaml:"lastModified"`
	Watermark    Watermark `json:"watermark" yaml:"watermark"`
}

// NewFileDescriptor parses the watermark out of obj.Key.
// It returns a *MalformedKeyError if the key does not carry one.
func NewFileDescriptor(obj Object) (FileDescriptor, error) {
	w, err := ParseKey(obj.Key)
	if err != nil {
		return FileDescriptor{}, err
	}
	return FileDescriptor{
		Key:          obj.Key,
		Size:         obj.Size,
		LastModified: obj.LastModified,
		Watermark:    w,
	}, nil
}
