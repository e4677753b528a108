package watermark

import (
	"sort"
)

// SelectUnprocessed returns the candidates whose watermark is strictly after boundary, sorted ascending
// by (timestamp, index). A nil boundary selects every candidate.
// Any key that cannot be parsed fails the whole selection.
// Candidates sharing the exact same pair come back in no particular order.
func SelectUnprocessed(candidates []Object, boundary *Watermark) ([]FileDescriptor, error) {
	retval := make([]FileDescriptor, 0, len(candidates))
	for _, c := range candidates {
		fd, err := NewFileDescriptor(c)
		if err != nil {
			return nil, err
		}
		if fd.Watermark.After(boundary) {
			retval = append(retval, fd)
		}
	}
	sort.Slice(retval, func(i, j int) bool {
		return retval[i].Watermark.Less(retval[j].Watermark)
	})
	return retval, nil
}

// MaxWatermark returns the highest watermark in files.
// It returns false if files is empty.
func MaxWatermark(files []FileDescriptor) (Watermark, bool) {
	if len(files) == 0 {
		return Watermark{}, false
	}
	max := files[0].Watermark
	for _, f := range files[1:] {
		if max.Less(f.Watermark) {
			max = f.Watermark
		}
	}
	return max, true
}

// Keys returns the object keys of files in order.
func Keys(files []FileDescriptor) []string {
	retval := make([]string, len(files))
	for i, f := range files {
		retval[i] = f.Key
	}
	return retval
}
