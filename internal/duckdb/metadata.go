package duckdb

import (
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a scanned input.
// Inputs that are not regular files (stdin, URLs) have Size -1.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// StreamFingerprint identifies an input that cannot be fingerprinted.
func StreamFingerprint(source string) FileFingerprint {
	return FileFingerprint{Path: source, Size: -1}
}

// Reusable reports whether results for this input may be reused later.
func (fp FileFingerprint) Reusable() bool {
	return fp.Size >= 0
}

func (fp FileFingerprint) modTimeKey() string {
	if fp.ModTime.IsZero() {
		return ""
	}
	return fp.ModTime.UTC().Format(time.RFC3339Nano)
}
