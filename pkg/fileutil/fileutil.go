package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rohmanhakim/webgrab/pkg/failure"
)

// GetFileExtension extracts the file extension from a path without the
// leading dot, or empty string if none.
func GetFileExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}

// EnsureDir checks if the given directory plus the following path segments
// exist, then creates them if not.
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := []string{dir}
	targetPath = append(targetPath, path...)

	target := filepath.Join(targetPath...)
	if err := os.MkdirAll(target, 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}
	return nil
}

// WriteFile writes data to path, classifying disk-full conditions as
// retryable.
func WriteFile(path string, data []byte) failure.ClassifiedError {
	if err := os.WriteFile(path, data, 0644); err != nil {
		cause := ErrCausePathError
		retryable := false
		if errors.Is(err, syscall.ENOSPC) {
			cause = ErrCauseDiskFull
			retryable = true
		}
		return &FileError{
			Message:   err.Error(),
			Retryable: retryable,
			Cause:     cause,
		}
	}
	return nil
}
