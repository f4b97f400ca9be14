package system

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

var (
	// ErrInvalidInput is returned for an empty location or missing content.
	ErrInvalidInput = errors.New("system: invalid input")
	// ErrNotFound is returned when reading a missing file.
	ErrNotFound = errors.New("system: file not found")
)

var fs = afs.New()

// ReadFile returns the content stored at URL (a local path or any afs URL).
func ReadFile(ctx context.Context, URL string) (string, error) {
	if URL == "" {
		return "", ErrInvalidInput
	}
	exists, err := fs.Exists(ctx, URL)
	if err != nil {
		return "", fmt.Errorf("failed to check %v: %w", URL, err)
	}
	if !exists {
		return "", fmt.Errorf("%w: %v", ErrNotFound, URL)
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return "", fmt.Errorf("failed to read %v: %w", URL, err)
	}
	return string(data), nil
}

// WriteFile replaces the content at URL and returns the number of bytes written.
func WriteFile(ctx context.Context, URL, content string) (int, error) {
	if URL == "" {
		return 0, ErrInvalidInput
	}
	if err := fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader([]byte(content))); err != nil {
		return 0, fmt.Errorf("failed to write %v: %w", URL, err)
	}
	return len(content), nil
}
