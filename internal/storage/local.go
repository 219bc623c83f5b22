package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// Local keeps uploads in a directory on disk
type Local struct {
	basePath string
}

func NewLocal(basePath string) (*Local, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &Local{
		basePath: basePath,
	}, nil
}

// Save writes the upload to a temp file first and renames it into place,
// so a failed copy never leaves a truncated file under the final key.
func (l *Local) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	detected, body, err := sniff(r)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	key := newKey(originalName, detected)

	tmp, err := os.CreateTemp(l.basePath, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close upload: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(l.basePath, key)); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	return key, nil
}

// Open returns the stored file for key
func (l *Local) Open(ctx context.Context, key string) (*Object, error) {
	if !ValidKey(key) {
		return nil, ErrNotFound
	}

	path := filepath.Join(l.basePath, key)
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat upload: %w", err)
	}

	contentType := "application/octet-stream"
	if detected, err := mimetype.DetectFile(path); err == nil {
		contentType = detected.String()
	}

	return &Object{
		Body:        file,
		ContentType: contentType,
		Size:        info.Size(),
	}, nil
}
