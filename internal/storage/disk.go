package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const diskURLPrefix = "/uploads/"

// DiskService stores photos on the local filesystem and serves them from
// the /uploads static route. Used when no storage bucket is configured.
type DiskService struct {
	dir string
}

func NewDiskService(dir string) (*DiskService, error) {
	if dir == "" {
		return nil, fmt.Errorf("uploads dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &DiskService{dir: filepath.Clean(dir)}, nil
}

func (s *DiskService) UploadObject(ctx context.Context, r io.Reader, name, contentType string) (string, error) {
	path, err := s.pathForName(name)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}

	return diskURLPrefix + filepath.Base(path), nil
}

func (s *DiskService) DeleteObject(ctx context.Context, location string) error {
	name := strings.TrimPrefix(location, diskURLPrefix)
	if name == location {
		return fmt.Errorf("invalid upload location")
	}
	path, err := s.pathForName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}

func (s *DiskService) ObjectURL(ctx context.Context, location string, expires time.Duration) (string, error) {
	if !strings.HasPrefix(location, diskURLPrefix) {
		return "", fmt.Errorf("invalid upload location")
	}
	return location, nil
}

// pathForName rejects names that would escape the uploads directory.
func (s *DiskService) pathForName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("object name is required")
	}
	clean := filepath.Clean(name)
	if clean != filepath.Base(clean) || strings.HasPrefix(clean, ".") {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(s.dir, clean), nil
}

var _ Service = (*DiskService)(nil)
