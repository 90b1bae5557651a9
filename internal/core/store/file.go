package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/sys/atomicwriter"

	"github.com/scriptseq/scriptseq/internal/core"
)

const backendFile = "file"

// FileStore keeps the sequence record in a single-line text file.
type FileStore struct {
	Path string
}

// NewFileStore returns a file-backed store for path.
func NewFileStore(path string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("state path is required")
	}
	return &FileStore{Path: filepath.Clean(path)}, nil
}

// Read returns the stored record, or nil when the file does not exist.
func (s *FileStore) Read(ctx context.Context) (*core.SequenceRecord, error) {
	if s == nil || s.Path == "" {
		return nil, errors.New("state store is not initialized")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	record, err := DecodeRecord(data)
	if err != nil {
		return nil, withLocation(err, s.Path)
	}
	return record, nil
}

// Write replaces the stored record. The file is swapped in atomically so a
// crash mid-write never leaves a truncated record behind.
func (s *FileStore) Write(ctx context.Context, record core.SequenceRecord) error {
	if s == nil || s.Path == "" {
		return errors.New("state store is not initialized")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	data, err := EncodeRecord(record)
	if err != nil {
		return err
	}

	if err := ensureStoreDir(s.Path); err != nil {
		return err
	}

	// #nosec G306 -- the record is not secret and mirrors the editor's default permissions
	if err := atomicwriter.WriteFile(s.Path, data, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// Location returns the state file path.
func (s *FileStore) Location() string {
	if s == nil {
		return ""
	}
	return s.Path
}

// Driver returns the backend name.
func (s *FileStore) Driver() string {
	return backendFile
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error {
	return nil
}
