// Package storage is where datasets and their media live: a local directory or a GCS bucket.
package storage

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/pedset/pkg/coco"
)

var ErrInvalidName = errors.New("invalid file name")

// Storage is an abstraction of a blob store
type Storage interface {
	// When finished, you must close the WriteCloser
	WriteFile(name string) (io.WriteCloser, error)

	// When finished, you must close File.Reader
	ReadFile(name string) (*File, error)

	DeleteFile(name string) error
}

// File is an element in blob storage.
type File struct {
	Reader     io.ReadCloser
	ModifiedAt time.Time
	Size       int64
}

// One of the storage options must be configured (i.e. either 'filesystem' or 'gcs')
type Config struct {
	Filesystem *ConfigFS  `json:"filesystem" mapstructure:"filesystem"`
	GCS        *ConfigGCS `json:"gcs" mapstructure:"gcs"`
}

type ConfigFS struct {
	Root string `json:"root" mapstructure:"root"` // Path to the root directory
}

type ConfigGCS struct {
	Bucket string `json:"bucket" mapstructure:"bucket"` // Name of the GCS bucket
	Prefix string `json:"prefix" mapstructure:"prefix"` // Optional object name prefix, such as "caviar/"
}

func (c *Config) Validate() error {
	if (c.Filesystem == nil) == (c.GCS == nil) {
		return coco.Errorf(coco.ErrConfiguration, "exactly one of 'filesystem' or 'gcs' must be configured")
	}
	if c.Filesystem != nil && c.Filesystem.Root == "" {
		return coco.Errorf(coco.ErrConfiguration, "filesystem storage needs a root")
	}
	if c.GCS != nil && c.GCS.Bucket == "" {
		return coco.Errorf(coco.ErrConfiguration, "gcs storage needs a bucket")
	}
	return nil
}

// NewStorage creates the backend that the config describes
func NewStorage(log logs.Log, c Config) (Storage, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Filesystem != nil {
		return NewStorageFS(log, c.Filesystem.Root)
	}
	return NewStorageGCS(log, c.GCS.Bucket, c.GCS.Prefix)
}

// Names are slash separated, relative, and may not climb out of the store
func checkName(name string) error {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "..") {
		return fmt.Errorf("%w: '%v'", ErrInvalidName, name)
	}
	return nil
}

func WriteFile(s Storage, name string, content io.Reader) error {
	f, err := s.WriteFile(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(f, content)
	errClose := f.Close()
	if err != nil {
		return err
	}
	return errClose
}

func ReadFile(s Storage, name string) ([]byte, error) {
	f, err := s.ReadFile(name)
	if err != nil {
		return nil, err
	}
	defer f.Reader.Close()
	return io.ReadAll(f.Reader)
}

// CopyFile streams srcName out of src and into dstName of dst.
// src and dst may be different backends.
func CopyFile(dst Storage, src Storage, srcName, dstName string) error {
	f, err := src.ReadFile(srcName)
	if err != nil {
		return err
	}
	defer f.Reader.Close()
	return WriteFile(dst, dstName, f.Reader)
}

// Relocate copies each named file from src into the dstDir directory of dst,
// keeping its base name. Returns the number of files copied.
func Relocate(dst Storage, dstDir string, src Storage, names []string) (int, error) {
	for i, name := range names {
		if err := CopyFile(dst, src, name, path.Join(dstDir, path.Base(name))); err != nil {
			return i, fmt.Errorf("Failed to relocate %v: %w", name, err)
		}
	}
	return len(names), nil
}
