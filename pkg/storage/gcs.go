package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
	"github.com/cyclopcam/logs"
)

// StorageGCS is a Google Cloud Storage bucket, optionally restricted to a name prefix
type StorageGCS struct {
	bucketName string
	prefix     string
	bucket     *gcs.BucketHandle
	log        logs.Log
}

func NewStorageGCS(log logs.Log, bucketName, prefix string) (*StorageGCS, error) {
	ctx := context.Background()
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &StorageGCS{
		bucketName: bucketName,
		prefix:     prefix,
		bucket:     client.Bucket(bucketName),
		log:        log,
	}, nil
}

func (s *StorageGCS) object(name string) (*gcs.ObjectHandle, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	return s.bucket.Object(s.prefix + name), nil
}

func (s *StorageGCS) WriteFile(name string) (io.WriteCloser, error) {
	obj, err := s.object(name)
	if err != nil {
		return nil, err
	}
	s.log.Debugf("Writing gs://%v/%v%v", s.bucketName, s.prefix, name)
	return obj.NewWriter(context.Background()), nil
}

func (s *StorageGCS) ReadFile(name string) (*File, error) {
	obj, err := s.object(name)
	if err != nil {
		return nil, err
	}
	r, err := obj.NewReader(context.Background())
	if errors.Is(err, gcs.ErrObjectNotExist) {
		// Same as StorageFS, so that callers can test for os.ErrNotExist
		return nil, fmt.Errorf("%w: gs://%v/%v%v", os.ErrNotExist, s.bucketName, s.prefix, name)
	} else if err != nil {
		return nil, err
	}
	return &File{
		Reader:     r,
		ModifiedAt: r.Attrs.LastModified,
		Size:       r.Attrs.Size,
	}, nil
}

func (s *StorageGCS) DeleteFile(name string) error {
	obj, err := s.object(name)
	if err != nil {
		return err
	}
	s.log.Infof("Deleting gs://%v/%v%v", s.bucketName, s.prefix, name)
	return obj.Delete(context.Background())
}
