// Package storage abstracts blob storage for uploaded files. Two backends
// exist: a local filesystem directory and an S3-compatible object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Storage stores and retrieves file blobs by key. Keys are generated by
// NewStorageKey, never taken from user input.
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewStorageKey returns a date-bucketed random object key.
func NewStorageKey(ownerID int64) string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%d/%v", ownerID, d.Year(), d.Month(), d.Day(), uuid.New())
}
