package models

import "time"

// Storage backends for uploaded files.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// File is the metadata row for an uploaded file. The blob itself lives in
// the configured storage backend under Path.
type File struct {
	ID        int64      `json:"id"`
	OwnerID   int64      `json:"owner_id"`
	Name      string     `json:"name"`
	Path      string     `json:"-"`
	MimeType  string     `json:"mime_type"`
	Size      int64      `json:"size"`
	Storage   string     `json:"storage"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
