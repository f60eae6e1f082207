package services

import (
	"context"
	"database/sql"
	"io"

	"github.com/accountd/accountd/internal/common"
	"github.com/accountd/accountd/internal/server/models"
	"github.com/accountd/accountd/internal/server/repositories/repomanager"
	"github.com/accountd/accountd/internal/server/storage"
)

// FilesService manages uploaded files: the metadata row lives in the files
// table, the blob in the configured storage backend.
type FilesService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     storage.Storage
	storageKind string
}

// NewFilesService constructs a FilesService over the given storage backend.
// storageKind names the backend recorded on each row (models.StorageLocal or
// models.StorageS3).
func NewFilesService(db *sql.DB, m repomanager.RepositoryManager, st storage.Storage, storageKind string) *FilesService {
	return &FilesService{
		db:          db,
		repomanager: m,
		storage:     st,
		storageKind: storageKind,
	}
}

// Upload stores the blob and then the metadata row. If the row insert fails
// the blob is removed again so storage does not accumulate orphans.
func (s *FilesService) Upload(ctx context.Context, ownerID int64, name, mimeType string, size int64, r io.Reader) (*models.File, error) {
	key := storage.NewStorageKey(ownerID)
	if err := s.storage.Save(ctx, key, r, size, mimeType); err != nil {
		return nil, common.ErrInternal
	}

	file, err := s.repomanager.Files(s.db).Create(ctx, &models.File{
		OwnerID:  ownerID,
		Name:     name,
		Path:     key,
		MimeType: mimeType,
		Size:     size,
		Storage:  s.storageKind,
	})
	if err != nil {
		s.storage.Delete(ctx, key)
		return nil, err
	}
	return file, nil
}

// FindByOwner lists the caller's files.
func (s *FilesService) FindByOwner(ctx context.Context, ownerID int64) ([]*models.File, error) {
	return s.repomanager.Files(s.db).FindByOwner(ctx, ownerID)
}

// Download returns the metadata row and an open reader over the blob. Only
// the owner may download a file.
func (s *FilesService) Download(ctx context.Context, userID, fileID int64) (*models.File, io.ReadCloser, error) {
	file, err := s.findOwned(ctx, userID, fileID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.storage.Open(ctx, file.Path)
	if err != nil {
		return nil, nil, common.ErrInternal
	}
	return file, rc, nil
}

// Delete removes the metadata row first, then the blob. A blob whose row is
// gone is unreachable, so ordering keeps failures safe.
func (s *FilesService) Delete(ctx context.Context, userID, fileID int64) error {
	file, err := s.findOwned(ctx, userID, fileID)
	if err != nil {
		return err
	}

	if err := s.repomanager.Files(s.db).Delete(ctx, fileID); err != nil {
		return err
	}
	return s.storage.Delete(ctx, file.Path)
}

func (s *FilesService) findOwned(ctx context.Context, userID, fileID int64) (*models.File, error) {
	file, err := s.repomanager.Files(s.db).FindByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != userID {
		return nil, common.NewAuthorizationError("errors.forbidden")
	}
	return file, nil
}
