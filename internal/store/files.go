package store

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kmehta-dev/drivehub/internal/models"
)

// CreateFile records an uploaded blob. Size and MIME type come from the blob
// store at upload time; the display name defaults to the uploaded name.
func (s *Store) CreateFile(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID, name, storageKey, mimeType string, size int64) (*models.File, error) {
	if name == "" {
		return nil, models.ErrInvalidName
	}

	file := models.File{
		ID:         uuid.New(),
		UserID:     ownerID,
		FolderID:   folderID,
		Name:       name,
		StorageKey: storageKey,
		MimeType:   mimeType,
		Size:       size,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if folderID != nil {
			var folder models.Folder
			if err := tx.Where("id = ? AND user_id = ?", folderID, ownerID).First(&folder).Error; err != nil {
				return convertNotFoundError(err, models.ErrFolderNotFound)
			}
		}
		return tx.Create(&file).Error
	})
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (s *Store) GetFile(ctx context.Context, id uuid.UUID) (*models.File, error) {
	var file models.File
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&file).Error; err != nil {
		return nil, convertNotFoundError(err, models.ErrFileNotFound)
	}
	return &file, nil
}

// RenameFile changes the display name only; the storage key, size and MIME
// type are immutable.
func (s *Store) RenameFile(ctx context.Context, id uuid.UUID, name string) (*models.File, error) {
	if !models.ValidResourceName(name) {
		return nil, models.ErrInvalidName
	}
	var file models.File
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&file).Error; err != nil {
			return convertNotFoundError(err, models.ErrFileNotFound)
		}
		file.Name = name
		return tx.Model(&models.File{}).Where("id = ?", id).Update("name", name).Error
	})
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// DeleteFile removes the file and every grant targeting it, returning the
// storage key for blob cleanup.
func (s *Store) DeleteFile(ctx context.Context, id uuid.UUID) (string, error) {
	var key string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var file models.File
		if err := tx.Where("id = ?", id).First(&file).Error; err != nil {
			return convertNotFoundError(err, models.ErrFileNotFound)
		}
		key = file.StorageKey

		if err := tx.Where("file_id = ?", id).Delete(&models.Share{}).Error; err != nil {
			return err
		}
		if err := tx.Where("file_id = ?", id).Delete(&models.ShareLink{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.File{}).Error
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// ListFolders returns the owner's folders directly under parent, or the
// root-level folders when parent is nil. Newest first.
func (s *Store) ListFolders(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]models.Folder, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if parentID == nil {
		q = q.Where("parent_folder_id IS NULL")
	} else {
		q = q.Where("parent_folder_id = ?", parentID)
	}
	var folders []models.Folder
	if err := q.Order("created_at DESC").Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

// ListFiles returns the owner's files directly inside folder, or the
// root-level files when folder is nil. Newest first.
func (s *Store) ListFiles(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID) ([]models.File, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if folderID == nil {
		q = q.Where("folder_id IS NULL")
	} else {
		q = q.Where("folder_id = ?", folderID)
	}
	var files []models.File
	if err := q.Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// Search matches folders and files owned by the user whose name contains the
// query, case-insensitively. Received shares are deliberately out of scope;
// they are listed through SharedWith instead.
func (s *Store) Search(ctx context.Context, ownerID uuid.UUID, query string) ([]models.Folder, []models.File, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	var folders []models.Folder
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(name) LIKE ?", ownerID, pattern).
		Order("created_at DESC").
		Find(&folders).Error; err != nil {
		return nil, nil, err
	}

	var files []models.File
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(name) LIKE ?", ownerID, pattern).
		Order("created_at DESC").
		Find(&files).Error; err != nil {
		return nil, nil, err
	}

	return folders, files, nil
}
