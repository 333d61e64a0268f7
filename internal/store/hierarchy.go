package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kmehta-dev/drivehub/internal/models"
)

// CreateFolder creates a folder for owner under the optional parent.
// The name must match the restricted charset and be unique among siblings.
func (s *Store) CreateFolder(ctx context.Context, ownerID uuid.UUID, name string, parentID *uuid.UUID) (*models.Folder, error) {
	if !models.ValidResourceName(name) {
		return nil, models.ErrInvalidName
	}

	folder := models.Folder{
		ID:             uuid.New(),
		UserID:         ownerID,
		ParentFolderID: parentID,
		Name:           name,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if parentID != nil {
			var parent models.Folder
			if err := tx.Where("id = ? AND user_id = ?", parentID, ownerID).First(&parent).Error; err != nil {
				return convertNotFoundError(err, models.ErrFolderNotFound)
			}
		}
		if err := siblingNameTaken(tx, ownerID, parentID, name, uuid.Nil); err != nil {
			return err
		}
		return tx.Create(&folder).Error
	})
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (s *Store) GetFolder(ctx context.Context, id uuid.UUID) (*models.Folder, error) {
	var folder models.Folder
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&folder).Error; err != nil {
		return nil, convertNotFoundError(err, models.ErrFolderNotFound)
	}
	return &folder, nil
}

// RenameFolder changes a folder's name, re-validating charset and sibling
// uniqueness.
func (s *Store) RenameFolder(ctx context.Context, id uuid.UUID, name string) (*models.Folder, error) {
	if !models.ValidResourceName(name) {
		return nil, models.ErrInvalidName
	}

	var folder models.Folder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&folder).Error; err != nil {
			return convertNotFoundError(err, models.ErrFolderNotFound)
		}
		if err := siblingNameTaken(tx, folder.UserID, folder.ParentFolderID, name, folder.ID); err != nil {
			return err
		}
		folder.Name = name
		return tx.Model(&models.Folder{}).Where("id = ?", id).Update("name", name).Error
	})
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// MoveFolder reparents a folder. The no-cycle invariant is re-validated
// against the ancestor chain inside the same transaction as the write, so a
// concurrent move of an ancestor cannot slip a cycle in.
func (s *Store) MoveFolder(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (*models.Folder, error) {
	var folder models.Folder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&folder).Error; err != nil {
			return convertNotFoundError(err, models.ErrFolderNotFound)
		}

		if newParentID != nil {
			if *newParentID == id {
				return models.ErrFolderCycle
			}
			var parent models.Folder
			if err := tx.Where("id = ? AND user_id = ?", newParentID, folder.UserID).First(&parent).Error; err != nil {
				return convertNotFoundError(err, models.ErrFolderNotFound)
			}
			chain, err := ancestorChain(tx, parent.ID)
			if err != nil {
				return err
			}
			for _, a := range chain {
				if a.ID == id {
					return models.ErrFolderCycle
				}
			}
		}

		if err := siblingNameTaken(tx, folder.UserID, newParentID, folder.Name, folder.ID); err != nil {
			return err
		}

		folder.ParentFolderID = newParentID
		return tx.Model(&models.Folder{}).Where("id = ?", id).Update("parent_folder_id", newParentID).Error
	})
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// Ancestors returns the proper ancestors of a folder, nearest-first. The
// walk is an explicit loop over the parent pointer with a visited guard, so
// a latent cycle in stored data terminates instead of recursing forever.
func (s *Store) Ancestors(ctx context.Context, id uuid.UUID) ([]models.Folder, error) {
	var folder models.Folder
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&folder).Error; err != nil {
		return nil, convertNotFoundError(err, models.ErrFolderNotFound)
	}
	if folder.ParentFolderID == nil {
		return nil, nil
	}
	chain, err := ancestorChain(s.db.WithContext(ctx), *folder.ParentFolderID)
	if err != nil {
		return nil, err
	}
	return chain, nil
}

// ancestorChain walks upward from the given folder (inclusive), returning
// the chain nearest-first.
func ancestorChain(db *gorm.DB, from uuid.UUID) ([]models.Folder, error) {
	var chain []models.Folder
	visited := map[uuid.UUID]bool{}
	next := &from
	for next != nil {
		if visited[*next] {
			break
		}
		visited[*next] = true

		var folder models.Folder
		if err := db.Where("id = ?", *next).First(&folder).Error; err != nil {
			return nil, convertNotFoundError(err, models.ErrFolderNotFound)
		}
		chain = append(chain, folder)
		next = folder.ParentFolderID
	}
	return chain, nil
}

// siblingNameTaken reports ErrDuplicateName when another folder of the same
// owner under the same parent already carries the name. The NULL-parent case
// is matched explicitly; a composite unique index does not cover it.
func siblingNameTaken(tx *gorm.DB, ownerID uuid.UUID, parentID *uuid.UUID, name string, exclude uuid.UUID) error {
	q := tx.Model(&models.Folder{}).Where("user_id = ? AND name = ?", ownerID, name)
	if parentID == nil {
		q = q.Where("parent_folder_id IS NULL")
	} else {
		q = q.Where("parent_folder_id = ?", parentID)
	}
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return models.ErrDuplicateName
	}
	return nil
}

// DeleteFolder removes a folder, every descendant folder and file, and all
// shares and links targeting any of them. It returns the storage keys of the
// deleted files so the caller can clean up the blob store.
func (s *Store) DeleteFolder(ctx context.Context, id uuid.UUID) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.Folder
		if err := tx.Where("id = ?", id).First(&root).Error; err != nil {
			return convertNotFoundError(err, models.ErrFolderNotFound)
		}

		folderIDs, err := subtreeFolderIDs(tx, id)
		if err != nil {
			return err
		}

		var files []models.File
		if err := tx.Where("folder_id IN ?", folderIDs).Find(&files).Error; err != nil {
			return err
		}
		fileIDs := make([]uuid.UUID, 0, len(files))
		for _, f := range files {
			fileIDs = append(fileIDs, f.ID)
			keys = append(keys, f.StorageKey)
		}

		// Grants are owned by their target: drop them with the subtree.
		if len(fileIDs) > 0 {
			if err := tx.Where("file_id IN ?", fileIDs).Delete(&models.Share{}).Error; err != nil {
				return err
			}
			if err := tx.Where("file_id IN ?", fileIDs).Delete(&models.ShareLink{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", fileIDs).Delete(&models.File{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("folder_id IN ?", folderIDs).Delete(&models.Share{}).Error; err != nil {
			return err
		}
		if err := tx.Where("folder_id IN ?", folderIDs).Delete(&models.ShareLink{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", folderIDs).Delete(&models.Folder{}).Error
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// subtreeFolderIDs collects the folder and all descendants breadth-first.
func subtreeFolderIDs(tx *gorm.DB, root uuid.UUID) ([]uuid.UUID, error) {
	all := []uuid.UUID{root}
	frontier := []uuid.UUID{root}
	seen := map[uuid.UUID]bool{root: true}
	for len(frontier) > 0 {
		var children []models.Folder
		if err := tx.Where("parent_folder_id IN ?", frontier).Find(&children).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, c := range children {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			all = append(all, c.ID)
			frontier = append(frontier, c.ID)
		}
	}
	return all, nil
}
