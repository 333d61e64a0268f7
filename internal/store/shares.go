package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kmehta-dev/drivehub/internal/models"
	"github.com/kmehta-dev/drivehub/internal/utils"
)

// shareTokenBytes sizes the random token attached to each share.
const shareTokenBytes = 24

// CreateShare grants recipient a permission on the target resource. The
// grantor must own the target; the one-active-share-per-(recipient, target)
// rule is held by the partial unique indexes, so a racing duplicate fails
// on insert rather than slipping past a prior check.
func (s *Store) CreateShare(ctx context.Context, ownerID uuid.UUID, target models.Target, recipientID uuid.UUID, permission models.Permission, expiresAt *time.Time) (*models.Share, error) {
	if !permission.Valid() {
		return nil, models.ErrInvalidPermission
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}

	token, err := utils.GenerateSecureToken(shareTokenBytes)
	if err != nil {
		return nil, err
	}

	share := models.Share{
		ID:           uuid.New(),
		SharedByID:   ownerID,
		SharedWithID: recipientID,
		Permission:   permission,
		Token:        token,
		ExpiresAt:    expiresAt,
		IsActive:     true,
	}
	if err := models.ShareForTarget(&share, target); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkTargetOwnership(tx, target, ownerID); err != nil {
			return err
		}
		var recipient models.User
		if err := tx.Where("id = ?", recipientID).First(&recipient).Error; err != nil {
			return convertNotFoundError(err, models.ErrUserNotFound)
		}

		if err := tx.Create(&share).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.ErrDuplicateShare
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (s *Store) GetShare(ctx context.Context, id uuid.UUID) (*models.Share, error) {
	var share models.Share
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&share).Error; err != nil {
		return nil, convertNotFoundError(err, models.ErrShareNotFound)
	}
	return &share, nil
}

// ListSharesBy returns every share the user has granted.
func (s *Store) ListSharesBy(ctx context.Context, ownerID uuid.UUID) ([]models.Share, error) {
	var shares []models.Share
	err := s.db.WithContext(ctx).
		Where("shared_by_id = ?", ownerID).
		Order("created_at DESC").
		Find(&shares).Error
	if err != nil {
		return nil, err
	}
	return shares, nil
}

// SharedWith returns the folders and files currently shared to the user
// through live direct grants.
func (s *Store) SharedWith(ctx context.Context, userID uuid.UUID) ([]models.Folder, []models.File, error) {
	var shares []models.Share
	err := s.db.WithContext(ctx).
		Where("shared_with_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&shares).Error
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	var folderIDs, fileIDs []uuid.UUID
	for i := range shares {
		if !shares[i].LiveAt(now) {
			continue
		}
		switch t := shares[i].Target(); t.Kind {
		case models.TargetFolder:
			folderIDs = append(folderIDs, t.ID)
		case models.TargetFile:
			fileIDs = append(fileIDs, t.ID)
		}
	}

	var folders []models.Folder
	if len(folderIDs) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", folderIDs).Find(&folders).Error; err != nil {
			return nil, nil, err
		}
	}
	var files []models.File
	if len(fileIDs) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", fileIDs).Find(&files).Error; err != nil {
			return nil, nil, err
		}
	}
	return folders, files, nil
}

// ShareUpdate carries the mutable share fields. Pointer fields are
// unchanged when nil; SetExpiry distinguishes "clear the expiry"
// (SetExpiry true, ExpiresAt nil) from "leave it alone".
type ShareUpdate struct {
	Permission *models.Permission
	ExpiresAt  *time.Time
	SetExpiry  bool
	IsActive   *bool
}

// UpdateShare applies an update on behalf of requester, who must be the
// original grantor. Reactivating a share re-checks the one-active-grant
// rule: if a replacement grant was created in the meantime, the toggle
// fails with ErrDuplicateShare instead of producing two live grants.
func (s *Store) UpdateShare(ctx context.Context, id, requesterID uuid.UUID, upd ShareUpdate) (*models.Share, error) {
	if upd.Permission != nil && !upd.Permission.Valid() {
		return nil, models.ErrInvalidPermission
	}

	var share models.Share
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&share).Error; err != nil {
			return convertNotFoundError(err, models.ErrShareNotFound)
		}
		if share.SharedByID != requesterID {
			return models.ErrPermissionDenied
		}

		if upd.IsActive != nil && *upd.IsActive && !share.IsActive {
			var count int64
			if err := targetFilter(tx.Model(&models.Share{}), share.Target()).
				Where("shared_with_id = ? AND is_active = ? AND id <> ?", share.SharedWithID, true, share.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return models.ErrDuplicateShare
			}
		}

		fields := map[string]any{}
		if upd.Permission != nil {
			share.Permission = *upd.Permission
			fields["permission"] = *upd.Permission
		}
		if upd.SetExpiry {
			share.ExpiresAt = upd.ExpiresAt
			if upd.ExpiresAt != nil {
				fields["expires_at"] = *upd.ExpiresAt
			} else {
				fields["expires_at"] = nil
			}
		}
		if upd.IsActive != nil {
			share.IsActive = *upd.IsActive
			fields["is_active"] = *upd.IsActive
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&models.Share{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.ErrDuplicateShare
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// RevokeShare deletes a share. Only the original grantor may revoke.
func (s *Store) RevokeShare(ctx context.Context, id, requesterID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var share models.Share
		if err := tx.Where("id = ?", id).First(&share).Error; err != nil {
			return convertNotFoundError(err, models.ErrShareNotFound)
		}
		if share.SharedByID != requesterID {
			return models.ErrPermissionDenied
		}
		return tx.Where("id = ?", id).Delete(&models.Share{}).Error
	})
}

// ActiveShareForFile returns the active share granted to recipient on the
// file, or nil when none exists. Expiry is evaluated by the caller so the
// "now" of the permission check is in one place.
func (s *Store) ActiveShareForFile(ctx context.Context, recipientID, fileID uuid.UUID) (*models.Share, error) {
	return s.activeShare(ctx, recipientID, "file_id", fileID)
}

// ActiveShareForFolder is the folder counterpart of ActiveShareForFile.
func (s *Store) ActiveShareForFolder(ctx context.Context, recipientID, folderID uuid.UUID) (*models.Share, error) {
	return s.activeShare(ctx, recipientID, "folder_id", folderID)
}

func (s *Store) activeShare(ctx context.Context, recipientID uuid.UUID, column string, targetID uuid.UUID) (*models.Share, error) {
	var share models.Share
	err := s.db.WithContext(ctx).
		Where("shared_with_id = ? AND "+column+" = ? AND is_active = ?", recipientID, targetID, true).
		First(&share).Error
	if err != nil {
		if convertNotFoundError(err, models.ErrShareNotFound) == models.ErrShareNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &share, nil
}

// checkTargetOwnership verifies the target exists and belongs to ownerID.
func checkTargetOwnership(tx *gorm.DB, target models.Target, ownerID uuid.UUID) error {
	switch target.Kind {
	case models.TargetFile:
		var file models.File
		if err := tx.Where("id = ?", target.ID).First(&file).Error; err != nil {
			return convertNotFoundError(err, models.ErrFileNotFound)
		}
		if file.UserID != ownerID {
			return models.ErrNotOwner
		}
	case models.TargetFolder:
		var folder models.Folder
		if err := tx.Where("id = ?", target.ID).First(&folder).Error; err != nil {
			return convertNotFoundError(err, models.ErrFolderNotFound)
		}
		if folder.UserID != ownerID {
			return models.ErrNotOwner
		}
	}
	return nil
}

// targetFilter narrows a grant query to the given target column.
func targetFilter(q *gorm.DB, target models.Target) *gorm.DB {
	if target.Kind == models.TargetFile {
		return q.Where("file_id = ?", target.ID)
	}
	return q.Where("folder_id = ?", target.ID)
}
