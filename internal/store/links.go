package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kmehta-dev/drivehub/internal/models"
)

// CreateLink mints an anonymous share link for the target. The creator must
// own the target; the permission is capped at edit. A resource may carry any
// number of links.
func (s *Store) CreateLink(ctx context.Context, ownerID uuid.UUID, target models.Target, permission models.Permission, expiresAt *time.Time, password *string) (*models.ShareLink, error) {
	if !permission.Linkable() {
		return nil, models.ErrInvalidPermission
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}

	link := models.ShareLink{
		ID:          uuid.New(),
		CreatedByID: ownerID,
		Permission:  permission,
		ExpiresAt:   expiresAt,
		Password:    password,
		IsActive:    true,
	}
	if err := models.LinkForTarget(&link, target); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkTargetOwnership(tx, target, ownerID); err != nil {
			return err
		}
		return tx.Create(&link).Error
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// GetLink fetches a link by token regardless of state; liveness is the
// resolver's concern.
func (s *Store) GetLink(ctx context.Context, token uuid.UUID) (*models.ShareLink, error) {
	var link models.ShareLink
	if err := s.db.WithContext(ctx).Where("id = ?", token).First(&link).Error; err != nil {
		return nil, convertNotFoundError(err, models.ErrLinkNotFound)
	}
	return &link, nil
}

// ListLinksBy returns every link the user has created.
func (s *Store) ListLinksBy(ctx context.Context, ownerID uuid.UUID) ([]models.ShareLink, error) {
	var links []models.ShareLink
	err := s.db.WithContext(ctx).
		Where("created_by_id = ?", ownerID).
		Order("created_at DESC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// LinkUpdate carries the mutable link fields. Pointer fields are unchanged
// when nil; SetExpiry and SetPassword distinguish clearing a field (flag
// true, pointer nil) from leaving it alone.
type LinkUpdate struct {
	Permission  *models.Permission
	ExpiresAt   *time.Time
	SetExpiry   bool
	Password    *string
	SetPassword bool
	IsActive    *bool
}

// UpdateLink applies an update on behalf of requester, who must be the
// creator. The edit cap applies to permission changes too.
func (s *Store) UpdateLink(ctx context.Context, id, requesterID uuid.UUID, upd LinkUpdate) (*models.ShareLink, error) {
	if upd.Permission != nil && !upd.Permission.Linkable() {
		return nil, models.ErrInvalidPermission
	}

	var link models.ShareLink
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&link).Error; err != nil {
			return convertNotFoundError(err, models.ErrLinkNotFound)
		}
		if link.CreatedByID != requesterID {
			return models.ErrPermissionDenied
		}

		fields := map[string]any{}
		if upd.Permission != nil {
			link.Permission = *upd.Permission
			fields["permission"] = *upd.Permission
		}
		if upd.SetExpiry {
			link.ExpiresAt = upd.ExpiresAt
			if upd.ExpiresAt != nil {
				fields["expires_at"] = *upd.ExpiresAt
			} else {
				fields["expires_at"] = nil
			}
		}
		if upd.SetPassword {
			link.Password = upd.Password
			if upd.Password != nil {
				fields["password"] = *upd.Password
			} else {
				fields["password"] = nil
			}
		}
		if upd.IsActive != nil {
			link.IsActive = *upd.IsActive
			fields["is_active"] = *upd.IsActive
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Model(&models.ShareLink{}).Where("id = ?", id).Updates(fields).Error
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// RevokeLink deletes a link. Only the creator may revoke.
func (s *Store) RevokeLink(ctx context.Context, id, requesterID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link models.ShareLink
		if err := tx.Where("id = ?", id).First(&link).Error; err != nil {
			return convertNotFoundError(err, models.ErrLinkNotFound)
		}
		if link.CreatedByID != requesterID {
			return models.ErrPermissionDenied
		}
		return tx.Where("id = ?", id).Delete(&models.ShareLink{}).Error
	})
}

// IncrementDownloadCount bumps the counter with a single SQL-level
// increment, so concurrent successful accesses never lose updates.
func (s *Store) IncrementDownloadCount(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&models.ShareLink{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrLinkNotFound
	}
	return nil
}
