// Package authz computes effective permissions for actors on files and
// folders. Policy lives here as free functions over stored entities; the
// store stays a dumb record keeper.
package authz

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kmehta-dev/drivehub/internal/models"
	"github.com/kmehta-dev/drivehub/internal/store"
)

// Resolver answers "what may this actor do to this resource". Checks are
// stateless and re-walk the ancestor chain on every call; folder depth is
// small and the walk is read-only, so nothing is cached.
type Resolver struct {
	store *store.Store
}

func New(s *store.Store) *Resolver {
	return &Resolver{store: s}
}

// Resolve computes the effective permission of an authenticated actor on the
// target: ownership short-circuits to manage, otherwise the maximum of the
// direct grant and every live ancestor-folder grant. Grants are additive;
// there is no deny override. Expiry is evaluated lazily against the current
// instant.
func (r *Resolver) Resolve(ctx context.Context, actorID uuid.UUID, target models.Target) (models.Permission, error) {
	now := time.Now()
	best := models.PermissionNone

	var walkFrom *uuid.UUID
	switch target.Kind {
	case models.TargetFile:
		file, err := r.store.GetFile(ctx, target.ID)
		if err != nil {
			return models.PermissionNone, err
		}
		if file.UserID == actorID {
			return models.PermissionManage, nil
		}
		share, err := r.store.ActiveShareForFile(ctx, actorID, file.ID)
		if err != nil {
			return models.PermissionNone, err
		}
		if share != nil && share.LiveAt(now) {
			best = models.MaxPermission(best, share.Permission)
		}
		walkFrom = file.FolderID

	case models.TargetFolder:
		folder, err := r.store.GetFolder(ctx, target.ID)
		if err != nil {
			return models.PermissionNone, err
		}
		if folder.UserID == actorID {
			return models.PermissionManage, nil
		}
		id := folder.ID
		walkFrom = &id

	default:
		return models.PermissionNone, models.ErrExclusiveTarget
	}

	if walkFrom == nil {
		return best, nil
	}

	// Folder grants cascade downward: check the containing folder itself,
	// then each ancestor up to the forest root.
	chain, err := r.folderChain(ctx, *walkFrom)
	if err != nil {
		return models.PermissionNone, err
	}
	for _, folderID := range chain {
		share, err := r.store.ActiveShareForFolder(ctx, actorID, folderID)
		if err != nil {
			return models.PermissionNone, err
		}
		if share != nil && share.LiveAt(now) {
			best = models.MaxPermission(best, share.Permission)
		}
	}
	return best, nil
}

// Require fails with ErrPermissionDenied unless the actor's effective
// permission reaches min.
func (r *Resolver) Require(ctx context.Context, actorID uuid.UUID, target models.Target, min models.Permission) error {
	level, err := r.Resolve(ctx, actorID, target)
	if err != nil {
		return err
	}
	if !level.AtLeast(min) {
		return models.ErrPermissionDenied
	}
	return nil
}

// ResolveLink validates anonymous access by token and, on success,
// durably increments the download counter exactly once and returns the
// link. Failure order: unknown/inactive token, then expiry, then password.
func (r *Resolver) ResolveLink(ctx context.Context, token uuid.UUID, password string) (*models.ShareLink, error) {
	link, err := r.store.GetLink(ctx, token)
	if err != nil {
		return nil, err
	}
	if !link.IsActive {
		return nil, models.ErrLinkNotFound
	}
	if link.Expired(time.Now()) {
		return nil, models.ErrLinkExpired
	}
	if link.Password != nil && *link.Password != password {
		return nil, models.ErrLinkPassword
	}
	if err := r.store.IncrementDownloadCount(ctx, link.ID); err != nil {
		return nil, err
	}
	link.DownloadCount++
	return link, nil
}

// LinkCovers reports whether a resolved link's grant reaches the given
// file: either the link targets that file directly, or it targets a folder
// that is the file's container or one of its ancestors.
func (r *Resolver) LinkCovers(ctx context.Context, link *models.ShareLink, fileID uuid.UUID) (bool, error) {
	target := link.Target()
	if target.Kind == models.TargetFile {
		return target.ID == fileID, nil
	}

	file, err := r.store.GetFile(ctx, fileID)
	if err != nil {
		return false, err
	}
	if file.FolderID == nil {
		return false, nil
	}
	chain, err := r.folderChain(ctx, *file.FolderID)
	if err != nil {
		return false, err
	}
	for _, folderID := range chain {
		if folderID == target.ID {
			return true, nil
		}
	}
	return false, nil
}

// folderChain returns the folder itself followed by its proper ancestors,
// nearest-first.
func (r *Resolver) folderChain(ctx context.Context, from uuid.UUID) ([]uuid.UUID, error) {
	ancestors, err := r.store.Ancestors(ctx, from)
	if err != nil {
		return nil, err
	}
	chain := make([]uuid.UUID, 0, len(ancestors)+1)
	chain = append(chain, from)
	for _, a := range ancestors {
		chain = append(chain, a.ID)
	}
	return chain, nil
}
