package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kmehta-dev/drivehub/internal/models"
)

func TestCreateShare(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")
	bob := mustCreateUser(t, s, "bob@example.com")

	folder := mustCreateFolder(t, s, alice.ID, "docs", nil)
	file, err := s.CreateFile(ctx, alice.ID, nil, "a.txt", "k", "text/plain", 1)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("rejects invalid permission", func(t *testing.T) {
		if _, err := s.CreateShare(ctx, alice.ID, models.FileTarget(file.ID), bob.ID, "admin", nil); !errors.Is(err, models.ErrInvalidPermission) {
			t.Errorf("expected ErrInvalidPermission, got %v", err)
		}
	})

	t.Run("rejects sharing someone else's resource", func(t *testing.T) {
		if _, err := s.CreateShare(ctx, bob.ID, models.FileTarget(file.ID), alice.ID, models.PermissionView, nil); !errors.Is(err, models.ErrNotOwner) {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
	})

	t.Run("rejects unknown recipient", func(t *testing.T) {
		if _, err := s.CreateShare(ctx, alice.ID, models.FileTarget(file.ID), uuid.New(), models.PermissionView, nil); !errors.Is(err, models.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("rejects missing target", func(t *testing.T) {
		if _, err := s.CreateShare(ctx, alice.ID, models.FileTarget(uuid.New()), bob.ID, models.PermissionView, nil); !errors.Is(err, models.ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound, got %v", err)
		}
	})

	t.Run("creates a file share", func(t *testing.T) {
		share, err := s.CreateShare(ctx, alice.ID, models.FileTarget(file.ID), bob.ID, models.PermissionEdit, nil)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if share.Token == "" {
			t.Error("expected a generated token")
		}
		if !share.IsActive {
			t.Error("expected share to start active")
		}
	})

	t.Run("rejects duplicate active grant for the same pair", func(t *testing.T) {
		if _, err := s.CreateShare(ctx, alice.ID, models.FileTarget(file.ID), bob.ID, models.PermissionView, nil); !errors.Is(err, models.ErrDuplicateShare) {
			t.Errorf("expected ErrDuplicateShare, got %v", err)
		}
	})

	t.Run("allows re-grant after deactivation", func(t *testing.T) {
		shares, _ := s.ListSharesBy(ctx, alice.ID)
		if len(shares) != 1 {
			t.Fatalf("expected 1 share, got %d", len(shares))
		}
		inactive := false
		if _, err := s.UpdateShare(ctx, shares[0].ID, alice.ID, ShareUpdate{IsActive: &inactive}); err != nil {
			t.Fatalf("deactivate failed: %v", err)
		}
		if _, err := s.CreateShare(ctx, alice.ID, models.FileTarget(file.ID), bob.ID, models.PermissionView, nil); err != nil {
			t.Errorf("expected re-grant after deactivation, got %v", err)
		}
	})

	t.Run("creates a folder share", func(t *testing.T) {
		if _, err := s.CreateShare(ctx, alice.ID, models.FolderTarget(folder.ID), bob.ID, models.PermissionManage, nil); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	})
}

func TestShareTargetExclusivity(t *testing.T) {
	s := newTestStore(t)
	alice := mustCreateUser(t, s, "alice@example.com")
	bob := mustCreateUser(t, s, "bob@example.com")

	folder := mustCreateFolder(t, s, alice.ID, "docs", nil)
	file, err := s.CreateFile(context.Background(), alice.ID, nil, "a.txt", "k", "text/plain", 1)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("rejects a share with both targets set", func(t *testing.T) {
		share := models.Share{
			ID:           uuid.New(),
			SharedByID:   alice.ID,
			SharedWithID: bob.ID,
			FileID:       &file.ID,
			FolderID:     &folder.ID,
			Permission:   models.PermissionView,
			Token:        "t-both",
			IsActive:     true,
		}
		if err := s.db.Create(&share).Error; !errors.Is(err, models.ErrExclusiveTarget) {
			t.Errorf("expected ErrExclusiveTarget, got %v", err)
		}
	})

	t.Run("rejects a share with no target", func(t *testing.T) {
		share := models.Share{
			ID:           uuid.New(),
			SharedByID:   alice.ID,
			SharedWithID: bob.ID,
			Permission:   models.PermissionView,
			Token:        "t-none",
			IsActive:     true,
		}
		if err := s.db.Create(&share).Error; !errors.Is(err, models.ErrExclusiveTarget) {
			t.Errorf("expected ErrExclusiveTarget, got %v", err)
		}
	})
}

func TestUpdateShare(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")
	bob := mustCreateUser(t, s, "bob@example.com")

	file, err := s.CreateFile(ctx, alice.ID, nil, "a.txt", "k", "text/plain", 1)
	if err != nil {
		t.Fatal(err)
	}
	share, err := s.CreateShare(ctx, alice.ID, models.FileTarget(file.ID), bob.ID, models.PermissionView, nil)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("only the grantor may update", func(t *testing.T) {
		perm := models.PermissionEdit
		if _, err := s.UpdateShare(ctx, share.ID, bob.ID, ShareUpdate{Permission: &perm}); !errors.Is(err, models.ErrPermissionDenied) {
			t.Errorf("expected ErrPermissionDenied, got %v", err)
		}
	})

	t.Run("rejects invalid permission", func(t *testing.T) {
		bad := models.Permission("owner")
		if _, err := s.UpdateShare(ctx, share.ID, alice.ID, ShareUpdate{Permission: &bad}); !errors.Is(err, models.ErrInvalidPermission) {
			t.Errorf("expected ErrInvalidPermission, got %v", err)
		}
	})

	t.Run("updates permission and expiry", func(t *testing.T) {
		perm := models.PermissionEdit
		exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		updated, err := s.UpdateShare(ctx, share.ID, alice.ID, ShareUpdate{Permission: &perm, ExpiresAt: &exp, SetExpiry: true})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.Permission != models.PermissionEdit {
			t.Errorf("expected edit, got %s", updated.Permission)
		}
		if updated.ExpiresAt == nil || !updated.ExpiresAt.Equal(exp) {
			t.Error("expiry not applied")
		}
	})

	t.Run("clears expiry back to never", func(t *testing.T) {
		updated, err := s.UpdateShare(ctx, share.ID, alice.ID, ShareUpdate{SetExpiry: true})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.ExpiresAt != nil {
			t.Error("expiry not cleared")
		}
		reloaded, _ := s.GetShare(ctx, share.ID)
		if reloaded.ExpiresAt != nil {
			t.Error("cleared expiry not persisted")
		}
	})

	t.Run("missing share", func(t *testing.T) {
		if _, err := s.UpdateShare(ctx, uuid.New(), alice.ID, ShareUpdate{}); !errors.Is(err, models.ErrShareNotFound) {
			t.Errorf("expected ErrShareNotFound, got %v", err)
		}
	})
}

func TestShareReactivation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")
	bob := mustCreateUser(t, s, "bob@example.com")

	file, err := s.CreateFile(ctx, alice.ID, nil, "a.txt", "k", "text/plain", 1)
	if err != nil {
		t.Fatal(err)
	}
	first, err := s.CreateShare(ctx, alice.ID, models.FileTarget(file.ID), bob.ID, models.PermissionView, nil)
	if err != nil {
		t.Fatal(err)
	}

	inactive := false
	if _, err := s.UpdateShare(ctx, first.ID, alice.ID, ShareUpdate{IsActive: &inactive}); err != nil {
		t.Fatal(err)
	}
	replacement, err := s.CreateShare(ctx, alice.ID, models.FileTarget(file.ID), bob.ID, models.PermissionEdit, nil)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("reactivation fails while a replacement grant is live", func(t *testing.T) {
		active := true
		if _, err := s.UpdateShare(ctx, first.ID, alice.ID, ShareUpdate{IsActive: &active}); !errors.Is(err, models.ErrDuplicateShare) {
			t.Errorf("expected ErrDuplicateShare, got %v", err)
		}

		var count int64
		if err := s.db.Model(&models.Share{}).
			Where("shared_with_id = ? AND file_id = ? AND is_active = ?", bob.ID, file.ID, true).
			Count(&count).Error; err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("expected exactly 1 active grant for the pair, got %d", count)
		}
	})

	t.Run("reactivation succeeds once the replacement is gone", func(t *testing.T) {
		if err := s.RevokeShare(ctx, replacement.ID, alice.ID); err != nil {
			t.Fatal(err)
		}
		active := true
		updated, err := s.UpdateShare(ctx, first.ID, alice.ID, ShareUpdate{IsActive: &active})
		if err != nil {
			t.Fatalf("reactivation failed: %v", err)
		}
		if !updated.IsActive {
			t.Error("share not reactivated")
		}
	})
}

func TestActiveShareIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")
	bob := mustCreateUser(t, s, "bob@example.com")

	file, err := s.CreateFile(ctx, alice.ID, nil, "a.txt", "k", "text/plain", 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateShare(ctx, alice.ID, models.FileTarget(file.ID), bob.ID, models.PermissionView, nil); err != nil {
		t.Fatal(err)
	}

	// A duplicate active row is blocked by the partial unique index even
	// when the insert bypasses CreateShare entirely.
	dup := models.Share{
		ID:           uuid.New(),
		SharedByID:   alice.ID,
		SharedWithID: bob.ID,
		FileID:       &file.ID,
		Permission:   models.PermissionEdit,
		Token:        "t-dup",
		IsActive:     true,
	}
	err = s.db.Create(&dup).Error
	if err == nil {
		t.Fatal("expected the duplicate active insert to fail")
	}
	if !isUniqueConstraintError(err) {
		t.Errorf("expected a unique constraint violation, got %v", err)
	}

	// An inactive duplicate is outside the index predicate and fine.
	dormant := models.Share{
		ID:           uuid.New(),
		SharedByID:   alice.ID,
		SharedWithID: bob.ID,
		FileID:       &file.ID,
		Permission:   models.PermissionEdit,
		Token:        "t-dormant",
		IsActive:     false,
	}
	if err := s.db.Create(&dormant).Error; err != nil {
		t.Errorf("inactive duplicate should be allowed, got %v", err)
	}
}

func TestRevokeShare(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")
	bob := mustCreateUser(t, s, "bob@example.com")

	file, err := s.CreateFile(ctx, alice.ID, nil, "a.txt", "k", "text/plain", 1)
	if err != nil {
		t.Fatal(err)
	}
	share, err := s.CreateShare(ctx, alice.ID, models.FileTarget(file.ID), bob.ID, models.PermissionView, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.RevokeShare(ctx, share.ID, bob.ID); !errors.Is(err, models.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied for non-grantor, got %v", err)
	}
	if err := s.RevokeShare(ctx, share.ID, alice.ID); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if _, err := s.GetShare(ctx, share.ID); !errors.Is(err, models.ErrShareNotFound) {
		t.Errorf("expected ErrShareNotFound after revoke, got %v", err)
	}
}

func TestSharedWith(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")
	bob := mustCreateUser(t, s, "bob@example.com")

	folder := mustCreateFolder(t, s, alice.ID, "docs", nil)
	live, err := s.CreateFile(ctx, alice.ID, nil, "live.txt", "k1", "text/plain", 1)
	if err != nil {
		t.Fatal(err)
	}
	stale, err := s.CreateFile(ctx, alice.ID, nil, "stale.txt", "k2", "text/plain", 1)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.CreateShare(ctx, alice.ID, models.FolderTarget(folder.ID), bob.ID, models.PermissionView, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateShare(ctx, alice.ID, models.FileTarget(live.ID), bob.ID, models.PermissionView, nil); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if _, err := s.CreateShare(ctx, alice.ID, models.FileTarget(stale.ID), bob.ID, models.PermissionView, &past); err != nil {
		t.Fatal(err)
	}

	folders, files, err := s.SharedWith(ctx, bob.ID)
	if err != nil {
		t.Fatalf("shared-with failed: %v", err)
	}
	if len(folders) != 1 || folders[0].ID != folder.ID {
		t.Errorf("unexpected folders %v", folders)
	}
	if len(files) != 1 || files[0].ID != live.ID {
		t.Errorf("expected only the unexpired file share, got %v", files)
	}
}
