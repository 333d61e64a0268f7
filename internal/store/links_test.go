package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kmehta-dev/drivehub/internal/models"
)

func TestCreateLink(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")
	bob := mustCreateUser(t, s, "bob@example.com")

	file, err := s.CreateFile(ctx, alice.ID, nil, "a.txt", "k", "text/plain", 1)
	if err != nil {
		t.Fatal(err)
	}
	folder := mustCreateFolder(t, s, alice.ID, "docs", nil)

	t.Run("caps permission at edit", func(t *testing.T) {
		if _, err := s.CreateLink(ctx, alice.ID, models.FileTarget(file.ID), models.PermissionManage, nil, nil); !errors.Is(err, models.ErrInvalidPermission) {
			t.Errorf("expected ErrInvalidPermission for manage link, got %v", err)
		}
	})

	t.Run("rejects someone else's resource", func(t *testing.T) {
		if _, err := s.CreateLink(ctx, bob.ID, models.FileTarget(file.ID), models.PermissionView, nil, nil); !errors.Is(err, models.ErrNotOwner) {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
	})

	t.Run("creates a file link", func(t *testing.T) {
		link, err := s.CreateLink(ctx, alice.ID, models.FileTarget(file.ID), models.PermissionView, nil, nil)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if link.ID == uuid.Nil {
			t.Error("expected a generated token")
		}
		if link.DownloadCount != 0 {
			t.Errorf("expected zero download count, got %d", link.DownloadCount)
		}
	})

	t.Run("multiple links per resource are allowed", func(t *testing.T) {
		if _, err := s.CreateLink(ctx, alice.ID, models.FileTarget(file.ID), models.PermissionEdit, nil, nil); err != nil {
			t.Errorf("second link failed: %v", err)
		}
	})

	t.Run("creates a folder link", func(t *testing.T) {
		if _, err := s.CreateLink(ctx, alice.ID, models.FolderTarget(folder.ID), models.PermissionView, nil, nil); err != nil {
			t.Errorf("folder link failed: %v", err)
		}
	})
}

func TestUpdateLink(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")
	bob := mustCreateUser(t, s, "bob@example.com")

	file, err := s.CreateFile(ctx, alice.ID, nil, "a.txt", "k", "text/plain", 1)
	if err != nil {
		t.Fatal(err)
	}
	link, err := s.CreateLink(ctx, alice.ID, models.FileTarget(file.ID), models.PermissionView, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("only the creator may update", func(t *testing.T) {
		perm := models.PermissionEdit
		if _, err := s.UpdateLink(ctx, link.ID, bob.ID, LinkUpdate{Permission: &perm}); !errors.Is(err, models.ErrPermissionDenied) {
			t.Errorf("expected ErrPermissionDenied, got %v", err)
		}
	})

	t.Run("cap applies to updates", func(t *testing.T) {
		perm := models.PermissionManage
		if _, err := s.UpdateLink(ctx, link.ID, alice.ID, LinkUpdate{Permission: &perm}); !errors.Is(err, models.ErrInvalidPermission) {
			t.Errorf("expected ErrInvalidPermission, got %v", err)
		}
	})

	t.Run("sets password and expiry", func(t *testing.T) {
		pw := "hashed-secret"
		exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		updated, err := s.UpdateLink(ctx, link.ID, alice.ID, LinkUpdate{Password: &pw, SetPassword: true, ExpiresAt: &exp, SetExpiry: true})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.Password == nil || *updated.Password != pw {
			t.Error("password not applied")
		}
		reloaded, err := s.GetLink(ctx, link.ID)
		if err != nil {
			t.Fatal(err)
		}
		if reloaded.ExpiresAt == nil || !reloaded.ExpiresAt.Equal(exp) {
			t.Error("expiry not persisted")
		}
	})

	t.Run("clears password and expiry", func(t *testing.T) {
		if _, err := s.UpdateLink(ctx, link.ID, alice.ID, LinkUpdate{SetPassword: true, SetExpiry: true}); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		reloaded, err := s.GetLink(ctx, link.ID)
		if err != nil {
			t.Fatal(err)
		}
		if reloaded.Password != nil {
			t.Error("password not cleared")
		}
		if reloaded.ExpiresAt != nil {
			t.Error("expiry not cleared")
		}
	})
}

func TestRevokeLink(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")
	bob := mustCreateUser(t, s, "bob@example.com")

	file, err := s.CreateFile(ctx, alice.ID, nil, "a.txt", "k", "text/plain", 1)
	if err != nil {
		t.Fatal(err)
	}
	link, err := s.CreateLink(ctx, alice.ID, models.FileTarget(file.ID), models.PermissionView, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.RevokeLink(ctx, link.ID, bob.ID); !errors.Is(err, models.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied for non-creator, got %v", err)
	}
	if err := s.RevokeLink(ctx, link.ID, alice.ID); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if _, err := s.GetLink(ctx, link.ID); !errors.Is(err, models.ErrLinkNotFound) {
		t.Errorf("expected ErrLinkNotFound after revoke, got %v", err)
	}
}

func TestIncrementDownloadCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")

	file, err := s.CreateFile(ctx, alice.ID, nil, "a.txt", "k", "text/plain", 1)
	if err != nil {
		t.Fatal(err)
	}
	link, err := s.CreateLink(ctx, alice.ID, models.FileTarget(file.ID), models.PermissionView, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("missing link", func(t *testing.T) {
		if err := s.IncrementDownloadCount(ctx, uuid.New()); !errors.Is(err, models.ErrLinkNotFound) {
			t.Errorf("expected ErrLinkNotFound, got %v", err)
		}
	})

	t.Run("concurrent increments lose no updates", func(t *testing.T) {
		const n = 25
		var g errgroup.Group
		for i := 0; i < n; i++ {
			g.Go(func() error {
				return s.IncrementDownloadCount(ctx, link.ID)
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("increment failed: %v", err)
		}

		reloaded, err := s.GetLink(ctx, link.ID)
		if err != nil {
			t.Fatal(err)
		}
		if reloaded.DownloadCount != n {
			t.Errorf("expected count %d, got %d", n, reloaded.DownloadCount)
		}
	})
}
