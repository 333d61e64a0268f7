package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/kmehta-dev/drivehub/internal/models"
)

func mustCreateFolder(t *testing.T, s *Store, ownerID uuid.UUID, name string, parentID *uuid.UUID) *models.Folder {
	t.Helper()
	folder, err := s.CreateFolder(context.Background(), ownerID, name, parentID)
	if err != nil {
		t.Fatalf("failed to create folder %s: %v", name, err)
	}
	return folder
}

func TestCreateFolder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")
	bob := mustCreateUser(t, s, "bob@example.com")

	t.Run("rejects invalid names", func(t *testing.T) {
		for _, name := range []string{"", "has space", "slash/name", "semi;colon"} {
			if _, err := s.CreateFolder(ctx, alice.ID, name, nil); !errors.Is(err, models.ErrInvalidName) {
				t.Errorf("name %q: expected ErrInvalidName, got %v", name, err)
			}
		}
	})

	t.Run("creates root folder", func(t *testing.T) {
		folder := mustCreateFolder(t, s, alice.ID, "docs", nil)
		if folder.ParentFolderID != nil {
			t.Error("expected nil parent for root folder")
		}
	})

	t.Run("rejects duplicate sibling at root", func(t *testing.T) {
		if _, err := s.CreateFolder(ctx, alice.ID, "docs", nil); !errors.Is(err, models.ErrDuplicateName) {
			t.Errorf("expected ErrDuplicateName, got %v", err)
		}
	})

	t.Run("same name allowed for a different owner", func(t *testing.T) {
		mustCreateFolder(t, s, bob.ID, "docs", nil)
	})

	t.Run("creates nested folder", func(t *testing.T) {
		parent := mustCreateFolder(t, s, alice.ID, "projects", nil)
		child := mustCreateFolder(t, s, alice.ID, "docs", &parent.ID)
		if child.ParentFolderID == nil || *child.ParentFolderID != parent.ID {
			t.Error("child not attached to parent")
		}

		if _, err := s.CreateFolder(ctx, alice.ID, "docs", &parent.ID); !errors.Is(err, models.ErrDuplicateName) {
			t.Errorf("expected ErrDuplicateName for duplicate nested sibling, got %v", err)
		}
	})

	t.Run("rejects parent owned by someone else", func(t *testing.T) {
		parent := mustCreateFolder(t, s, bob.ID, "private", nil)
		if _, err := s.CreateFolder(ctx, alice.ID, "sneaky", &parent.ID); !errors.Is(err, models.ErrFolderNotFound) {
			t.Errorf("expected ErrFolderNotFound, got %v", err)
		}
	})

	t.Run("rejects missing parent", func(t *testing.T) {
		missing := uuid.New()
		if _, err := s.CreateFolder(ctx, alice.ID, "orphan", &missing); !errors.Is(err, models.ErrFolderNotFound) {
			t.Errorf("expected ErrFolderNotFound, got %v", err)
		}
	})
}

func TestAncestors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")

	root := mustCreateFolder(t, s, alice.ID, "root", nil)
	mid := mustCreateFolder(t, s, alice.ID, "mid", &root.ID)
	leaf := mustCreateFolder(t, s, alice.ID, "leaf", &mid.ID)

	ancestors, err := s.Ancestors(ctx, leaf.ID)
	if err != nil {
		t.Fatalf("ancestors failed: %v", err)
	}
	if len(ancestors) != 2 {
		t.Fatalf("expected 2 ancestors, got %d", len(ancestors))
	}
	// Nearest first.
	if ancestors[0].ID != mid.ID || ancestors[1].ID != root.ID {
		t.Error("ancestors not ordered nearest-first")
	}

	ancestors, err = s.Ancestors(ctx, root.ID)
	if err != nil {
		t.Fatalf("ancestors failed: %v", err)
	}
	if len(ancestors) != 0 {
		t.Errorf("expected no ancestors for root, got %d", len(ancestors))
	}
}

func TestRenameFolder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")

	mustCreateFolder(t, s, alice.ID, "a", nil)
	b := mustCreateFolder(t, s, alice.ID, "b", nil)

	if _, err := s.RenameFolder(ctx, b.ID, "bad name"); !errors.Is(err, models.ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
	if _, err := s.RenameFolder(ctx, b.ID, "a"); !errors.Is(err, models.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}

	renamed, err := s.RenameFolder(ctx, b.ID, "c")
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if renamed.Name != "c" {
		t.Errorf("expected name c, got %s", renamed.Name)
	}
}

func TestMoveFolder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")

	root := mustCreateFolder(t, s, alice.ID, "root", nil)
	child := mustCreateFolder(t, s, alice.ID, "child", &root.ID)
	grandchild := mustCreateFolder(t, s, alice.ID, "grandchild", &child.ID)
	other := mustCreateFolder(t, s, alice.ID, "other", nil)

	t.Run("rejects move into itself", func(t *testing.T) {
		if _, err := s.MoveFolder(ctx, root.ID, &root.ID); !errors.Is(err, models.ErrFolderCycle) {
			t.Errorf("expected ErrFolderCycle, got %v", err)
		}
	})

	t.Run("rejects move into a descendant", func(t *testing.T) {
		if _, err := s.MoveFolder(ctx, root.ID, &grandchild.ID); !errors.Is(err, models.ErrFolderCycle) {
			t.Errorf("expected ErrFolderCycle, got %v", err)
		}
	})

	t.Run("rejects duplicate name at destination", func(t *testing.T) {
		mustCreateFolder(t, s, alice.ID, "child", &other.ID)
		if _, err := s.MoveFolder(ctx, child.ID, &other.ID); !errors.Is(err, models.ErrDuplicateName) {
			t.Errorf("expected ErrDuplicateName, got %v", err)
		}
	})

	t.Run("moves to new parent", func(t *testing.T) {
		moved, err := s.MoveFolder(ctx, grandchild.ID, &other.ID)
		if err != nil {
			t.Fatalf("move failed: %v", err)
		}
		if moved.ParentFolderID == nil || *moved.ParentFolderID != other.ID {
			t.Error("folder not reparented")
		}
	})

	t.Run("moves to root", func(t *testing.T) {
		moved, err := s.MoveFolder(ctx, grandchild.ID, nil)
		if err != nil {
			t.Fatalf("move failed: %v", err)
		}
		if moved.ParentFolderID != nil {
			t.Error("expected nil parent after move to root")
		}
	})
}

func TestDeleteFolder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice@example.com")
	bob := mustCreateUser(t, s, "bob@example.com")

	root := mustCreateFolder(t, s, alice.ID, "root", nil)
	sub := mustCreateFolder(t, s, alice.ID, "sub", &root.ID)

	f1, err := s.CreateFile(ctx, alice.ID, &root.ID, "a.txt", "key-a", "text/plain", 10)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateFile(ctx, alice.ID, &sub.ID, "b.txt", "key-b", "text/plain", 20); err != nil {
		t.Fatal(err)
	}

	// Grants on resources inside the subtree must go away with it.
	if _, err := s.CreateShare(ctx, alice.ID, models.FolderTarget(sub.ID), bob.ID, models.PermissionView, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateLink(ctx, alice.ID, models.FileTarget(f1.ID), models.PermissionView, nil, nil); err != nil {
		t.Fatal(err)
	}

	keys, err := s.DeleteFolder(ctx, root.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 storage keys, got %d", len(keys))
	}
	found := map[string]bool{}
	for _, k := range keys {
		found[k] = true
	}
	if !found["key-a"] || !found["key-b"] {
		t.Errorf("unexpected keys %v", keys)
	}

	if _, err := s.GetFolder(ctx, sub.ID); !errors.Is(err, models.ErrFolderNotFound) {
		t.Errorf("expected subfolder gone, got %v", err)
	}
	if _, err := s.GetFile(ctx, f1.ID); !errors.Is(err, models.ErrFileNotFound) {
		t.Errorf("expected file gone, got %v", err)
	}

	shares, err := s.ListSharesBy(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(shares) != 0 {
		t.Errorf("expected shares removed with the subtree, got %d", len(shares))
	}
	links, err := s.ListLinksBy(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 0 {
		t.Errorf("expected links removed with the subtree, got %d", len(links))
	}

	if _, err := s.DeleteFolder(ctx, uuid.New()); !errors.Is(err, models.ErrFolderNotFound) {
		t.Errorf("expected ErrFolderNotFound, got %v", err)
	}
}
