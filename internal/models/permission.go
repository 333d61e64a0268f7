package models

import "github.com/google/uuid"

// Permission is an ordered access level. The model is purely additive:
// when several grants apply, the highest level wins.
type Permission string

const (
	PermissionNone   Permission = "none"
	PermissionView   Permission = "view"
	PermissionEdit   Permission = "edit"
	PermissionManage Permission = "manage"
)

// Rank returns the comparable ordering of a permission level.
// Unknown values rank below none.
func (p Permission) Rank() int {
	switch p {
	case PermissionView:
		return 1
	case PermissionEdit:
		return 2
	case PermissionManage:
		return 3
	case PermissionNone:
		return 0
	}
	return -1
}

// Valid reports whether p is a grantable level (none is not grantable).
func (p Permission) Valid() bool {
	return p == PermissionView || p == PermissionEdit || p == PermissionManage
}

// Linkable reports whether p may be carried by an anonymous share link.
// Links are capped below manage.
func (p Permission) Linkable() bool {
	return p == PermissionView || p == PermissionEdit
}

// AtLeast reports whether p confers q.
func (p Permission) AtLeast(q Permission) bool {
	return p.Rank() >= q.Rank()
}

// MaxPermission returns the higher of two levels.
func MaxPermission(a, b Permission) Permission {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// TargetKind discriminates what a grant points at.
type TargetKind string

const (
	TargetFile   TargetKind = "file"
	TargetFolder TargetKind = "folder"
)

// Target identifies the resource a Share or ShareLink applies to. Carrying
// the kind explicitly keeps the file-or-folder choice a type-level fact
// instead of a pair of nullable foreign keys validated at runtime.
type Target struct {
	Kind TargetKind
	ID   uuid.UUID
}

func FileTarget(id uuid.UUID) Target   { return Target{Kind: TargetFile, ID: id} }
func FolderTarget(id uuid.UUID) Target { return Target{Kind: TargetFolder, ID: id} }

// Validate checks the kind discriminator and a non-zero id.
func (t Target) Validate() error {
	if t.Kind != TargetFile && t.Kind != TargetFolder {
		return ErrExclusiveTarget
	}
	if t.ID == uuid.Nil {
		return ErrExclusiveTarget
	}
	return nil
}
