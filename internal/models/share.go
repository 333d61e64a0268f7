package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Share is a direct user-to-user grant on a single file or folder.
// Exactly one of FileID/FolderID is set; construct rows through
// ShareForTarget so the exclusivity holds by construction. The partial
// unique indexes below hold "at most one active share per (recipient,
// resource)" in the database itself, so concurrent grants cannot
// race-create duplicates.
type Share struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	SharedByID   uuid.UUID  `json:"sharedById" gorm:"type:uuid;index;not null"`
	SharedWithID uuid.UUID  `json:"sharedWithId" gorm:"type:uuid;index;not null;uniqueIndex:uniq_active_file_share;uniqueIndex:uniq_active_folder_share"`
	FileID       *uuid.UUID `json:"fileId" gorm:"type:uuid;index;uniqueIndex:uniq_active_file_share,where:is_active"`
	FolderID     *uuid.UUID `json:"folderId" gorm:"type:uuid;index;uniqueIndex:uniq_active_folder_share,where:is_active"`
	Permission   Permission `json:"permission" gorm:"size:16;not null"`
	Token        string     `json:"token" gorm:"uniqueIndex;not null"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	ExpiresAt    *time.Time `json:"expiresAt"`
	IsActive     bool       `json:"isActive" gorm:"not null"`

	SharedBy   *User   `json:"-" gorm:"foreignKey:SharedByID;constraint:OnDelete:CASCADE"`
	SharedWith *User   `json:"-" gorm:"foreignKey:SharedWithID;constraint:OnDelete:CASCADE"`
	File       *File   `json:"-" gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
	Folder     *Folder `json:"-" gorm:"foreignKey:FolderID;constraint:OnDelete:CASCADE"`
}

// ShareForTarget binds a share to exactly one resource.
func ShareForTarget(s *Share, t Target) error {
	if err := t.Validate(); err != nil {
		return err
	}
	id := t.ID
	switch t.Kind {
	case TargetFile:
		s.FileID = &id
		s.FolderID = nil
	case TargetFolder:
		s.FolderID = &id
		s.FileID = nil
	}
	return nil
}

// Target returns the tagged resource reference of the share.
func (s *Share) Target() Target {
	if s.FileID != nil {
		return FileTarget(*s.FileID)
	}
	if s.FolderID != nil {
		return FolderTarget(*s.FolderID)
	}
	return Target{}
}

// LiveAt reports whether the share grants anything at the given instant.
// A non-nil expiry strictly in the past counts as inactive even while
// IsActive is still true (lazy expiry).
func (s *Share) LiveAt(now time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.ExpiresAt != nil && s.ExpiresAt.Before(now) {
		return false
	}
	return true
}

// BeforeCreate re-checks the file-xor-folder invariant before any insert,
// including raw creates that bypass ShareForTarget.
func (s *Share) BeforeCreate(tx *gorm.DB) error {
	if (s.FileID == nil) == (s.FolderID == nil) {
		return ErrExclusiveTarget
	}
	if !s.Permission.Valid() {
		return ErrInvalidPermission
	}
	return nil
}
