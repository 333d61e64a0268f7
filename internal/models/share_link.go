package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShareLink is an anonymous, tokenized grant. The ID doubles as the public
// token. Permission is capped at edit; manage is never grantable by link.
type ShareLink struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedByID   uuid.UUID  `json:"createdById" gorm:"type:uuid;index;not null"`
	FileID        *uuid.UUID `json:"fileId" gorm:"type:uuid;index"`
	FolderID      *uuid.UUID `json:"folderId" gorm:"type:uuid;index"`
	Permission    Permission `json:"permission" gorm:"size:16;not null"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	ExpiresAt     *time.Time `json:"expiresAt"`
	Password      *string    `json:"-"`
	DownloadCount int64      `json:"downloadCount" gorm:"not null;default:0"`
	IsActive      bool       `json:"isActive" gorm:"not null"`

	CreatedBy *User   `json:"-" gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE"`
	File      *File   `json:"-" gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
	Folder    *Folder `json:"-" gorm:"foreignKey:FolderID;constraint:OnDelete:CASCADE"`
}

// LinkForTarget binds a link to exactly one resource.
func LinkForTarget(l *ShareLink, t Target) error {
	if err := t.Validate(); err != nil {
		return err
	}
	id := t.ID
	switch t.Kind {
	case TargetFile:
		l.FileID = &id
		l.FolderID = nil
	case TargetFolder:
		l.FolderID = &id
		l.FileID = nil
	}
	return nil
}

// Target returns the tagged resource reference of the link.
func (l *ShareLink) Target() Target {
	if l.FileID != nil {
		return FileTarget(*l.FileID)
	}
	if l.FolderID != nil {
		return FolderTarget(*l.FolderID)
	}
	return Target{}
}

// Expired reports whether the link is past its expiry at the given instant.
func (l *ShareLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// BeforeCreate enforces the file-xor-folder invariant and the permission
// cap before any insert.
func (l *ShareLink) BeforeCreate(tx *gorm.DB) error {
	if (l.FileID == nil) == (l.FolderID == nil) {
		return ErrExclusiveTarget
	}
	if !l.Permission.Linkable() {
		return ErrInvalidPermission
	}
	return nil
}
