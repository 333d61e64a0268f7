package models

import (
	"time"

	"github.com/google/uuid"
)

// File is a stored object. Size and MimeType are derived from the uploaded
// blob at creation time and are never user-editable; StorageKey addresses
// the bytes in the blob store and is distinct from the display name.
type File struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID  `json:"userId" gorm:"type:uuid;index;not null"`
	FolderID   *uuid.UUID `json:"folderId" gorm:"type:uuid;index"`
	Name       string     `json:"name" gorm:"size:255;not null"`
	StorageKey string     `json:"-" gorm:"not null"`
	MimeType   string     `json:"mimeType" gorm:"not null"`
	Size       int64      `json:"size" gorm:"not null"`
	CreatedAt  time.Time  `json:"createdAt" gorm:"autoCreateTime"`
}
