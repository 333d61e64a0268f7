package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// folderNameRe restricts folder names to letters, digits, underscores,
// hyphens and periods.
var folderNameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ValidResourceName reports whether name is acceptable for a folder or a
// renamed file: non-empty, at most 255 characters, restricted charset.
func ValidResourceName(name string) bool {
	return len(name) > 0 && len(name) <= 255 && folderNameRe.MatchString(name)
}

type Folder struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID  `json:"userId" gorm:"type:uuid;index;not null"`
	ParentFolderID *uuid.UUID `json:"parentFolderId" gorm:"type:uuid;index"`
	Name           string     `json:"name" gorm:"size:255;not null"`
	CreatedAt      time.Time  `json:"createdAt" gorm:"autoCreateTime"`

	Folders []Folder `json:"-" gorm:"foreignKey:ParentFolderID;constraint:OnDelete:CASCADE"`
	Files   []File   `json:"-" gorm:"foreignKey:FolderID;constraint:OnDelete:CASCADE"`
}
