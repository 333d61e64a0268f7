package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultQuotaBytes is the storage quota assigned to new accounts (5 GiB).
const DefaultQuotaBytes int64 = 5 << 30

type User struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email      string    `json:"email" gorm:"uniqueIndex;not null"`
	Password   string    `json:"-" gorm:"not null"`
	QuotaBytes int64     `json:"quotaBytes" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
