package model

import (
	"time"

	"gorm.io/gorm"
)

type SyncStatus string

const (
	StatusSuccess SyncStatus = "SUCCESS"
	StatusFailed  SyncStatus = "FAILED"
)

type History struct {
	gorm.Model
	Status            SyncStatus `gorm:"not null"`
	ItemPath          string     `gorm:"not null"`
	ItemKind          string     `gorm:"not null"`
	Direction         string     `gorm:"not null"`
	Message           string
	ErrMsg            string
	ChangesMade       bool
	ConflictsResolved int
	BytesTransferred  int64
	SyncedAt          time.Time `gorm:"not null"`
}
