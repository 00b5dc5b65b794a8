package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImageBlob stores privately uploaded cover art. Entries reference a blob by
// its opaque Key in their image field; externally hosted covers are plain URLs
// and never touch this table.
type ImageBlob struct {
	BaseUUIDModel
	Key         string    `gorm:"type:text;not null;uniqueIndex" json:"key"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"       json:"-"`
	ContentType string    `gorm:"type:varchar(100);not null"     json:"contentType"`
	Data        []byte    `gorm:"type:bytea;not null"            json:"-"`
}

func (i *ImageBlob) BeforeCreate(tx *gorm.DB) error {
	if i.Key == "" || i.ContentType == "" || len(i.Data) == 0 {
		return gorm.ErrInvalidValue
	}
	return nil
}
