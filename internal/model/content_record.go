package model

import "gorm.io/gorm"

// ContentRecordSlug identifies the only content row.
const ContentRecordSlug = "site"

// ContentRecord stores the encoded site document for the database backends.
// There is exactly one row.
type ContentRecord struct {
	gorm.Model
	Slug        string `gorm:"uniqueIndex;not null"`
	Version     int64  `gorm:"not null;default:0"`
	Content     []byte `gorm:"not null"`
	Compression string // the compression algorithm used to encode the content
}

func (ContentRecord) TableName() string {
	return "site_content"
}
