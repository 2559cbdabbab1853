package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AssetType string

const (
	AssetTypeFile  AssetType = "file"
	AssetTypeImage AssetType = "image"
	AssetTypeCode  AssetType = "code"
	AssetTypeDoc   AssetType = "doc"
)

func (t AssetType) Valid() bool {
	switch t {
	case AssetTypeFile, AssetTypeImage, AssetTypeCode, AssetTypeDoc:
		return true
	}
	return false
}

// Keys stored in Asset.FileMeta.
const (
	FileMetaMIME   = "mime"
	FileMetaSize   = "size"
	FileMetaETag   = "etag"
	FileMetaSHA256 = "sha256"
)

type Asset struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"project_id"`
	UploaderID  *uuid.UUID        `gorm:"type:uuid;index" json:"uploader_id"`
	Name        string            `gorm:"type:varchar(255);not null;default:''" json:"name"`
	Bucket      string            `gorm:"type:text;not null" json:"-"`
	S3Key       string            `gorm:"column:s3_key;type:text;not null;uniqueIndex" json:"file"`
	AssetType   AssetType         `gorm:"type:varchar(10);not null;default:file" json:"asset_type"`
	Description string            `gorm:"type:text;not null;default:''" json:"description"`
	FileMeta    datatypes.JSONMap `gorm:"type:jsonb" swaggertype:"object" json:"file_meta"`

	UploadedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP;index" json:"uploaded_at"`

	// Asset <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Asset <-> User
	Uploader *User `gorm:"foreignKey:UploaderID;references:ID;constraint:OnDelete:SET NULL,OnUpdate:CASCADE;" json:"-"`
}

func (Asset) TableName() string { return "assets" }
