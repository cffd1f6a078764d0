package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Folder struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProjectID string             `json:"projectId" bson:"projectId"`
	Name      string             `json:"name" bson:"name"`
	ParentID  string             `json:"parentId,omitempty" bson:"parentId,omitempty"`
	CreatedBy string             `json:"createdBy" bson:"createdBy"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// StoredFile is the metadata row; the bytes live on disk under the storage
// key, which doubles as the public URL path.
type StoredFile struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProjectID  string             `json:"projectId" bson:"projectId"`
	FolderID   string             `json:"folderId,omitempty" bson:"folderId,omitempty"`
	Name       string             `json:"name" bson:"name"`
	StorageKey string             `json:"storageKey" bson:"storageKey"`
	Size       int64              `json:"size" bson:"size"`
	MimeType   string             `json:"mimeType" bson:"mimeType"`
	UploadedBy string             `json:"uploadedBy" bson:"uploadedBy"`
	UploadedAt time.Time          `json:"uploadedAt" bson:"uploadedAt"`
}
