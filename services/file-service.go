package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"projecthub/logging"
	"projecthub/models"
	"projecthub/realtime"
	"projecthub/storage"
)

// FileService pairs disk objects with their Mongo metadata rows. Upload is
// object-first; if the row insert fails the object is removed so nothing is
// orphaned.
type FileService struct {
	filesCollection   *mongo.Collection
	foldersCollection *mongo.Collection
	store             *storage.DiskStore
	hub               *realtime.Hub
}

func NewFileService(filesCollection, foldersCollection *mongo.Collection, store *storage.DiskStore, hub *realtime.Hub) *FileService {
	return &FileService{
		filesCollection:   filesCollection,
		foldersCollection: foldersCollection,
		store:             store,
		hub:               hub,
	}
}

func (s *FileService) UploadFile(ctx context.Context, projectID, folderID, name, mimeType, uploadedBy string, r io.Reader) (*models.StoredFile, error) {
	if name == "" {
		return nil, fmt.Errorf("file name is required")
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	key := storage.BuildKey(storage.PurposeProjects, projectID, name)
	size, err := s.store.Save(key, r)
	if err != nil {
		return nil, err
	}

	file := &models.StoredFile{
		ID:         primitive.NewObjectID(),
		ProjectID:  projectID,
		FolderID:   folderID,
		Name:       name,
		StorageKey: key,
		Size:       size,
		MimeType:   mimeType,
		UploadedBy: uploadedBy,
		UploadedAt: time.Now(),
	}
	if _, err := s.filesCollection.InsertOne(ctx, file); err != nil {
		if rmErr := s.store.Delete(key); rmErr != nil {
			logging.Logger.Errorf("Event ID: UPLOAD_CLEANUP_FAILED, Description: Orphaned object %s could not be removed: %v", key, rmErr)
		}
		return nil, fmt.Errorf("failed to store file metadata: %v", err)
	}

	s.hub.Invalidate("files", file.ID.Hex(), projectID)
	return file, nil
}

// SaveObject stores bytes for a non-project purpose (avatars, announcement
// images, chat attachments) and returns the public URL. No metadata row.
func (s *FileService) SaveObject(purpose, scope, name string, r io.Reader) (string, error) {
	key := storage.BuildKey(purpose, scope, name)
	if _, err := s.store.Save(key, r); err != nil {
		return "", err
	}
	return storage.PublicURL(key), nil
}

func (s *FileService) ListFiles(ctx context.Context, projectID, folderID string) ([]models.StoredFile, error) {
	filter := bson.M{"projectId": projectID}
	if folderID != "" {
		filter["folderId"] = folderID
	}
	cursor, err := s.filesCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve files: %v", err)
	}
	defer cursor.Close(ctx)

	var files []models.StoredFile
	for cursor.Next(ctx) {
		var file models.StoredFile
		if err := cursor.Decode(&file); err != nil {
			return nil, fmt.Errorf("failed to decode file: %v", err)
		}
		files = append(files, file)
	}
	return files, cursor.Err()
}

func (s *FileService) DeleteFile(ctx context.Context, fileID string) error {
	objectID, err := primitiveObjectID(fileID)
	if err != nil {
		return err
	}
	var file models.StoredFile
	if err := s.filesCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&file); err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("file not found")
		}
		return err
	}

	if _, err := s.filesCollection.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return fmt.Errorf("failed to delete file metadata: %v", err)
	}
	if err := s.store.Delete(file.StorageKey); err != nil {
		logging.Logger.Errorf("Event ID: FILE_OBJECT_DELETE_FAILED, Description: Object %s could not be removed: %v", file.StorageKey, err)
	}

	s.hub.Invalidate("files", fileID, file.ProjectID)
	return nil
}

func (s *FileService) CreateFolder(ctx context.Context, projectID, name, parentID, createdBy string) (*models.Folder, error) {
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}
	folder := &models.Folder{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		Name:      name,
		ParentID:  parentID,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	if _, err := s.foldersCollection.InsertOne(ctx, folder); err != nil {
		return nil, fmt.Errorf("failed to create folder: %v", err)
	}
	s.hub.Invalidate("folders", folder.ID.Hex(), projectID)
	return folder, nil
}

func (s *FileService) ListFolders(ctx context.Context, projectID string) ([]models.Folder, error) {
	cursor, err := s.foldersCollection.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve folders: %v", err)
	}
	defer cursor.Close(ctx)

	var folders []models.Folder
	for cursor.Next(ctx) {
		var folder models.Folder
		if err := cursor.Decode(&folder); err != nil {
			return nil, fmt.Errorf("failed to decode folder: %v", err)
		}
		folders = append(folders, folder)
	}
	return folders, cursor.Err()
}

// DeleteFolder removes the folder row; contained files keep their rows but
// lose the folder reference.
func (s *FileService) DeleteFolder(ctx context.Context, folderID string) error {
	objectID, err := primitiveObjectID(folderID)
	if err != nil {
		return err
	}
	result, err := s.foldersCollection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete folder: %v", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("folder not found")
	}
	if _, err := s.filesCollection.UpdateMany(ctx, bson.M{"folderId": folderID}, bson.M{"$set": bson.M{"folderId": ""}}); err != nil {
		return fmt.Errorf("failed to detach folder files: %v", err)
	}
	s.hub.Invalidate("folders", folderID, "")
	return nil
}

// DeleteByProject is the project-deletion cascade for storage.
func (s *FileService) DeleteByProject(ctx context.Context, projectID string) error {
	files, err := s.ListFiles(ctx, projectID, "")
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := s.store.Delete(file.StorageKey); err != nil {
			logging.Logger.Errorf("Event ID: FILE_OBJECT_DELETE_FAILED, Description: Object %s could not be removed: %v", file.StorageKey, err)
		}
	}
	if _, err := s.filesCollection.DeleteMany(ctx, bson.M{"projectId": projectID}); err != nil {
		return fmt.Errorf("failed to delete file rows: %v", err)
	}
	if _, err := s.foldersCollection.DeleteMany(ctx, bson.M{"projectId": projectID}); err != nil {
		return fmt.Errorf("failed to delete folder rows: %v", err)
	}
	return nil
}
