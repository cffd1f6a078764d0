package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"projecthub/logging"
	"projecthub/models"
	"projecthub/realtime"
	"projecthub/repositories"
)

type ProjectService struct {
	projectsCollection *mongo.Collection
	linksCollection    *mongo.Collection
	tabsCollection     *mongo.Collection
	tasks              *TaskService
	files              *FileService
	chatRepo           *repositories.ChatRepo
	hub                *realtime.Hub
}

func NewProjectService(
	projectsCollection, linksCollection, tabsCollection *mongo.Collection,
	tasks *TaskService,
	files *FileService,
	chatRepo *repositories.ChatRepo,
	hub *realtime.Hub,
) *ProjectService {
	return &ProjectService{
		projectsCollection: projectsCollection,
		linksCollection:    linksCollection,
		tabsCollection:     tabsCollection,
		tasks:              tasks,
		files:              files,
		chatRepo:           chatRepo,
		hub:                hub,
	}
}

func (s *ProjectService) CreateProject(ctx context.Context, name, description, createdBy string) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}

	project := &models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: description,
		Status:      models.ProjectActive,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	result, err := s.projectsCollection.InsertOne(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %v", err)
	}
	project.ID = result.InsertedID.(primitive.ObjectID)

	s.hub.Invalidate("projects", project.ID.Hex(), project.ID.Hex())
	return project, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, projectID string, name, description string, status models.ProjectStatus, imageURL string) (*models.Project, error) {
	objectID, err := primitiveObjectID(projectID)
	if err != nil {
		return nil, err
	}
	if status != "" && !models.ValidProjectStatus(status) {
		return nil, fmt.Errorf("invalid project status: %s", status)
	}

	set := bson.M{"updatedAt": time.Now()}
	if name != "" {
		set["name"] = name
	}
	if description != "" {
		set["description"] = description
	}
	if status != "" {
		set["status"] = status
	}
	if imageURL != "" {
		set["imageUrl"] = imageURL
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var project models.Project
	err = s.projectsCollection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("project not found")
		}
		return nil, fmt.Errorf("failed to update project: %v", err)
	}

	s.hub.Invalidate("projects", projectID, projectID)
	return &project, nil
}

func (s *ProjectService) GetProjectByID(ctx context.Context, projectID string) (*models.Project, error) {
	objectID, err := primitiveObjectID(projectID)
	if err != nil {
		return nil, err
	}
	var project models.Project
	if err := s.projectsCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&project); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("project not found")
		}
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]*models.Project, error) {
	cursor, err := s.projectsCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve projects: %v", err)
	}
	defer cursor.Close(ctx)

	var projects []*models.Project
	for cursor.Next(ctx) {
		var project models.Project
		if err := cursor.Decode(&project); err != nil {
			return nil, fmt.Errorf("failed to decode project: %v", err)
		}
		projects = append(projects, &project)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return projects, nil
}

// DeleteProject removes the project and cascades through everything it owns:
// tasks with their join rows, folders and files with their stored objects,
// links, tabs, and the chat partition.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID string) error {
	objectID, err := primitiveObjectID(projectID)
	if err != nil {
		return err
	}

	result, err := s.projectsCollection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete project: %v", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("project not found")
	}

	if err := s.tasks.DeleteTasksByProject(ctx, projectID); err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_CASCADE_TASKS_FAILED, Description: Task cascade for project %s failed: %v", projectID, err)
	}
	if err := s.files.DeleteByProject(ctx, projectID); err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_CASCADE_FILES_FAILED, Description: File cascade for project %s failed: %v", projectID, err)
	}
	if _, err := s.linksCollection.DeleteMany(ctx, bson.M{"projectId": projectID}); err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_CASCADE_LINKS_FAILED, Description: Link cascade for project %s failed: %v", projectID, err)
	}
	if _, err := s.tabsCollection.DeleteMany(ctx, bson.M{"projectId": projectID}); err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_CASCADE_TABS_FAILED, Description: Tab cascade for project %s failed: %v", projectID, err)
	}
	if s.chatRepo != nil {
		if err := s.chatRepo.DeleteMessagesByProject(projectID); err != nil {
			logging.Logger.Errorf("Event ID: PROJECT_CASCADE_CHAT_FAILED, Description: Chat cascade for project %s failed: %v", projectID, err)
		}
	}

	s.hub.Invalidate("projects", projectID, projectID)
	return nil
}

func (s *ProjectService) AddLink(ctx context.Context, projectID, title, url, createdBy string) (*models.ProjectLink, error) {
	if title == "" || url == "" {
		return nil, fmt.Errorf("link title and url are required")
	}
	if _, err := s.GetProjectByID(ctx, projectID); err != nil {
		return nil, err
	}

	link := &models.ProjectLink{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		Title:     title,
		URL:       url,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	if _, err := s.linksCollection.InsertOne(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create link: %v", err)
	}

	s.hub.Invalidate("project_links", link.ID.Hex(), projectID)
	return link, nil
}

func (s *ProjectService) ListLinks(ctx context.Context, projectID string) ([]models.ProjectLink, error) {
	cursor, err := s.linksCollection.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve links: %v", err)
	}
	defer cursor.Close(ctx)

	var links []models.ProjectLink
	for cursor.Next(ctx) {
		var link models.ProjectLink
		if err := cursor.Decode(&link); err != nil {
			return nil, fmt.Errorf("failed to decode link: %v", err)
		}
		links = append(links, link)
	}
	return links, cursor.Err()
}

func (s *ProjectService) DeleteLink(ctx context.Context, linkID string) error {
	objectID, err := primitiveObjectID(linkID)
	if err != nil {
		return err
	}
	result, err := s.linksCollection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete link: %v", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("link not found")
	}
	s.hub.Invalidate("project_links", linkID, "")
	return nil
}

func (s *ProjectService) AddTab(ctx context.Context, projectID, name, content string, position int) (*models.ProjectTab, error) {
	if name == "" {
		return nil, fmt.Errorf("tab name is required")
	}
	if _, err := s.GetProjectByID(ctx, projectID); err != nil {
		return nil, err
	}

	tab := &models.ProjectTab{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		Name:      name,
		Content:   content,
		Position:  position,
		CreatedAt: time.Now(),
	}
	if _, err := s.tabsCollection.InsertOne(ctx, tab); err != nil {
		return nil, fmt.Errorf("failed to create tab: %v", err)
	}

	s.hub.Invalidate("project_tabs", tab.ID.Hex(), projectID)
	return tab, nil
}

func (s *ProjectService) ListTabs(ctx context.Context, projectID string) ([]models.ProjectTab, error) {
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := s.tabsCollection.Find(ctx, bson.M{"projectId": projectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tabs: %v", err)
	}
	defer cursor.Close(ctx)

	var tabs []models.ProjectTab
	for cursor.Next(ctx) {
		var tab models.ProjectTab
		if err := cursor.Decode(&tab); err != nil {
			return nil, fmt.Errorf("failed to decode tab: %v", err)
		}
		tabs = append(tabs, tab)
	}
	return tabs, cursor.Err()
}

func (s *ProjectService) DeleteTab(ctx context.Context, tabID string) error {
	objectID, err := primitiveObjectID(tabID)
	if err != nil {
		return err
	}
	result, err := s.tabsCollection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete tab: %v", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("tab not found")
	}
	s.hub.Invalidate("project_tabs", tabID, "")
	return nil
}
