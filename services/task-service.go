package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"projecthub/models"
	"projecthub/realtime"
)

// ErrNotAssigned is returned when a non-admin tries to move a task they do
// not hold an assignee row on.
var ErrNotAssigned = errors.New("user is not assigned to this task")

type TaskService struct {
	tasksCollection    *mongo.Collection
	projectsCollection *mongo.Collection
	assignments        *AssignmentService
	hub                *realtime.Hub
}

func NewTaskService(tasksCollection, projectsCollection *mongo.Collection, assignments *AssignmentService, hub *realtime.Hub) *TaskService {
	return &TaskService{
		tasksCollection:    tasksCollection,
		projectsCollection: projectsCollection,
		assignments:        assignments,
		hub:                hub,
	}
}

func primitiveObjectID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id format: %v", err)
	}
	return objectID, nil
}

// ValidateTaskEnums checks the closed sets; empty values are allowed so the
// caller can apply defaults.
func ValidateTaskEnums(status models.TaskStatus, priority models.TaskPriority, taskType models.TaskType) error {
	if status != "" && !models.ValidTaskStatus(status) {
		return fmt.Errorf("invalid task status: %s", status)
	}
	if priority != "" && !models.ValidTaskPriority(priority) {
		return fmt.Errorf("invalid task priority: %s", priority)
	}
	if taskType != "" && !models.ValidTaskType(taskType) {
		return fmt.Errorf("invalid task type: %s", taskType)
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, task models.Task) (*models.Task, error) {
	projectObjectID, err := primitiveObjectID(task.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project ID format: %v", err)
	}
	if task.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}
	if err := ValidateTaskEnums(task.Status, task.Priority, task.TaskType); err != nil {
		return nil, err
	}

	count, err := s.projectsCollection.CountDocuments(ctx, bson.M{"_id": projectObjectID})
	if err != nil {
		return nil, fmt.Errorf("failed to check project: %v", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("project not found")
	}

	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.TaskType == "" {
		task.TaskType = models.TypeDevelopment
	}
	task.ID = primitive.NewObjectID()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt

	result, err := s.tasksCollection.InsertOne(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}
	task.ID = result.InsertedID.(primitive.ObjectID)

	s.hub.Invalidate("tasks", task.ID.Hex(), task.ProjectID)
	return &task, nil
}

// UpdateTask is the full admin edit. ProjectID is never rewritten; a task
// keeps its project for life.
func (s *TaskService) UpdateTask(ctx context.Context, taskID string, update models.Task) (*models.Task, error) {
	objectID, err := primitiveObjectID(taskID)
	if err != nil {
		return nil, err
	}
	if update.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}
	if err := ValidateTaskEnums(update.Status, update.Priority, update.TaskType); err != nil {
		return nil, err
	}

	set := bson.M{
		"title":       update.Title,
		"description": update.Description,
		"updatedAt":   time.Now(),
	}
	if update.Status != "" {
		set["status"] = update.Status
	}
	if update.Priority != "" {
		set["priority"] = update.Priority
	}
	if update.TaskType != "" {
		set["taskType"] = update.TaskType
	}
	if update.DueDate != nil {
		set["dueDate"] = update.DueDate
	} else {
		set["dueDate"] = nil
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var task models.Task
	err = s.tasksCollection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("task not found")
		}
		return nil, fmt.Errorf("failed to update task: %v", err)
	}

	s.hub.Invalidate("tasks", taskID, task.ProjectID)
	return &task, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, taskID string) (*models.Task, error) {
	objectID, err := primitiveObjectID(taskID)
	if err != nil {
		return nil, err
	}
	var task models.Task
	if err := s.tasksCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&task); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("task not found")
		}
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) GetAllTasks(ctx context.Context) ([]*models.Task, error) {
	return s.findTasks(ctx, bson.M{})
}

func (s *TaskService) GetTasksByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	return s.findTasks(ctx, bson.M{"projectId": projectID})
}

func (s *TaskService) findTasks(ctx context.Context, filter bson.M) ([]*models.Task, error) {
	cursor, err := s.tasksCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []*models.Task
	for cursor.Next(ctx) {
		var task models.Task
		if err := cursor.Decode(&task); err != nil {
			return nil, fmt.Errorf("failed to decode task: %v", err)
		}
		tasks = append(tasks, &task)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return tasks, nil
}

// ChangeTaskStatus moves a task to any status in the closed set. All edges
// are legal. Admins may move any task; everyone else must hold an assignee
// row on it.
func (s *TaskService) ChangeTaskStatus(ctx context.Context, taskID string, status models.TaskStatus, userID string, isAdmin bool) (*models.Task, error) {
	if !models.ValidTaskStatus(status) {
		return nil, fmt.Errorf("invalid task status: %s", status)
	}
	objectID, err := primitiveObjectID(taskID)
	if err != nil {
		return nil, err
	}

	if !isAdmin {
		assigned, err := s.assignments.IsAssignee(ctx, taskID, userID)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, ErrNotAssigned
		}
	}

	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var task models.Task
	err = s.tasksCollection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("task not found")
		}
		return nil, fmt.Errorf("failed to update task status: %v", err)
	}

	s.hub.Invalidate("tasks", taskID, task.ProjectID)
	return &task, nil
}

// StartTask is the one-click start: it only ever sets in_progress.
func (s *TaskService) StartTask(ctx context.Context, taskID, userID string, isAdmin bool) (*models.Task, error) {
	return s.ChangeTaskStatus(ctx, taskID, models.StatusInProgress, userID, isAdmin)
}

// DeleteTask removes the task and both of its join sets.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	objectID, err := primitiveObjectID(taskID)
	if err != nil {
		return err
	}

	var task models.Task
	if err := s.tasksCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&task); err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("task not found")
		}
		return err
	}

	if _, err := s.tasksCollection.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}
	if err := s.assignments.DeleteRowsForTask(ctx, taskID); err != nil {
		return err
	}

	s.hub.Invalidate("tasks", taskID, task.ProjectID)
	return nil
}

// DeleteTasksByProject is the project-deletion cascade.
func (s *TaskService) DeleteTasksByProject(ctx context.Context, projectID string) error {
	tasks, err := s.GetTasksByProject(ctx, projectID)
	if err != nil {
		return err
	}
	for _, task := range tasks {
		if err := s.assignments.DeleteRowsForTask(ctx, task.ID.Hex()); err != nil {
			return err
		}
	}
	if _, err := s.tasksCollection.DeleteMany(ctx, bson.M{"projectId": projectID}); err != nil {
		return fmt.Errorf("failed to delete project tasks: %v", err)
	}
	s.hub.Invalidate("tasks", "", projectID)
	return nil
}

// HasUnfinishedTasks reports whether the project still has tasks that are
// not done.
func (s *TaskService) HasUnfinishedTasks(ctx context.Context, projectID string) (bool, error) {
	count, err := s.tasksCollection.CountDocuments(ctx, bson.M{
		"projectId": projectID,
		"status":    bson.M{"$ne": models.StatusDone},
	})
	if err != nil {
		return false, fmt.Errorf("failed to count unfinished tasks: %v", err)
	}
	return count > 0, nil
}
