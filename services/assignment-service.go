package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"projecthub/logging"
	"projecthub/models"
	"projecthub/realtime"
	"projecthub/repositories"
)

// MembersForTask returns the user ids whose rows reference taskID.
// Duplicate rows are kept; the caller sees exactly what is stored.
func MembersForTask(rows []models.TaskAssignment, taskID string) []string {
	var members []string
	for _, row := range rows {
		if row.TaskID == taskID {
			members = append(members, row.UserID)
		}
	}
	return members
}

// GroupAssignmentsByTask buckets join rows into a task id to user id map,
// computed once per refresh so board and list views do not re-filter per task.
func GroupAssignmentsByTask(rows []models.TaskAssignment) map[string][]string {
	grouped := make(map[string][]string)
	for _, row := range rows {
		grouped[row.TaskID] = append(grouped[row.TaskID], row.UserID)
	}
	return grouped
}

// AssignmentRows builds the rows a replace-set inserts: one row per
// requested user id, nothing for an empty set.
func AssignmentRows(taskID string, userIDs []string, assignedAt time.Time) []interface{} {
	if len(userIDs) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(userIDs))
	for _, userID := range userIDs {
		docs = append(docs, models.TaskAssignment{
			TaskID:     taskID,
			UserID:     userID,
			AssignedAt: assignedAt,
		})
	}
	return docs
}

// AssignmentService owns the assignee and reporter join collections. The two
// roles are independent sets over the same row shape.
type AssignmentService struct {
	client              *mongo.Client
	assigneesCollection *mongo.Collection
	reportersCollection *mongo.Collection
	tasksCollection     *mongo.Collection
	membersCollection   *mongo.Collection
	notificationRepo    *repositories.NotificationRepo
	hub                 *realtime.Hub
}

func NewAssignmentService(
	client *mongo.Client,
	assigneesCollection, reportersCollection, tasksCollection, membersCollection *mongo.Collection,
	notificationRepo *repositories.NotificationRepo,
	hub *realtime.Hub,
) *AssignmentService {
	return &AssignmentService{
		client:              client,
		assigneesCollection: assigneesCollection,
		reportersCollection: reportersCollection,
		tasksCollection:     tasksCollection,
		membersCollection:   membersCollection,
		notificationRepo:    notificationRepo,
		hub:                 hub,
	}
}

// ReplaceAssignees swaps the full assignee set of a task in one transaction:
// delete every existing row, then insert one row per requested member. An
// empty set just clears. Partial failure rolls back, so the task never ends
// up half-assigned.
func (s *AssignmentService) ReplaceAssignees(ctx context.Context, taskID string, userIDs []string) error {
	if err := s.replaceSet(ctx, s.assigneesCollection, taskID, userIDs); err != nil {
		return err
	}

	task, err := s.taskByID(ctx, taskID)
	if err == nil {
		s.notifyAssigned(task, userIDs)
		s.hub.Invalidate("task_assignees", taskID, task.ProjectID)
	} else {
		s.hub.Invalidate("task_assignees", taskID, "")
	}
	return nil
}

// ReplaceReporters swaps the full reporter set of a task; same contract as
// ReplaceAssignees, no notifications.
func (s *AssignmentService) ReplaceReporters(ctx context.Context, taskID string, userIDs []string) error {
	if err := s.replaceSet(ctx, s.reportersCollection, taskID, userIDs); err != nil {
		return err
	}
	s.hub.Invalidate("task_reporters", taskID, "")
	return nil
}

func (s *AssignmentService) replaceSet(ctx context.Context, collection *mongo.Collection, taskID string, userIDs []string) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %v", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := collection.DeleteMany(sc, bson.M{"taskId": taskID}); err != nil {
			return nil, err
		}
		docs := AssignmentRows(taskID, userIDs, time.Now())
		if len(docs) == 0 {
			return nil, nil
		}
		if _, err := collection.InsertMany(sc, docs); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace assignment set: %v", err)
	}
	return nil
}

// GetAssigneesForTask returns the user ids currently assigned to the task.
func (s *AssignmentService) GetAssigneesForTask(ctx context.Context, taskID string) ([]string, error) {
	return s.membersFor(ctx, s.assigneesCollection, taskID)
}

func (s *AssignmentService) GetReportersForTask(ctx context.Context, taskID string) ([]string, error) {
	return s.membersFor(ctx, s.reportersCollection, taskID)
}

func (s *AssignmentService) membersFor(ctx context.Context, collection *mongo.Collection, taskID string) ([]string, error) {
	rows, err := s.rowsFor(ctx, collection, bson.M{"taskId": taskID})
	if err != nil {
		return nil, err
	}
	return MembersForTask(rows, taskID), nil
}

// GetAssignmentsByProject fetches every assignee row for the project's tasks
// and groups them by task id, the shape board and list views consume.
func (s *AssignmentService) GetAssignmentsByProject(ctx context.Context, projectID string) (map[string][]string, error) {
	cursor, err := s.tasksCollection.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve project tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var taskIDs []string
	for cursor.Next(ctx) {
		var task models.Task
		if err := cursor.Decode(&task); err != nil {
			return nil, fmt.Errorf("failed to decode task: %v", err)
		}
		taskIDs = append(taskIDs, task.ID.Hex())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	if len(taskIDs) == 0 {
		return map[string][]string{}, nil
	}

	rows, err := s.rowsFor(ctx, s.assigneesCollection, bson.M{"taskId": bson.M{"$in": taskIDs}})
	if err != nil {
		return nil, err
	}
	return GroupAssignmentsByTask(rows), nil
}

func (s *AssignmentService) rowsFor(ctx context.Context, collection *mongo.Collection, filter bson.M) ([]models.TaskAssignment, error) {
	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve assignment rows: %v", err)
	}
	defer cursor.Close(ctx)

	var rows []models.TaskAssignment
	for cursor.Next(ctx) {
		var row models.TaskAssignment
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode assignment row: %v", err)
		}
		rows = append(rows, row)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return rows, nil
}

// GetAvailableMembers lists team members selectable for new assignments.
// Only active members qualify; rows already pointing at deactivated members
// are left untouched.
func (s *AssignmentService) GetAvailableMembers(ctx context.Context) ([]models.TeamMember, error) {
	cursor, err := s.membersCollection.Find(ctx, bson.M{"status": models.MemberActive})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve members: %v", err)
	}
	defer cursor.Close(ctx)

	var members []models.TeamMember
	for cursor.Next(ctx) {
		var member models.TeamMember
		if err := cursor.Decode(&member); err != nil {
			return nil, fmt.Errorf("failed to decode member: %v", err)
		}
		members = append(members, member)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return members, nil
}

// IsAssignee reports whether the user currently holds an assignee row on the
// task. Used by the status-change gate for non-admin callers.
func (s *AssignmentService) IsAssignee(ctx context.Context, taskID, userID string) (bool, error) {
	count, err := s.assigneesCollection.CountDocuments(ctx, bson.M{"taskId": taskID, "userId": userID})
	if err != nil {
		return false, fmt.Errorf("failed to check assignment: %v", err)
	}
	return count > 0, nil
}

// RemoveUserFromAllTasks drops every assignee and reporter row pointing at
// the user, for member removal cleanup.
func (s *AssignmentService) RemoveUserFromAllTasks(ctx context.Context, userID string) error {
	if _, err := s.assigneesCollection.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("failed to remove assignee rows: %v", err)
	}
	if _, err := s.reportersCollection.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("failed to remove reporter rows: %v", err)
	}
	s.hub.Invalidate("task_assignees", "", "")
	return nil
}

// DeleteRowsForTask removes both join sets of a deleted task.
func (s *AssignmentService) DeleteRowsForTask(ctx context.Context, taskID string) error {
	if _, err := s.assigneesCollection.DeleteMany(ctx, bson.M{"taskId": taskID}); err != nil {
		return fmt.Errorf("failed to remove assignee rows: %v", err)
	}
	if _, err := s.reportersCollection.DeleteMany(ctx, bson.M{"taskId": taskID}); err != nil {
		return fmt.Errorf("failed to remove reporter rows: %v", err)
	}
	return nil
}

func (s *AssignmentService) taskByID(ctx context.Context, taskID string) (*models.Task, error) {
	objectID, err := primitiveObjectID(taskID)
	if err != nil {
		return nil, err
	}
	var task models.Task
	if err := s.tasksCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *AssignmentService) notifyAssigned(task *models.Task, userIDs []string) {
	if s.notificationRepo == nil {
		return
	}
	for _, userID := range userIDs {
		var member models.TeamMember
		err := s.membersCollection.FindOne(context.Background(), bson.M{"userId": userID}).Decode(&member)
		if err != nil {
			continue
		}
		notification := &models.Notification{
			UserID:   userID,
			Username: member.Email,
			Message:  fmt.Sprintf("You have been assigned to task '%s'", task.Title),
		}
		if err := s.notificationRepo.CreateNotification(notification); err != nil {
			logging.Logger.Warnf("Event ID: ASSIGN_NOTIFY_FAILED, Description: Could not notify %s about task %s: %v", member.Email, task.ID.Hex(), err)
		}
	}
}
