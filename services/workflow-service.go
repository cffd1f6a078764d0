package services

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"projecthub/logging"
	"projecthub/models"
	"projecthub/realtime"
)

// WorkflowService keeps the task dependency graph in Neo4j and mirrors the
// computed blocked state back onto the Mongo task rows.
type WorkflowService struct {
	Driver          neo4j.DriverWithContext
	tasksCollection *mongo.Collection
	hub             *realtime.Hub
}

func NewWorkflowService(driver neo4j.DriverWithContext, tasksCollection *mongo.Collection, hub *realtime.Hub) *WorkflowService {
	return &WorkflowService{Driver: driver, tasksCollection: tasksCollection, hub: hub}
}

// EnsureTaskNode mirrors a task into the graph if it is not there yet.
func (s *WorkflowService) EnsureTaskNode(ctx context.Context, task models.TaskNode) error {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MERGE (t:Task {id: $id})
			ON CREATE SET
				t.projectId = $projectId,
				t.name = $name,
				t.status = $status,
				t.blocked = $blocked
		`
		params := map[string]any{
			"id":        task.ID,
			"projectId": task.ProjectID,
			"name":      task.Name,
			"status":    task.Status,
			"blocked":   task.Blocked,
		}
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})

	return err
}

// AddDependency links ToTaskID to FromTaskID after checking both nodes
// exist, the edge is new, and no cycle would form. The dependent task's
// blocked state is recomputed afterwards.
func (s *WorkflowService) AddDependency(ctx context.Context, rel models.TaskDependencyRelation) error {
	exist, err := s.TasksExist(ctx, rel.FromTaskID, rel.ToTaskID)
	if err != nil {
		return fmt.Errorf("failed to check task existence: %v", err)
	}
	if !exist {
		return fmt.Errorf("one or both tasks do not exist")
	}

	exists, err := s.DependencyExists(ctx, rel.FromTaskID, rel.ToTaskID)
	if err != nil {
		return fmt.Errorf("failed to check if dependency exists: %v", err)
	}
	if exists {
		return fmt.Errorf("dependency already exists")
	}

	hasCycle, err := s.CreatesCycle(ctx, rel.FromTaskID, rel.ToTaskID)
	if err != nil {
		return fmt.Errorf("failed to check cycle: %v", err)
	}
	if hasCycle {
		return fmt.Errorf("cannot add dependency: cycle detected")
	}

	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (from:Task {id: $fromId}), (to:Task {id: $toId})
			MERGE (to)-[:DEPENDS_ON]->(from)
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"fromId": rel.FromTaskID,
			"toId":   rel.ToTaskID,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to create dependency relation: %v", err)
	}

	if err := s.UpdateBlockedStatus(ctx, rel.ToTaskID); err != nil {
		logging.Logger.Warnf("Event ID: BLOCKED_RECOMPUTE_FAILED, Description: Blocked recompute for task %s failed: %v", rel.ToTaskID, err)
	}

	logging.Logger.Infof("Event ID: DEPENDENCY_ADDED, Description: Dependency added: %s <- %s", rel.ToTaskID, rel.FromTaskID)
	return nil
}

func (s *WorkflowService) CreatesCycle(ctx context.Context, fromID, toID string) (bool, error) {
	if fromID == toID {
		return true, nil
	}
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (from:Task {id: $fromId}), (to:Task {id: $toId})
			RETURN EXISTS((from)-[:DEPENDS_ON*1..]->(to)) AS hasCycle
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"fromId": fromID,
			"toId":   toID,
		})
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			val, ok := res.Record().Values[0].(bool)
			if !ok {
				return false, fmt.Errorf("unexpected result type")
			}
			return val, nil
		}
		return false, nil
	})
	if err != nil {
		return false, fmt.Errorf("cycle detection failed: %v", err)
	}

	return result.(bool), nil
}

func (s *WorkflowService) TasksExist(ctx context.Context, id1, id2 string) (bool, error) {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			OPTIONAL MATCH (a:Task {id: $id1})
			OPTIONAL MATCH (b:Task {id: $id2})
			RETURN a IS NOT NULL AND b IS NOT NULL AS bothExist
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"id1": id1,
			"id2": id2,
		})
		if err != nil {
			return false, err
		}
		if res.Next(ctx) {
			return res.Record().Values[0].(bool), nil
		}
		return false, nil
	})
	if err != nil {
		return false, err
	}

	return result.(bool), nil
}

func (s *WorkflowService) DependencyExists(ctx context.Context, fromID, toID string) (bool, error) {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (to:Task {id: $toId})-[r:DEPENDS_ON]->(from:Task {id: $fromId})
			RETURN COUNT(r) > 0 AS exists
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"fromId": fromID,
			"toId":   toID,
		})
		if err != nil {
			return false, err
		}
		if res.Next(ctx) {
			return res.Record().Values[0].(bool), nil
		}
		return false, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (s *WorkflowService) GetDependencies(ctx context.Context, taskID string) ([]models.TaskNode, error) {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (to:Task {id: $taskId})-[:DEPENDS_ON]->(from:Task)
			RETURN from.id AS id, from.projectId AS projectId, from.name AS name,
			       from.status AS status, from.blocked AS blocked
		`
		res, err := tx.Run(ctx, query, map[string]any{"taskId": taskID})
		if err != nil {
			return nil, err
		}

		var dependencies []models.TaskNode
		for res.Next(ctx) {
			record := res.Record()

			id, _ := record.Get("id")
			projectID, _ := record.Get("projectId")
			name, _ := record.Get("name")
			status, _ := record.Get("status")
			blocked, _ := record.Get("blocked")

			dependencies = append(dependencies, models.TaskNode{
				ID:        id.(string),
				ProjectID: projectID.(string),
				Name:      name.(string),
				Status:    status.(string),
				Blocked:   blocked.(bool),
			})
		}

		return dependencies, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]models.TaskNode), nil
}

// BlockedFromDependencies decides blocked state: a task is blocked while any
// dependency is not done.
func BlockedFromDependencies(dependencies []models.TaskNode) bool {
	for _, dep := range dependencies {
		if dep.Status != string(models.StatusDone) {
			return true
		}
	}
	return false
}

// UpdateBlockedStatus recomputes blocked for a task, writes it to the graph,
// and mirrors it onto the Mongo row. Mirroring only moves tasks between todo
// and blocked; in_progress and done are never overridden.
func (s *WorkflowService) UpdateBlockedStatus(ctx context.Context, taskID string) error {
	dependencies, err := s.GetDependencies(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to fetch dependencies: %v", err)
	}
	isBlocked := BlockedFromDependencies(dependencies)

	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (t:Task {id: $taskId})
			SET t.blocked = $isBlocked
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"taskId":    taskID,
			"isBlocked": isBlocked,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to update blocked status: %v", err)
	}

	if s.tasksCollection != nil {
		objectID, err := primitiveObjectID(taskID)
		if err == nil {
			var filter bson.M
			var newStatus models.TaskStatus
			if isBlocked {
				filter = bson.M{"_id": objectID, "status": models.StatusTodo}
				newStatus = models.StatusBlocked
			} else {
				filter = bson.M{"_id": objectID, "status": models.StatusBlocked}
				newStatus = models.StatusTodo
			}
			result, err := s.tasksCollection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": newStatus}})
			if err != nil {
				return fmt.Errorf("failed to mirror blocked status: %v", err)
			}
			if result.ModifiedCount > 0 {
				s.hub.Invalidate("tasks", taskID, "")
			}
		}
	}

	logging.Logger.Infof("Event ID: BLOCKED_STATUS_UPDATED, Description: Blocked status for task %s updated to %v", taskID, isBlocked)
	return nil
}
