package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskAssignment is a task-to-member join row. Assignee and reporter rows
// live in separate collections but share this shape.
type TaskAssignment struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TaskID     string             `json:"taskId" bson:"taskId"`
	UserID     string             `json:"userId" bson:"userId"`
	AssignedAt time.Time          `json:"assignedAt" bson:"assignedAt"`
}
