package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectPaused    ProjectStatus = "paused"
	ProjectCompleted ProjectStatus = "completed"
)

func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectActive, ProjectPaused, ProjectCompleted:
		return true
	}
	return false
}

type Project struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Status      ProjectStatus      `json:"status" bson:"status"`
	ImageURL    string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	CreatedBy   string             `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ProjectLink is an external URL pinned to a project.
type ProjectLink struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProjectID string             `json:"projectId" bson:"projectId"`
	Title     string             `json:"title" bson:"title"`
	URL       string             `json:"url" bson:"url"`
	CreatedBy string             `json:"createdBy" bson:"createdBy"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// ProjectTab is an admin-defined custom tab rendered on the project page.
type ProjectTab struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProjectID string             `json:"projectId" bson:"projectId"`
	Name      string             `json:"name" bson:"name"`
	Content   string             `json:"content" bson:"content"`
	Position  int                `json:"position" bson:"position"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
