package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Announcement struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Body      string             `json:"body" bson:"body"`
	ImageURL  string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Author    string             `json:"author" bson:"author"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type AnnouncementComment struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AnnouncementID string             `json:"announcementId" bson:"announcementId"`
	Author         string             `json:"author" bson:"author"`
	Body           string             `json:"body" bson:"body"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}

// AnnouncementReaction is one user's emoji on one announcement; reacting
// again with the same emoji removes it.
type AnnouncementReaction struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AnnouncementID string             `json:"announcementId" bson:"announcementId"`
	UserID         string             `json:"userId" bson:"userId"`
	Emoji          string             `json:"emoji" bson:"emoji"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}
