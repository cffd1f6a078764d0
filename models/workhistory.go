package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// WorkHistoryEntry is a free-text log line a member writes about their day.
// Date is YYYY-MM-DD and Time is HH:MM so lexicographic order matches
// chronological order.
type WorkHistoryEntry struct {
	ID      primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID  string             `json:"userId" bson:"userId"`
	Date    string             `json:"date" bson:"date"`
	Time    string             `json:"time" bson:"time"`
	Summary string             `json:"summary" bson:"summary"`
}
