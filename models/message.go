package models

import "time"

// ChatMessage lives in Cassandra, partitioned by project and clustered by
// creation time descending.
type ChatMessage struct {
	ID            string    `cassandra:"id" json:"id"`
	ProjectID     string    `cassandra:"project_id" json:"projectId"`
	UserID        string    `cassandra:"user_id" json:"userId"`
	Content       string    `cassandra:"content" json:"content"`
	AttachmentURL string    `cassandra:"attachment_url" json:"attachmentUrl,omitempty"`
	CreatedAt     time.Time `cassandra:"created_at" json:"createdAt"`
}
