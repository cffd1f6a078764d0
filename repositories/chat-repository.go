package repositories

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/sirupsen/logrus"

	"projecthub/models"
)

// ChatRepo stores project chat in Cassandra, one partition per project with
// messages clustered newest-first.
type ChatRepo struct {
	session *gocql.Session
	logger  *logrus.Logger
}

func NewChatRepo(host string, logger *logrus.Logger) (*ChatRepo, error) {
	session, err := connectKeyspace(host, "projecthub")
	if err != nil {
		logger.Errorf("Event ID: CASS_CONNECT_FAILED, Description: Failed to connect to Cassandra: %v", err)
		return nil, err
	}

	logger.Info("Event ID: CASS_CONNECTED, Description: Connected to Cassandra projecthub keyspace.")
	return &ChatRepo{session: session, logger: logger}, nil
}

// connectKeyspace creates the keyspace if needed and returns a session bound
// to it. Shared with NotificationRepo.
func connectKeyspace(host, keyspace string) (*gocql.Session, error) {
	cluster := gocql.NewCluster(host)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, err
	}

	err = session.Query(fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %s
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`, keyspace)).Exec()
	session.Close()
	if err != nil {
		return nil, err
	}

	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.One
	return cluster.CreateSession()
}

func (cr *ChatRepo) CloseSession() {
	cr.session.Close()
	cr.logger.Info("Event ID: CASS_SESSION_CLOSED, Description: Cassandra chat session closed.")
}

func (cr *ChatRepo) CreateTable() {
	err := cr.session.Query(
		`CREATE TABLE IF NOT EXISTS messages (
			id UUID,
			project_id TEXT,
			user_id TEXT,
			content TEXT,
			attachment_url TEXT,
			created_at TIMESTAMP,
			PRIMARY KEY ((project_id), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		cr.logger.Errorf("Event ID: CASS_TABLE_FAILED, Description: Failed to create messages table: %v", err)
	} else {
		cr.logger.Info("Event ID: CASS_TABLE_READY, Description: Messages table created successfully!")
	}
}

func (cr *ChatRepo) CreateMessage(message *models.ChatMessage) error {
	if message.ID == "" {
		message.ID = gocql.TimeUUID().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	err := cr.session.Query(
		`INSERT INTO messages (id, project_id, user_id, content, attachment_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		message.ID, message.ProjectID, message.UserID, message.Content, message.AttachmentURL, message.CreatedAt,
	).Exec()
	if err != nil {
		cr.logger.Errorf("Event ID: CHAT_INSERT_FAILED, Description: Failed to store chat message: %v", err)
		return err
	}
	return nil
}

const (
	defaultMessageLimit = 100
	maxMessageLimit     = 500
)

// clampLimit normalizes a client-supplied page size so one request can never
// pull an entire partition.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultMessageLimit
	}
	if limit > maxMessageLimit {
		return maxMessageLimit
	}
	return limit
}

// GetMessagesByProject returns the newest messages first, capped at limit.
func (cr *ChatRepo) GetMessagesByProject(projectID string, limit int) ([]models.ChatMessage, error) {
	limit = clampLimit(limit)

	query := `SELECT id, project_id, user_id, content, attachment_url, created_at
			  FROM messages WHERE project_id = ? LIMIT ?`

	iter := cr.session.Query(query, projectID, limit).Iter()
	var messages []models.ChatMessage
	var message models.ChatMessage

	for iter.Scan(&message.ID, &message.ProjectID, &message.UserID,
		&message.Content, &message.AttachmentURL, &message.CreatedAt) {
		messages = append(messages, message)
	}

	if err := iter.Close(); err != nil {
		cr.logger.Errorf("Event ID: CHAT_FETCH_FAILED, Description: Failed to fetch messages for project %s: %v", projectID, err)
		return nil, err
	}

	return messages, nil
}

func (cr *ChatRepo) DeleteMessagesByProject(projectID string) error {
	err := cr.session.Query(`DELETE FROM messages WHERE project_id = ?`, projectID).Exec()
	if err != nil {
		cr.logger.Errorf("Event ID: CHAT_DELETE_FAILED, Description: Failed to delete messages for project %s: %v", projectID, err)
		return err
	}
	return nil
}
