package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"projecthub/models"
	"projecthub/realtime"
)

type AnnouncementService struct {
	announcementsCollection *mongo.Collection
	commentsCollection      *mongo.Collection
	reactionsCollection     *mongo.Collection
	hub                     *realtime.Hub
}

func NewAnnouncementService(announcementsCollection, commentsCollection, reactionsCollection *mongo.Collection, hub *realtime.Hub) *AnnouncementService {
	return &AnnouncementService{
		announcementsCollection: announcementsCollection,
		commentsCollection:      commentsCollection,
		reactionsCollection:     reactionsCollection,
		hub:                     hub,
	}
}

func (s *AnnouncementService) CreateAnnouncement(ctx context.Context, title, body, imageURL, author string) (*models.Announcement, error) {
	if title == "" {
		return nil, fmt.Errorf("announcement title is required")
	}

	announcement := &models.Announcement{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Body:      body,
		ImageURL:  imageURL,
		Author:    author,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if _, err := s.announcementsCollection.InsertOne(ctx, announcement); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %v", err)
	}

	s.hub.Invalidate("announcements", announcement.ID.Hex(), "")
	return announcement, nil
}

func (s *AnnouncementService) UpdateAnnouncement(ctx context.Context, announcementID, title, body, imageURL string) (*models.Announcement, error) {
	objectID, err := primitiveObjectID(announcementID)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, fmt.Errorf("announcement title is required")
	}

	set := bson.M{"title": title, "body": body, "updatedAt": time.Now()}
	if imageURL != "" {
		set["imageUrl"] = imageURL
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var announcement models.Announcement
	err = s.announcementsCollection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&announcement)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("announcement not found")
		}
		return nil, fmt.Errorf("failed to update announcement: %v", err)
	}

	s.hub.Invalidate("announcements", announcementID, "")
	return &announcement, nil
}

func (s *AnnouncementService) DeleteAnnouncement(ctx context.Context, announcementID string) error {
	objectID, err := primitiveObjectID(announcementID)
	if err != nil {
		return err
	}
	result, err := s.announcementsCollection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete announcement: %v", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("announcement not found")
	}

	if _, err := s.commentsCollection.DeleteMany(ctx, bson.M{"announcementId": announcementID}); err != nil {
		return fmt.Errorf("failed to delete announcement comments: %v", err)
	}
	if _, err := s.reactionsCollection.DeleteMany(ctx, bson.M{"announcementId": announcementID}); err != nil {
		return fmt.Errorf("failed to delete announcement reactions: %v", err)
	}

	s.hub.Invalidate("announcements", announcementID, "")
	return nil
}

// ListAnnouncements returns the feed newest first.
func (s *AnnouncementService) ListAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.announcementsCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve announcements: %v", err)
	}
	defer cursor.Close(ctx)

	var announcements []models.Announcement
	for cursor.Next(ctx) {
		var announcement models.Announcement
		if err := cursor.Decode(&announcement); err != nil {
			return nil, fmt.Errorf("failed to decode announcement: %v", err)
		}
		announcements = append(announcements, announcement)
	}
	return announcements, cursor.Err()
}

func (s *AnnouncementService) AddComment(ctx context.Context, announcementID, author, body string) (*models.AnnouncementComment, error) {
	if body == "" {
		return nil, fmt.Errorf("comment body is required")
	}
	objectID, err := primitiveObjectID(announcementID)
	if err != nil {
		return nil, err
	}
	count, err := s.announcementsCollection.CountDocuments(ctx, bson.M{"_id": objectID})
	if err != nil {
		return nil, fmt.Errorf("failed to check announcement: %v", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("announcement not found")
	}

	comment := &models.AnnouncementComment{
		ID:             primitive.NewObjectID(),
		AnnouncementID: announcementID,
		Author:         author,
		Body:           body,
		CreatedAt:      time.Now(),
	}
	if _, err := s.commentsCollection.InsertOne(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %v", err)
	}

	s.hub.Invalidate("announcement_comments", comment.ID.Hex(), "")
	return comment, nil
}

func (s *AnnouncementService) ListComments(ctx context.Context, announcementID string) ([]models.AnnouncementComment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.commentsCollection.Find(ctx, bson.M{"announcementId": announcementID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve comments: %v", err)
	}
	defer cursor.Close(ctx)

	var comments []models.AnnouncementComment
	for cursor.Next(ctx) {
		var comment models.AnnouncementComment
		if err := cursor.Decode(&comment); err != nil {
			return nil, fmt.Errorf("failed to decode comment: %v", err)
		}
		comments = append(comments, comment)
	}
	return comments, cursor.Err()
}

// DeleteComment lets the author or an admin remove a comment.
func (s *AnnouncementService) DeleteComment(ctx context.Context, commentID, callerEmail string, isAdmin bool) error {
	objectID, err := primitiveObjectID(commentID)
	if err != nil {
		return err
	}

	var comment models.AnnouncementComment
	if err := s.commentsCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&comment); err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("comment not found")
		}
		return err
	}
	if !isAdmin && comment.Author != callerEmail {
		return fmt.Errorf("only the author or an admin can delete a comment")
	}

	if _, err := s.commentsCollection.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return fmt.Errorf("failed to delete comment: %v", err)
	}
	s.hub.Invalidate("announcement_comments", commentID, "")
	return nil
}

// ToggleReaction adds the user's emoji, or removes it if it is already there.
func (s *AnnouncementService) ToggleReaction(ctx context.Context, announcementID, userID, emoji string) (bool, error) {
	if emoji == "" {
		return false, fmt.Errorf("emoji is required")
	}

	filter := bson.M{"announcementId": announcementID, "userId": userID, "emoji": emoji}
	result, err := s.reactionsCollection.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to toggle reaction: %v", err)
	}
	if result.DeletedCount > 0 {
		s.hub.Invalidate("announcement_reactions", announcementID, "")
		return false, nil
	}

	reaction := models.AnnouncementReaction{
		ID:             primitive.NewObjectID(),
		AnnouncementID: announcementID,
		UserID:         userID,
		Emoji:          emoji,
		CreatedAt:      time.Now(),
	}
	if _, err := s.reactionsCollection.InsertOne(ctx, reaction); err != nil {
		return false, fmt.Errorf("failed to store reaction: %v", err)
	}

	s.hub.Invalidate("announcement_reactions", announcementID, "")
	return true, nil
}

func (s *AnnouncementService) ListReactions(ctx context.Context, announcementID string) ([]models.AnnouncementReaction, error) {
	cursor, err := s.reactionsCollection.Find(ctx, bson.M{"announcementId": announcementID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve reactions: %v", err)
	}
	defer cursor.Close(ctx)

	var reactions []models.AnnouncementReaction
	for cursor.Next(ctx) {
		var reaction models.AnnouncementReaction
		if err := cursor.Decode(&reaction); err != nil {
			return nil, fmt.Errorf("failed to decode reaction: %v", err)
		}
		reactions = append(reactions, reaction)
	}
	return reactions, cursor.Err()
}
