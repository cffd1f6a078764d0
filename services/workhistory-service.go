package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"projecthub/models"
	"projecthub/realtime"
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// SortEntriesDesc orders entries newest first by (date, time). The formats
// are fixed-width, so string comparison is chronological.
func SortEntriesDesc(entries []models.WorkHistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date
		}
		return entries[i].Time > entries[j].Time
	})
}

type WorkHistoryService struct {
	historyCollection *mongo.Collection
	hub               *realtime.Hub
}

func NewWorkHistoryService(historyCollection *mongo.Collection, hub *realtime.Hub) *WorkHistoryService {
	return &WorkHistoryService{historyCollection: historyCollection, hub: hub}
}

func validateEntry(date, timeOfDay, summary string) error {
	if !datePattern.MatchString(date) {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	if !timePattern.MatchString(timeOfDay) {
		return fmt.Errorf("time must be HH:MM")
	}
	if summary == "" {
		return fmt.Errorf("summary is required")
	}
	return nil
}

func (s *WorkHistoryService) AddEntry(ctx context.Context, userID, date, timeOfDay, summary string) (*models.WorkHistoryEntry, error) {
	if date == "" && timeOfDay == "" {
		now := time.Now()
		date = now.Format("2006-01-02")
		timeOfDay = now.Format("15:04")
	}
	if err := validateEntry(date, timeOfDay, summary); err != nil {
		return nil, err
	}

	entry := &models.WorkHistoryEntry{
		ID:      primitive.NewObjectID(),
		UserID:  userID,
		Date:    date,
		Time:    timeOfDay,
		Summary: summary,
	}
	if _, err := s.historyCollection.InsertOne(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create work history entry: %v", err)
	}

	s.hub.Invalidate("work_history", entry.ID.Hex(), "")
	return entry, nil
}

// EditEntry overwrites the summary (and optionally date/time) in place.
// There is no versioning or audit trail.
func (s *WorkHistoryService) EditEntry(ctx context.Context, entryID, userID, date, timeOfDay, summary string) (*models.WorkHistoryEntry, error) {
	objectID, err := primitiveObjectID(entryID)
	if err != nil {
		return nil, err
	}
	if err := validateEntry(date, timeOfDay, summary); err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"date": date, "time": timeOfDay, "summary": summary}}
	var entry models.WorkHistoryEntry
	err = s.historyCollection.FindOneAndUpdate(ctx, bson.M{"_id": objectID, "userId": userID}, update, opts).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("work history entry not found")
		}
		return nil, fmt.Errorf("failed to update work history entry: %v", err)
	}

	s.hub.Invalidate("work_history", entryID, "")
	return &entry, nil
}

func (s *WorkHistoryService) DeleteEntry(ctx context.Context, entryID, userID string) error {
	objectID, err := primitiveObjectID(entryID)
	if err != nil {
		return err
	}
	result, err := s.historyCollection.DeleteOne(ctx, bson.M{"_id": objectID, "userId": userID})
	if err != nil {
		return fmt.Errorf("failed to delete work history entry: %v", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("work history entry not found")
	}
	s.hub.Invalidate("work_history", entryID, "")
	return nil
}

// GetEntriesForUser returns the user's log newest first.
func (s *WorkHistoryService) GetEntriesForUser(ctx context.Context, userID string) ([]models.WorkHistoryEntry, error) {
	cursor, err := s.historyCollection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve work history: %v", err)
	}
	defer cursor.Close(ctx)

	var entries []models.WorkHistoryEntry
	for cursor.Next(ctx) {
		var entry models.WorkHistoryEntry
		if err := cursor.Decode(&entry); err != nil {
			return nil, fmt.Errorf("failed to decode work history entry: %v", err)
		}
		entries = append(entries, entry)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	SortEntriesDesc(entries)
	return entries, nil
}
