package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fincast/config"
	"fincast/models"
)

type MongoDBService struct {
	client  *mongo.Client
	db      *mongo.Database
	enabled bool
}

const (
	CollectionAlertProfiles   = "alert_profiles"
	CollectionAlertEvents     = "alert_events"
	CollectionNotifications   = "notifications"
	CollectionFisheryNotices  = "dfo_fishery_notices"
	CollectionPreferences     = "preferences"
	CollectionSampleSnapshots = "sample_snapshots"
)

func NewMongoDBService(cfg *config.Config) (*MongoDBService, error) {
	if !cfg.MongoDB.Enabled {
		log.Println("MongoDB is disabled in configuration")
		return &MongoDBService{enabled: false}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoDB.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.MongoDB.Database)

	service := &MongoDBService{
		client:  client,
		db:      db,
		enabled: true,
	}

	if err := service.createIndexes(ctx); err != nil {
		log.Printf("Warning: Failed to create indexes: %v", err)
	}

	log.Printf("MongoDB connected successfully to database: %s", cfg.MongoDB.Database)
	return service, nil
}

func (m *MongoDBService) createIndexes(ctx context.Context) error {
	if !m.enabled {
		return nil
	}

	// Profiles: unique id
	_, err := m.db.Collection(CollectionAlertProfiles).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetName("id").SetUnique(true),
	})
	if err != nil {
		return err
	}

	// Events: recent-first per profile
	_, err = m.db.Collection(CollectionAlertEvents).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "profile_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("profile_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("timestamp_desc"),
		},
	})
	if err != nil {
		return err
	}

	// Notifications: recent-first, unread filter
	_, err = m.db.Collection(CollectionNotifications).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "read", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("read_created"),
	})
	if err != nil {
		return err
	}

	// Notices: unique notice_id, recent-first per region
	_, err = m.db.Collection(CollectionFisheryNotices).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "notice_id", Value: 1}},
			Options: options.Index().SetName("notice_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "region", Value: 1}, {Key: "published_at", Value: -1}},
			Options: options.Index().SetName("region_published"),
		},
	})
	if err != nil {
		return err
	}

	// Sample snapshots: per location, recent-first
	_, err = m.db.Collection(CollectionSampleSnapshots).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "loc_key", Value: 1}, {Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("loc_timestamp"),
	})

	return err
}

func (m *MongoDBService) Close() error {
	if !m.enabled || m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// ============================================
// ALERT PROFILES
// ============================================

func (m *MongoDBService) InsertProfile(ctx context.Context, profile *models.AlertProfile) error {
	if !m.enabled {
		return nil
	}
	_, err := m.db.Collection(CollectionAlertProfiles).InsertOne(ctx, profile)
	return err
}

func (m *MongoDBService) UpdateProfile(ctx context.Context, profile *models.AlertProfile) error {
	if !m.enabled {
		return nil
	}

	filter := bson.M{"id": profile.ID}
	update := bson.M{"$set": profile}

	_, err := m.db.Collection(CollectionAlertProfiles).UpdateOne(ctx, filter, update)
	return err
}

func (m *MongoDBService) DeleteProfile(ctx context.Context, profileID string) error {
	if !m.enabled {
		return nil
	}

	_, err := m.db.Collection(CollectionAlertProfiles).DeleteOne(ctx, bson.M{"id": profileID})
	return err
}

func (m *MongoDBService) GetAllProfiles(ctx context.Context) ([]*models.AlertProfile, error) {
	if !m.enabled {
		return nil, fmt.Errorf("MongoDB not enabled")
	}

	cursor, err := m.db.Collection(CollectionAlertProfiles).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []*models.AlertProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}

	return profiles, nil
}

// ============================================
// ALERT EVENTS
// ============================================

func (m *MongoDBService) InsertAlertEvent(ctx context.Context, event *models.AlertEvent) error {
	if !m.enabled {
		return nil
	}
	_, err := m.db.Collection(CollectionAlertEvents).InsertOne(ctx, event)
	return err
}

func (m *MongoDBService) GetAlertEvents(ctx context.Context, limit int64) ([]*models.AlertEvent, error) {
	if !m.enabled {
		return nil, fmt.Errorf("MongoDB not enabled")
	}

	opts := options.Find().SetSort(bson.M{"timestamp": -1}).SetLimit(limit)
	cursor, err := m.db.Collection(CollectionAlertEvents).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*models.AlertEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return events, nil
}

// ============================================
// NOTIFICATIONS
// ============================================

func (m *MongoDBService) InsertNotification(ctx context.Context, n *models.Notification) error {
	if !m.enabled {
		return nil
	}
	_, err := m.db.Collection(CollectionNotifications).InsertOne(ctx, n)
	return err
}

func (m *MongoDBService) GetNotifications(ctx context.Context, unreadOnly bool, limit int64) ([]*models.Notification, error) {
	if !m.enabled {
		return nil, fmt.Errorf("MongoDB not enabled")
	}

	filter := bson.M{}
	if unreadOnly {
		filter["read"] = false
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(limit)
	cursor, err := m.db.Collection(CollectionNotifications).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []*models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (m *MongoDBService) MarkNotificationRead(ctx context.Context, id string) error {
	if !m.enabled {
		return nil
	}
	_, err := m.db.Collection(CollectionNotifications).UpdateOne(ctx,
		bson.M{"id": id}, bson.M{"$set": bson.M{"read": true}})
	return err
}

func (m *MongoDBService) MarkAllNotificationsRead(ctx context.Context) error {
	if !m.enabled {
		return nil
	}
	_, err := m.db.Collection(CollectionNotifications).UpdateMany(ctx,
		bson.M{"read": false}, bson.M{"$set": bson.M{"read": true}})
	return err
}

func (m *MongoDBService) DeleteNotification(ctx context.Context, id string) error {
	if !m.enabled {
		return nil
	}
	_, err := m.db.Collection(CollectionNotifications).DeleteOne(ctx, bson.M{"id": id})
	return err
}

// ============================================
// FISHERY NOTICES
// ============================================

// UpsertFisheryNotice is keyed by notice_id so a refresh never duplicates
func (m *MongoDBService) UpsertFisheryNotice(ctx context.Context, notice *models.FisheryNotice) error {
	if !m.enabled {
		return nil
	}

	filter := bson.M{"notice_id": notice.NoticeID}
	update := bson.M{"$set": notice}
	opts := options.Update().SetUpsert(true)

	_, err := m.db.Collection(CollectionFisheryNotices).UpdateOne(ctx, filter, update, opts)
	return err
}

func (m *MongoDBService) GetFisheryNotices(ctx context.Context, region string, limit int64) ([]*models.FisheryNotice, error) {
	if !m.enabled {
		return nil, fmt.Errorf("MongoDB not enabled")
	}

	filter := bson.M{}
	if region != "" {
		filter["region"] = region
	}

	opts := options.Find().SetSort(bson.M{"published_at": -1}).SetLimit(limit)
	cursor, err := m.db.Collection(CollectionFisheryNotices).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notices []*models.FisheryNotice
	if err := cursor.All(ctx, &notices); err != nil {
		return nil, err
	}

	return notices, nil
}

// ============================================
// PREFERENCES
// ============================================

func (m *MongoDBService) UpsertPreferences(ctx context.Context, prefs *models.Preferences) error {
	if !m.enabled {
		return nil
	}

	filter := bson.M{"client_id": prefs.ClientID}
	update := bson.M{"$set": prefs}
	opts := options.Update().SetUpsert(true)

	_, err := m.db.Collection(CollectionPreferences).UpdateOne(ctx, filter, update, opts)
	return err
}

func (m *MongoDBService) GetPreferences(ctx context.Context, clientID string) (*models.Preferences, error) {
	if !m.enabled {
		return nil, fmt.Errorf("MongoDB not enabled")
	}

	var prefs models.Preferences
	err := m.db.Collection(CollectionPreferences).FindOne(ctx, bson.M{"client_id": clientID}).Decode(&prefs)
	if err != nil {
		return nil, err
	}

	return &prefs, nil
}

// ============================================
// SAMPLE SNAPSHOTS
// ============================================

func (m *MongoDBService) InsertSampleSnapshot(ctx context.Context, snap *models.SampleSnapshot) error {
	if !m.enabled {
		return nil
	}
	_, err := m.db.Collection(CollectionSampleSnapshots).InsertOne(ctx, snap)
	return err
}

func (m *MongoDBService) GetSampleSnapshots(ctx context.Context, locKey string, start, end time.Time) ([]models.SampleSnapshot, error) {
	if !m.enabled {
		return nil, fmt.Errorf("MongoDB not enabled")
	}

	filter := bson.M{
		"loc_key": locKey,
		"timestamp": bson.M{
			"$gte": start,
			"$lte": end,
		},
	}

	opts := options.Find().SetSort(bson.M{"timestamp": 1})
	cursor, err := m.db.Collection(CollectionSampleSnapshots).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snapshots []models.SampleSnapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}

	return snapshots, nil
}

// DeleteOldSnapshots enforces the sample retention window
func (m *MongoDBService) DeleteOldSnapshots(ctx context.Context, olderThan time.Duration) error {
	if !m.enabled {
		return nil
	}

	cutoff := time.Now().Add(-olderThan)
	res, err := m.db.Collection(CollectionSampleSnapshots).DeleteMany(ctx,
		bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return err
	}
	if res.DeletedCount > 0 {
		log.Printf("Deleted %d expired sample snapshots", res.DeletedCount)
	}
	return nil
}
