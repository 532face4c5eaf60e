package sync

import (
	"context"
	"time"

	"laundry-pos/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ConfigRepository interface {
	Get(ctx context.Context) (*Config, error)
	Update(ctx context.Context, updates map[string]interface{}) error
}

type QueueRepository interface {
	Enqueue(ctx context.Context, item *QueueItem) error
	ListByStatus(ctx context.Context, status ItemStatus, entityType EntityType) ([]QueueItem, error)
	List(ctx context.Context, limit int64) ([]QueueItem, error)
	Get(ctx context.Context, id string) (*QueueItem, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	FindSyncedExternalID(ctx context.Context, entityType EntityType, entityID string) (string, error)
}

type ConfigRepositoryImpl struct {
	collection *mongo.Collection
}

func NewConfigRepository(db *database.MongodbDB) ConfigRepository {
	return &ConfigRepositoryImpl{
		collection: db.DB.Collection("sync_config"),
	}
}

// Get returns the singleton config document, inserting defaults on first
// read so callers never see a missing row.
func (r *ConfigRepositoryImpl) Get(ctx context.Context) (*Config, error) {
	var cfg Config
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&cfg)
	if err == nil {
		return &cfg, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	cfg = Config{
		ID:                primitive.NewObjectID(),
		Enabled:           false,
		InvoicesTable:     "Invoices",
		InvoiceItemsTable: "Invoice Items",
		SyncStatus:        WorkerIdle,
		UpdatedAt:         time.Now(),
	}
	if _, err := r.collection.InsertOne(ctx, cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *ConfigRepositoryImpl) Update(ctx context.Context, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{},
		bson.M{"$set": updates},
	)
	return err
}

type QueueRepositoryImpl struct {
	collection *mongo.Collection
}

func NewQueueRepository(db *database.MongodbDB) QueueRepository {
	repo := &QueueRepositoryImpl{
		collection: db.DB.Collection("sync_queue"),
	}

	// The worker drains by status in FIFO order every tick
	idx := mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}}
	repo.collection.Indexes().CreateOne(context.Background(), idx)

	return repo
}

func (r *QueueRepositoryImpl) Enqueue(ctx context.Context, item *QueueItem) error {
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	if item.Status == "" {
		item.Status = StatusPending
	}
	if item.MaxRetries <= 0 {
		item.MaxRetries = DefaultMaxRetries
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, item)
	return err
}

func (r *QueueRepositoryImpl) ListByStatus(ctx context.Context, status ItemStatus, entityType EntityType) ([]QueueItem, error) {
	filter := bson.M{"status": status}
	if entityType != "" {
		filter["entity_type"] = entityType
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []QueueItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *QueueRepositoryImpl) List(ctx context.Context, limit int64) ([]QueueItem, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []QueueItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *QueueRepositoryImpl) Get(ctx context.Context, id string) (*QueueItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var item QueueItem
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&item)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *QueueRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	return err
}

// FindSyncedExternalID returns the remote record id of a synced queue item
// for the given entity, or "" when none has synced yet.
func (r *QueueRepositoryImpl) FindSyncedExternalID(ctx context.Context, entityType EntityType, entityID string) (string, error) {
	filter := bson.M{
		"entity_type": entityType,
		"entity_id":   entityID,
		"status":      StatusSynced,
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "last_synced_at", Value: -1}})
	var item QueueItem
	err := r.collection.FindOne(ctx, filter, opts).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return item.ExternalID, nil
}
