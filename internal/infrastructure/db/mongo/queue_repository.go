package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LessonsQueue/QueueManager/internal/core/domain"
)

const (
	queuesCollection  = "queues"
	membersCollection = "queue_members"
)

type MongoQueueRepository struct {
	queues  *mongo.Collection
	members *mongo.Collection

	// now stamps updated_at on writes; overridable in tests.
	now func() time.Time
}

func NewQueueRepository(db *mongo.Database) *MongoQueueRepository {
	return &MongoQueueRepository{
		queues:  db.Collection(queuesCollection),
		members: db.Collection(membersCollection),
		now:     time.Now,
	}
}

func ensureQueueIndexes(ctx context.Context, db *mongo.Database) error {
	// The compound unique key is what makes joinQueue exactly-once under
	// concurrency; the service pre-check alone cannot close that race.
	_, err := db.Collection(membersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "queue_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("queue members index: %w", err)
	}
	return nil
}

type mongoQueue struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	LabID     string             `bson:"lab_id"`
	CreatorID string             `bson:"creator_id"`
	Status    string             `bson:"status"`
	CreatedAt int64              `bson:"created_at"`
	UpdatedAt int64              `bson:"updated_at"`
}

type mongoMember struct {
	QueueID   string `bson:"queue_id"`
	UserID    string `bson:"user_id"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (r *MongoQueueRepository) Create(ctx context.Context, queue *domain.Queue) (*domain.Queue, error) {
	doc := mongoQueue{
		LabID:     queue.LabID,
		CreatorID: queue.CreatorID,
		Status:    string(queue.Status),
		CreatedAt: queue.CreatedAt.Unix(),
		UpdatedAt: queue.UpdatedAt.Unix(),
	}

	res, err := r.queues.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert queue: %w", err)
	}

	created := *queue
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *MongoQueueRepository) FindByID(ctx context.Context, id string) (*domain.Queue, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrQueueNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoQueueRepository) FindByLabID(ctx context.Context, labID string) (*domain.Queue, error) {
	return r.findOne(ctx, bson.M{"lab_id": labID})
}

// Delete removes the queue document and cascades to its membership rows.
func (r *MongoQueueRepository) Delete(ctx context.Context, id string) (*domain.Queue, error) {
	queue, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oid, _ := primitive.ObjectIDFromHex(queue.ID)
	if _, err := r.queues.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return nil, fmt.Errorf("delete queue: %w", err)
	}
	if _, err := r.members.DeleteMany(ctx, bson.M{"queue_id": queue.ID}); err != nil {
		return nil, fmt.Errorf("delete queue members: %w", err)
	}
	return queue, nil
}

func (r *MongoQueueRepository) UpdateStatus(ctx context.Context, id string, status domain.QueueStatus) (*domain.Queue, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrQueueNotFound
	}

	update := bson.M{"$set": bson.M{"status": string(status), "updated_at": r.now().UTC().Unix()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mq mongoQueue
	if err := r.queues.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&mq); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrQueueNotFound
		}
		return nil, fmt.Errorf("update queue status: %w", err)
	}
	return mq.toDomain(), nil
}

func (r *MongoQueueRepository) AddMember(ctx context.Context, queueID, userID string) (*domain.UserQueue, error) {
	now := r.now().UTC()
	doc := mongoMember{
		QueueID:   queueID,
		UserID:    userID,
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
	}

	if _, err := r.members.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAlreadyInQueue
		}
		return nil, fmt.Errorf("insert queue member: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoQueueRepository) RemoveMember(ctx context.Context, queueID, userID string) (*domain.UserQueue, error) {
	var mm mongoMember
	if err := r.members.FindOneAndDelete(ctx, bson.M{"queue_id": queueID, "user_id": userID}).Decode(&mm); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotInQueue
		}
		return nil, fmt.Errorf("remove queue member: %w", err)
	}
	return mm.toDomain(), nil
}

func (r *MongoQueueRepository) FindMember(ctx context.Context, queueID, userID string) (*domain.UserQueue, error) {
	var mm mongoMember
	if err := r.members.FindOne(ctx, bson.M{"queue_id": queueID, "user_id": userID}).Decode(&mm); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotInQueue
		}
		return nil, fmt.Errorf("find queue member: %w", err)
	}
	return mm.toDomain(), nil
}

func (r *MongoQueueRepository) findOne(ctx context.Context, filter bson.M) (*domain.Queue, error) {
	var mq mongoQueue
	if err := r.queues.FindOne(ctx, filter).Decode(&mq); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrQueueNotFound
		}
		return nil, fmt.Errorf("find queue: %w", err)
	}
	return mq.toDomain(), nil
}

func (mq *mongoQueue) toDomain() *domain.Queue {
	return &domain.Queue{
		ID:        mq.ID.Hex(),
		LabID:     mq.LabID,
		CreatorID: mq.CreatorID,
		Status:    domain.QueueStatus(mq.Status),
		CreatedAt: unixToTime(mq.CreatedAt),
		UpdatedAt: unixToTime(mq.UpdatedAt),
	}
}

func (mm *mongoMember) toDomain() *domain.UserQueue {
	return &domain.UserQueue{
		QueueID:   mm.QueueID,
		UserID:    mm.UserID,
		CreatedAt: unixToTime(mm.CreatedAt),
		UpdatedAt: unixToTime(mm.UpdatedAt),
	}
}
