package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LessonsQueue/QueueManager/internal/core/domain"
	"github.com/LessonsQueue/QueueManager/internal/core/token"
)

const usersCollection = "users"

type MongoUserRepository struct {
	coll *mongo.Collection

	// now stamps updated_at on writes; overridable in tests.
	now func() time.Time
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection), now: time.Now}
}

func ensureUserIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users email index: %w", err)
	}
	return nil
}

type mongoUser struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Email         string             `bson:"email"`
	PasswordHash  string             `bson:"password_hash"`
	FirstName     string             `bson:"first_name"`
	LastName      string             `bson:"last_name"`
	Admin         bool               `bson:"admin"`
	Approved      bool               `bson:"approved"`
	RefreshToken  string             `bson:"refresh_token,omitempty"`
	VerifiedToken string             `bson:"verified_token,omitempty"`
	CreatedAt     int64              `bson:"created_at"`
	UpdatedAt     int64              `bson:"updated_at"`
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		Email:         user.Email,
		PasswordHash:  user.PasswordHash,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Admin:         user.Admin,
		Approved:      user.Approved,
		RefreshToken:  user.RefreshToken,
		VerifiedToken: user.VerifiedToken,
		CreatedAt:     user.CreatedAt.Unix(),
		UpdatedAt:     user.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) FindByRefreshToken(ctx context.Context, refreshToken string) (*domain.User, error) {
	if refreshToken == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"refresh_token": refreshToken})
}

// FindByVerificationNonce matches the purpose-scoped token fragment with an
// anchored regex on the stored verified_token value.
func (r *MongoUserRepository) FindByVerificationNonce(ctx context.Context, nonce string, purpose token.Purpose) (*domain.User, error) {
	if nonce == "" {
		return nil, domain.ErrUserNotFound
	}
	fragment := "^" + regexp.QuoteMeta(nonce+"::"+string(purpose)+"::")
	return r.findOne(ctx, bson.M{"verified_token": bson.M{"$regex": fragment}})
}

func (r *MongoUserRepository) Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	update := buildUserUpdate(upd, r.now())

	var mu mongoUser
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

// buildUserUpdate translates the partial update into a $set/$unset document.
// Empty-string refresh and verification tokens clear the field; updated_at is
// always stamped with the repository clock.
func buildUserUpdate(upd domain.UserUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now.UTC().Unix()}
	unset := bson.M{}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}
	if upd.Approved != nil {
		set["approved"] = *upd.Approved
	}
	if upd.RefreshToken != nil {
		if *upd.RefreshToken == "" {
			unset["refresh_token"] = ""
		} else {
			set["refresh_token"] = *upd.RefreshToken
		}
	}
	if upd.VerifiedToken != nil {
		if *upd.VerifiedToken == "" {
			unset["verified_token"] = ""
		} else {
			set["verified_token"] = *upd.VerifiedToken
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func (r *MongoUserRepository) ListNotApproved(ctx context.Context) ([]*domain.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"approved": false})
	if err != nil {
		return nil, fmt.Errorf("list not approved: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	for cursor.Next(ctx) {
		var mu mongoUser
		if err := cursor.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, mu.toDomain())
	}
	return users, cursor.Err()
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:            mu.ID.Hex(),
		Email:         mu.Email,
		PasswordHash:  mu.PasswordHash,
		FirstName:     mu.FirstName,
		LastName:      mu.LastName,
		Admin:         mu.Admin,
		Approved:      mu.Approved,
		RefreshToken:  mu.RefreshToken,
		VerifiedToken: mu.VerifiedToken,
		CreatedAt:     unixToTime(mu.CreatedAt),
		UpdatedAt:     unixToTime(mu.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
