package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding accounts.
const CollectionName = "users"

// Names of the unique indexes; duplicate-key errors are told apart by them.
const (
	usernameIndex = "username_1"
	emailIndex    = "email_1"
)

// MongoRepository keeps one document per account; the role set is an array
// field so FindByRole is a plain equality match on it.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the unique username/email indexes and the lookup
// indexes used by the list queries. It is idempotent.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName(usernameIndex).SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName(emailIndex).SetUnique(true)},
		{Keys: bson.D{{Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "roles", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *MongoRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *MongoRepository) FindAll(ctx context.Context) ([]*models.Account, error) {
	return r.findMany(ctx, bson.M{})
}

func (r *MongoRepository) FindActive(ctx context.Context) ([]*models.Account, error) {
	return r.findMany(ctx, bson.M{"is_active": true})
}

func (r *MongoRepository) FindByRole(ctx context.Context, role string) ([]*models.Account, error) {
	return r.findMany(ctx, bson.M{"roles": role})
}

func (r *MongoRepository) Save(ctx context.Context, account *models.Account) (*models.Account, error) {
	saved := *account

	if saved.ID == "" {
		saved.ID = uuid.NewString()
		if _, err := r.coll.InsertOne(ctx, &saved); err != nil {
			return nil, translateMongoWriteError(err)
		}
		return &saved, nil
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": saved.ID}, &saved)
	if err != nil {
		return nil, translateMongoWriteError(err)
	}
	if res.MatchedCount == 0 {
		return nil, common.ErrorNotFound
	}
	return &saved, nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Account, error) {
	var a models.Account
	if err := r.coll.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &a, nil
}

func (r *MongoRepository) findMany(ctx context.Context, filter bson.M) ([]*models.Account, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := make([]*models.Account, 0)
	if err := cur.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *MongoRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	err := r.coll.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return false, nil
	default:
		return false, fmt.Errorf("db error: %w", err)
	}
}

func translateMongoWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		switch duplicateKeyIndex(err) {
		case emailIndex:
			return common.ErrorDuplicateEmail
		case usernameIndex:
			return common.ErrorDuplicateUsername
		}
	}
	return fmt.Errorf("db error: %w", err)
}

// duplicateKeyIndex names the unique index a duplicate-key error tripped on.
func duplicateKeyIndex(err error) string {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return indexFromMessage(e.Message)
			}
		}
	}
	return indexFromMessage(err.Error())
}

// indexFromMessage reads the index name out of a server message such as
// "E11000 duplicate key error collection: db.users index: email_1 dup key: {...}".
// The index name precedes the duplicated value, so the first match wins.
func indexFromMessage(msg string) string {
	_, rest, ok := strings.Cut(msg, "index: ")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, " ")
	return name
}
