package attempts

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "login_attempts"

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the single-field and compound indexes backing the
// username, address and time-window queries.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}},
		{Keys: bson.D{{Key: "ip_address", Value: 1}}},
		{Keys: bson.D{{Key: "success", Value: 1}}},
		{Keys: bson.D{{Key: "attempt_time", Value: -1}}},
		{Keys: bson.D{{Key: "username", Value: 1}, {Key: "success", Value: 1}}},
		{Keys: bson.D{{Key: "ip_address", Value: 1}, {Key: "success", Value: 1}, {Key: "attempt_time", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Save(ctx context.Context, attempt *models.LoginAttempt) (*models.LoginAttempt, error) {
	saved := *attempt
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	if _, err := r.coll.InsertOne(ctx, &saved); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &saved, nil
}

func (r *MongoRepository) FindByUsername(ctx context.Context, username string) ([]*models.LoginAttempt, error) {
	return r.findMany(ctx, bson.M{"username": username})
}

func (r *MongoRepository) FindByUsernameAndSuccess(ctx context.Context, username string, success bool) ([]*models.LoginAttempt, error) {
	return r.findMany(ctx, bson.M{"username": username, "success": success})
}

func (r *MongoRepository) FindSince(ctx context.Context, since time.Time) ([]*models.LoginAttempt, error) {
	return r.findMany(ctx, bson.M{"attempt_time": bson.M{"$gte": since}})
}

func (r *MongoRepository) FindFailedSince(ctx context.Context, since time.Time) ([]*models.LoginAttempt, error) {
	return r.findMany(ctx, bson.M{"success": false, "attempt_time": bson.M{"$gte": since}})
}

func (r *MongoRepository) FindFailedByAddressSince(ctx context.Context, address string, since time.Time) ([]*models.LoginAttempt, error) {
	return r.findMany(ctx, bson.M{
		"ip_address":   address,
		"success":      false,
		"attempt_time": bson.M{"$gte": since},
	})
}

func (r *MongoRepository) findMany(ctx context.Context, filter bson.M) ([]*models.LoginAttempt, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "attempt_time", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := make([]*models.LoginAttempt, 0)
	if err := cur.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
