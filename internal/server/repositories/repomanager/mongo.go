package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/securelogin/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/securelogin/internal/server/repositories/attempts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// indexer is implemented by the MongoDB repositories.
type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// MongoRepositoryManager vends MongoDB-backed repositories over the users
// and login_attempts collections of one database.
type MongoRepositoryManager struct {
	client   *mongo.Client
	accounts *accounts.MongoRepository
	attempts *attempts.MongoRepository
}

var mongoConnect = func(ctx context.Context, uri string) (*mongo.Client, error) {
	return mongo.Connect(ctx, options.Client().ApplyURI(uri))
}

func NewMongoRepositoryManager(ctx context.Context, uri, database string) (*MongoRepositoryManager, error) {
	client, err := mongoConnect(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return newMongoRepositoryManager(client, client.Database(database)), nil
}

func newMongoRepositoryManager(client *mongo.Client, db *mongo.Database) *MongoRepositoryManager {
	return &MongoRepositoryManager{
		client:   client,
		accounts: accounts.NewMongoRepository(db),
		attempts: attempts.NewMongoRepository(db),
	}
}

func (m *MongoRepositoryManager) Accounts() accounts.Repository { return m.accounts }

func (m *MongoRepositoryManager) Attempts() attempts.Repository { return m.attempts }

func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	for _, ix := range []indexer{m.accounts, m.attempts} {
		if err := ix.EnsureIndexes(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
