package repomanager

import (
	"context"
	"fmt"
)

// Options selects and addresses the backing store.
type Options struct {
	Driver        string
	DatabaseDSN   string
	MongoURI      string
	MongoDatabase string
}

// Open connects to the store named by opts.Driver.
func Open(ctx context.Context, opts Options) (RepositoryManager, error) {
	switch opts.Driver {
	case DriverMongo:
		return NewMongoRepositoryManager(ctx, opts.MongoURI, opts.MongoDatabase)
	case DriverPostgres:
		return NewPostgresRepositoryManager(opts.DatabaseDSN)
	case DriverMemory:
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
