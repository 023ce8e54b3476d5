package attempts

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func attemptDoc(id, username, ip string, success bool, at time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "username", Value: username},
		{Key: "ip_address", Value: ip},
		{Key: "success", Value: success},
		{Key: "attempt_time", Value: at},
		{Key: "user_agent", Value: "ua"},
	}
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "securelogin." + CollectionName
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("save", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		got, err := repo.Save(context.Background(), &models.LoginAttempt{Username: "ghost", AttemptTime: now})
		require.NoError(mt, err)
		assert.NotEmpty(mt, got.ID)
	})

	mt.Run("save failure", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 91, Message: "shutting down"}))

		_, err := repo.Save(context.Background(), &models.LoginAttempt{Username: "ghost"})
		assert.Error(mt, err)
	})

	mt.Run("failed since decodes", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			attemptDoc("2", "bob", "10.0.0.2", false, now),
			attemptDoc("1", "bob", "10.0.0.2", false, now.Add(-time.Hour)),
		))

		got, err := repo.FindFailedSince(context.Background(), now.Add(-24*time.Hour))
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "2", got[0].ID)
		assert.False(mt, got[0].Success)
		assert.Equal(mt, "10.0.0.2", got[0].IPAddress)
	})

	mt.Run("username and success", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		got, err := repo.FindByUsernameAndSuccess(context.Background(), "alice", true)
		require.NoError(mt, err)
		assert.Empty(mt, got)
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		assert.NoError(mt, repo.EnsureIndexes(context.Background()))
	})
}
