package mongodb_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/userhub/internal/db"
	"github.com/geocoder89/userhub/internal/repo/mongodb"
	"github.com/geocoder89/userhub/internal/repo/storetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Needs a reachable mongod, e.g. TEST_MONGO_URI=mongodb://127.0.0.1:27017
func TestUsersRepo(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := db.NewMongoClient(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	storetest.Run(t, func(t *testing.T) storetest.Store {
		name := "userhub_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		database := client.Database(name)
		t.Cleanup(func() { _ = database.Drop(context.Background()) })

		repo := mongodb.NewUsersRepo(database)
		require.NoError(t, repo.EnsureIndexes(context.Background()))
		return repo
	}, "000000000000000000000000")
}
