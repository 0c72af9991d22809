package services

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var testMongoURI string

func init() {
	// Get current file path
	_, filename, _, _ := runtime.Caller(0)
	// Try to load .env from project root (2 levels up from this file)
	projectRoot := filepath.Join(filepath.Dir(filename), "..", "..")
	if err := godotenv.Load(filepath.Join(projectRoot, ".env")); err != nil {
		// Try current directory as fallback
		godotenv.Load()
	}

	testMongoURI = os.Getenv("MONGO_URI_TEST")
	if testMongoURI == "" {
		panic("MONGO_URI_TEST environment variable is required for tests")
	}
}

func setupTestDB(t *testing.T, dbName string, collections ...string) *mongo.Database {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(testMongoURI))
	require.NoError(t, err, "Failed to connect to MongoDB")
	db := client.Database(dbName)
	for _, collection := range collections {
		_ = db.Collection(collection).Drop(context.Background())
	}
	return db
}

// noopScheduler satisfies ITaskScheduler for tests that do not care about
// background work.
type noopScheduler struct {
	deliveries []string
	recalcs    [][2]string
	thumbnails [][2]string
}

func (s *noopScheduler) EnqueueMessageDelivery(messageID string) error {
	s.deliveries = append(s.deliveries, messageID)
	return nil
}

func (s *noopScheduler) EnqueueRatingRecalc(organizationID, productID string) error {
	s.recalcs = append(s.recalcs, [2]string{organizationID, productID})
	return nil
}

func (s *noopScheduler) EnqueueLogoThumbnail(organizationID, objectKey string) error {
	s.thumbnails = append(s.thumbnails, [2]string{organizationID, objectKey})
	return nil
}
