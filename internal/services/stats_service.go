package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Adham-ELshahed/Memar/internal/cache"
	"github.com/Adham-ELshahed/Memar/internal/models"
)

// AdminStats is the admin dashboard snapshot.
type AdminStats struct {
	TotalUsers           int64 `json:"totalUsers"`
	TotalOrganizations   int64 `json:"totalOrganizations"`
	PendingOrganizations int64 `json:"pendingOrganizations"`
	TotalProducts        int64 `json:"totalProducts"`
	TotalRfqs            int64 `json:"totalRfqs"`
	OpenRfqs             int64 `json:"openRfqs"`
	TotalOrders          int64 `json:"totalOrders"`
}

// IStatsService defines the interface for the admin dashboard.
type IStatsService interface {
	GetAdminStats(ctx context.Context) (*AdminStats, error)
}

const statsCacheKey = "stats:admin"

type statsService struct {
	db       *mongo.Database
	rdb      *redis.Client
	cacheTTL time.Duration
}

// NewStatsService creates a new StatsService.
func NewStatsService(db *mongo.Database, rdb *redis.Client, cacheTTL time.Duration) IStatsService {
	return &statsService{db: db, rdb: rdb, cacheTTL: cacheTTL}
}

// GetAdminStats returns platform-wide counters, cached in Redis for the
// configured TTL. The counts run concurrently; the first error wins.
func (s *statsService) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	var cachedStats AdminStats
	if err := cache.GetJSON(ctx, s.rdb, statsCacheKey, &cachedStats); err == nil {
		return &cachedStats, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		log.Printf("Warning: %v", err)
	}

	type countJob struct {
		collection string
		filter     bson.M
		target     *int64
	}

	stats := &AdminStats{}
	jobs := []countJob{
		{usersCollection, bson.M{}, &stats.TotalUsers},
		{organizationsCollection, bson.M{}, &stats.TotalOrganizations},
		{organizationsCollection, bson.M{"status": models.OrgStatusPending}, &stats.PendingOrganizations},
		{productsCollection, bson.M{"is_active": true}, &stats.TotalProducts},
		{rfqsCollection, bson.M{}, &stats.TotalRfqs},
		{rfqsCollection, bson.M{"status": models.RfqStatusPublished}, &stats.OpenRfqs},
		{ordersCollection, bson.M{}, &stats.TotalOrders},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(jobs))
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job countJob) {
			defer wg.Done()
			n, err := s.db.Collection(job.collection).CountDocuments(ctx, job.filter)
			if err != nil {
				errs[i] = fmt.Errorf("failed to count %s: %w", job.collection, err)
				return
			}
			*job.target = n
		}(i, job)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	if err := cache.SetJSON(ctx, s.rdb, statsCacheKey, stats, s.cacheTTL); err != nil {
		log.Printf("Warning: %v", err)
	}

	return stats, nil
}
