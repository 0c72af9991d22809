package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Adham-ELshahed/Memar/internal/cache"
)

// Setting is a key/value pair of runtime configuration. Public settings are
// exposed to unauthenticated clients through the config endpoint.
type Setting struct {
	Key       string      `bson:"_id" json:"key"`
	Value     interface{} `bson:"value" json:"value"`
	IsPublic  bool        `bson:"is_public" json:"isPublic"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updatedAt"`
}

// ISettingsService defines the interface for runtime settings.
type ISettingsService interface {
	GetPublic(ctx context.Context) (map[string]interface{}, error)
	Set(ctx context.Context, key string, value interface{}, isPublic bool) error
}

const (
	settingsCollection     = "settings"
	publicSettingsCacheKey = "settings:public"
	publicSettingsCacheTTL = 5 * time.Minute
)

type settingsService struct {
	db  *mongo.Database
	rdb *redis.Client
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(db *mongo.Database, rdb *redis.Client) ISettingsService {
	return &settingsService{db: db, rdb: rdb}
}

// GetPublic returns the public settings as a flat map, served from Redis
// when a fresh copy is cached.
func (s *settingsService) GetPublic(ctx context.Context) (map[string]interface{}, error) {
	cachedOut := map[string]interface{}{}
	if err := cache.GetJSON(ctx, s.rdb, publicSettingsCacheKey, &cachedOut); err == nil {
		return cachedOut, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		log.Printf("Warning: %v", err)
	}

	cursor, err := s.db.Collection(settingsCollection).Find(ctx, bson.M{"is_public": true})
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer cursor.Close(ctx)

	var settings []Setting
	if err := cursor.All(ctx, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	out := map[string]interface{}{}
	for _, setting := range settings {
		out[setting.Key] = setting.Value
	}

	if err := cache.SetJSON(ctx, s.rdb, publicSettingsCacheKey, out, publicSettingsCacheTTL); err != nil {
		log.Printf("Warning: %v", err)
	}

	return out, nil
}

// Set upserts one setting and invalidates the public cache.
func (s *settingsService) Set(ctx context.Context, key string, value interface{}, isPublic bool) error {
	update := bson.M{"$set": bson.M{
		"value":      value,
		"is_public":  isPublic,
		"updated_at": time.Now().UTC(),
	}}
	_, err := s.db.Collection(settingsCollection).
		UpdateByID(ctx, key, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}

	if err := cache.Invalidate(ctx, s.rdb, publicSettingsCacheKey); err != nil {
		log.Printf("Warning: %v", err)
	}
	return nil
}
