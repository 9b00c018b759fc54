package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"geohash-service/geohash"
	"geohash-service/models"

	"github.com/go-redis/redis/v8"
)

// VenueCache groups venues into redis sets keyed by their geohash cell.
type VenueCache struct {
	client        *redis.Client
	cellPrecision int
}

func NewVenueCache(client *redis.Client, cellPrecision int) *VenueCache {
	return &VenueCache{client: client, cellPrecision: cellPrecision}
}

// CellPrecision is the geohash length of a cache cell.
func (c *VenueCache) CellPrecision() int {
	return c.cellPrecision
}

// Cell returns the cache cell that contains hash.
func (c *VenueCache) Cell(hash string) string {
	return geohash.Truncate(hash, c.cellPrecision)
}

func cellKey(cell string) string {
	return fmt.Sprintf("venues:%s", cell)
}

func (c *VenueCache) Add(ctx context.Context, v models.Venue) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding venue %d: %w", v.ID, err)
	}
	if err := c.client.SAdd(ctx, cellKey(c.Cell(v.Geohash)), b).Err(); err != nil {
		return fmt.Errorf("caching venue %d: %w", v.ID, err)
	}
	return nil
}

// Remove drops v from its cell. v must match the cached value exactly.
func (c *VenueCache) Remove(ctx context.Context, v models.Venue) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding venue %d: %w", v.ID, err)
	}
	if err := c.client.SRem(ctx, cellKey(c.Cell(v.Geohash)), b).Err(); err != nil {
		return fmt.Errorf("uncaching venue %d: %w", v.ID, err)
	}
	return nil
}

// Members returns the venues cached in the given cells.
func (c *VenueCache) Members(ctx context.Context, cells ...string) ([]models.Venue, error) {
	var venues []models.Venue
	for _, cell := range cells {
		members, err := c.client.SMembers(ctx, cellKey(cell)).Result()
		if err != nil {
			return nil, fmt.Errorf("reading cell %s: %w", cell, err)
		}
		for _, m := range members {
			var v models.Venue
			if err := json.Unmarshal([]byte(m), &v); err != nil {
				log.Printf("skipping malformed cache entry in %s: %v", cell, err)
				continue
			}
			venues = append(venues, v)
		}
	}
	return venues, nil
}
