package adapters

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	platformredis "nexolend/internal/platform/redis"
	"nexolend/internal/scoring/ports"
	id "nexolend/pkg/domain"
)

// Redis key layout for the duplicate index. Each key holds the set of
// profile IDs that registered the value.
const (
	keyPrefixDocHash  = "dupindex:hash:"
	keyPrefixIDNumber = "dupindex:idnum:"
	keyPrefixPercept  = "dupindex:phash:"
)

// perceptualSimilarity is reported for perceptual-hash collisions. The
// stored hash already quantizes the image, so a collision is near-certain
// but not byte-exact.
const perceptualSimilarity = 0.95

// RedisDuplicateIndex maintains the cross-profile document index in Redis.
type RedisDuplicateIndex struct {
	client *platformredis.Client
}

// NewRedisDuplicateIndex creates the duplicate index adapter.
func NewRedisDuplicateIndex(client *platformredis.Client) *RedisDuplicateIndex {
	return &RedisDuplicateIndex{client: client}
}

func (r *RedisDuplicateIndex) FindByHash(ctx context.Context, hash string, exclude id.ProfileID) ([]ports.DuplicateMatch, error) {
	return r.lookup(ctx, keyPrefixDocHash+hash, exclude, "EXACT_HASH", 1)
}

func (r *RedisDuplicateIndex) FindByIDNumber(ctx context.Context, idNumber string, exclude id.ProfileID) ([]ports.DuplicateMatch, error) {
	return r.lookup(ctx, keyPrefixIDNumber+idNumber, exclude, "SAME_ID_NUMBER", 1)
}

func (r *RedisDuplicateIndex) FindSimilar(ctx context.Context, perceptualHash string, exclude id.ProfileID) ([]ports.DuplicateMatch, error) {
	return r.lookup(ctx, keyPrefixPercept+perceptualHash, exclude, "PERCEPTUAL", perceptualSimilarity)
}

// Index registers a document's identifying values under its profile.
// Indexing is idempotent; re-registering the same document is a no-op.
func (r *RedisDuplicateIndex) Index(ctx context.Context, doc ports.DocumentRecord) error {
	profile := doc.ProfileID.String()

	pipe := r.client.Pipeline()
	if doc.Hash != "" {
		pipe.SAdd(ctx, keyPrefixDocHash+doc.Hash, profile)
	}
	if doc.ExtractedID != "" {
		pipe.SAdd(ctx, keyPrefixIDNumber+doc.ExtractedID, profile)
	}
	if doc.PerceptualHash != "" {
		pipe.SAdd(ctx, keyPrefixPercept+doc.PerceptualHash, profile)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}
	return nil
}

func (r *RedisDuplicateIndex) lookup(ctx context.Context, key string, exclude id.ProfileID, matchType string, similarity float64) ([]ports.DuplicateMatch, error) {
	members, err := r.client.SMembers(ctx, key).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("duplicate lookup %s: %w", key, err)
	}

	var matches []ports.DuplicateMatch
	for _, member := range members {
		profileID, err := id.ParseProfileID(member)
		if err != nil {
			// A malformed entry is operator data damage, not a scoring
			// failure; skip it.
			continue
		}
		if profileID == exclude {
			continue
		}
		matches = append(matches, ports.DuplicateMatch{
			MatchedProfileID: profileID,
			MatchType:        matchType,
			Similarity:       similarity,
		})
	}
	return matches, nil
}
