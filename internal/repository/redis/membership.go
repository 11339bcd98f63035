// Package redis implements the campaign membership store on Redis sets.
// It is a drop-in alternative to the Postgres store for deployments that
// keep hot membership data out of the relational database.
package redis

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// MembershipStore implements campaign.MembershipStore on Redis sets, one
// set per campaign. SADD gives the idempotent-union semantics enrollment
// requires.
type MembershipStore struct {
	client *redis.Client
	prefix string
}

// NewMembershipStore creates a Redis-backed membership store. prefix
// namespaces the keys (e.g. "audience:").
func NewMembershipStore(client *redis.Client, prefix string) *MembershipStore {
	return &MembershipStore{client: client, prefix: prefix}
}

func (s *MembershipStore) key(campaignID string) string {
	return fmt.Sprintf("%scampaign:%s:members", s.prefix, campaignID)
}

// Members returns the customer IDs enrolled in the campaign, sorted for a
// stable order (Redis sets are unordered).
func (s *MembershipStore) Members(ctx context.Context, campaignID string) ([]string, error) {
	members, err := s.client.SMembers(ctx, s.key(campaignID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	sort.Strings(members)
	return members, nil
}

// AddMembers unions the customer IDs into the campaign's membership set.
func (s *MembershipStore) AddMembers(ctx context.Context, campaignID string, customerIDs []string) error {
	if len(customerIDs) == 0 {
		return nil
	}
	args := make([]interface{}, len(customerIDs))
	for i, id := range customerIDs {
		args[i] = id
	}
	if err := s.client.SAdd(ctx, s.key(campaignID), args...).Err(); err != nil {
		return fmt.Errorf("add members: %w", err)
	}
	return nil
}
