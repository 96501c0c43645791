package redis

import "strings"

// keyspace prefixes every key the service writes so several environments can
// share one Redis database.
type keyspace string

const defaultKeyspace keyspace = "cf"

func (k keyspace) join(parts ...string) string {
	var b strings.Builder
	b.WriteString(string(k))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}

// IdempotencyKey is the replay record key for a client key within scope.
func (c *Client) IdempotencyKey(scope, id string) string {
	return c.space().join("idempotency", scope, id)
}

// RateLimitKey is the fixed-window counter key for scope.
func (c *Client) RateLimitKey(scope string) string {
	return c.space().join("rate_limit", scope)
}

// RevokedTokenKey marks a token id ended by logout.
func (c *Client) RevokedTokenKey(tokenID string) string {
	return c.space().join("revoked_token", tokenID)
}

func (c *Client) LockKey(name string) string {
	return c.space().join("lock", name)
}

func (c *Client) space() keyspace {
	if c == nil || c.keys == "" {
		return defaultKeyspace
	}
	return c.keys
}
