package redis

import "github.com/redis/rueidis"

// NewStoreForTest wraps a rueidis client (typically a mock) in a Store.
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}
