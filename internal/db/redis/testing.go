package redis

import (
	"time"

	"github.com/redis/rueidis"
)

// NewStoreForTest wraps an existing client, typically a rueidis mock, with a
// short readiness poll.
func NewStoreForTest(client rueidis.Client) *Store {
	return &Store{client: client, poll: time.Millisecond}
}
