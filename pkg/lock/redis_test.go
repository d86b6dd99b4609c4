package lock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisLockerSurfacesConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	l := NewRedisLocker(client, "notice-lock:", time.Second)
	_, err := l.Lock(context.Background(), "N-1")

	assert.Error(t, err)
}
