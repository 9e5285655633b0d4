package testutil

import (
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// SetupTestRedis starts an in-process Redis server and returns a client for
// it. Both are closed when the test ends.
func SetupTestRedis(t TestingTB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("warning: failed to close redis client: %v", err)
		}
		mr.Close()
	})
	return client, mr
}
