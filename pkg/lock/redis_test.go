package lock

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/DrkBotBase/delivery"
)

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_ADDRESS is not set")
	}

	ctx := context.Background()
	rdb, err := Connect(ctx, addr)
	require.NoError(t, err)
	defer rdb.Close()

	log, _ := test.NewNullLogger()
	locker := NewRedisLocker(rdb, log)

	release, err := locker.Lock(ctx, "courier-lock-test")
	require.NoError(t, err)

	_, err = locker.Lock(ctx, "courier-lock-test")
	require.True(t, delivery.IsCode(err, delivery.ECONFLICT), "got %v", err)

	other, err := locker.Lock(ctx, "courier-lock-test-2")
	require.NoError(t, err)
	other()

	release()
	// releasing twice is harmless
	release()

	again, err := locker.Lock(ctx, "courier-lock-test")
	require.NoError(t, err)
	again()
}
