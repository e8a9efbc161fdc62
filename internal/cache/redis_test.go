package cache_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/nDmitry/spacetravelling/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient_Unreachable(t *testing.T) {
	// Reserve a free port and close it so nothing listens there
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := cache.NewRedisClient(ctx, addr)

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "could not connect to redis at "+addr)
}
