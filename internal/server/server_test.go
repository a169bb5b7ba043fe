package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ShutdownStopsStart(t *testing.T) {
	srv := New("127.0.0.1:0", newTestHandler(t, 0))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	// a server that was shut down refuses to start
	assert.NoError(t, srv.Start())
}
