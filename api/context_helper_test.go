package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/api"
)

func TestWithQueryTimeout(t *testing.T) {
	defer api.SetQueryTimeout(0)

	api.SetQueryTimeout(2 * time.Second)
	assert.Equal(t, 2*time.Second, api.QueryTimeout())

	ctx, cancel := api.WithQueryTimeout(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(2*time.Second), deadline, 500*time.Millisecond)

	parent, stop := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer stop()
	short, cancelShort := api.WithQueryTimeout(parent)
	defer cancelShort()
	got, _ := short.Deadline()
	want, _ := parent.Deadline()
	assert.Equal(t, want, got, "shorter request deadline is kept")

	api.SetQueryTimeout(-time.Second)
	assert.Equal(t, api.DefaultQueryTimeout, api.QueryTimeout())
}
